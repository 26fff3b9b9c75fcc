package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"hacksim/internal/domain"
	"hacksim/internal/llm"
)

// runConversationMode is the canonical variant: every round the full pool is
// re-partitioned into small transient groups, each group converses once, and
// a reflection pass may trigger user research. Scoring happens on idea
// clusters derived from the final idea text.
func (s *Simulator) runConversationMode(ctx context.Context, runIdx int, runSeed int64, rng *rand.Rand) (domain.SimulationRunResult, string) {
	states := newRunStates(s.profiles)

	for round := 1; round <= s.cfg.ConversationRounds; round++ {
		groups := PlanConversationGroups(states, rng)
		s.emit(runIdx, round, fmt.Sprintf("%d conversation groups queued", len(groups)))
		for _, group := range groups {
			if err := s.facilitateConversation(ctx, runIdx, round, group, rng); err != nil {
				reason := err.Error()
				s.emit(runIdx, round, "stopping early: "+reason)
				return s.summarizeClusters(states, rng, runIdx, runSeed, true, reason), reason
			}
		}
		s.applyReflection(states, rng)
	}

	s.emit(runIdx, s.cfg.ConversationRounds, "completed planned conversation rounds")
	return s.summarizeClusters(states, rng, runIdx, runSeed, false, ""), ""
}

// facilitateConversation runs one group conversation. The collaborator may
// contribute a structured moderation payload; an exhausted budget degrades to
// heuristic narration, while a transport failure propagates and halts the
// run. The collaboration decision itself never depends on whether the
// collaborator was reachable unless it explicitly voted to collaborate.
func (s *Simulator) facilitateConversation(ctx context.Context, runIdx, round int, group []*AgentState, rng *rand.Rand) error {
	var payload llm.ConversationPayload
	if s.responder != nil {
		text, err := s.responder.GenerateTeamUpdate(ctx, llm.UpdateRequest{
			Team:           profilesOf(group),
			Idea:           strings.Join(ideasOf(group), " | "),
			Phase:          fmt.Sprintf("round %d", round),
			PromptOverride: moderationPrompt(round, group),
		})
		switch {
		case err == nil:
			payload = llm.ParsePayload(text)
		case errors.Is(err, llm.ErrBudgetExhausted):
			// heuristic narration below
		default:
			return err
		}
	}

	consensus := payload.ConsensusIdea
	if consensus == "" {
		consensus = MergeGroupIdeas(ideasOf(group))
	}
	summary := payload.Summary
	if summary == "" {
		summary = heuristicRecap(group, consensus)
	}

	compat := groupCompatibility(group)
	totalCommitment := 0.0
	for _, state := range group {
		totalCommitment += state.Commitment
	}
	collabProbability := 0.2 + compat*0.6 + totalCommitment/float64(len(group))*0.2
	collaborate := payload.ShouldCollaborate || rng.Float64() < collabProbability

	for _, state := range group {
		state.History = append(state.History, fmt.Sprintf("Round %d: %s", round, summary))
		for _, action := range payload.RecommendedActions {
			state.History = append(state.History, "Action: "+action)
		}
		state.addEnergy(0.05)
		if collaborate {
			for _, other := range group {
				if other.Profile.Name != state.Profile.Name {
					state.Collaborators[other.Profile.Name] = struct{}{}
				}
			}
		}
	}
	if collaborate {
		for _, state := range group {
			state.Idea = consensus
			state.addCommitment(0.2)
		}
	} else {
		for _, state := range group {
			state.addCommitment(-0.05)
		}
	}

	verb := "compared notes"
	if collaborate {
		verb = "joined forces"
	}
	s.emit(runIdx, round, fmt.Sprintf("%s %s: %s", strings.Join(namesOf(group), ", "), verb, summary))
	return nil
}

// applyReflection gives each participant a commitment-weighted chance to do
// quick user research; once done it stays done for the run.
func (s *Simulator) applyReflection(states []*AgentState, rng *rand.Rand) {
	for _, state := range states {
		if state.ResearchDone {
			continue
		}
		if rng.Float64() < 0.2+state.Commitment*0.2 {
			state.ResearchDone = true
			state.History = append(state.History, "Conducted quick user research and gathered validation.")
		}
	}
}

// summarizeClusters freezes the run: participants are bucketed by the slug of
// their working idea, each cluster is assessed and scored, and clusters are
// ranked by total score.
func (s *Simulator) summarizeClusters(states []*AgentState, rng *rand.Rand, runIdx int, runSeed int64, halted bool, reason string) domain.SimulationRunResult {
	clusters := deriveClusters(states)
	results := make([]domain.TeamResult, 0, len(clusters))
	for _, cluster := range clusters {
		idea := cluster[0].Idea
		if idea == "" {
			idea = cluster[0].OriginIdea
		}
		profiles := profilesOf(cluster)
		metrics := AssessIdea(idea, profiles, rng)
		breakdown := ScoreOutcome(metrics, clusterCohesion(cluster), avgEnergy(cluster), anyResearch(cluster), rng)

		pivoted := false
		var histories [][]string
		for _, state := range cluster {
			if state.Idea != state.OriginIdea {
				pivoted = true
			}
			histories = append(histories, state.History)
		}

		results = append(results, domain.TeamResult{
			TeamName:        clusterName(cluster, rng),
			Members:         namesOf(cluster),
			FinalIdea:       idea,
			IdeaOrigin:      cluster[0].OriginIdea,
			Pivoted:         pivoted,
			ResearchDone:    anyResearch(cluster),
			ConversationLog: mergedLog(histories...),
			ScoreBreakdown:  breakdown,
			TotalScore:      totalScore(breakdown),
			SixHourPlan:     buildSixHourPlan(idea, profiles, metrics, rng),
		})
	}
	sortAndRank(results)
	return domain.SimulationRunResult{
		RunIndex: runIdx,
		Seed:     runSeed,
		Teams:    results,
		Halted:   halted,
		Reason:   reason,
	}
}

// deriveClusters buckets states by idea slug, preserving first-seen order so
// reruns cluster identically.
func deriveClusters(states []*AgentState) [][]*AgentState {
	buckets := make(map[string][]*AgentState)
	var order []string
	for _, state := range states {
		key := Slugify(state.Idea)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], state)
	}
	clusters := make([][]*AgentState, 0, len(order))
	for _, key := range order {
		clusters = append(clusters, buckets[key])
	}
	return clusters
}

func moderationPrompt(round int, group []*AgentState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are moderating round %d of a hackathon ideation sprint.\n", round)
	b.WriteString("Participants:\n")
	for _, state := range group {
		fmt.Fprintf(&b, "- %s (%s) idea: %s\n", state.Profile.Name, state.Profile.Role, state.Idea)
	}
	b.WriteString("\nRespond with JSON containing keys:\n")
	b.WriteString("\"conversation_summary\": string,\n")
	b.WriteString("\"consensus_idea\": string,\n")
	b.WriteString("\"should_collaborate\": boolean,\n")
	b.WriteString("\"recommended_actions\": array of strings.\n")
	b.WriteString("Keep the summary concise but specific. Surface at least one candid critique or skeptical take if it comes up,")
	b.WriteString(" and allow the tone to be lively (a bit spicy is fine) while staying constructive.")
	return b.String()
}

func heuristicRecap(group []*AgentState, consensus string) string {
	return fmt.Sprintf("%s traded critiques and circled a shared direction: %s.",
		strings.Join(namesOf(group), ", "), firstSentence(consensus))
}
