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

// ambitiousTraits push pivot pressure up; cautiousTraits pull it down.
var ambitiousTraits = map[string]struct{}{
	"visionary": {}, "bold": {}, "experimenter": {}, "energetic": {}, "spark": {}, "challenger": {},
}

var cautiousTraits = map[string]struct{}{
	"calm": {}, "realist": {}, "principled": {}, "mediator": {}, "detail": {}, "supportive": {},
}

const traitPressureStep = 0.05

// team is the persistent-team variant's working unit: once assembled, its
// members keep one shared idea through the phase sequence.
type team struct {
	members      []*AgentState
	idea         string
	metrics      Assessment
	log          []string
	pivoted      bool
	researchDone bool
}

// runTeamMode assembles persistent teams once per run and walks each team
// through the phase machine: idea-merge, critique, pivot, research. Teams are
// then scored and ranked directly (no slug clustering).
func (s *Simulator) runTeamMode(ctx context.Context, runIdx int, runSeed int64, rng *rand.Rand) (domain.SimulationRunResult, string) {
	states := newRunStates(s.profiles)
	groups := AssembleTeams(states, rng, s.cfg.MinTeamSize, s.cfg.MaxTeamSize)
	s.emit(runIdx, 0, fmt.Sprintf("%d teams assembled", len(groups)))

	teams := make([]*team, 0, len(groups))
	for _, members := range groups {
		teams = append(teams, &team{members: members, idea: members[0].Idea})
	}

	for _, t := range teams {
		if err := s.runTeamPhases(ctx, runIdx, t, rng); err != nil {
			reason := err.Error()
			s.emit(runIdx, 0, "stopping early: "+reason)
			return s.summarizeTeams(teams, rng, runIdx, runSeed, true, reason), reason
		}
	}
	return s.summarizeTeams(teams, rng, runIdx, runSeed, false, ""), ""
}

func (s *Simulator) runTeamPhases(ctx context.Context, runIdx int, t *team, rng *rand.Rand) error {
	profiles := profilesOf(t.members)

	// idea-merge: blend the two strongest member pitches into the shared idea.
	if len(t.members) > 1 {
		first, second := topTwoIdeas(t.members, profiles, rng)
		t.idea = MergeIdeas(first, second)
		t.log = append(t.log, fmt.Sprintf("Merged the strongest pitches from %s into a shared concept.",
			strings.Join(namesOf(t.members), ", ")))
	} else {
		t.log = append(t.log, fmt.Sprintf("%s refined a solo concept.", t.members[0].Profile.Name))
	}
	for _, member := range t.members {
		member.Idea = t.idea
	}
	t.metrics = AssessIdea(t.idea, profiles, rng)
	if err := s.phaseInsight(ctx, runIdx, t, "idea-merge"); err != nil {
		return err
	}

	// critique: clarity takes a random hit or boost, tilted by social energy.
	socialEnergy := avgEnergy(t.members)
	factor := uniform(rng, 0.8, 1.2) + (socialEnergy-0.5)*0.1
	t.metrics.Clarity = minFloat(t.metrics.Clarity*factor, clarityCap)
	t.metrics.recompose()
	t.log = append(t.log, fmt.Sprintf("Critique round moved clarity by a %.2fx factor.", factor))
	if err := s.phaseInsight(ctx, runIdx, t, "critique"); err != nil {
		return err
	}

	// pivot: pressure builds from personality mix and weak metrics.
	pressure := s.pivotPressure(t)
	if rng.Float64() < pressure {
		t.idea = pivotIdea(t.idea, rng)
		for _, member := range t.members {
			member.Idea = t.idea
		}
		t.metrics = AssessIdea(t.idea, profiles, rng)
		t.pivoted = true
		t.log = append(t.log, fmt.Sprintf("Pivoted under %.2f pressure: %s", pressure, firstSentence(t.idea)))
	} else {
		t.log = append(t.log, fmt.Sprintf("Held course under %.2f pivot pressure.", pressure))
	}
	if err := s.phaseInsight(ctx, runIdx, t, "pivot"); err != nil {
		return err
	}

	// research: cohesion raises the trigger odds; validation boosts value and
	// clarity multiplicatively.
	trigger := s.cfg.ResearchTrigger + clusterCohesion(t.members)*0.2
	if rng.Float64() < trigger {
		t.researchDone = true
		for _, member := range t.members {
			member.ResearchDone = true
		}
		t.metrics.UserValue = minFloat(t.metrics.UserValue*1.15, userValueCap)
		t.metrics.Clarity = minFloat(t.metrics.Clarity*1.1, clarityCap)
		t.metrics.recompose()
		t.log = append(t.log, "Ran quick user research; validation lifted user value and clarity.")
	} else {
		t.log = append(t.log, "Skipped user research this cycle.")
	}
	return s.phaseInsight(ctx, runIdx, t, "research")
}

// pivotPressure starts from the configured base chance, shifts per ambitious
// or cautious personality keyword, nudges up when novelty or feasibility are
// weak, and clamps so a pivot is never a certainty.
func (s *Simulator) pivotPressure(t *team) float64 {
	pressure := s.cfg.PivotBaseChance
	for _, member := range t.members {
		for _, tok := range traitTokens(member.Profile.Personality) {
			if _, ok := ambitiousTraits[tok]; ok {
				pressure += traitPressureStep
			}
			if _, ok := cautiousTraits[tok]; ok {
				pressure -= traitPressureStep
			}
		}
	}
	if t.metrics.Novelty < 0.7 {
		pressure += 0.1
	}
	if t.metrics.Feasibility < 0.7 {
		pressure += 0.1
	}
	return clamp(pressure, 0, 0.95)
}

// topTwoIdeas ranks member ideas by assessed composite (stable on ties, so
// member order breaks them) and returns the best two idea strings.
func topTwoIdeas(members []*AgentState, profiles []domain.AgentProfile, rng *rand.Rand) (string, string) {
	bestIdx, secondIdx := 0, 1
	bestScore := AssessIdea(members[0].Idea, profiles, rng).Composite
	secondScore := AssessIdea(members[1].Idea, profiles, rng).Composite
	if secondScore > bestScore {
		bestIdx, secondIdx = secondIdx, bestIdx
		bestScore, secondScore = secondScore, bestScore
	}
	for i := 2; i < len(members); i++ {
		score := AssessIdea(members[i].Idea, profiles, rng).Composite
		if score > bestScore {
			secondIdx, secondScore = bestIdx, bestScore
			bestIdx, bestScore = i, score
		} else if score > secondScore {
			secondIdx, secondScore = i, score
		}
	}
	return members[bestIdx].Idea, members[secondIdx].Idea
}

// phaseInsight asks the collaborator for one flavor line. Budget exhaustion
// is silent; only transport failures bubble up. Insights never feed back into
// metrics or decisions.
func (s *Simulator) phaseInsight(ctx context.Context, runIdx int, t *team, phase string) error {
	if s.responder == nil {
		return nil
	}
	text, err := s.responder.GenerateTeamUpdate(ctx, llm.UpdateRequest{
		Team:    profilesOf(t.members),
		Idea:    t.idea,
		Phase:   phase,
		Metrics: t.metrics.Map(),
	})
	if errors.Is(err, llm.ErrBudgetExhausted) {
		return nil
	}
	if err != nil {
		return err
	}
	if text != "" {
		t.log = append(t.log, "Insight: "+text)
		s.emit(runIdx, 0, fmt.Sprintf("[%s] %s", phase, text))
	}
	return nil
}

func (s *Simulator) summarizeTeams(teams []*team, rng *rand.Rand, runIdx int, runSeed int64, halted bool, reason string) domain.SimulationRunResult {
	results := make([]domain.TeamResult, 0, len(teams))
	for _, t := range teams {
		profiles := profilesOf(t.members)
		breakdown := ScoreOutcome(t.metrics, clusterCohesion(t.members), avgEnergy(t.members), t.researchDone, rng)
		idea := t.idea
		if idea == "" {
			idea = t.members[0].OriginIdea
		}

		var histories [][]string
		for _, member := range t.members {
			histories = append(histories, member.History)
		}

		results = append(results, domain.TeamResult{
			TeamName:        clusterName(t.members, rng),
			Members:         namesOf(t.members),
			FinalIdea:       idea,
			IdeaOrigin:      t.members[0].OriginIdea,
			Pivoted:         t.pivoted,
			ResearchDone:    t.researchDone,
			ConversationLog: mergedLog(append([][]string{t.log}, histories...)...),
			ScoreBreakdown:  breakdown,
			TotalScore:      totalScore(breakdown),
			SixHourPlan:     buildSixHourPlan(idea, profiles, t.metrics, rng),
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
