package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"hacksim/internal/domain"
)

// ScoreOutcome converts a final assessment plus team condition into the
// five-part score breakdown. Every term is rounded to three decimals; the
// total a team is ranked on is the sum of the five.
func ScoreOutcome(metrics Assessment, cohesion, energy float64, researchDone bool, rng *rand.Rand) map[string]float64 {
	impact := metrics.Novelty*0.4 + metrics.UserValue*0.4 + uniform(rng, 0, 0.15)
	feasibility := metrics.Feasibility*0.6 + metrics.Defensibility*0.35
	cohesionScore := cohesion*0.6 + energy*0.3
	if researchDone {
		cohesionScore += 0.1
	}
	speed := metrics.Clarity*0.5 + energy*0.2 + uniform(rng, 0, 0.1)
	confidence := 0.45 + metrics.Clarity*0.2 + metrics.Defensibility*0.2
	if researchDone {
		confidence += 0.15
	}
	return map[string]float64{
		"impact":      round3(impact),
		"feasibility": round3(feasibility),
		"cohesion":    round3(cohesionScore),
		"speed":       round3(speed),
		"confidence":  round3(minFloat(confidence, 1.3)),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func totalScore(breakdown map[string]float64) float64 {
	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	return total
}

// clusterCohesion reads how tightly a cluster hangs together: the dominant
// personality token count over cluster size, plus a bonus for mixed
// experience levels, capped at 1.2.
func clusterCohesion(states []*AgentState) float64 {
	counts := make(map[string]int)
	var dominant int
	for _, state := range states {
		for _, tok := range tokenize(state.Profile.Personality) {
			counts[tok]++
			if counts[tok] > dominant {
				dominant = counts[tok]
			}
		}
	}
	if dominant == 0 {
		dominant = 1
	}
	size := len(states)
	if size < 1 {
		size = 1
	}
	cohesion := float64(dominant) / float64(size)

	levels := make(map[domain.ExperienceLevel]struct{})
	for _, state := range states {
		levels[state.Profile.XPLevel] = struct{}{}
	}
	if len(levels) > 1 {
		cohesion += 0.1
	}
	return minFloat(cohesion, 1.2)
}

var clusterAdjectives = []string{
	"Signal", "Catalyst", "Momentum", "Insight", "Pulse", "Vector", "Fusion", "Orbit", "Sprint", "Arc",
}

var clusterNouns = []string{
	"Circle", "Crew", "Collective", "Guild", "Forum", "Loop", "Bridge", "Pod", "Squad", "Guild",
}

// clusterName draws adjective then noun and appends the sorted set of role
// anchors so the name stays recognizable across runs.
func clusterName(states []*AgentState, rng *rand.Rand) string {
	anchorSet := make(map[string]struct{})
	for _, state := range states {
		fields := strings.Fields(state.Profile.Role)
		if len(fields) > 0 {
			anchorSet[fields[0]] = struct{}{}
		}
	}
	anchors := make([]string, 0, len(anchorSet))
	for anchor := range anchorSet {
		anchors = append(anchors, anchor)
	}
	sort.Strings(anchors)

	adjective := clusterAdjectives[rng.Intn(len(clusterAdjectives))]
	noun := clusterNouns[rng.Intn(len(clusterNouns))]
	return fmt.Sprintf("%s %s (%s)", adjective, noun, strings.Join(anchors, "-"))
}

// buildSixHourPlan lays out the team's next six hours by role: alignment,
// research, build, design, narrative, dry run. Metric thresholds amend the
// build hour and one rng draw may add a closing ask.
func buildSixHourPlan(idea string, team []domain.AgentProfile, metrics Assessment, rng *rand.Rand) []string {
	lead := team[0]
	technical := pickByRole(team, "engineer", "developer")
	designer := pickByRole(team, "design")
	researcher := pickByRole(team, "research", "ops")

	plan := []string{
		fmt.Sprintf("Hour 1: %s leads alignment on the refined concept: %s.", lead.Name, firstSentence(idea)),
		fmt.Sprintf("Hour 2: %s pulls two quick interviews or transcript reviews to validate assumptions.", researcher.Name),
		fmt.Sprintf("Hour 3: %s scaffolds the core workflow; focus on the highest-signal feature.", technical.Name),
		fmt.Sprintf("Hour 4: %s drafts a clickable storyboard covering the end-to-end experience.", designer.Name),
		"Hour 5: Pair to stitch narrative + demo script; bake research insights into the storyline.",
		"Hour 6: Dry run the pitch, capture metrics in the dashboard, and tag next-day follow-ups.",
	}
	if metrics.Novelty > 1.0 {
		plan[2] += " Shield novelty with a rapid feasibility spike test."
	}
	if metrics.Feasibility < 0.7 {
		plan[2] += " Scope guardrails tightly to keep build tractable."
	}
	if rng.Float64() < 0.4 {
		plan[len(plan)-1] += " Close with a crisp ask for pilots or data access."
	}
	return plan
}

func pickByRole(team []domain.AgentProfile, keywords ...string) domain.AgentProfile {
	for _, member := range team {
		role := strings.ToLower(member.Role)
		for _, keyword := range keywords {
			if strings.Contains(role, keyword) {
				return member
			}
		}
	}
	return team[0]
}
