package engine

import (
	"sort"

	"hacksim/internal/domain"
)

const leaderboardSize = 8

// AggregateRuns folds every team result across all runs into leaderboard
// buckets keyed by the slug of the final idea text, then ranks buckets by
// mean score descending and keeps the top entries. Buckets are visited in
// first-encountered order so ties resolve the same way on every execution.
func AggregateRuns(runs []domain.SimulationRunResult) []domain.AggregatedIdea {
	type entry struct {
		runIndex int
		team     domain.TeamResult
	}
	buckets := make(map[string][]entry)
	var order []string
	for _, run := range runs {
		for _, team := range run.Teams {
			slug := Slugify(team.FinalIdea)
			if _, ok := buckets[slug]; !ok {
				order = append(order, slug)
			}
			buckets[slug] = append(buckets[slug], entry{runIndex: run.RunIndex, team: team})
		}
	}

	aggregated := make([]domain.AggregatedIdea, 0, len(order))
	for _, slug := range order {
		entries := buckets[slug]
		sum := 0.0
		wins := 0
		best := entries[0]
		for _, e := range entries {
			sum += e.team.TotalScore
			if e.team.RunRank == 1 {
				wins++
			}
			if e.team.TotalScore > best.team.TotalScore {
				best = e
			}
		}
		bestReason := ""
		if n := len(best.team.ConversationLog); n > 0 {
			bestReason = best.team.ConversationLog[n-1]
		}
		aggregated = append(aggregated, domain.AggregatedIdea{
			Slug:        slug,
			IdeaName:    best.team.FinalIdea,
			Appearances: len(entries),
			AvgScore:    round3(sum / float64(len(entries))),
			Wins:        wins,
			BestTeam:    best.team.TeamName,
			BestRun:     best.runIndex,
			BestReason:  bestReason,
			SamplePlan:  best.team.SixHourPlan,
		})
	}

	sort.SliceStable(aggregated, func(i, j int) bool {
		return aggregated[i].AvgScore > aggregated[j].AvgScore
	})
	if len(aggregated) > leaderboardSize {
		aggregated = aggregated[:leaderboardSize]
	}
	return aggregated
}
