package engine

import (
	"fmt"
	"testing"

	"hacksim/internal/domain"
)

func TestAggregateRunsInvariants(t *testing.T) {
	runs := []domain.SimulationRunResult{
		{
			RunIndex: 1,
			Teams: []domain.TeamResult{
				{TeamName: "alpha", FinalIdea: "Shared idea", TotalScore: 3.0, RunRank: 1, ConversationLog: []string{"first", "alpha closing"}},
				{TeamName: "beta", FinalIdea: "Other idea", TotalScore: 2.0, RunRank: 2},
			},
		},
		{
			RunIndex: 2,
			Teams: []domain.TeamResult{
				{TeamName: "gamma", FinalIdea: "Shared idea!", TotalScore: 4.0, RunRank: 1, ConversationLog: []string{"gamma closing"}},
				{TeamName: "delta", FinalIdea: "Other idea", TotalScore: 1.0, RunRank: 2},
			},
		},
	}

	leaderboard := AggregateRuns(runs)
	if len(leaderboard) != 2 {
		t.Fatalf("expected two buckets, got %d", len(leaderboard))
	}

	shared := leaderboard[0]
	if shared.Slug != "shared-idea" {
		t.Fatalf("expected shared-idea ranked first, got %q", shared.Slug)
	}
	if shared.Appearances != 2 || shared.Wins != 2 {
		t.Fatalf("shared bucket miscounted: appearances=%d wins=%d", shared.Appearances, shared.Wins)
	}
	if diff := shared.AvgScore - 3.5; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("shared avg score off: %f", shared.AvgScore)
	}
	if shared.BestTeam != "gamma" || shared.BestRun != 2 {
		t.Fatalf("best showing wrong: team=%s run=%d", shared.BestTeam, shared.BestRun)
	}
	if shared.BestReason != "gamma closing" {
		t.Fatalf("best reason should be the last log line, got %q", shared.BestReason)
	}

	for _, entry := range leaderboard {
		if entry.Wins > entry.Appearances {
			t.Fatalf("%s has more wins than appearances", entry.Slug)
		}
	}
}

func TestAggregateRunsCapsLeaderboard(t *testing.T) {
	var teams []domain.TeamResult
	for i := 0; i < 12; i++ {
		teams = append(teams, domain.TeamResult{
			TeamName:   fmt.Sprintf("team-%d", i),
			FinalIdea:  fmt.Sprintf("distinct idea %d", i),
			TotalScore: float64(i),
			RunRank:    12 - i,
		})
	}
	leaderboard := AggregateRuns([]domain.SimulationRunResult{{RunIndex: 1, Teams: teams}})
	if len(leaderboard) != leaderboardSize {
		t.Fatalf("expected leaderboard capped at %d, got %d", leaderboardSize, len(leaderboard))
	}
	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].AvgScore > leaderboard[i-1].AvgScore {
			t.Fatalf("leaderboard not sorted descending at index %d", i)
		}
	}
}
