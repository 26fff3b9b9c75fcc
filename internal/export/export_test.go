package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hacksim/internal/domain"
)

func sampleSummary() domain.SimulationSummary {
	return domain.SimulationSummary{
		Runs: []domain.SimulationRunResult{
			{
				RunIndex: 1,
				Seed:     99,
				Teams: []domain.TeamResult{
					{
						TeamName:        "Signal Crew (design-product)",
						Members:         []string{"A", "B"},
						FinalIdea:       "Predictive dashboard",
						Pivoted:         true,
						ResearchDone:    true,
						ConversationLog: []string{"aligned early"},
						ScoreBreakdown:  map[string]float64{"impact": 0.8, "speed": 0.5},
						TotalScore:      1.3,
						SixHourPlan:     []string{"Hour 1: align."},
						RunRank:         1,
					},
				},
			},
		},
		Leaderboard: []domain.AggregatedIdea{
			{
				Slug:        "predictive-dashboard",
				IdeaName:    "Predictive dashboard",
				Appearances: 1,
				AvgScore:    1.3,
				Wins:        1,
				BestTeam:    "Signal Crew (design-product)",
				BestRun:     1,
				BestReason:  "aligned early",
				SamplePlan:  []string{"Hour 1: align."},
			},
		},
	}
}

func TestWriteTextIncludesRunsAndLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	WriteText(&buf, sampleSummary())
	out := buf.String()

	for _, want := range []string{
		"Run 1 (seed 99)",
		"Signal Crew",
		"Predictive dashboard",
		"Aggregated Leaderboard",
		"1 simulated wins",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownIncludesSections(t *testing.T) {
	out := Markdown(sampleSummary())
	for _, want := range []string{"Run 1", "Predictive dashboard", "Leaderboard"} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summary.json")
	if err := WriteJSON(path, sampleSummary()); err != nil {
		t.Fatalf("write json: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded domain.SimulationSummary
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded.Runs) != 1 || decoded.Runs[0].Teams[0].TeamName != "Signal Crew (design-product)" {
		t.Fatalf("round trip lost data: %+v", decoded)
	}
}

func TestWriteMarkdownCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	if err := WriteMarkdown(path, sampleSummary()); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(raw), "Predictive dashboard") {
		t.Fatalf("markdown file missing content")
	}
}
