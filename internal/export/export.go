package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hacksim/internal/domain"
)

// WriteText renders the full summary in the console format: every run with
// its ranked teams, then the cross-run leaderboard.
func WriteText(w io.Writer, summary domain.SimulationSummary) {
	fmt.Fprintln(w, "=== Hackathon Simulation Runs ===")
	for _, run := range summary.Runs {
		fmt.Fprintf(w, "\nRun %d (seed %d):\n", run.RunIndex, run.Seed)
		if run.Halted {
			fmt.Fprintf(w, "  halted early: %s\n", run.Reason)
		}
		for _, team := range run.Teams {
			fmt.Fprintf(w, "  %d. %s - %s, %s\n", team.RunRank, team.TeamName, pivotLabel(team), researchLabel(team))
			fmt.Fprintf(w, "     Final idea: %s\n", team.FinalIdea)
			for _, note := range team.ConversationLog {
				fmt.Fprintf(w, "       - %s\n", note)
			}
			fmt.Fprintf(w, "     Score breakdown: %s; total %.2f\n", breakdownLine(team.ScoreBreakdown), team.TotalScore)
		}
	}
	fmt.Fprintln(w, "\n=== Aggregated Leaderboard Across Runs ===")
	for idx, entry := range summary.Leaderboard {
		fmt.Fprintf(w, "%d. %s\n", idx+1, entry.IdeaName)
		fmt.Fprintf(w, "   Avg score %.2f across %d appearances, %d simulated wins. Best showing: %s in run %d.\n",
			entry.AvgScore, entry.Appearances, entry.Wins, entry.BestTeam, entry.BestRun)
		if entry.BestReason != "" {
			fmt.Fprintf(w, "   Highlight: %s\n", entry.BestReason)
		}
		if len(entry.SamplePlan) > 0 {
			fmt.Fprintln(w, "   Suggested 6-hour plan sample:")
			for _, step := range entry.SamplePlan {
				fmt.Fprintf(w, "     * %s\n", step)
			}
		}
	}
}

// Markdown renders the summary grouped by run and then by leaderboard entry.
func Markdown(summary domain.SimulationSummary) string {
	var b strings.Builder
	b.WriteString("# Hackathon Simulation Summary\n\n## Runs\n")
	for _, run := range summary.Runs {
		fmt.Fprintf(&b, "### Run %d (seed %d)\n", run.RunIndex, run.Seed)
		if run.Halted {
			fmt.Fprintf(&b, "_Halted early: %s_\n", run.Reason)
		}
		for _, team := range run.Teams {
			fmt.Fprintf(&b, "- **%d. %s** - %s, %s<br>  Final idea: %s\n",
				team.RunRank, team.TeamName, pivotLabel(team), researchLabel(team), team.FinalIdea)
			for _, note := range team.ConversationLog {
				fmt.Fprintf(&b, "  - %s\n", note)
			}
			fmt.Fprintf(&b, "  - Scores: %s; total **%.2f**\n\n", breakdownLine(team.ScoreBreakdown), team.TotalScore)
		}
	}
	b.WriteString("## Leaderboard\n")
	for idx, entry := range summary.Leaderboard {
		fmt.Fprintf(&b, "### %d. %s\n", idx+1, entry.IdeaName)
		fmt.Fprintf(&b, "- Avg score **%.2f** across %d appearances; %d simulated wins.\n",
			entry.AvgScore, entry.Appearances, entry.Wins)
		fmt.Fprintf(&b, "- Best showing: %s (run %d).\n", entry.BestTeam, entry.BestRun)
		if entry.BestReason != "" {
			fmt.Fprintf(&b, "- Highlight: %s\n", entry.BestReason)
		}
		if len(entry.SamplePlan) > 0 {
			b.WriteString("- Six-hour plan:\n")
			for _, step := range entry.SamplePlan {
				fmt.Fprintf(&b, "  - %s\n", step)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// WriteJSON writes the summary as indented JSON, creating parent directories
// as needed.
func WriteJSON(path string, summary domain.SimulationSummary) error {
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return writeFile(path, raw)
}

// WriteMarkdown writes the Markdown rendering to a file.
func WriteMarkdown(path string, summary domain.SimulationSummary) error {
	return writeFile(path, []byte(Markdown(summary)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func breakdownLine(breakdown map[string]float64) string {
	keys := make([]string, 0, len(breakdown))
	for key := range breakdown {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %.2f", key, breakdown[key]))
	}
	return strings.Join(parts, ", ")
}

func pivotLabel(team domain.TeamResult) string {
	if team.Pivoted {
		return "Pivoted"
	}
	return "Stayed course"
}

func researchLabel(team domain.TeamResult) string {
	if team.ResearchDone {
		return "did user research"
	}
	return "skipped research"
}
