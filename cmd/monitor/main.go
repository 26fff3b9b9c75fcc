package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"hacksim/internal/domain"
	sqlitestore "hacksim/internal/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/hacksim.db", "sqlite database path")
	interval := flag.Duration("interval", 2*time.Second, "refresh interval")
	flag.Parse()

	store, err := sqlitestore.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sqlite store: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	app := tview.NewApplication()

	simsTable := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false)
	simsTable.SetTitle("Simulations (Enter inspect, F5 refresh, F10 quit)").SetBorder(true)

	runsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	runsView.SetTitle("Runs").SetBorder(true)

	leaderboardView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	leaderboardView.SetTitle("Leaderboard").SetBorder(true)

	narrationView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	narrationView.SetTitle("Narration").SetBorder(true)

	statusView := tview.NewTextView().SetWrap(false)
	statusView.SetBorder(true).SetTitle("Status")
	statusView.SetText(fmt.Sprintf("Watching %s | F5 refresh, F10 quit", *dbPath))

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(runsView, 0, 2, false).
		AddItem(leaderboardView, 0, 2, false).
		AddItem(narrationView, 0, 1, false)

	mainLayout := tview.NewFlex().
		AddItem(simsTable, 0, 1, true).
		AddItem(right, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainLayout, 0, 12, true).
		AddItem(statusView, 3, 0, false)

	var selectedID string
	var lastRecords []domain.SimulationRecord

	refreshSims := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		records, err := store.ListSimulations(ctx, 50)
		cancel()
		app.QueueUpdateDraw(func() {
			if err != nil {
				simsTable.Clear()
				simsTable.SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("load error: %v", err)))
				return
			}
			lastRecords = records
			renderSimsTable(simsTable, records, selectedID)
		})
	}

	refreshDetails := func(id string) {
		if strings.TrimSpace(id) == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		summary, sumErr := store.GetSummary(ctx, id)
		events, narErr := store.ListNarration(ctx, id, 100)
		cancel()
		app.QueueUpdateDraw(func() {
			if id != selectedID {
				return
			}
			if sumErr != nil {
				runsView.SetText(fmt.Sprintf("error: %v", sumErr))
				leaderboardView.SetText("")
			} else {
				runsView.SetText(renderRuns(summary.Runs))
				leaderboardView.SetText(renderLeaderboard(summary.Leaderboard))
			}
			if narErr != nil {
				narrationView.SetText(fmt.Sprintf("error: %v", narErr))
			} else {
				narrationView.SetText(renderNarration(events))
			}
		})
	}

	simsTable.SetSelectedFunc(func(row, _ int) {
		if row <= 0 || row > len(lastRecords) {
			return
		}
		selectedID = lastRecords[row-1].ID
		go refreshDetails(selectedID)
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF10:
			app.Stop()
			return nil
		case tcell.KeyF5:
			go func() {
				refreshSims()
				refreshDetails(selectedID)
			}()
			return nil
		}
		return event
	})

	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()

		refreshSims()
		for range ticker.C {
			refreshSims()
			if selectedID == "" && len(lastRecords) > 0 {
				selectedID = lastRecords[0].ID
			}
			refreshDetails(selectedID)
		}
	}()

	if err := app.SetRoot(root, true).EnableMouse(true).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor failed: %v\n", err)
		os.Exit(1)
	}
}

func renderSimsTable(table *tview.Table, records []domain.SimulationRecord, selectedID string) {
	table.Clear()
	headers := []string{"ID", "Mode", "Seed", "Runs", "Halted", "Created"}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))
	}
	for i, rec := range records {
		row := i + 1
		halted := "no"
		if rec.Halted {
			halted = "yes"
		}
		table.SetCell(row, 0, tview.NewTableCell(shortID(rec.ID)))
		table.SetCell(row, 1, tview.NewTableCell(rec.Mode))
		table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", rec.Seed)))
		table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%d", rec.RunsPlanned)))
		table.SetCell(row, 4, tview.NewTableCell(halted))
		table.SetCell(row, 5, tview.NewTableCell(rec.CreatedAt.Format("01-02 15:04:05")))
		if rec.ID == selectedID {
			table.Select(row, 0)
		}
	}
}

func renderRuns(runs []domain.SimulationRunResult) string {
	if len(runs) == 0 {
		return "no runs"
	}
	var b strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&b, "[yellow]Run %d[-] seed=%d", run.RunIndex, run.Seed)
		if run.Halted {
			fmt.Fprintf(&b, " [red]halted[-] %s", run.Reason)
		}
		b.WriteString("\n")
		for _, team := range run.Teams {
			fmt.Fprintf(&b, "  #%d %s (%.3f) %s\n",
				team.RunRank, team.TeamName, team.TotalScore, team.FinalIdea)
		}
	}
	return b.String()
}

func renderLeaderboard(entries []domain.AggregatedIdea) string {
	if len(entries) == 0 {
		return "no leaderboard yet"
	}
	var b strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&b, "%2d. %s avg=%.3f wins=%d seen=%d best=%s (run %d)\n",
			i+1, entry.IdeaName, entry.AvgScore, entry.Wins, entry.Appearances,
			entry.BestTeam, entry.BestRun)
	}
	return b.String()
}

func renderNarration(events []domain.ProgressEvent) string {
	if len(events) == 0 {
		return "no narration recorded"
	}
	var b strings.Builder
	for _, event := range events {
		fmt.Fprintf(&b, "[r%d/%d] %s\n", event.RunIndex, event.Round, event.Message)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
