package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hacksim/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS simulations (
	id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	mode TEXT NOT NULL,
	runs_planned INTEGER NOT NULL,
	halted INTEGER NOT NULL DEFAULT 0,
	halt_reason TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS simulation_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	simulation_id TEXT NOT NULL,
	run_index INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	halted INTEGER NOT NULL DEFAULT 0,
	reason TEXT NOT NULL DEFAULT '',
	UNIQUE(simulation_id, run_index),
	FOREIGN KEY(simulation_id) REFERENCES simulations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS team_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	simulation_id TEXT NOT NULL,
	run_index INTEGER NOT NULL,
	run_rank INTEGER NOT NULL,
	team_name TEXT NOT NULL,
	members TEXT NOT NULL,
	final_idea TEXT NOT NULL,
	idea_origin TEXT NOT NULL,
	pivoted INTEGER NOT NULL,
	research_done INTEGER NOT NULL,
	conversation_log TEXT NOT NULL,
	score_breakdown TEXT NOT NULL,
	total_score REAL NOT NULL,
	six_hour_plan TEXT NOT NULL,
	FOREIGN KEY(simulation_id) REFERENCES simulations(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_team_results_run ON team_results(simulation_id, run_index, run_rank);

CREATE TABLE IF NOT EXISTS leaderboard_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	simulation_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	slug TEXT NOT NULL,
	idea_name TEXT NOT NULL,
	appearances INTEGER NOT NULL,
	avg_score REAL NOT NULL,
	wins INTEGER NOT NULL,
	best_team TEXT NOT NULL,
	best_run INTEGER NOT NULL,
	best_reason TEXT NOT NULL,
	sample_plan TEXT NOT NULL,
	UNIQUE(simulation_id, position),
	FOREIGN KEY(simulation_id) REFERENCES simulations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS narration_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	simulation_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	run_index INTEGER NOT NULL,
	round INTEGER NOT NULL,
	message TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE(simulation_id, seq),
	FOREIGN KEY(simulation_id) REFERENCES simulations(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_narration_log_sim ON narration_log(simulation_id, seq);
`

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set sqlite pragma %q: %w", stmt, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSummary persists one finished simulation atomically: the header row,
// every run, every team result, and the leaderboard.
func (s *Store) SaveSummary(ctx context.Context, rec domain.SimulationRecord, summary domain.SimulationSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save summary: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO simulations (id, seed, mode, runs_planned, halted, halt_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Seed, rec.Mode, rec.RunsPlanned, boolInt(rec.Halted), rec.HaltReason, rec.CreatedAt.Unix(),
	); err != nil {
		return fmt.Errorf("insert simulation: %w", err)
	}

	for _, run := range summary.Runs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO simulation_runs (simulation_id, run_index, seed, halted, reason)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, run.RunIndex, run.Seed, boolInt(run.Halted), run.Reason,
		); err != nil {
			return fmt.Errorf("insert run %d: %w", run.RunIndex, err)
		}
		for _, team := range run.Teams {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO team_results
				 (simulation_id, run_index, run_rank, team_name, members, final_idea, idea_origin,
				  pivoted, research_done, conversation_log, score_breakdown, total_score, six_hour_plan)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, run.RunIndex, team.RunRank, team.TeamName, mustJSON(team.Members),
				team.FinalIdea, team.IdeaOrigin, boolInt(team.Pivoted), boolInt(team.ResearchDone),
				mustJSON(team.ConversationLog), mustJSON(team.ScoreBreakdown), team.TotalScore,
				mustJSON(team.SixHourPlan),
			); err != nil {
				return fmt.Errorf("insert team %q in run %d: %w", team.TeamName, run.RunIndex, err)
			}
		}
	}

	for position, entry := range summary.Leaderboard {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO leaderboard_entries
			 (simulation_id, position, slug, idea_name, appearances, avg_score, wins,
			  best_team, best_run, best_reason, sample_plan)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, position+1, entry.Slug, entry.IdeaName, entry.Appearances, entry.AvgScore,
			entry.Wins, entry.BestTeam, entry.BestRun, entry.BestReason, mustJSON(entry.SamplePlan),
		); err != nil {
			return fmt.Errorf("insert leaderboard entry %q: %w", entry.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save summary: %w", err)
	}
	return nil
}

// AppendNarration records one progress event under a monotonically growing
// per-simulation sequence number.
func (s *Store) AppendNarration(ctx context.Context, simulationID string, seq int, event domain.ProgressEvent) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO narration_log (simulation_id, seq, run_index, round, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		simulationID, seq, event.RunIndex, event.Round, event.Message, event.At.Unix(),
	); err != nil {
		return fmt.Errorf("insert narration: %w", err)
	}
	return nil
}

func (s *Store) ListSimulations(ctx context.Context, limit int) ([]domain.SimulationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, mode, runs_planned, halted, halt_reason, created_at
		 FROM simulations ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer rows.Close()

	var records []domain.SimulationRecord
	for rows.Next() {
		var rec domain.SimulationRecord
		var halted int
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Seed, &rec.Mode, &rec.RunsPlanned, &halted, &rec.HaltReason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		rec.Halted = halted != 0
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetSummary rebuilds a stored simulation back into the summary shape.
func (s *Store) GetSummary(ctx context.Context, simulationID string) (domain.SimulationSummary, error) {
	var summary domain.SimulationSummary

	runRows, err := s.db.QueryContext(ctx,
		`SELECT run_index, seed, halted, reason FROM simulation_runs
		 WHERE simulation_id = ? ORDER BY run_index`, simulationID)
	if err != nil {
		return summary, fmt.Errorf("list runs: %w", err)
	}
	defer runRows.Close()

	for runRows.Next() {
		var run domain.SimulationRunResult
		var halted int
		if err := runRows.Scan(&run.RunIndex, &run.Seed, &halted, &run.Reason); err != nil {
			return summary, fmt.Errorf("scan run: %w", err)
		}
		run.Halted = halted != 0
		summary.Runs = append(summary.Runs, run)
	}
	if err := runRows.Err(); err != nil {
		return summary, err
	}

	for i := range summary.Runs {
		teams, err := s.listTeams(ctx, simulationID, summary.Runs[i].RunIndex)
		if err != nil {
			return summary, err
		}
		summary.Runs[i].Teams = teams
	}

	entryRows, err := s.db.QueryContext(ctx,
		`SELECT slug, idea_name, appearances, avg_score, wins, best_team, best_run, best_reason, sample_plan
		 FROM leaderboard_entries WHERE simulation_id = ? ORDER BY position`, simulationID)
	if err != nil {
		return summary, fmt.Errorf("list leaderboard: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var entry domain.AggregatedIdea
		var planRaw string
		if err := entryRows.Scan(&entry.Slug, &entry.IdeaName, &entry.Appearances, &entry.AvgScore,
			&entry.Wins, &entry.BestTeam, &entry.BestRun, &entry.BestReason, &planRaw); err != nil {
			return summary, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entry.SamplePlan = fromJSONList(planRaw)
		summary.Leaderboard = append(summary.Leaderboard, entry)
	}
	return summary, entryRows.Err()
}

func (s *Store) listTeams(ctx context.Context, simulationID string, runIndex int) ([]domain.TeamResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_rank, team_name, members, final_idea, idea_origin, pivoted, research_done,
		        conversation_log, score_breakdown, total_score, six_hour_plan
		 FROM team_results WHERE simulation_id = ? AND run_index = ? ORDER BY run_rank`,
		simulationID, runIndex)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.TeamResult
	for rows.Next() {
		var team domain.TeamResult
		var pivoted, research int
		var members, log, breakdown, plan string
		if err := rows.Scan(&team.RunRank, &team.TeamName, &members, &team.FinalIdea, &team.IdeaOrigin,
			&pivoted, &research, &log, &breakdown, &team.TotalScore, &plan); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		team.Pivoted = pivoted != 0
		team.ResearchDone = research != 0
		team.Members = fromJSONList(members)
		team.ConversationLog = fromJSONList(log)
		team.SixHourPlan = fromJSONList(plan)
		team.ScoreBreakdown = fromJSONMap(breakdown)
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// ListNarration returns the most recent narration lines in sequence order.
func (s *Store) ListNarration(ctx context.Context, simulationID string, limit int) ([]domain.ProgressEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_index, round, message, created_at FROM (
			SELECT run_index, round, message, created_at, seq FROM narration_log
			WHERE simulation_id = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq`, simulationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list narration: %w", err)
	}
	defer rows.Close()

	var events []domain.ProgressEvent
	for rows.Next() {
		var event domain.ProgressEvent
		var createdAt int64
		if err := rows.Scan(&event.RunIndex, &event.Round, &event.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan narration: %w", err)
		}
		event.At = time.Unix(createdAt, 0).UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}

func fromJSONList(raw string) []string {
	var items []string
	_ = json.Unmarshal([]byte(raw), &items)
	return items
}

func fromJSONMap(raw string) map[string]float64 {
	values := make(map[string]float64)
	_ = json.Unmarshal([]byte(raw), &values)
	return values
}
