package domain

import "time"

type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
)

type FormationMode string

const (
	// ModeConversation forms small transient conversation groups each round.
	ModeConversation FormationMode = "conversation"
	// ModeTeam assembles one persistent team per participant for the run.
	ModeTeam FormationMode = "team"
)

// AgentProfile is the immutable description of one participant. Profiles are
// created once at simulation start and never mutated by the engine.
type AgentProfile struct {
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	Idea        string          `json:"idea"`
	Skills      []string        `json:"skills"`
	Personality string          `json:"personality"`
	Motivation  string          `json:"motivation"`
	XPLevel     ExperienceLevel `json:"xp_level"`
}

// TeamResult is the frozen outcome of one team (or idea cluster) in one run.
type TeamResult struct {
	TeamName        string             `json:"team_name"`
	Members         []string           `json:"members"`
	FinalIdea       string             `json:"final_idea"`
	IdeaOrigin      string             `json:"idea_origin"`
	Pivoted         bool               `json:"pivoted"`
	ResearchDone    bool               `json:"research_done"`
	ConversationLog []string           `json:"conversation_log"`
	ScoreBreakdown  map[string]float64 `json:"score_breakdown"`
	TotalScore      float64            `json:"total_score"`
	SixHourPlan     []string           `json:"six_hour_plan"`
	RunRank         int                `json:"run_rank"`
}

// SimulationRunResult holds one run's teams sorted by total score descending,
// with RunRank assigned 1..N after the sort.
type SimulationRunResult struct {
	RunIndex int          `json:"run_index"`
	Seed     int64        `json:"seed"`
	Teams    []TeamResult `json:"teams"`
	Halted   bool         `json:"halted"`
	Reason   string       `json:"reason,omitempty"`
}

// AggregatedIdea is a cross-run leaderboard bucket keyed by the slug of the
// final idea text. Appearances >= Wins always holds.
type AggregatedIdea struct {
	Slug        string   `json:"slug"`
	IdeaName    string   `json:"idea_name"`
	Appearances int      `json:"appearances"`
	AvgScore    float64  `json:"avg_score"`
	Wins        int      `json:"wins"`
	BestTeam    string   `json:"best_team"`
	BestRun     int      `json:"best_run"`
	BestReason  string   `json:"best_reason"`
	SamplePlan  []string `json:"sample_plan"`
}

type SimulationSummary struct {
	Runs        []SimulationRunResult `json:"runs"`
	Leaderboard []AggregatedIdea      `json:"leaderboard"`
}

// ProgressEvent is one narration line emitted while a simulation runs.
// Progress delivery is observability only; dropping events never changes the
// simulation outcome.
type ProgressEvent struct {
	RunIndex int       `json:"run_index"`
	Round    int       `json:"round"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// SimulationRecord is the stored header row for one persisted simulation.
type SimulationRecord struct {
	ID          string    `json:"id"`
	Seed        int64     `json:"seed"`
	Mode        string    `json:"mode"`
	RunsPlanned int       `json:"runs_planned"`
	Halted      bool      `json:"halted"`
	HaltReason  string    `json:"halt_reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
