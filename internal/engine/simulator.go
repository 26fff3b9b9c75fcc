package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"hacksim/internal/domain"
	"hacksim/internal/llm"
)

const (
	runSeedSpan   = 10001
	maxLogEntries = 30
	earlyStopSlug = "early-stop"
)

var ErrNoProfiles = errors.New("at least one agent profile is required")

// Config tunes one simulation. Zero values fall back to the defaults the
// original roster sizes were tuned against.
type Config struct {
	Runs               int
	ConversationRounds int
	MinTeamSize        int
	MaxTeamSize        int
	PivotBaseChance    float64
	ResearchTrigger    float64
	Seed               int64
	Mode               domain.FormationMode
}

func (c Config) withDefaults() Config {
	if c.Runs <= 0 {
		c.Runs = 5
	}
	if c.ConversationRounds <= 0 {
		c.ConversationRounds = 6
	}
	if c.MinTeamSize <= 0 {
		c.MinTeamSize = 2
	}
	if c.MaxTeamSize <= 0 {
		c.MaxTeamSize = 4
	}
	if c.PivotBaseChance <= 0 {
		c.PivotBaseChance = 0.35
	}
	if c.ResearchTrigger <= 0 {
		c.ResearchTrigger = 0.45
	}
	if c.Mode == "" {
		c.Mode = domain.ModeConversation
	}
	return c
}

func (c Config) validate() error {
	if c.MaxTeamSize < c.MinTeamSize {
		return fmt.Errorf("invalid team size range: max %d < min %d", c.MaxTeamSize, c.MinTeamSize)
	}
	if c.Mode != domain.ModeConversation && c.Mode != domain.ModeTeam {
		return fmt.Errorf("unknown formation mode %q", c.Mode)
	}
	return nil
}

// Simulator owns one simulation: an immutable profile roster, a config, and
// an optional text-generation collaborator. All per-run mutable state lives
// in the run itself; a Simulator can be reused and two executions with the
// same seed produce identical summaries.
type Simulator struct {
	profiles  []domain.AgentProfile
	cfg       Config
	responder llm.Responder
	logger    *zap.Logger
	sink      func(domain.ProgressEvent)
}

// New validates configuration up front; nothing fails once runs have started
// except the collaborator transport. The responder may be nil, which behaves
// like an exhausted call budget.
func New(profiles []domain.AgentProfile, cfg Config, responder llm.Responder, logger *zap.Logger) (*Simulator, error) {
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	roster := make([]domain.AgentProfile, len(profiles))
	copy(roster, profiles)
	return &Simulator{
		profiles:  roster,
		cfg:       cfg,
		responder: responder,
		logger:    logger,
	}, nil
}

// SetProgressSink installs an optional observer for narration events. The
// sink only affects observability, never outcomes.
func (s *Simulator) SetProgressSink(sink func(domain.ProgressEvent)) {
	s.sink = sink
}

// Run executes all configured runs sequentially. A collaborator transport
// failure finalizes the current run early, skips the remaining runs, and
// surfaces as a synthetic early-stop leaderboard entry rather than an error;
// the partial summary is still returned.
func (s *Simulator) Run(ctx context.Context) (domain.SimulationSummary, error) {
	master := rand.New(rand.NewSource(s.cfg.Seed))
	var runs []domain.SimulationRunResult
	haltReason := ""

	for runIdx := 1; runIdx <= s.cfg.Runs; runIdx++ {
		if err := ctx.Err(); err != nil {
			return domain.SimulationSummary{Runs: runs}, err
		}
		runSeed := master.Int63n(runSeedSpan)
		rng := rand.New(rand.NewSource(runSeed))
		s.logger.Info("starting run",
			zap.Int("run", runIdx),
			zap.Int64("seed", runSeed),
			zap.String("mode", string(s.cfg.Mode)),
		)

		var result domain.SimulationRunResult
		var reason string
		if s.cfg.Mode == domain.ModeTeam {
			result, reason = s.runTeamMode(ctx, runIdx, runSeed, rng)
		} else {
			result, reason = s.runConversationMode(ctx, runIdx, runSeed, rng)
		}
		runs = append(runs, result)
		if reason != "" {
			haltReason = reason
			s.logger.Warn("halting remaining runs",
				zap.Int("run", runIdx),
				zap.String("reason", reason),
			)
			break
		}
	}

	leaderboard := AggregateRuns(runs)
	if haltReason != "" {
		marker := domain.AggregatedIdea{
			Slug:     earlyStopSlug,
			IdeaName: "Simulation halted early: " + haltReason,
		}
		leaderboard = append([]domain.AggregatedIdea{marker}, leaderboard...)
		if len(leaderboard) > leaderboardSize {
			leaderboard = leaderboard[:leaderboardSize]
		}
	}
	return domain.SimulationSummary{Runs: runs, Leaderboard: leaderboard}, nil
}

func (s *Simulator) emit(runIdx, round int, message string) {
	if s.sink != nil {
		s.sink(domain.ProgressEvent{
			RunIndex: runIdx,
			Round:    round,
			Message:  message,
			At:       time.Now().UTC(),
		})
	}
	s.logger.Debug("progress",
		zap.Int("run", runIdx),
		zap.Int("round", round),
		zap.String("message", message),
	)
}

func sortAndRank(results []domain.TeamResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})
	for i := range results {
		results[i].RunRank = i + 1
	}
}

func profilesOf(states []*AgentState) []domain.AgentProfile {
	profiles := make([]domain.AgentProfile, 0, len(states))
	for _, state := range states {
		profiles = append(profiles, state.Profile)
	}
	return profiles
}

func namesOf(states []*AgentState) []string {
	names := make([]string, 0, len(states))
	for _, state := range states {
		names = append(names, state.Profile.Name)
	}
	return names
}

func ideasOf(states []*AgentState) []string {
	ideas := make([]string, 0, len(states))
	for _, state := range states {
		ideas = append(ideas, state.Idea)
	}
	return ideas
}

func avgEnergy(states []*AgentState) float64 {
	total := 0.0
	for _, state := range states {
		total += state.Energy
	}
	return total / float64(len(states))
}

func anyResearch(states []*AgentState) bool {
	for _, state := range states {
		if state.ResearchDone {
			return true
		}
	}
	return false
}

// mergedLog concatenates log sources in order, drops duplicates, and caps
// the result.
func mergedLog(sources ...[]string) []string {
	seen := make(map[string]struct{})
	var unique []string
	for _, source := range sources {
		for _, entry := range source {
			if _, ok := seen[entry]; ok {
				continue
			}
			seen[entry] = struct{}{}
			unique = append(unique, entry)
			if len(unique) == maxLogEntries {
				return unique
			}
		}
	}
	return unique
}
