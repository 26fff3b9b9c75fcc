package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"hacksim/internal/domain"
	"hacksim/internal/engine"
	"hacksim/internal/llm"
	"hacksim/internal/profile"
	"hacksim/internal/store/sqlite"
)

const (
	progressBufferCap  = 500
	progressBufferKeep = 200
)

// Server exposes the simulator over HTTP. Simulations run synchronously
// inside the request; results are persisted so the monitor and later GET
// calls can replay them.
type Server struct {
	store     *sqlite.Store
	responder llm.Responder
	defaults  engine.Config
	logger    *zap.Logger
}

func NewServer(store *sqlite.Store, responder llm.Responder, defaults engine.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, responder: responder, defaults: defaults, logger: logger}
}

type echoValidator struct {
	v *validator.Validate
}

func (ev *echoValidator) Validate(i interface{}) error {
	return ev.v.Struct(i)
}

// Router builds the echo instance with all routes registered.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &echoValidator{v: validator.New()}
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.POST("/simulate", s.handleSimulate)
	e.GET("/simulations", s.handleListSimulations)
	e.GET("/simulations/:id", s.handleGetSimulation)
	e.GET("/simulations/:id/narration", s.handleNarration)
	return e
}

type participantInput struct {
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
	Idea     string `json:"idea"`
	Comments string `json:"comments"`
}

type optionsInput struct {
	Runs               int    `json:"runs" validate:"omitempty,min=1,max=50"`
	ConversationRounds int    `json:"conversation_rounds" validate:"omitempty,min=1,max=50"`
	MinTeamSize        int    `json:"min_team_size" validate:"omitempty,min=1"`
	MaxTeamSize        int    `json:"max_team_size" validate:"omitempty,min=1"`
	Seed               *int64 `json:"seed"`
	Mode               string `json:"mode" validate:"omitempty,oneof=conversation team"`
}

type simulateRequest struct {
	Participants []participantInput `json:"participants" validate:"omitempty,dive"`
	Options      optionsInput       `json:"options"`
}

type simulateResponse struct {
	ID       string                   `json:"id"`
	Summary  domain.SimulationSummary `json:"summary"`
	Progress []domain.ProgressEvent   `json:"progress"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSimulate(c echo.Context) error {
	var req simulateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_failed", err.Error())
	}

	profiles, err := rosterFromRequest(req.Participants)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_participants", err.Error())
	}

	cfg := s.defaults
	if req.Options.Runs > 0 {
		cfg.Runs = req.Options.Runs
	}
	if req.Options.ConversationRounds > 0 {
		cfg.ConversationRounds = req.Options.ConversationRounds
	}
	if req.Options.MinTeamSize > 0 {
		cfg.MinTeamSize = req.Options.MinTeamSize
	}
	if req.Options.MaxTeamSize > 0 {
		cfg.MaxTeamSize = req.Options.MaxTeamSize
	}
	if cfg.MaxTeamSize < cfg.MinTeamSize {
		return errorJSON(c, http.StatusBadRequest, "invalid_team_size",
			"max_team_size must be at least min_team_size")
	}
	if req.Options.Seed != nil {
		cfg.Seed = *req.Options.Seed
	}
	if req.Options.Mode != "" {
		cfg.Mode = domain.FormationMode(req.Options.Mode)
	}

	sim, err := engine.New(profiles, cfg, s.responder, s.logger)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_config", err.Error())
	}

	buf := newProgressBuffer()
	sim.SetProgressSink(buf.add)

	ctx := c.Request().Context()
	summary, err := sim.Run(ctx)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "simulation_failed", err.Error())
	}

	rec := domain.SimulationRecord{
		ID:          uuid.NewString(),
		Seed:        cfg.Seed,
		Mode:        string(cfg.Mode),
		RunsPlanned: cfg.Runs,
		CreatedAt:   time.Now().UTC(),
	}
	if rec.Mode == "" {
		rec.Mode = string(domain.ModeConversation)
	}
	for _, run := range summary.Runs {
		if run.Halted {
			rec.Halted = true
			rec.HaltReason = run.Reason
		}
	}

	events := buf.snapshot()
	if s.store != nil {
		if err := s.store.SaveSummary(ctx, rec, summary); err != nil {
			s.logger.Warn("persist simulation failed", zap.String("id", rec.ID), zap.Error(err))
		} else {
			for seq, event := range events {
				if err := s.store.AppendNarration(ctx, rec.ID, seq, event); err != nil {
					s.logger.Warn("persist narration failed", zap.String("id", rec.ID), zap.Error(err))
					break
				}
			}
		}
	}

	return c.JSON(http.StatusOK, simulateResponse{ID: rec.ID, Summary: summary, Progress: events})
}

func (s *Server) handleListSimulations(c echo.Context) error {
	records, err := s.store.ListSimulations(c.Request().Context(), 50)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "list_failed", err.Error())
	}
	if records == nil {
		records = []domain.SimulationRecord{}
	}
	return c.JSON(http.StatusOK, map[string]any{"simulations": records})
}

func (s *Server) handleGetSimulation(c echo.Context) error {
	id := c.Param("id")
	summary, err := s.store.GetSummary(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "load_failed", err.Error())
	}
	if len(summary.Runs) == 0 {
		return errorJSON(c, http.StatusNotFound, "not_found", "no simulation with that id")
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "summary": summary})
}

func (s *Server) handleNarration(c echo.Context) error {
	id := c.Param("id")
	events, err := s.store.ListNarration(c.Request().Context(), id, 200)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "load_failed", err.Error())
	}
	if events == nil {
		events = []domain.ProgressEvent{}
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "narration": events})
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]string{"error": code, "message": message})
}

// rosterFromRequest turns request participants into agent profiles. An empty
// list falls back to the built-in roster. A participant with no idea may
// still join by describing one in comments.
func rosterFromRequest(participants []participantInput) ([]domain.AgentProfile, error) {
	if len(participants) == 0 {
		return profile.Defaults(), nil
	}
	profiles := make([]domain.AgentProfile, 0, len(participants))
	for i, p := range participants {
		idea := strings.TrimSpace(p.Idea)
		if idea == "" {
			idea = strings.TrimSpace(p.Comments)
		}
		if idea == "" {
			return nil, &participantError{index: i, name: p.Name}
		}
		role := strings.TrimSpace(p.Role)
		if role == "" {
			role = "generalist"
		}
		profiles = append(profiles, domain.AgentProfile{
			Name:        strings.TrimSpace(p.Name),
			Role:        role,
			Idea:        idea,
			Skills:      []string{role},
			Personality: profile.DefaultPersonality,
			Motivation:  profile.DefaultMotivation,
			XPLevel:     profile.DefaultXPLevel,
		})
	}
	return profiles, nil
}

type participantError struct {
	index int
	name  string
}

func (e *participantError) Error() string {
	return "participant " + e.name + " needs an idea or comments describing one"
}

// progressBuffer keeps recent narration without letting a long simulation
// grow the response unboundedly.
type progressBuffer struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func newProgressBuffer() *progressBuffer {
	return &progressBuffer{}
}

func (b *progressBuffer) add(event domain.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	if len(b.events) > progressBufferCap {
		trimmed := make([]domain.ProgressEvent, progressBufferKeep)
		copy(trimmed, b.events[len(b.events)-progressBufferKeep:])
		b.events = trimmed
	}
}

func (b *progressBuffer) snapshot() []domain.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ProgressEvent, len(b.events))
	copy(out, b.events)
	return out
}
