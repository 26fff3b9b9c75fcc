package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/voocel/litellm"

	"hacksim/internal/domain"
)

var (
	// ErrBudgetExhausted means the simulation's call budget is spent. This is
	// the expected end state of a budgeted simulation, not a failure: callers
	// fall back to heuristic narration and keep going.
	ErrBudgetExhausted = errors.New("llm call budget exhausted")

	// ErrTransport wraps hard failures from the provider after retries. A
	// transport failure halts the current run.
	ErrTransport = errors.New("collaborator transport failure")

	ErrMissingAPIKey = errors.New("llm api key is not set")
)

// UpdateRequest carries the context for one collaborator invocation.
type UpdateRequest struct {
	Team           []domain.AgentProfile
	Idea           string
	Phase          string
	Metrics        map[string]float64
	Scores         map[string]float64
	PromptOverride string
}

// Responder is the replaceable text-generation collaborator. Implementations
// must return ErrBudgetExhausted once their call budget is spent and wrap any
// hard provider failure in ErrTransport.
type Responder interface {
	GenerateTeamUpdate(ctx context.Context, req UpdateRequest) (string, error)
	RemainingCalls() int
}

type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	CallCap     int
}

// Client is the litellm-backed Responder with a synchronous call budget.
type Client struct {
	client    *litellm.Client
	cfg       Config
	remaining int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-flash-latest"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.CallCap < 0 {
		cfg.CallCap = 0
	}

	var provider litellm.ClientOption
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.BaseURL != "" {
			provider = litellm.WithOpenAI(cfg.APIKey, cfg.BaseURL)
		} else {
			provider = litellm.WithOpenAI(cfg.APIKey)
		}
	case "anthropic":
		if cfg.BaseURL != "" {
			provider = litellm.WithAnthropic(cfg.APIKey, cfg.BaseURL)
		} else {
			provider = litellm.WithAnthropic(cfg.APIKey)
		}
	case "", "gemini":
		if cfg.BaseURL != "" {
			provider = litellm.WithGemini(cfg.APIKey, cfg.BaseURL)
		} else {
			provider = litellm.WithGemini(cfg.APIKey)
		}
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	client := litellm.New(provider, litellm.WithDefaults(cfg.MaxTokens, cfg.Temperature))
	return &Client{client: client, cfg: cfg, remaining: cfg.CallCap}, nil
}

func (c *Client) RemainingCalls() int {
	return c.remaining
}

func (c *Client) GenerateTeamUpdate(ctx context.Context, req UpdateRequest) (string, error) {
	if c.remaining == 0 {
		return "", ErrBudgetExhausted
	}

	prompt := req.PromptOverride
	if prompt == "" {
		prompt = insightPrompt(req)
	}

	litellmReq := &litellm.Request{
		Model: c.cfg.Model,
		Messages: []litellm.Message{
			{Role: "user", Content: prompt},
		},
		Temperature: litellm.Float64Ptr(c.cfg.Temperature),
		MaxTokens:   litellm.IntPtr(c.cfg.MaxTokens),
	}

	var content string
	operation := func() error {
		resp, err := c.client.Complete(ctx, litellmReq)
		if err != nil {
			return err
		}
		content = resp.Content
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("%w: %s", ErrTransport, err)
	}

	c.remaining--
	return strings.TrimSpace(content), nil
}

// insightPrompt asks for one short in-character observation about the team's
// current footing; the default prompt when no override is supplied.
func insightPrompt(req UpdateRequest) string {
	memberLines := make([]string, 0, len(req.Team))
	for _, member := range req.Team {
		memberLines = append(memberLines, fmt.Sprintf("%s (%s)", member.Name, member.Role))
	}
	var b strings.Builder
	b.WriteString("You are moderating a hackathon simulation. ")
	b.WriteString("Given the current team context, write one concise insight (max 3 sentences) ")
	b.WriteString("that reflects probable team conversation. ")
	b.WriteString("Focus on next steps, critique, or validation pressure.\n\n")
	fmt.Fprintf(&b, "Phase: %s\n", req.Phase)
	fmt.Fprintf(&b, "Team: %s\n", strings.Join(memberLines, ", "))
	fmt.Fprintf(&b, "Idea: %s\n", req.Idea)
	fmt.Fprintf(&b, "Metrics snapshot: %s\n", snapshot(req.Metrics))
	fmt.Fprintf(&b, "Score snapshot: %s\n", snapshotOr(req.Scores, "Not yet scored"))
	b.WriteString("Insight:")
	return b.String()
}

func snapshot(values map[string]float64) string {
	return snapshotOr(values, "Not supplied")
}

func snapshotOr(values map[string]float64, empty string) string {
	if len(values) == 0 {
		return empty
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return empty
	}
	return string(raw)
}
