package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"hacksim/internal/domain"
)

const (
	DefaultPersonality = "Curious Collaborator"
	DefaultMotivation  = "Build something meaningful."
	DefaultXPLevel     = domain.ExperienceMid
)

var ErrEmptyRoster = errors.New("profile file must include at least one profile")

var validate = validator.New()

// fileEntry is one roster row as it appears in a profile JSON file. Name,
// role, and idea are required; the rest default.
type fileEntry struct {
	Name        string   `json:"name" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Idea        string   `json:"idea" validate:"required"`
	Skills      []string `json:"skills"`
	Personality string   `json:"personality"`
	Motivation  string   `json:"motivation"`
	XPLevel     string   `json:"xp_level" validate:"omitempty,oneof=junior mid senior"`
}

// Load returns the built-in roster when path is empty, otherwise reads a JSON
// list of profiles. Every malformed entry fails with a descriptive error
// before any simulation starts.
func Load(path string) ([]domain.AgentProfile, error) {
	if path == "" {
		return Defaults(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file %s: %w", path, err)
	}
	var entries []fileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("profile file must contain a list of profiles: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyRoster
	}

	profiles := make([]domain.AgentProfile, 0, len(entries))
	for i, entry := range entries {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("profile entry %d: %w", i, err)
		}
		profiles = append(profiles, toProfile(entry))
	}
	return profiles, nil
}

func toProfile(entry fileEntry) domain.AgentProfile {
	personality := entry.Personality
	if personality == "" {
		personality = DefaultPersonality
	}
	motivation := entry.Motivation
	if motivation == "" {
		motivation = DefaultMotivation
	}
	level := domain.ExperienceLevel(entry.XPLevel)
	if level == "" {
		level = DefaultXPLevel
	}
	return domain.AgentProfile{
		Name:        entry.Name,
		Role:        entry.Role,
		Idea:        entry.Idea,
		Skills:      entry.Skills,
		Personality: personality,
		Motivation:  motivation,
		XPLevel:     level,
	}
}

// Defaults is the stock sixteen-person roster used when no profile file is
// supplied.
func Defaults() []domain.AgentProfile {
	return []domain.AgentProfile{
		{
			Name:        "Avery Chen",
			Role:        "Product Strategist",
			Idea:        "AI concierge that distills founder brainstorms into validated persona briefs within minutes.",
			Skills:      []string{"product", "user_research", "storytelling", "facilitation"},
			Personality: "Visionary Facilitator",
			Motivation:  "Unlock stronger ideas through collaborative synthesis.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Diego Martinez",
			Role:        "Full-Stack Engineer",
			Idea:        "Predictive ops dashboard for AI agents building MVPs from Slack.",
			Skills:      []string{"fullstack", "devops", "automation", "python", "ai_integrations"},
			Personality: "Analytical Builder",
			Motivation:  "Ship resilient infra that scales.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Nia Roberts",
			Role:        "UX Researcher",
			Idea:        "High-speed customer interview simulator driven by real transcripts.",
			Skills:      []string{"user_research", "insights", "prototyping", "facilitation"},
			Personality: "Empathetic Challenger",
			Motivation:  "Surface hidden user truths fast.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Jonah Patel",
			Role:        "Data Scientist",
			Idea:        "Realtime experimentation engine ranking hackathon pitches by signal.",
			Skills:      []string{"data_science", "ml", "experimentation", "python"},
			Personality: "Curious Analyst",
			Motivation:  "Quantify what teams feel is subjective.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Priya Singh",
			Role:        "AI Engineer",
			Idea:        "Agent orchestrator that critiques hackathon output against product heuristics.",
			Skills:      []string{"ml", "prompt_engineering", "python", "evaluation"},
			Personality: "Focused Architect",
			Motivation:  "Keep AI output grounded in product reality.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Leo Wang",
			Role:        "Growth Hacker",
			Idea:        "Referral loop kit that prototypes go-to-market motions in hours.",
			Skills:      []string{"growth", "analytics", "copywriting", "no_code"},
			Personality: "Energetic Catalyst",
			Motivation:  "Find traction stories quickly.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Maya Thompson",
			Role:        "Product Designer",
			Idea:        "Adaptive whiteboard that scores ideation sessions for novelty vs. focus.",
			Skills:      []string{"design", "storytelling", "systems_thinking", "prototyping"},
			Personality: "Synthesis Oriented",
			Motivation:  "Translate fuzzy concepts into tangible flows.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Raj Kulkarni",
			Role:        "Backend Engineer",
			Idea:        "Infra accelerator bundling auth, payments, and analytics for weekend hacks.",
			Skills:      []string{"backend", "python", "systems", "security"},
			Personality: "Calm Optimizer",
			Motivation:  "Reduce toil for builders.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Lena Fischer",
			Role:        "Operations Lead",
			Idea:        "Team health monitor that forecasts burnout during intense build cycles.",
			Skills:      []string{"operations", "enablement", "analytics", "coaching"},
			Personality: "Supportive Realist",
			Motivation:  "Keep teams aligned and sustainable.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Quinn O'Neal",
			Role:        "Creative Technologist",
			Idea:        "Mixed reality pitch room that play-tests product walkthroughs with judges.",
			Skills:      []string{"creative_coding", "design", "storytelling", "hardware"},
			Personality: "Bold Experimenter",
			Motivation:  "Make ideas feel tangible fast.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Sara Ibrahim",
			Role:        "AI Product Manager",
			Idea:        "Adaptive backlog prioritizer using real-time customer sentiment signals.",
			Skills:      []string{"product", "ai_integrations", "ops", "communication"},
			Personality: "Outcome Driver",
			Motivation:  "Ship the right thing next.",
			XPLevel:     domain.ExperienceSenior,
		},
		{
			Name:        "Noah Brooks",
			Role:        "Front-End Engineer",
			Idea:        "Component library that turns user discovery notes into live prototypes.",
			Skills:      []string{"frontend", "design_systems", "typescript", "ux"},
			Personality: "Detail Advocate",
			Motivation:  "Deliver tight experiences fast.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Isabella Rossi",
			Role:        "BizOps Strategist",
			Idea:        "Week-one KPI simulator that stress tests monetization stories.",
			Skills:      []string{"ops", "finance", "market_analysis", "storytelling"},
			Personality: "Strategic Connector",
			Motivation:  "Bridge product, market, and numbers.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Malik Johnson",
			Role:        "Community Builder",
			Idea:        "Dynamic contributor graph that pairs hackers by energy and goals.",
			Skills:      []string{"community", "facilitation", "growth", "storytelling"},
			Personality: "Inclusive Spark",
			Motivation:  "Ensure everyone finds their lane.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Camila Duarte",
			Role:        "AI Ethics Researcher",
			Idea:        "Bias radar that flags risk zones in AI-driven hackathon ideas.",
			Skills:      []string{"ethics", "research", "analysis", "communication"},
			Personality: "Principled Mediator",
			Motivation:  "Ship responsibly without slowing momentum.",
			XPLevel:     domain.ExperienceMid,
		},
		{
			Name:        "Ethan Park",
			Role:        "DevRel Engineer",
			Idea:        "Demo autopilot that records feature walkthroughs and generates docs instantly.",
			Skills:      []string{"developer_relations", "content", "automation", "frontend"},
			Personality: "Enthusiastic Storyteller",
			Motivation:  "Help teams craft compelling demos.",
			XPLevel:     domain.ExperienceMid,
		},
	}
}
