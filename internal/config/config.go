package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	LLM        LLMConfig        `toml:"llm"`
	Server     ServerConfig     `toml:"server"`
	Path       string           `toml:"-"`
	Raw        string           `toml:"-"`
}

type SimulationConfig struct {
	Runs               int     `toml:"runs"`
	ConversationRounds int     `toml:"conversation_rounds"`
	MinTeamSize        int     `toml:"min_team_size"`
	MaxTeamSize        int     `toml:"max_team_size"`
	PivotBaseChance    float64 `toml:"pivot_base_chance"`
	ResearchTrigger    float64 `toml:"research_trigger"`
	Seed               int64   `toml:"seed"`
	Mode               string  `toml:"mode"`
}

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	CallCap     int     `toml:"call_cap"`
}

type ServerConfig struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
}

func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			Runs:               5,
			ConversationRounds: 6,
			MinTeamSize:        2,
			MaxTeamSize:        4,
			PivotBaseChance:    0.35,
			ResearchTrigger:    0.45,
			Seed:               42,
			Mode:               "conversation",
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-flash-latest",
			Temperature: 0.9,
			MaxTokens:   512,
			CallCap:     10,
		},
		Server: ServerConfig{
			Addr:   ":8090",
			DBPath: "data/hacksim.db",
		},
	}
}

// Load reads a TOML config, starting from the defaults so a partial file only
// overrides what it names. An empty path returns the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	resolved := path
	if strings.HasPrefix(resolved, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed := strings.TrimPrefix(resolved, "~")
		trimmed = strings.TrimPrefix(trimmed, "/")
		resolved = filepath.Join(home, trimmed)
	}
	resolved = filepath.Clean(resolved)

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", resolved, err)
	}
	if _, err := toml.Decode(string(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}
	cfg.Path = resolved
	cfg.Raw = string(raw)
	return cfg, nil
}

// APIKey resolves the collaborator API key from the environment, loading a
// local .env file first if one exists.
func APIKey() string {
	_ = godotenv.Load()
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "LLM_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// ParseTeamSize parses a "min-max" range such as "2-4".
func ParseTeamSize(value string) (int, int, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("team size must be in 'min-max' format, got %q", value)
	}
	var low, high int
	if _, err := fmt.Sscanf(parts[0], "%d", &low); err != nil {
		return 0, 0, fmt.Errorf("parse team size minimum %q: %w", parts[0], err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &high); err != nil {
		return 0, 0, fmt.Errorf("parse team size maximum %q: %w", parts[1], err)
	}
	if low < 1 || high < low {
		return 0, 0, fmt.Errorf("invalid team size range %d-%d", low, high)
	}
	return low, high, nil
}
