package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Simulation.Runs != 5 || cfg.Simulation.ConversationRounds != 6 {
		t.Fatalf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if cfg.Simulation.MinTeamSize != 2 || cfg.Simulation.MaxTeamSize != 4 {
		t.Fatalf("unexpected team size defaults: %+v", cfg.Simulation)
	}
	if cfg.Simulation.Mode != "conversation" {
		t.Fatalf("unexpected default mode %q", cfg.Simulation.Mode)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.CallCap != 10 {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Server.Addr != ":8090" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("empty path should return defaults untouched")
	}
}

func TestLoadPartialFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
[simulation]
runs = 9
seed = 1234

[llm]
model = "gemini-pro-latest"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.Runs != 9 || cfg.Simulation.Seed != 1234 {
		t.Fatalf("overrides not applied: %+v", cfg.Simulation)
	}
	if cfg.Simulation.ConversationRounds != 6 {
		t.Fatalf("untouched defaults lost: %+v", cfg.Simulation)
	}
	if cfg.LLM.Model != "gemini-pro-latest" {
		t.Fatalf("llm override not applied: %+v", cfg.LLM)
	}
	if cfg.Path != path {
		t.Fatalf("resolved path not recorded: %q", cfg.Path)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestParseTeamSize(t *testing.T) {
	low, high, err := ParseTeamSize("2-4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if low != 2 || high != 4 {
		t.Fatalf("expected 2-4, got %d-%d", low, high)
	}

	for _, bad := range []string{"4-2", "0-3", "23", "a-b", "1-2-3"} {
		if _, _, err := ParseTeamSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
