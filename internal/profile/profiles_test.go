package profile

import (
	"os"
	"path/filepath"
	"testing"

	"hacksim/internal/domain"
)

func TestDefaultsRoster(t *testing.T) {
	roster := Defaults()
	if len(roster) != 16 {
		t.Fatalf("expected 16 built-in profiles, got %d", len(roster))
	}
	seen := make(map[string]struct{})
	for _, p := range roster {
		if p.Name == "" || p.Role == "" || p.Idea == "" {
			t.Fatalf("profile %+v missing required fields", p)
		}
		if len(p.Skills) == 0 {
			t.Fatalf("profile %s has no skills", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			t.Fatalf("duplicate profile name %s", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	roster, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(roster) != len(Defaults()) {
		t.Fatalf("expected default roster, got %d profiles", len(roster))
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	raw := `[
		{"name": "Test Person", "role": "Engineer", "idea": "An idea."},
		{"name": "Second Person", "role": "Designer", "idea": "Another idea.", "xp_level": "senior", "personality": "Bold Experimenter"}
	]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	roster, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(roster))
	}
	first := roster[0]
	if first.Personality != DefaultPersonality {
		t.Fatalf("expected default personality, got %q", first.Personality)
	}
	if first.Motivation != DefaultMotivation {
		t.Fatalf("expected default motivation, got %q", first.Motivation)
	}
	if first.XPLevel != DefaultXPLevel {
		t.Fatalf("expected default experience level, got %q", first.XPLevel)
	}
	if roster[1].XPLevel != domain.ExperienceSenior {
		t.Fatalf("explicit experience level lost: %q", roster[1].XPLevel)
	}
}

func TestLoadRejectsInvalidEntries(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.json")
	if err := os.WriteFile(missing, []byte(`[{"name": "No Idea", "role": "Engineer"}]`), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	if _, err := Load(missing); err == nil {
		t.Fatalf("expected error for profile without an idea")
	}

	badLevel := filepath.Join(dir, "level.json")
	if err := os.WriteFile(badLevel, []byte(`[{"name": "A", "role": "B", "idea": "C", "xp_level": "wizard"}]`), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	if _, err := Load(badLevel); err == nil {
		t.Fatalf("expected error for unknown experience level")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Fatalf("expected error for empty roster")
	}
}
