package engine

import (
	"testing"

	"hacksim/internal/domain"
	"hacksim/internal/profile"
)

func TestCompatibilityNeverNegative(t *testing.T) {
	roster := profile.Defaults()
	for i := range roster {
		for j := range roster {
			if i == j {
				continue
			}
			score := CompatibilityScore(roster[i], roster[j])
			if score < 0 {
				t.Fatalf("compatibility for %s/%s is negative: %f", roster[i].Name, roster[j].Name, score)
			}
		}
	}
}

func TestCompatibilityIdeaOverlapRaisesScore(t *testing.T) {
	base := domain.AgentProfile{
		Name:        "A",
		Role:        "Engineer",
		Skills:      []string{"backend"},
		Personality: "Analytical Builder",
		XPLevel:     domain.ExperienceMid,
	}
	aligned := base
	aligned.Name = "B"
	aligned.Skills = []string{"frontend"}
	aligned.Idea = "predictive dashboard for founders"
	disjoint := aligned
	disjoint.Idea = "workout tracker"

	base.Idea = "predictive dashboard for hackathon judges"
	if with, without := CompatibilityScore(base, aligned), CompatibilityScore(base, disjoint); with <= without {
		t.Fatalf("expected overlapping ideas to score higher: %f <= %f", with, without)
	}
}

func TestCompatibilityMixedExperienceBonus(t *testing.T) {
	a := domain.AgentProfile{
		Name:        "A",
		Skills:      []string{"design"},
		Personality: "Calm Realist",
		Idea:        "shared idea",
		XPLevel:     domain.ExperienceSenior,
	}
	same := a
	same.Name = "B"
	mixed := same
	mixed.XPLevel = domain.ExperienceJunior

	delta := CompatibilityScore(a, mixed) - CompatibilityScore(a, same)
	if delta < 0.499 || delta > 0.501 {
		t.Fatalf("expected mixed experience bonus of 0.5, got %f", delta)
	}
}

func TestCompatibilitySymmetric(t *testing.T) {
	roster := profile.Defaults()
	a, b := roster[0], roster[1]
	ab, ba := CompatibilityScore(a, b), CompatibilityScore(b, a)
	if diff := ab - ba; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("compatibility not symmetric: %f vs %f", ab, ba)
	}
}
