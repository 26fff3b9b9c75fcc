package engine

import (
	"math/rand"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AI Concierge!", "ai-concierge"},
		{"  predictive  ops dashboard ", "predictive--ops-dashboard"},
		{"---", ""},
		{"Same", "same"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Fatalf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenizeDedupesInFirstSeenOrder(t *testing.T) {
	tokens := tokenize("Alpha beta ALPHA gamma beta")
	want := []string{"alpha", "beta", "gamma"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tokens)
		}
	}
}

func TestMergeIdeasReferencesBothSides(t *testing.T) {
	merged := MergeIdeas(
		"Predictive dashboard for founders.",
		"Interview simulator for founders.",
	)
	if !strings.Contains(merged, "Now enriched with") {
		t.Fatalf("merged idea missing blend phrasing: %q", merged)
	}
	if !strings.Contains(merged, "Predictive dashboard for founders") {
		t.Fatalf("merged idea dropped the base sentence: %q", merged)
	}
	if !strings.Contains(strings.ToLower(merged), "interview simulator") {
		t.Fatalf("merged idea dropped the addition: %q", merged)
	}
}

func TestMergeGroupIdeas(t *testing.T) {
	if got := MergeGroupIdeas(nil); got != "" {
		t.Fatalf("empty group should merge to empty string, got %q", got)
	}
	if got := MergeGroupIdeas([]string{"solo idea"}); got != "solo idea" {
		t.Fatalf("single idea should pass through, got %q", got)
	}
	merged := MergeGroupIdeas([]string{"idea one.", "idea two.", "idea three."})
	if merged == "" {
		t.Fatalf("three-way merge produced empty idea")
	}
}

func TestPivotIdeaDeterministicForSeed(t *testing.T) {
	first := pivotIdea("Predictive dashboard.", rand.New(rand.NewSource(4)))
	second := pivotIdea("Predictive dashboard.", rand.New(rand.NewSource(4)))
	if first != second {
		t.Fatalf("same seed pivoted differently: %q vs %q", first, second)
	}
	if !strings.Contains(first, "repositioned as a") {
		t.Fatalf("pivot missing repositioning phrasing: %q", first)
	}
}
