package engine

import (
	"math/rand"
	"testing"

	"hacksim/internal/profile"
)

func TestPlanConversationGroupsPartitionsPool(t *testing.T) {
	states := newRunStates(profile.Defaults())
	rng := rand.New(rand.NewSource(21))

	groups := PlanConversationGroups(states, rng)

	seen := make(map[string]int)
	for _, group := range groups {
		if len(group) < 1 || len(group) > 3 {
			t.Fatalf("group size out of range: %d", len(group))
		}
		for _, state := range group {
			seen[state.Profile.Name]++
		}
	}
	if len(seen) != len(states) {
		t.Fatalf("expected every participant scheduled once, got %d of %d", len(seen), len(states))
	}
	for name, count := range seen {
		if count != 1 {
			t.Fatalf("%s scheduled %d times", name, count)
		}
	}
}

func TestAssembleTeamsPartitionsPool(t *testing.T) {
	states := newRunStates(profile.Defaults())
	rng := rand.New(rand.NewSource(5))

	teams := AssembleTeams(states, rng, 2, 4)

	seen := make(map[string]int)
	for _, team := range teams {
		if len(team) > 4 {
			t.Fatalf("team larger than max size: %d", len(team))
		}
		for _, state := range team {
			seen[state.Profile.Name]++
		}
	}
	if len(seen) != len(states) {
		t.Fatalf("expected every participant on a team, got %d of %d", len(seen), len(states))
	}
	for name, count := range seen {
		if count != 1 {
			t.Fatalf("%s assigned to %d teams", name, count)
		}
	}
}

func TestAssembleTeamsFixedSize(t *testing.T) {
	states := newRunStates(profile.Defaults())
	rng := rand.New(rand.NewSource(9))

	teams := AssembleTeams(states, rng, 2, 2)
	for _, team := range teams {
		if len(team) != 2 {
			t.Fatalf("fixed size 2 produced a team of %d", len(team))
		}
	}
}

func TestGroupCompatibilitySingletonNeutral(t *testing.T) {
	states := newRunStates(profile.Defaults()[:1])
	if got := groupCompatibility(states); got != 0.5 {
		t.Fatalf("singleton group should score 0.5, got %f", got)
	}
}
