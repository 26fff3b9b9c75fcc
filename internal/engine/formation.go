package engine

import (
	"math/rand"
	"sort"
)

// secondPickChance is the probability that a conversation group grows from
// two members to three.
const secondPickChance = 0.35

// PlanConversationGroups partitions the pool into transient groups of one to
// three for a single round. The pool is shuffled with the run's rng, then
// each unengaged participant anchors a group: the remaining candidates are
// ranked by compatibility to the anchor (ties keep pool order via a stable
// sort), the top candidate always joins, and the runner-up joins with a fixed
// probability. A lone trailing participant forms a group of one.
func PlanConversationGroups(states []*AgentState, rng *rand.Rand) [][]*AgentState {
	available := make([]*AgentState, len(states))
	copy(available, states)
	rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	var scheduled [][]*AgentState
	engaged := make(map[string]struct{})

	for _, anchor := range available {
		if _, ok := engaged[anchor.Profile.Name]; ok {
			continue
		}
		engaged[anchor.Profile.Name] = struct{}{}

		type candidate struct {
			score float64
			state *AgentState
		}
		var candidates []candidate
		for _, other := range available {
			if other.Profile.Name == anchor.Profile.Name {
				continue
			}
			if _, ok := engaged[other.Profile.Name]; ok {
				continue
			}
			candidates = append(candidates, candidate{
				score: CompatibilityScore(anchor.Profile, other.Profile),
				state: other,
			})
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})

		group := []*AgentState{anchor}
		if len(candidates) > 0 {
			group = append(group, candidates[0].state)
			engaged[candidates[0].state.Profile.Name] = struct{}{}
			if len(candidates) > 1 && rng.Float64() < secondPickChance {
				group = append(group, candidates[1].state)
				engaged[candidates[1].state.Profile.Name] = struct{}{}
			}
		}
		scheduled = append(scheduled, group)
	}
	return scheduled
}

// AssembleTeams greedily builds persistent teams for a full run. The shuffled
// pool is consumed captain-first: each captain draws a target size uniformly
// from [minSize, maxSize], then the remaining pool is repeatedly re-ranked by
// mean compatibility to the forming team and the best candidate is appended
// until the target is met or the pool runs dry. A team that runs out of
// candidates is finalized at whatever size it reached.
func AssembleTeams(states []*AgentState, rng *rand.Rand, minSize, maxSize int) [][]*AgentState {
	pool := make([]*AgentState, len(states))
	copy(pool, states)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	var teams [][]*AgentState
	for len(pool) > 0 {
		captain := pool[0]
		pool = pool[1:]
		target := minSize
		if maxSize > minSize {
			target = minSize + rng.Intn(maxSize-minSize+1)
		}

		team := []*AgentState{captain}
		for len(team) < target && len(pool) > 0 {
			bestIdx := 0
			bestScore := meanTeamCompatibility(team, pool[0])
			for i := 1; i < len(pool); i++ {
				if score := meanTeamCompatibility(team, pool[i]); score > bestScore {
					bestScore = score
					bestIdx = i
				}
			}
			team = append(team, pool[bestIdx])
			pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
		}
		teams = append(teams, team)
	}
	return teams
}

func meanTeamCompatibility(team []*AgentState, candidate *AgentState) float64 {
	total := 0.0
	for _, member := range team {
		total += CompatibilityScore(member.Profile, candidate.Profile)
	}
	return total / float64(len(team))
}

// groupCompatibility averages pairwise compatibility across a group; a group
// of one gets a neutral 0.5.
func groupCompatibility(group []*AgentState) float64 {
	if len(group) == 1 {
		return 0.5
	}
	total := 0.0
	pairs := 0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			total += CompatibilityScore(group[i].Profile, group[j].Profile)
			pairs++
		}
	}
	return total / float64(pairs)
}
