package engine

import (
	"math/rand"

	"hacksim/internal/domain"
)

// Assessment is the multi-factor quality read on one idea. Every sub-metric
// is capped at its documented ceiling so jitter can never run the composite
// away.
type Assessment struct {
	Novelty       float64
	Feasibility   float64
	UserValue     float64
	Clarity       float64
	Defensibility float64
	Composite     float64
}

func (a Assessment) Map() map[string]float64 {
	return map[string]float64{
		"novelty":       a.Novelty,
		"feasibility":   a.Feasibility,
		"user_value":    a.UserValue,
		"clarity":       a.Clarity,
		"defensibility": a.Defensibility,
		"composite":     a.Composite,
	}
}

const (
	noveltyCap       = 1.2
	feasibilityCap   = 1.15
	userValueCap     = 1.2
	clarityCap       = 1.1
	defensibilityCap = 1.0
)

var buzzTerms = map[string]struct{}{
	"ai": {}, "agent": {}, "automation": {}, "realtime": {}, "predictive": {}, "dynamic": {},
}

var defensibilityTerms = map[string]struct{}{
	"platform": {}, "loop": {}, "dashboard": {}, "engine": {}, "simulator": {}, "monitor": {},
}

var audienceTerms = map[string]struct{}{
	"founder": {}, "team": {}, "user": {}, "customer": {}, "judge": {}, "product": {},
}

// AssessIdea scores an idea for a team. Fully reproducible for a fixed rng
// stream position: the four jitter draws happen in a fixed order.
func AssessIdea(idea string, team []domain.AgentProfile, rng *rand.Rand) Assessment {
	tokens := tokenSet(tokenize(idea))
	skillPool := make(map[string]struct{})
	for _, member := range team {
		for _, skill := range member.Skills {
			skillPool[skill] = struct{}{}
		}
	}

	novelty := 0.6 + float64(countIn(tokens, buzzTerms))*0.2 + uniform(rng, -0.05, 0.1)
	feasibility := 0.7 + float64(len(skillPool))/20 + uniform(rng, -0.05, 0.05)
	userValue := 0.55 + float64(countIn(tokens, audienceTerms))*0.15 + uniform(rng, -0.05, 0.1)
	clarity := 0.5 + minFloat(float64(len(idea)), 200)/400 + uniform(rng, -0.05, 0.1)
	defensibility := 0.4 + float64(countIn(tokens, defensibilityTerms))*0.12

	novelty = minFloat(novelty, noveltyCap)
	feasibility = minFloat(feasibility, feasibilityCap)
	userValue = minFloat(userValue, userValueCap)
	clarity = minFloat(clarity, clarityCap)
	defensibility = minFloat(defensibility, defensibilityCap)

	composite := novelty*0.25 + feasibility*0.25 + userValue*0.2 + clarity*0.15 + defensibility*0.15

	return Assessment{
		Novelty:       novelty,
		Feasibility:   feasibility,
		UserValue:     userValue,
		Clarity:       clarity,
		Defensibility: defensibility,
		Composite:     composite,
	}
}

// recompose refreshes the composite after a phase mutates a sub-metric.
func (a *Assessment) recompose() {
	a.Composite = a.Novelty*0.25 + a.Feasibility*0.25 + a.UserValue*0.2 + a.Clarity*0.15 + a.Defensibility*0.15
}

func countIn(tokens map[string]struct{}, vocab map[string]struct{}) int {
	n := 0
	for tok := range tokens {
		if _, ok := vocab[tok]; ok {
			n++
		}
	}
	return n
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	return minFloat(maxFloat(v, lo), hi)
}
