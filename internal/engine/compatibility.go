package engine

import (
	"strings"

	"hacksim/internal/domain"
)

// personalityWeights assigns affinity weight to known personality-trait
// keywords. Tokens outside the table fall back to defaultTraitWeight.
var personalityWeights = map[string]float64{
	"visionary":    1.2,
	"facilitator":  1.0,
	"analytical":   0.9,
	"builder":      1.1,
	"empathetic":   1.0,
	"challenger":   0.7,
	"focused":      0.9,
	"architect":    1.0,
	"energetic":    0.8,
	"catalyst":     0.9,
	"synthesis":    0.8,
	"calm":         0.7,
	"optimizer":    0.8,
	"supportive":   0.8,
	"realist":      0.7,
	"bold":         1.1,
	"experimenter": 1.0,
	"outcome":      0.9,
	"driver":       0.9,
	"detail":       0.8,
	"advocate":     0.8,
	"strategic":    0.9,
	"connector":    0.9,
	"inclusive":    0.9,
	"spark":        1.0,
	"principled":   0.8,
	"mediator":     0.7,
	"enthusiastic": 0.9,
	"storyteller":  0.9,
}

const defaultTraitWeight = 0.5

// CompatibilityScore rates how well two participants pair up. Skill overlap
// and diversity both contribute (a pair with complementary skills can outrank
// a pair with identical ones), personality keywords and idea token overlap
// add affinity, and mixed experience levels earn a flat bonus. The result is
// never negative.
func CompatibilityScore(a, b domain.AgentProfile) float64 {
	aSkills := tokenSet(a.Skills)
	bSkills := tokenSet(b.Skills)
	overlap := 0
	for skill := range aSkills {
		if _, ok := bSkills[skill]; ok {
			overlap++
		}
	}
	diversity := len(aSkills) + len(bSkills) - 2*overlap

	score := float64(overlap)*0.6 + float64(diversity)*0.9
	score += personalityAffinity(a.Personality, b.Personality)
	score += ideaAlignment(a.Idea, b.Idea)
	if a.XPLevel != b.XPLevel {
		score += 0.5
	}
	return score
}

func personalityAffinity(a, b string) float64 {
	tokensA := traitTokens(a)
	tokensB := traitTokens(b)
	affinity := 0.0
	for _, ta := range tokensA {
		for _, tb := range tokensB {
			if ta == tb {
				affinity += 1.1 * traitWeight(ta)
			} else if wa, okA := personalityWeights[ta]; okA {
				if wb, okB := personalityWeights[tb]; okB {
					affinity += 0.2 * (wa + wb) / 2
				}
			}
		}
	}
	return affinity
}

func traitTokens(personality string) []string {
	fields := strings.Fields(personality)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(strings.Trim(f, " ,.-")))
	}
	return tokens
}

func traitWeight(token string) float64 {
	if w, ok := personalityWeights[token]; ok {
		return w
	}
	return defaultTraitWeight
}

func ideaAlignment(a, b string) float64 {
	tokensA := tokenSet(tokenize(a))
	tokensB := tokenSet(tokenize(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}
	overlap := 0
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		// Small floor so disjoint ideas never fully kill compatibility.
		return 0.1
	}
	union := len(tokensA) + len(tokensB) - overlap
	jaccard := float64(overlap) / float64(union)
	return 1.0 + jaccard*1.5
}
