package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

// MergeIdeas blends two idea strings: shared tokens become the headline, up
// to five non-shared tokens are appended, and the result is spliced into a
// sentence referencing both original first-sentence fragments.
func MergeIdeas(ideaA, ideaB string) string {
	tokensA := tokenize(ideaA)
	tokensB := tokenize(ideaB)
	setB := tokenSet(tokensB)

	var headline []string
	for _, tok := range tokensA {
		if _, ok := setB[tok]; ok {
			headline = append(headline, tok)
			if len(headline) == 3 {
				break
			}
		}
	}
	shared := tokenSet(headline)
	for _, tok := range tokensA {
		if _, ok := setB[tok]; ok {
			shared[tok] = struct{}{}
		}
	}

	var extra []string
	for _, tok := range append(append([]string{}, tokensA...), tokensB...) {
		if _, ok := shared[tok]; ok {
			continue
		}
		extra = append(extra, tok)
		if len(extra) == 5 {
			break
		}
	}

	stitched := strings.Join(append(headline, extra...), " ")
	base := firstSentence(ideaA)
	addition := firstSentence(ideaB)
	return fmt.Sprintf("%s Now enriched with %s to create a %s play.", base, strings.ToLower(addition), stitched)
}

// MergeGroupIdeas folds a group's ideas left to right into one blended idea.
func MergeGroupIdeas(ideas []string) string {
	if len(ideas) == 0 {
		return ""
	}
	merged := ideas[0]
	for _, idea := range ideas[1:] {
		merged = MergeIdeas(merged, idea)
	}
	return merged
}

var pivotAudiences = []string{
	"founders", "ops teams", "hackathon judges", "early adopters", "product teams", "researchers",
}

var pivotStyles = []string{
	"concierge", "copilot", "radar", "playbook", "studio", "control loop",
}

// pivotIdea rewrites an idea toward a randomly chosen audience and style.
// Two rng draws, always in audience-then-style order.
func pivotIdea(idea string, rng *rand.Rand) string {
	audience := pivotAudiences[rng.Intn(len(pivotAudiences))]
	style := pivotStyles[rng.Intn(len(pivotStyles))]
	base := firstSentence(idea)
	return fmt.Sprintf("%s, repositioned as a %s for %s with a sharper wedge.", base, style, audience)
}
