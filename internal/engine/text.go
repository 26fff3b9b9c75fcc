package engine

import "strings"

// tokenize lowercases text, splits on every non-alphanumeric rune, and
// returns the unique tokens in first-seen order. The order is what keeps
// merge and slug output reproducible for a fixed input.
func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isAlnum(r) {
			b.WriteRune(toLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Slugify normalizes free text into the hyphenated lowercase form used as the
// idea deduplication key: alphanumerics are lowercased, every other rune
// becomes a hyphen, and leading/trailing hyphens are stripped.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isAlnum(r) {
			b.WriteRune(toLower(r))
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func firstSentence(text string) string {
	if idx := strings.Index(text, "."); idx >= 0 {
		return text[:idx]
	}
	return text
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
