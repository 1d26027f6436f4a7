package conflict

import (
	"strings"
	"unicode"
)

// normalize lowercases text and strips punctuation so that surface
// formatting never affects similarity.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// wordSet builds the token set of normalized text, excluding tokens of
// two characters or fewer (articles, pronouns, stray digits).
func wordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(normalize(text)) {
		if len(w) <= 2 {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// similarity is the Jaccard index over the two word sets. Two texts
// with identical normalized content score 1.0; two texts sharing no
// tokens score 0. Two empty sets also score 1.0 by the identical
// content rule.
func similarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		if normalize(a) == normalize(b) {
			return 1.0
		}
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
