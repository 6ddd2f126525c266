package forms

import (
	"strings"
	"unicode"
)

// requiredMarkers are label suffixes that vary between renders of the same
// question and must not leak into the cache key.
var requiredMarkers = []string{
	"(required)",
	"(optional)",
	"required",
	"*",
}

// Signature normalizes a label into the cache key used by the answer store.
// Two semantically identical prompts on different steps or different job
// postings normalize to the same signature; normalization is best-effort and
// an imperfect result only reduces the cache hit rate.
func Signature(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))

	// Drop trailing required/optional markers before stripping punctuation so
	// "Years of experience *" and "Years of experience" collide on purpose.
	for changed := true; changed; {
		changed = false
		for _, marker := range requiredMarkers {
			if strings.HasSuffix(s, marker) {
				s = strings.TrimSpace(strings.TrimSuffix(s, marker))
				changed = true
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// collapseWhitespace joins the visible text fragments of a label into a
// single coherent string.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
