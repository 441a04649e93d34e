// Package textnorm implements the single normalization rule shared by the
// domain classifier and the factor extractor, so the two components never
// drift out of sync on what "the same text" means.
package textnorm

import "strings"

// Normalize lowercases text, strips apostrophes (so "can't" becomes
// "cant" rather than splitting into two tokens), replaces every other
// non-alphanumeric rune with a space, and collapses runs of whitespace.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	lower = strings.ReplaceAll(lower, "'", "")
	lower = strings.ReplaceAll(lower, "’", "") // right single quotation mark

	var b strings.Builder
	b.Grow(len(lower))
	lastWasSpace := false
	for _, r := range lower {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastWasSpace = false
		default:
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits already-normalized text on whitespace.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
