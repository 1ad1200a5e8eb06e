// Package textstats normalizes decoded document text and computes basic counts over it.
package textstats

import (
	"strings"
	"unicode"
)

// Document carries both forms of a decoded text. Raw keeps line structure for the
// extractors that read it (title, author); Text is the normalized form everything
// else consumes.
type Document struct {
	Raw  string
	Text string
}

// NewDocument normalizes raw once and keeps both forms.
func NewDocument(raw string) Document {
	return Document{Raw: raw, Text: Normalize(raw)}
}

// Normalize trims text and collapses every run of whitespace, newlines included,
// into a single space.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
