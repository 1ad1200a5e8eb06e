package textstats

import (
	"strings"
	"unicode/utf8"
)

// Stats holds basic document statistics.
type Stats struct {
	WordCount     int `json:"word_count"`
	CharCount     int `json:"char_count"`
	SentenceCount int `json:"sentence_count"`
}

// Collect counts words (whitespace split), characters (runes) and sentences.
func Collect(text string) Stats {
	return Stats{
		WordCount:     len(strings.Fields(text)),
		CharCount:     utf8.RuneCountInString(text),
		SentenceCount: len(SplitSentences(text)),
	}
}

// SplitSentences splits text at '.', '!' and '?' and drops blank fragments.
// Fragments are returned untrimmed.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, isTerminator)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
