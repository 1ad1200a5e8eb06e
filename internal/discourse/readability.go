package discourse

import (
	"strings"

	"github.com/hyperjump/metamuse/internal/textstats"
)

// Readability is a coarse reading-difficulty class.
type Readability string

const (
	Technical Readability = "Technical"
	Standard  Readability = "Standard"
	Unknown   Readability = "Unknown"
)

// DefaultReadabilityThreshold is the words-per-sentence average above which text is Technical.
const DefaultReadabilityThreshold = 25

// ClassifyReadability compares the average sentence length with threshold.
// Text with no sentences is Unknown.
func ClassifyReadability(text string, threshold float64) Readability {
	sentences := textstats.SplitSentences(text)
	if len(sentences) == 0 {
		return Unknown
	}
	avg := float64(len(strings.Fields(text))) / float64(len(sentences))
	if avg > threshold {
		return Technical
	}
	return Standard
}
