// Package heuristics holds the structural extractors: title, author and date.
// Title and author read the raw text because line boundaries carry signal;
// date reads the normalized text.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/metamuse/internal/textstats"
)

var sectionHeading = regexp.MustCompile(`(?i)\b(?:abstract|introduction)\b`)

// UntitledDocument is returned when no title candidate qualifies.
const UntitledDocument = "Untitled Document"

const (
	minTitleLen    = 10
	maxTitleLen    = 120
	minSentenceLen = 20
	maxSentenceLen = 150
)

// Title picks a title from raw text, trying in order: the line preceding an
// "Abstract"/"Introduction" heading, the first mixed-case line of plausible
// length, then the first sentence unless it opens with an all-caps banner.
func Title(raw string) string {
	lines := nonEmptyLines(raw)

	for i, line := range lines {
		if !sectionHeading.MatchString(line) {
			continue
		}
		if i > 0 && inRange(lines[i-1], minTitleLen, maxTitleLen) {
			return lines[i-1]
		}
		break
	}

	for _, line := range lines {
		if inRange(line, minTitleLen, maxTitleLen) && !isAllUpper(line) {
			return line
		}
	}

	first, _, _ := strings.Cut(raw, ".")
	if opening := nonEmptyLines(first); len(opening) > 0 && isAllUpper(opening[0]) {
		return UntitledDocument
	}
	if first = textstats.Normalize(first); inRange(first, minSentenceLen, maxSentenceLen) {
		return first
	}
	return UntitledDocument
}

// nonEmptyLines returns the trimmed non-blank lines of s.
func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func inRange(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && n <= hi
}

// isAllUpper reports whether s has at least one cased letter and no lower-case ones.
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
