package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

const monthNames = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sept?(?:ember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?`

// Ordered most specific first; later patterns only claim text earlier ones left free.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b` + monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `,?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`\b` + monthNames + `,?\s+\d{4}\b`),
}

var (
	nameSequence = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z]\.)?(?:\s+[A-Z][a-z]+){1,2}\b`)
	lowerWord    = regexp.MustCompile(`\b[a-z][a-z]+\b`)
)

var orgMarkers = map[string]bool{
	"university": true, "institute": true, "department": true, "college": true,
	"school": true, "inc": true, "corp": true, "corporation": true, "ltd": true,
	"company": true, "agency": true, "ministry": true, "bank": true, "foundation": true,
	"laboratory": true, "labs": true, "group": true, "council": true,
}

// Capitalized words that head sections or name calendar units, never people.
var notNameWords = map[string]bool{
	"abstract": true, "introduction": true, "conclusion": true, "conclusions": true,
	"chapter": true, "section": true, "figure": true, "table": true, "appendix": true,
	"summary": true, "results": true, "discussion": true, "methods": true, "references": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true, "january": true, "february": true, "march": true,
	"april": true, "june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,
}

// PatternRecognizer is a dependency-free recognizer for DATE, PERSON and ORG mentions
// built from regular expressions. It is the offline stand-in for a statistical model
// and is deliberately conservative.
type PatternRecognizer struct{}

// NewPatternRecognizer returns a PatternRecognizer.
func NewPatternRecognizer() *PatternRecognizer {
	return &PatternRecognizer{}
}

type span struct {
	start, end int
	mention    EntityMention
}

// Recognize implements EntityRecognizer. Mentions are returned in text order.
func (p *PatternRecognizer) Recognize(ctx context.Context, text string) ([]EntityMention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var spans []span
	overlaps := func(s, e int) bool {
		for _, sp := range spans {
			if s < sp.end && e > sp.start {
				return true
			}
		}
		return false
	}
	for _, re := range datePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			spans = append(spans, span{loc[0], loc[1], EntityMention{Text: text[loc[0]:loc[1]], Label: LabelDate}})
		}
	}
	common := commonWords(text)
	for _, loc := range nameSequence.FindAllStringIndex(text, -1) {
		if overlaps(loc[0], loc[1]) {
			continue
		}
		candidate := text[loc[0]:loc[1]]
		label, ok := classifyNameSequence(candidate, common)
		if !ok {
			continue
		}
		spans = append(spans, span{loc[0], loc[1], EntityMention{Text: candidate, Label: label}})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := make([]EntityMention, len(spans))
	for i, sp := range spans {
		out[i] = sp.mention
	}
	return out, nil
}

// commonWords collects the words written in lower case somewhere in text.
func commonWords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range lowerWord.FindAllString(text, -1) {
		out[w] = true
	}
	return out
}

// classifyNameSequence labels a run of capitalized words. A run containing a
// word that text also spells in lower case is a capitalized phrase such as a
// title, not a name.
func classifyNameSequence(candidate string, common map[string]bool) (Label, bool) {
	words := strings.Fields(candidate)
	org := false
	for _, w := range words {
		lw := strings.ToLower(strings.TrimSuffix(w, "."))
		if len(lw) == 1 {
			continue // middle initial
		}
		if IsStopWord(lw) || notNameWords[lw] {
			return LabelOther, false
		}
		if orgMarkers[lw] {
			org = true
			continue
		}
		if common[lw] {
			return LabelOther, false
		}
	}
	if org {
		return LabelOrg, true
	}
	return LabelPerson, true
}
