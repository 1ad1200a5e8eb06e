// Package nlp defines the model-backed capabilities the metadata pipeline consumes:
// entity recognition, abstractive summarization and language detection.
// Implementations are constructed by the caller and injected; the pipeline never
// loads a model itself.
package nlp

import (
	"context"
	"strings"
)

// Label is the closed set of entity categories the pipeline understands.
type Label int

const (
	// LabelOther covers every category the pipeline does not act on.
	LabelOther Label = iota
	// LabelPerson is a person name.
	LabelPerson
	// LabelDate is an absolute or relative date expression.
	LabelDate
	// LabelOrg is a company, agency or institution.
	LabelOrg
	// LabelGPE is a country, city or state.
	LabelGPE
)

// String returns the canonical upper-case name of the label.
func (l Label) String() string {
	switch l {
	case LabelPerson:
		return "PERSON"
	case LabelDate:
		return "DATE"
	case LabelOrg:
		return "ORG"
	case LabelGPE:
		return "GPE"
	default:
		return "OTHER"
	}
}

// ParseLabel decodes a recognizer's label string. Common aliases from NER toolkits
// (PER, ORGANIZATION, LOC, TIME) are folded into the closed set.
func ParseLabel(s string) Label {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PERSON", "PER":
		return LabelPerson
	case "DATE", "TIME":
		return LabelDate
	case "ORG", "ORGANIZATION", "ORGANISATION":
		return LabelOrg
	case "GPE", "LOC", "LOCATION":
		return LabelGPE
	default:
		return LabelOther
	}
}

// EntityMention is a labeled span of text.
type EntityMention struct {
	Text  string
	Label Label
}

// EntityRecognizer finds entity mentions in text.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]EntityMention, error)
}

// Summarizer produces an abstractive summary bounded by minLength and maxLength tokens.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLength, maxLength int) (string, error)
}

// LanguageDetector reports whether text is English. ok is false when the detector
// cannot decide with confidence.
type LanguageDetector interface {
	IsEnglish(text string) (english bool, ok bool)
}

// Filter returns the mentions carrying label, in input order.
func Filter(mentions []EntityMention, label Label) []EntityMention {
	var out []EntityMention
	for _, m := range mentions {
		if m.Label == label {
			out = append(out, m)
		}
	}
	return out
}
