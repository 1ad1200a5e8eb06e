// Package discourse classifies whole-document properties: sentiment,
// readability and an abstractive summary.
package discourse

import (
	"strings"

	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/hyperjump/metamuse/internal/nlp"
)

// Sentiment is the overall polarity of a document.
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

// negationScope is how many tokens after a negator can be flipped.
const negationScope = 3

var tokenizer = unicodetok.NewUnicodeTokenizer()

// SentimentClassifier counts positive and negative lexicon hits.
type SentimentClassifier struct {
	language nlp.LanguageDetector
}

// NewSentimentClassifier returns a classifier. A non-nil detector makes the
// classifier return Neutral for text it confidently identifies as non-English.
func NewSentimentClassifier(language nlp.LanguageDetector) *SentimentClassifier {
	return &SentimentClassifier{language: language}
}

// Classify returns Positive or Negative by majority of lexicon hits, Neutral on a tie.
func (c *SentimentClassifier) Classify(text string) Sentiment {
	if c.language != nil {
		if english, ok := c.language.IsEnglish(text); ok && !english {
			return Neutral
		}
	}

	pos, neg := 0, 0
	negateFor := 0
	for _, tok := range tokenizer.Tokenize([]byte(text)) {
		word := strings.ToLower(string(tok.Term))
		word = strings.ReplaceAll(word, "’", "'")
		if negators[word] || strings.HasSuffix(word, "n't") {
			negateFor = negationScope
			continue
		}
		p := englishLexicon.polarity(word)
		if p != 0 && negateFor > 0 {
			p = -p
			negateFor = 0
		} else if negateFor > 0 {
			negateFor--
		}
		switch {
		case p > 0:
			pos++
		case p < 0:
			neg++
		}
	}

	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}
