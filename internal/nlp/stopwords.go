package nlp

import (
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

var englishStopWords = loadStopWords()

func loadStopWords() analysis.TokenMap {
	m := analysis.NewTokenMap()
	if err := m.LoadBytes(en.EnglishStopWords); err != nil {
		panic("nlp: load english stop words: " + err.Error())
	}
	return m
}

// IsStopWord reports whether word is in bleve's English stop list. Case-insensitive.
func IsStopWord(word string) bool {
	return englishStopWords[strings.ToLower(word)]
}
