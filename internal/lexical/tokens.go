// Package lexical ranks key phrases and maps them onto topics.
package lexical

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// KeyPhraser extracts ranked key phrases from normalized text. The most relevant
// phrase comes first. Empty text yields an empty slice and no error.
type KeyPhraser interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

var tokenizer = unicodetok.NewUnicodeTokenizer()

// word is a lower-cased token. breakBefore is set when punctuation separates it
// from the previous token.
type word struct {
	term        string
	breakBefore bool
}

func tokenize(text string) []word {
	data := []byte(text)
	stream := tokenizer.Tokenize(data)
	out := make([]word, 0, len(stream))
	prevEnd := 0
	for i, tok := range stream {
		gap := data[prevEnd:tok.Start]
		out = append(out, word{
			term:        strings.ToLower(string(tok.Term)),
			breakBefore: i == 0 || hasPunct(gap),
		})
		prevEnd = tok.End
	}
	return out
}

func hasPunct(gap []byte) bool {
	for len(gap) > 0 {
		r, size := utf8.DecodeRune(gap)
		if !unicode.IsSpace(r) {
			return true
		}
		gap = gap[size:]
	}
	return false
}
