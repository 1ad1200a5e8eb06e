package lexical

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/metamuse/internal/nlp"
)

const maxNgram = 3

// candidates returns distinct 1..3-grams in first-occurrence order. An n-gram
// never spans punctuation and never starts or ends with a stop word. Single-rune
// tokens are skipped.
func candidates(text string, limit int) []string {
	words := tokenize(text)
	seen := make(map[string]bool)
	var out []string
	for i := range words {
		if !usable(words[i].term) {
			continue
		}
		for n := 1; n <= maxNgram && i+n <= len(words); n++ {
			if n > 1 && words[i+n-1].breakBefore {
				break
			}
			last := words[i+n-1].term
			if !usable(last) {
				continue
			}
			terms := make([]string, n)
			for j := 0; j < n; j++ {
				terms[j] = words[i+j].term
			}
			phrase := strings.Join(terms, " ")
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			out = append(out, phrase)
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}

func usable(term string) bool {
	return utf8.RuneCountInString(term) > 1 && !nlp.IsStopWord(term)
}
