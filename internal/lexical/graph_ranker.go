package lexical

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/metamuse/internal/nlp"
)

// GraphRanker is a RAKE ranker: text is split into candidate phrases at stop
// words and punctuation, each word is scored by degree/frequency over the
// co-occurrence graph, and a phrase scores the sum of its words.
type GraphRanker struct {
	topK int
}

// NewGraphRanker returns a ranker. topK defaults to 5.
func NewGraphRanker(topK int) *GraphRanker {
	if topK <= 0 {
		topK = 5
	}
	return &GraphRanker{topK: topK}
}

// Extract implements KeyPhraser.
func (g *GraphRanker) Extract(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	phrases := splitPhrases(tokenize(text))
	if len(phrases) == 0 {
		return []string{}, nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += len(p)
		}
	}

	type scored struct {
		phrase string
		score  float64
	}
	seen := make(map[string]bool)
	var ranked []scored
	for _, p := range phrases {
		key := strings.Join(p, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		var s float64
		for _, w := range p {
			s += float64(degree[w]) / float64(freq[w])
		}
		ranked = append(ranked, scored{key, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	k := min(g.topK, len(ranked))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].phrase
	}
	return out, nil
}

// splitPhrases groups consecutive content words; stop words and punctuation end a phrase.
func splitPhrases(words []word) [][]string {
	var phrases [][]string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			phrases = append(phrases, cur)
			cur = nil
		}
	}
	for _, w := range words {
		if w.breakBefore {
			flush()
		}
		if nlp.IsStopWord(w.term) {
			flush()
			continue
		}
		cur = append(cur, w.term)
	}
	flush()
	return phrases
}
