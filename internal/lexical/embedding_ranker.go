package lexical

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/metamuse/internal/embedding"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

// EmbeddingRanker scores n-gram candidates by cosine similarity between the
// candidate embedding and the whole-document embedding.
type EmbeddingRanker struct {
	embedder      embedding.Embedder
	topK          int
	maxCandidates int
	logger        *zap.Logger
}

// NewEmbeddingRanker returns a ranker. topK defaults to 7 and maxCandidates to 300.
func NewEmbeddingRanker(e embedding.Embedder, topK, maxCandidates int, logger *zap.Logger) *EmbeddingRanker {
	if topK <= 0 {
		topK = 7
	}
	if maxCandidates <= 0 {
		maxCandidates = 300
	}
	return &EmbeddingRanker{embedder: e, topK: topK, maxCandidates: maxCandidates, logger: utils.OrNop(logger)}
}

// Extract implements KeyPhraser.
func (r *EmbeddingRanker) Extract(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	cands := candidates(text, r.maxCandidates)
	if len(cands) == 0 {
		return []string{}, nil
	}

	docVec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}
	vecs, err := r.embedder.EmbedBatch(ctx, cands)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}

	scores := make([]float64, len(cands))
	order := make([]int, len(cands))
	for i, v := range vecs {
		scores[i] = utils.Cosine(docVec, v)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	k := min(r.topK, len(order))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = cands[order[i]]
	}
	r.logger.Debug("ranked key phrases",
		zap.Int("candidates", len(cands)), zap.Strings("top", out))
	return out, nil
}
