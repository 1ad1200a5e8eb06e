//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/metamuse/pkg/utils"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEmbedder runs a sentence-embedding model through ONNX Runtime.
// It requires CGO and the onnxruntime shared library.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	cache      *EmbeddingCache
	tokenizer  Tokenizer

	// Bound to the session; Embed overwrites inputs and reads output in place.
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIDs  *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// NewONNXEmbedder loads the model at modelPath. InitializeEnvironment is called if not already done.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*ONNXEmbedder, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize ONNX runtime: %w", err)
		}
	}

	e := &ONNXEmbedder{
		dimensions: dimensions,
		maxTokens:  maxTokens,
		cache:      NewEmbeddingCache(cacheSize),
		tokenizer:  &SimpleTokenizer{},
	}
	if err := e.allocate(); err != nil {
		_ = e.Close()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{e.inputIDs, e.attentionMask, e.tokenTypeIDs},
		[]ort.ArbitraryTensor{e.output},
		nil,
	)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("create ONNX session from %s: %w", modelPath, err)
	}
	e.session = session
	return e, nil
}

func (e *ONNXEmbedder) allocate() error {
	inputShape := ort.NewShape(1, int64(e.maxTokens))
	var err error
	if e.inputIDs, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		return fmt.Errorf("allocate input_ids: %w", err)
	}
	if e.attentionMask, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		return fmt.Errorf("allocate attention_mask: %w", err)
	}
	if e.tokenTypeIDs, err = ort.NewEmptyTensor[int64](inputShape); err != nil {
		return fmt.Errorf("allocate token_type_ids: %w", err)
	}
	if e.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(e.dimensions))); err != nil {
		return fmt.Errorf("allocate output: %w", err)
	}
	return nil
}

// Embed returns the L2-normalized embedding for text, using the cache when possible.
// Inference is not interruptible; ctx is only checked before the session runs.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.inputIDs.GetData(), ids)
	copy(e.attentionMask.GetData(), mask)
	copy(e.tokenTypeIDs.GetData(), types)
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}

	vec := make([]float32, e.dimensions)
	copy(vec, e.output.GetData())
	utils.NormalizeL2(vec)
	e.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch embeds texts one by one; the session has a fixed batch size of 1.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and tensors. Safe to call on a partially built embedder.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attentionMask, e.tokenTypeIDs} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
	}
	e.inputIDs, e.attentionMask, e.tokenTypeIDs, e.output = nil, nil, nil, nil
	return err
}
