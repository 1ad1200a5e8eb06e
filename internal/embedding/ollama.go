package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/metamuse/pkg/utils"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	ollamaEmbedPath    = "/api/embed"
	defaultHTTPTimeout = 30 * time.Second
)

// OllamaOption configures an OllamaEmbedder.
type OllamaOption func(*OllamaEmbedder)

// WithBaseURL points the embedder at a non-default Ollama server.
func WithBaseURL(baseURL string) OllamaOption {
	return func(e *OllamaEmbedder) {
		if baseURL != "" {
			e.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(e *OllamaEmbedder) {
		if c != nil {
			e.http = c
		}
	}
}

// OllamaEmbedder calls an Ollama server's embed endpoint.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	http       *http.Client
	cache      *EmbeddingCache
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error"`
}

// NewOllamaEmbedder returns an embedder for model. dimensions is what the model
// produces; responses of another size are rejected.
func NewOllamaEmbedder(model string, dimensions, cacheSize int, opts ...OllamaOption) *OllamaEmbedder {
	e := &OllamaEmbedder{
		baseURL:    defaultOllamaURL,
		model:      model,
		dimensions: dimensions,
		http:       &http.Client{Timeout: defaultHTTPTimeout},
		cache:      NewEmbeddingCache(cacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns the normalized embedding for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds the uncached texts in a single request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, t := range texts {
		if v, ok := e.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := e.post(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(vecs), len(missing))
	}
	for j, v := range vecs {
		if e.dimensions > 0 && len(v) != e.dimensions {
			return nil, fmt.Errorf("ollama embedding has %d dimensions, want %d", len(v), e.dimensions)
		}
		utils.NormalizeL2(v)
		e.cache.Set(missing[j], v)
		out[missingIdx[j]] = v
	}
	return out, nil
}

func (e *OllamaEmbedder) post(ctx context.Context, input []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+ollamaEmbedPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ollama API error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var decoded ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("ollama API error: %s", decoded.Error)
	}
	return decoded.Embeddings, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases idle connections.
func (e *OllamaEmbedder) Close() error {
	e.http.CloseIdleConnections()
	return nil
}
