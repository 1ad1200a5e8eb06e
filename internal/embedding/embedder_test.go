package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/metamuse/pkg/utils"
)

func TestMockEmbedder_deterministicAndNormalized(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "cloud infrastructure")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "cloud infrastructure")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d", i)
		}
	}
	if norm := utils.Cosine(a, a); math.Abs(norm-1) > 1e-6 {
		t.Errorf("self similarity = %f", norm)
	}
}

func TestMockEmbedder_sharedWordsAreSimilar(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	doc, _ := e.Embed(ctx, "cloud computing and cloud storage services")
	related, _ := e.Embed(ctx, "cloud storage")
	unrelated, _ := e.Embed(ctx, "medieval poetry")
	if utils.Cosine(doc, related) <= utils.Cosine(doc, unrelated) {
		t.Errorf("related phrase should score higher: %f vs %f",
			utils.Cosine(doc, related), utils.Cosine(doc, unrelated))
	}
}

func TestMockEmbedder_defaults(t *testing.T) {
	if NewMockEmbedder(0).Dimensions() != 384 {
		t.Error("default dimensions should be 384")
	}
	out, err := NewMockEmbedder(8).EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil || len(out) != 2 {
		t.Fatalf("EmbedBatch: %v, %d", err, len(out))
	}
}

func TestOllamaEmbedder(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		resp := ollamaEmbedResponse{}
		for range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{3, 4})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("all-minilm", 2, 10, WithBaseURL(srv.URL+"/"))
	defer e.Close()
	ctx := context.Background()
	out, err := e.EmbedBatch(ctx, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || math.Abs(float64(out[0][0])-0.6) > 1e-6 {
		t.Errorf("out = %v", out)
	}
	if _, err := e.Embed(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected cached second call, server saw %d calls", got)
	}
}

func TestOllamaEmbedder_errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()
	e := NewOllamaEmbedder("missing", 2, 0, WithBaseURL(srv.URL))
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 404")
	}

	wrongDims := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1, 2, 3}}})
	}))
	defer wrongDims.Close()
	e = NewOllamaEmbedder("m", 2, 0, WithBaseURL(wrongDims.URL))
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
