//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// errONNXUnavailable is returned by every stub method.
var errONNXUnavailable = errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errONNXUnavailable
}

// Embed always fails in the stub build.
func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errONNXUnavailable
}

// EmbedBatch always fails in the stub build.
func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errONNXUnavailable
}

// Dimensions returns 0 in the stub build.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op in the stub build.
func (e *ONNXEmbedder) Close() error { return nil }
