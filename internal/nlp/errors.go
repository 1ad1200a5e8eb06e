package nlp

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrMalformedInput is returned by capabilities that reject their input
// (empty text, undecodable bytes, over-long requests).
var ErrMalformedInput = errors.New("malformed input")

// ModelError reports a failure inside a model backend.
type ModelError struct {
	Op     string
	Status int // HTTP status when the backend is remote, 0 otherwise
	Err    error
}

func (e *ModelError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: model error (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: model error: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// FailureKind classifies a capability error so callers pick a fallback deliberately.
type FailureKind int

const (
	// FailureNone means there was no error.
	FailureNone FailureKind = iota
	// FailureTimeout means the call exceeded its deadline.
	FailureTimeout
	// FailureMalformedInput means the backend rejected the input.
	FailureMalformedInput
	// FailureModel covers backend and transport errors.
	FailureModel
)

// String returns a short name for logging.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureMalformedInput:
		return "malformed_input"
	default:
		return "model"
	}
}

// Classify maps err to a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, ErrMalformedInput) {
		return FailureMalformedInput
	}
	return FailureModel
}
