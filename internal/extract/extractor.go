// Package extract recovers plain text from document files. Structural extraction is
// tried first; scanned pages and images are handed to an optional OCR capability.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for extensions the extractor cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoText is returned when a document has no text layer and OCR is unavailable.
	ErrNoText = errors.New("no extractable text")
)

// OCR recognizes text in page images and scanned documents.
type OCR interface {
	RecognizeText(ctx context.Context, content []byte, mimeType string) (string, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOCR enables the OCR fallback.
func WithOCR(ocr OCR) Option {
	return func(e *Extractor) {
		e.ocr = ocr
	}
}

// WithLogger sets the logger used for fallback decisions.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Extractor extracts plain text from document files.
type Extractor struct {
	ocr    OCR
	logger *zap.Logger
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supported reports whether ext (with leading dot) can be decoded.
// Image formats count only when OCR is configured.
func (e *Extractor) Supported(ext string) bool {
	ext = strings.ToLower(ext)
	switch ext {
	case ".txt", ".md", ".rst", ".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".html", ".htm":
		return true
	}
	_, isImage := imageTypes[ext]
	return isImage && e.ocr != nil
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(ctx, content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). An empty ext sniffs the content type.
func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	if ext == "" {
		ext = sniffExtension(content)
		e.logger.Debug("sniffed content type", zap.String("ext", ext))
	}
	switch ext {
	case ".pdf":
		return e.extractPDF(ctx, content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractWithCat(content, ext)
	case ".xlsx":
		return extractExcel(content)
	case ".html", ".htm":
		return extractHTML(content)
	case ".txt", ".md", ".rst":
		return extractPlain(content)
	}
	if mimeType, ok := imageTypes[ext]; ok {
		return e.recognize(ctx, content, mimeType)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
