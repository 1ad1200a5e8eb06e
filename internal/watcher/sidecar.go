package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/metamuse/internal/metadata"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

// Extractor recovers text from a document file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Generator infers a metadata record from text.
type Generator interface {
	Generate(ctx context.Context, raw string) metadata.Record
}

// SidecarName is the file name a record for source is stored under.
func SidecarName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_metadata.json"
}

// SidecarWriter is a Handler that writes each document's record as JSON into
// a single output directory.
type SidecarWriter struct {
	outputDir string
	extractor Extractor
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewSidecarWriter returns a writer. timeout bounds extraction and inference
// of one file; zero means two minutes.
func NewSidecarWriter(outputDir string, extractor Extractor, generator Generator, timeout time.Duration, logger *zap.Logger) *SidecarWriter {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &SidecarWriter{
		outputDir: outputDir,
		extractor: extractor,
		generator: generator,
		timeout:   timeout,
		logger:    utils.OrNop(logger),
	}
}

// Process implements Handler.
func (s *SidecarWriter) Process(path string) {
	if err := s.Write(context.Background(), path); err != nil {
		s.logger.Warn("metadata not written", zap.String("path", path), zap.Error(err))
	}
}

// Write extracts path, generates its record and stores it atomically.
func (s *SidecarWriter) Write(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	rec := s.generator.Generate(ctx, text)
	target, err := SaveRecord(s.outputDir, path, rec)
	if err != nil {
		return err
	}
	s.logger.Info("metadata written", zap.String("source", path), zap.String("output", target))
	return nil
}

// SaveRecord writes rec for source into outputDir under SidecarName(source),
// replacing any previous record atomically. It returns the written path.
func SaveRecord(outputDir, source string, rec metadata.Record) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(outputDir, SidecarName(source))
	tmp, err := os.CreateTemp(outputDir, ".metamuse-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename %s: %w", target, err)
	}
	return target, nil
}

// Forget implements Handler by deleting the record of a removed source.
func (s *SidecarWriter) Forget(path string) {
	target := filepath.Join(s.outputDir, SidecarName(path))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("metadata not removed", zap.String("output", target), zap.Error(err))
		return
	}
	s.logger.Debug("metadata removed", zap.String("source", path))
}
