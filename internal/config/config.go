// Package config provides configuration loading and structs for metamuse.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Models    ModelsConfig    `yaml:"models"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// ModelsConfig points at the external model service that serves entity
// recognition, summarization and OCR. An empty Endpoint disables all three.
type ModelsConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	OCR      *bool         `yaml:"ocr"`
}

// OCREnabled reports whether scanned documents should be sent to the model service.
// Defaults to true when an endpoint is configured.
func (m *ModelsConfig) OCREnabled() bool {
	if m.Endpoint == "" {
		return false
	}
	if m.OCR != nil {
		return *m.OCR
	}
	return true
}

// EmbeddingConfig selects the embedder used by the embedding key-phrase strategy.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // none, onnx, ollama
	ModelPath  string `yaml:"model_path"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// PipelineConfig holds the tunables of every extractor.
type PipelineConfig struct {
	Author       AuthorConfig        `yaml:"author"`
	Date         DateConfig          `yaml:"date"`
	KeyPhrase    KeyPhraseConfig     `yaml:"keyphrase"`
	Readability  ReadabilityConfig   `yaml:"readability"`
	Summary      SummaryConfig       `yaml:"summary"`
	LanguageGate bool                `yaml:"language_gate"`
	Topics       map[string][]string `yaml:"topics"`
}

// AuthorConfig controls the byline pattern and entity-recognition window.
type AuthorConfig struct {
	Pattern    string `yaml:"pattern"` // strict or loose
	LineWindow int    `yaml:"line_window"`
	NERWindow  int    `yaml:"ner_window"`
}

// DateConfig controls the date fallback.
type DateConfig struct {
	OnNotFound string `yaml:"on_not_found"` // sentinel or current_year
	NERWindow  int    `yaml:"ner_window"`
}

// KeyPhraseConfig selects the ranking strategy.
type KeyPhraseConfig struct {
	Strategy      string `yaml:"strategy"` // graph or embedding
	TopK          int    `yaml:"top_k"`
	MaxCandidates int    `yaml:"max_candidates"`
}

// ReadabilityConfig holds the words-per-sentence threshold.
type ReadabilityConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// SummaryConfig controls the summarization gate.
type SummaryConfig struct {
	MinWords   int    `yaml:"min_words"`
	InputChars int    `yaml:"input_chars"`
	MinLength  int    `yaml:"min_length"`
	MaxLength  int    `yaml:"max_length"`
	ShortMode  string `yaml:"short_mode"` // truncate, full or notice
}

// WatchConfig holds drop-folder settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	OutputDir   string   `yaml:"output_dir"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes cfg as YAML to path, replacing the file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects enumerated settings with unknown values. Empty values are allowed
// and replaced by ApplyDefaults.
func Validate(cfg *Config) error {
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"embedding.provider", cfg.Embedding.Provider, []string{EmbeddingNone, EmbeddingONNX, EmbeddingOllama}},
		{"pipeline.author.pattern", cfg.Pipeline.Author.Pattern, []string{AuthorStrict, AuthorLoose}},
		{"pipeline.date.on_not_found", cfg.Pipeline.Date.OnNotFound, []string{DateSentinel, DateCurrentYear}},
		{"pipeline.keyphrase.strategy", cfg.Pipeline.KeyPhrase.Strategy, []string{StrategyGraph, StrategyEmbedding}},
		{"pipeline.summary.short_mode", cfg.Pipeline.Summary.ShortMode, []string{ShortTruncate, ShortFull, ShortNotice}},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("invalid %s %q (want one of %s)", c.field, c.value, strings.Join(c.allowed, ", "))
		}
	}
	for name := range cfg.Pipeline.Topics {
		if !contains(TopicNames, name) {
			return fmt.Errorf("invalid pipeline.topics key %q (want one of %s)", name, strings.Join(TopicNames, ", "))
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
