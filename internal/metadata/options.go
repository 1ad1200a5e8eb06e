package metadata

import (
	"github.com/hyperjump/metamuse/internal/config"
	"github.com/hyperjump/metamuse/internal/discourse"
	"github.com/hyperjump/metamuse/internal/embedding"
	"github.com/hyperjump/metamuse/internal/heuristics"
	"github.com/hyperjump/metamuse/internal/lexical"
	"github.com/hyperjump/metamuse/internal/nlp"
	"go.uber.org/zap"
)

// Key-phrase strategies.
const (
	StrategyGraph     = config.StrategyGraph
	StrategyEmbedding = config.StrategyEmbedding
)

// Options holds the tunables of every extractor.
type Options struct {
	Author               heuristics.AuthorConfig
	Date                 heuristics.DateConfig
	Strategy             string
	TopK                 int
	MaxCandidates        int
	ReadabilityThreshold float64
	Summary              discourse.SummaryConfig
	Topics               lexical.TopicMap
	LanguageGate         bool
}

// Capabilities are the model-backed collaborators. Any of them may be nil; the
// matching extractor then uses its non-model rules only.
type Capabilities struct {
	Recognizer nlp.EntityRecognizer
	Summarizer nlp.Summarizer
	Embedder   embedding.Embedder
	Language   nlp.LanguageDetector
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Each run logs at debug level under its own run id.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithKeyPhraser overrides the strategy chosen from Options.
func WithKeyPhraser(k lexical.KeyPhraser) Option {
	return func(p *Pipeline) {
		if k != nil {
			p.keyPhraser = k
		}
	}
}

// OptionsFromConfig maps the pipeline section of cfg onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	pc := cfg.Pipeline
	return Options{
		Author: heuristics.AuthorConfig{
			Loose:      pc.Author.Pattern == config.AuthorLoose,
			LineWindow: pc.Author.LineWindow,
			NERWindow:  pc.Author.NERWindow,
			Timeout:    cfg.Models.Timeout,
		},
		Date: heuristics.DateConfig{
			CurrentYearFallback: pc.Date.OnNotFound == config.DateCurrentYear,
			NERWindow:           pc.Date.NERWindow,
			Timeout:             cfg.Models.Timeout,
		},
		Strategy:             pc.KeyPhrase.Strategy,
		TopK:                 pc.KeyPhrase.TopK,
		MaxCandidates:        pc.KeyPhrase.MaxCandidates,
		ReadabilityThreshold: pc.Readability.Threshold,
		Summary: discourse.SummaryConfig{
			MinWords:   pc.Summary.MinWords,
			InputChars: pc.Summary.InputChars,
			MinLength:  pc.Summary.MinLength,
			MaxLength:  pc.Summary.MaxLength,
			ShortMode:  discourse.ShortMode(pc.Summary.ShortMode),
			Timeout:    cfg.Models.Timeout,
		},
		Topics:       lexical.TopicMapFrom(pc.Topics),
		LanguageGate: pc.LanguageGate,
	}
}
