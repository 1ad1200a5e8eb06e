package discourse

import (
	"context"
	"strings"
	"time"

	"github.com/hyperjump/metamuse/internal/nlp"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

// ShortMode selects what a short document gets instead of a model summary.
type ShortMode string

const (
	// ShortTruncate returns the text, cut to 500 runes with "..." appended.
	ShortTruncate ShortMode = "truncate"
	// ShortFull returns the text unchanged.
	ShortFull ShortMode = "full"
	// ShortNotice returns TooShortNotice.
	ShortNotice ShortMode = "notice"
)

// TooShortNotice is the ShortNotice summary.
const TooShortNotice = "Document too short for meaningful summary"

const truncateRunes = 500

// SummaryConfig tunes the summary gate. Zero values take the defaults.
type SummaryConfig struct {
	MinWords   int
	InputChars int
	MinLength  int
	MaxLength  int
	ShortMode  ShortMode
	Timeout    time.Duration
}

// SummaryGate decides between a model summary and a cheap fallback.
type SummaryGate struct {
	cfg        SummaryConfig
	summarizer nlp.Summarizer
	logger     *zap.Logger
}

// NewSummaryGate returns a gate. summarizer may be nil, in which case every
// document gets the truncated fallback.
func NewSummaryGate(cfg SummaryConfig, summarizer nlp.Summarizer, logger *zap.Logger) *SummaryGate {
	if cfg.MinWords <= 0 {
		cfg.MinWords = 100
	}
	if cfg.InputChars <= 0 {
		cfg.InputChars = 4100
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = 30
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 150
	}
	if cfg.ShortMode == "" {
		cfg.ShortMode = ShortTruncate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SummaryGate{cfg: cfg, summarizer: summarizer, logger: utils.OrNop(logger)}
}

// Summarize returns a summary of text. It never fails: model errors degrade to
// the truncated text.
func (g *SummaryGate) Summarize(ctx context.Context, text string) string {
	if len(strings.Fields(text)) < g.cfg.MinWords {
		return g.short(text)
	}
	if g.summarizer == nil {
		return utils.Truncate(text, truncateRunes)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	summary, err := g.summarizer.Summarize(ctx, utils.RunePrefix(text, g.cfg.InputChars), g.cfg.MinLength, g.cfg.MaxLength)
	if err != nil {
		g.logger.Warn("summarization failed, using truncated text",
			zap.String("failure", nlp.Classify(err).String()), zap.Error(err))
		return utils.Truncate(text, truncateRunes)
	}
	if summary = strings.TrimSpace(summary); summary == "" {
		g.logger.Debug("summarizer returned empty output")
		return utils.Truncate(text, truncateRunes)
	}
	return summary
}

func (g *SummaryGate) short(text string) string {
	switch g.cfg.ShortMode {
	case ShortFull:
		return text
	case ShortNotice:
		return TooShortNotice
	default:
		return utils.Truncate(text, truncateRunes)
	}
}
