package heuristics

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hyperjump/metamuse/internal/nlp"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

// DateNotFound is the sentinel returned when no year can be found.
const DateNotFound = "Not found"

const minEntityYear = 1900

var (
	bareYear   = regexp.MustCompile(`\b(19[7-9]\d|20[0-2]\d)\b`)
	entityYear = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// DateConfig tunes the date extractor. Zero values take the defaults.
type DateConfig struct {
	// CurrentYearFallback returns the current year instead of DateNotFound.
	CurrentYearFallback bool
	NERWindow           int
	Timeout             time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// DateExtractor finds the most recent plausible year mentioned in a document.
type DateExtractor struct {
	cfg        DateConfig
	recognizer nlp.EntityRecognizer
	logger     *zap.Logger
}

// NewDateExtractor returns an extractor. recognizer may be nil.
func NewDateExtractor(cfg DateConfig, recognizer nlp.EntityRecognizer, logger *zap.Logger) *DateExtractor {
	if cfg.NERWindow <= 0 {
		cfg.NERWindow = 5000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DateExtractor{cfg: cfg, recognizer: recognizer, logger: utils.OrNop(logger)}
}

// Extract returns a four-digit year as a string, or the configured fallback.
func (d *DateExtractor) Extract(ctx context.Context, text string) string {
	if year := maxYear(bareYear.FindAllString(text, -1)); year > 0 {
		return strconv.Itoa(year)
	}
	if year := d.fromEntities(ctx, text); year > 0 {
		return strconv.Itoa(year)
	}
	if d.cfg.CurrentYearFallback {
		return strconv.Itoa(d.cfg.Now().Year())
	}
	return DateNotFound
}

func (d *DateExtractor) fromEntities(ctx context.Context, text string) int {
	if d.recognizer == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	mentions, err := d.recognizer.Recognize(ctx, utils.RunePrefix(text, d.cfg.NERWindow))
	if err != nil {
		d.logger.Debug("date entity recognition failed",
			zap.String("failure", nlp.Classify(err).String()), zap.Error(err))
		return 0
	}

	maxAllowed := d.cfg.Now().Year() + 1
	best := 0
	for _, m := range nlp.Filter(mentions, nlp.LabelDate) {
		matched := entityYear.FindString(m.Text)
		if matched == "" {
			continue
		}
		year, _ := strconv.Atoi(matched)
		// Prefer the parsed year, unless the parser read the digits as something else.
		if t, err := dateparse.ParseAny(m.Text); err == nil && strings.Contains(m.Text, strconv.Itoa(t.Year())) {
			year = t.Year()
		}
		if year < minEntityYear || year > maxAllowed {
			continue
		}
		if year > best {
			best = year
		}
	}
	return best
}

func maxYear(years []string) int {
	best := 0
	for _, y := range years {
		if n, err := strconv.Atoi(y); err == nil && n > best {
			best = n
		}
	}
	return best
}
