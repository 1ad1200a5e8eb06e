package heuristics

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/hyperjump/metamuse/internal/nlp"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
)

// UnknownAuthor is returned when no rule finds an author.
const UnknownAuthor = "Unknown Author"

const markerWindow = 1000

var (
	strictByline = regexp.MustCompile(`^(\p{Lu}[\p{L}'.]*(?:\s+\p{Lu}[\p{L}'.]*){1,3})\s+-\s+\S`)
	looseByline  = regexp.MustCompile(`^(\p{Lu}[\p{L}'.]*(?:\s+\p{Lu}[\p{L}'.]*){0,4})\s+[-–—]`)
	authorMarker = regexp.MustCompile(`(?i)\b(?:written by|by|author)[: ]+\s*([\p{L}\p{N}_]+ [\p{L}\p{N}_]+)`)

	institutionalWords = []string{"university", "department", "institute"}
)

// AuthorConfig tunes the author extractor. Zero values take the defaults.
type AuthorConfig struct {
	// Loose accepts one to five name words and en/em dashes in bylines.
	Loose      bool
	LineWindow int
	NERWindow  int
	Timeout    time.Duration
}

// AuthorExtractor finds a document author from bylines, entities and "by" markers.
type AuthorExtractor struct {
	cfg        AuthorConfig
	byline     *regexp.Regexp
	recognizer nlp.EntityRecognizer
	logger     *zap.Logger
}

// NewAuthorExtractor returns an extractor. recognizer may be nil, which skips
// the entity rule.
func NewAuthorExtractor(cfg AuthorConfig, recognizer nlp.EntityRecognizer, logger *zap.Logger) *AuthorExtractor {
	if cfg.LineWindow <= 0 {
		cfg.LineWindow = 25
	}
	if cfg.NERWindow <= 0 {
		cfg.NERWindow = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	byline := strictByline
	if cfg.Loose {
		byline = looseByline
	}
	return &AuthorExtractor{
		cfg:        cfg,
		byline:     byline,
		recognizer: recognizer,
		logger:     utils.OrNop(logger),
	}
}

// Extract returns the author of raw, or UnknownAuthor.
func (a *AuthorExtractor) Extract(ctx context.Context, raw string) string {
	lines := nonEmptyLines(raw)
	if len(lines) > a.cfg.LineWindow {
		lines = lines[:a.cfg.LineWindow]
	}
	for _, line := range lines {
		if m := a.byline.FindStringSubmatch(line); m != nil {
			return strings.Join(strings.Fields(m[1]), " ")
		}
	}

	if name, ok := a.fromEntities(ctx, raw); ok {
		return name
	}

	if m := authorMarker.FindStringSubmatch(utils.RunePrefix(raw, markerWindow)); m != nil {
		return titleCase(m[1])
	}
	return UnknownAuthor
}

func (a *AuthorExtractor) fromEntities(ctx context.Context, raw string) (string, bool) {
	if a.recognizer == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	mentions, err := a.recognizer.Recognize(ctx, utils.RunePrefix(raw, a.cfg.NERWindow))
	if err != nil {
		a.logger.Debug("author entity recognition failed",
			zap.String("failure", nlp.Classify(err).String()), zap.Error(err))
		return "", false
	}
	for _, m := range nlp.Filter(mentions, nlp.LabelPerson) {
		name := strings.Join(strings.Fields(m.Text), " ")
		if name == "" || isInstitutional(name) {
			continue
		}
		return name, true
	}
	return "", false
}

func isInstitutional(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range institutionalWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of every letter run and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
