package metadata

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperjump/metamuse/internal/discourse"
	"github.com/hyperjump/metamuse/internal/heuristics"
	"github.com/hyperjump/metamuse/internal/lexical"
	"github.com/hyperjump/metamuse/internal/textstats"
	"github.com/hyperjump/metamuse/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const fallbackSummaryRunes = 500

// Pipeline turns raw document text into a Record. It holds no per-run state and
// is safe for concurrent use when its capabilities are.
type Pipeline struct {
	author      *heuristics.AuthorExtractor
	date        *heuristics.DateExtractor
	keyPhraser  lexical.KeyPhraser
	topics      lexical.TopicMap
	sentiment   *discourse.SentimentClassifier
	summary     *discourse.SummaryGate
	readability float64
	logger      *zap.Logger
}

// New builds a pipeline from opts and caps.
func New(opts Options, caps Capabilities, options ...Option) *Pipeline {
	p := &Pipeline{logger: zap.NewNop()}
	for _, o := range options {
		o(p)
	}

	p.author = heuristics.NewAuthorExtractor(opts.Author, caps.Recognizer, p.logger)
	p.date = heuristics.NewDateExtractor(opts.Date, caps.Recognizer, p.logger)
	p.summary = discourse.NewSummaryGate(opts.Summary, caps.Summarizer, p.logger)

	language := caps.Language
	if !opts.LanguageGate {
		language = nil
	}
	p.sentiment = discourse.NewSentimentClassifier(language)

	if p.keyPhraser == nil {
		if opts.Strategy == StrategyEmbedding && caps.Embedder != nil {
			p.keyPhraser = lexical.NewEmbeddingRanker(caps.Embedder, opts.TopK, opts.MaxCandidates, p.logger)
		} else {
			if opts.Strategy == StrategyEmbedding {
				p.logger.Warn("embedding key-phrase strategy needs an embedder, using graph ranking")
			}
			p.keyPhraser = lexical.NewGraphRanker(opts.TopK)
		}
	}

	p.topics = opts.Topics
	if len(p.topics) == 0 {
		p.topics = lexical.DefaultTopicMap()
	}
	p.readability = opts.ReadabilityThreshold
	if p.readability <= 0 {
		p.readability = discourse.DefaultReadabilityThreshold
	}
	return p
}

// Generate infers metadata for raw. It never fails: an extractor that errors or
// panics contributes its default value instead.
func (p *Pipeline) Generate(ctx context.Context, raw string) Record {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))
	doc := textstats.NewDocument(raw)

	var (
		title, author, date, summary string
		phrases                      []string
		topics                       []lexical.Topic
		sentiment                    discourse.Sentiment
		readability                  discourse.Readability
		stats                        textstats.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	p.run(g, log, "title", func() { title = heuristics.Title(doc.Raw) })
	p.run(g, log, "author", func() { author = p.author.Extract(gctx, doc.Raw) })
	p.run(g, log, "date", func() { date = p.date.Extract(gctx, doc.Text) })
	p.run(g, log, "keyphrases", func() {
		var err error
		phrases, err = p.keyPhraser.Extract(gctx, doc.Text)
		if err != nil {
			log.Warn("key-phrase extraction failed", zap.Error(err))
			phrases = nil
		}
		topics = lexical.Classify(phrases, p.topics)
	})
	p.run(g, log, "summary", func() { summary = p.summary.Summarize(gctx, doc.Text) })
	p.run(g, log, "sentiment", func() { sentiment = p.sentiment.Classify(doc.Text) })
	p.run(g, log, "readability", func() { readability = discourse.ClassifyReadability(doc.Text, p.readability) })
	p.run(g, log, "stats", func() { stats = textstats.Collect(doc.Text) })
	_ = g.Wait()

	rec := Record{
		Title:       orDefault(title, heuristics.UntitledDocument),
		Author:      orDefault(author, heuristics.UnknownAuthor),
		Date:        orDefault(date, heuristics.DateNotFound),
		KeyPhrases:  phrases,
		Topics:      topics,
		Summary:     summary,
		Sentiment:   sentiment,
		Readability: readability,
		Stats:       stats,
	}
	if rec.KeyPhrases == nil {
		rec.KeyPhrases = []string{}
	}
	if len(rec.Topics) == 0 {
		rec.Topics = []lexical.Topic{lexical.TopicGeneral}
	}
	if rec.Summary == "" {
		rec.Summary = utils.Truncate(doc.Text, fallbackSummaryRunes)
	}
	if rec.Sentiment == "" {
		rec.Sentiment = discourse.Neutral
	}
	if rec.Readability == "" {
		rec.Readability = discourse.Unknown
	}
	log.Debug("metadata generated",
		zap.String("title", rec.Title),
		zap.Int("keyphrases", len(rec.KeyPhrases)),
		zap.Int("words", rec.Stats.WordCount))
	return rec
}

// run starts fn on g, turning a panic into a logged soft failure.
func (p *Pipeline) run(g *errgroup.Group, log *zap.Logger, name string, fn func()) {
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				log.Error("extractor panicked", zap.String("extractor", name), zap.String("panic", fmt.Sprint(r)))
			}
		}()
		fn()
		return nil
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
