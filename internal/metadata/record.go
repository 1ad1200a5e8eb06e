// Package metadata assembles the extractors into a single metadata record.
package metadata

import (
	"github.com/hyperjump/metamuse/internal/discourse"
	"github.com/hyperjump/metamuse/internal/lexical"
	"github.com/hyperjump/metamuse/internal/textstats"
)

// Record is the metadata inferred from one document. Every field is populated;
// slices are never nil.
type Record struct {
	Title       string                `json:"title"`
	Author      string                `json:"author"`
	Date        string                `json:"date"`
	KeyPhrases  []string              `json:"keyphrases"`
	Topics      []lexical.Topic       `json:"topics"`
	Summary     string                `json:"summary"`
	Sentiment   discourse.Sentiment   `json:"sentiment"`
	Readability discourse.Readability `json:"readability"`
	Stats       textstats.Stats       `json:"stats"`
}
