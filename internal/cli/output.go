// Package cli provides CLI output helpers for metamuse.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/metamuse/internal/metadata"
)

// OutputFormat is the format for record output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// SourceRecord pairs a record with the file it was generated from.
type SourceRecord struct {
	Source string          `json:"source"`
	Record metadata.Record `json:"metadata"`
}

// WriteRecord writes a single record to w in the given format. JSON output is
// the bare record, the same document the server and watcher produce.
func WriteRecord(w io.Writer, rec metadata.Record, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, rec)
	}
	writeRecordText(w, rec)
	return nil
}

// WriteRecords writes several records. JSON output is an array of
// {source, metadata} objects.
func WriteRecords(w io.Writer, recs []SourceRecord, format OutputFormat) error {
	if format == OutputJSON {
		if recs == nil {
			recs = []SourceRecord{}
		}
		return encodeJSON(w, recs)
	}
	for _, r := range recs {
		fmt.Fprintf(w, "=== %s ===\n", r.Source)
		writeRecordText(w, r.Record)
		fmt.Fprintln(w)
	}
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeRecordText(w io.Writer, rec metadata.Record) {
	topics := make([]string, len(rec.Topics))
	for i, t := range rec.Topics {
		topics[i] = string(t)
	}
	fmt.Fprintf(w, "Title:       %s\n", rec.Title)
	fmt.Fprintf(w, "Author:      %s\n", rec.Author)
	fmt.Fprintf(w, "Date:        %s\n", rec.Date)
	fmt.Fprintf(w, "Topics:      %s\n", strings.Join(topics, ", "))
	fmt.Fprintf(w, "Key phrases: %s\n", orNone(strings.Join(rec.KeyPhrases, "; ")))
	fmt.Fprintf(w, "Sentiment:   %s\n", rec.Sentiment)
	fmt.Fprintf(w, "Readability: %s\n", rec.Readability)
	fmt.Fprintf(w, "Stats:       %d words, %d characters, %d sentences\n",
		rec.Stats.WordCount, rec.Stats.CharCount, rec.Stats.SentenceCount)
	fmt.Fprintf(w, "Summary:\n  %s\n", TruncateWords(rec.Summary, 120))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
