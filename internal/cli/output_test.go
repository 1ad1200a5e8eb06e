package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/metamuse/internal/discourse"
	"github.com/hyperjump/metamuse/internal/lexical"
	"github.com/hyperjump/metamuse/internal/metadata"
	"github.com/hyperjump/metamuse/internal/textstats"
)

func sampleRecord() metadata.Record {
	return metadata.Record{
		Title:       "Scalable Cloud Storage",
		Author:      "Jane Smith",
		Date:        "2021",
		KeyPhrases:  []string{"cloud storage", "data replication"},
		Topics:      []lexical.Topic{lexical.TopicTechnology},
		Summary:     "Cloud storage scales.",
		Sentiment:   discourse.Positive,
		Readability: discourse.Standard,
		Stats:       textstats.Stats{WordCount: 3, CharCount: 21, SentenceCount: 1},
	}
}

func TestWriteRecord_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecord(&buf, sampleRecord(), OutputJSON); err != nil {
		t.Fatalf("WriteRecord(json): %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	for _, key := range []string{"title", "author", "date", "keyphrases", "topics", "summary", "sentiment", "readability", "stats"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON output missing key %q", key)
		}
	}
	if decoded["author"] != "Jane Smith" {
		t.Errorf("author = %v", decoded["author"])
	}
}

func TestWriteRecord_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecord(&buf, sampleRecord(), OutputText); err != nil {
		t.Fatalf("WriteRecord(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Title:       Scalable Cloud Storage",
		"Author:      Jane Smith",
		"Topics:      Technology",
		"cloud storage; data replication",
		"3 words, 21 characters, 1 sentences",
		"Cloud storage scales.",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteRecord_textNoKeyPhrases(t *testing.T) {
	rec := sampleRecord()
	rec.KeyPhrases = []string{}
	var buf bytes.Buffer
	_ = WriteRecord(&buf, rec, OutputText)
	if !strings.Contains(buf.String(), "Key phrases: (none)") {
		t.Errorf("expected (none) placeholder:\n%s", buf.String())
	}
}

func TestWriteRecords(t *testing.T) {
	recs := []SourceRecord{{Source: "a.txt", Record: sampleRecord()}, {Source: "b.txt", Record: sampleRecord()}}

	var text bytes.Buffer
	if err := WriteRecords(&text, recs, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "=== a.txt ===") || !strings.Contains(text.String(), "=== b.txt ===") {
		t.Errorf("text output should name each source:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := WriteRecords(&js, recs, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []SourceRecord
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Source != "b.txt" || decoded[1].Record.Title != "Scalable Cloud Storage" {
		t.Errorf("decoded = %+v", decoded)
	}

	js.Reset()
	if err := WriteRecords(&js, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(js.String()) != "[]" {
		t.Errorf("empty list should encode as [], got %q", js.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		s        string
		maxWords int
		want     string
	}{
		{"one two three", 5, "one two three"},
		{"one two three four", 2, "one two..."},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := TruncateWords(tt.s, tt.maxWords); got != tt.want {
			t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
		}
	}
}
