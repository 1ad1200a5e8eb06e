package heuristics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/metamuse/internal/nlp"
	"go.uber.org/zap"
)

func TestAuthorExtractor(t *testing.T) {
	tests := []struct {
		name  string
		loose bool
		rec   *fakeRecognizer
		raw   string
		want  string
	}{
		{
			name: "strict byline",
			raw:  "Crop Yield Forecasting\nJane Q. Smith - Agronomy Lab, State University\nAbstract",
			want: "Jane Q. Smith",
		},
		{
			name: "strict rejects single word",
			raw:  "Report\nSmith - Lab\n",
			want: UnknownAuthor,
		},
		{
			name:  "loose accepts single word and em dash",
			loose: true,
			raw:   "Report\nSmith — Lab\n",
			want:  "Smith",
		},
		{
			name: "entities skip institutions",
			rec:  &fakeRecognizer{mentions: []nlp.EntityMention{date("2020"), person("Stanford University"), person("Alan  Turing")}},
			raw:  "some text about computing",
			want: "Alan Turing",
		},
		{
			name: "recognizer error falls to marker",
			rec:  &fakeRecognizer{err: context.DeadlineExceeded},
			raw:  "An essay written by ada lovelace on engines",
			want: "Ada Lovelace",
		},
		{
			name: "marker with colon",
			raw:  "notes\nAUTHOR: grace HOPPER\n",
			want: "Grace Hopper",
		},
		{
			name: "nothing found",
			raw:  "plain words without any attribution",
			want: UnknownAuthor,
		},
		{
			name: "empty",
			raw:  "",
			want: UnknownAuthor,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec nlp.EntityRecognizer
			if tt.rec != nil {
				rec = tt.rec
			}
			a := NewAuthorExtractor(AuthorConfig{Loose: tt.loose}, rec, zap.NewNop())
			if got := a.Extract(context.Background(), tt.raw); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorExtractor_bylineOutsideWindow(t *testing.T) {
	raw := strings.Repeat("filler line\n", 5) + "Jane Smith - Lab\n"
	a := NewAuthorExtractor(AuthorConfig{LineWindow: 3}, nil, nil)
	if got := a.Extract(context.Background(), raw); got != UnknownAuthor {
		t.Errorf("Extract() = %q, want %q", got, UnknownAuthor)
	}
}

func TestAuthorExtractor_nerWindow(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("boom")}
	a := NewAuthorExtractor(AuthorConfig{NERWindow: 100}, rec, nil)
	a.Extract(context.Background(), strings.Repeat("é", 500))
	if rec.calls != 1 {
		t.Fatalf("recognizer calls = %d", rec.calls)
	}
	if n := utf8.RuneCountInString(rec.lastText); n != 100 {
		t.Errorf("recognizer saw %d runes, want 100", n)
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"ada lovelace": "Ada Lovelace",
		"GRACE HOPPER": "Grace Hopper",
		"o'neil smith": "O'Neil Smith",
		"jean2 dupont": "Jean2 Dupont",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAuthorExtractor_recognizerTimeout(t *testing.T) {
	a := NewAuthorExtractor(AuthorConfig{Timeout: 20 * time.Millisecond}, blockingRecognizer{}, zap.NewNop())
	start := time.Now()
	got := a.Extract(context.Background(), "An essay written by ada lovelace on engines")
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Extract took %v, want it bounded by the timeout", elapsed)
	}
	if got != "Ada Lovelace" {
		t.Errorf("Extract() = %q, want the marker rule result", got)
	}
}
