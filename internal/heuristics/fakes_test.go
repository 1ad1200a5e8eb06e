package heuristics

import (
	"context"

	"github.com/hyperjump/metamuse/internal/nlp"
)

type fakeRecognizer struct {
	mentions []nlp.EntityMention
	err      error
	calls    int
	lastText string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, text string) ([]nlp.EntityMention, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.mentions, nil
}

func person(s string) nlp.EntityMention { return nlp.EntityMention{Text: s, Label: nlp.LabelPerson} }
func date(s string) nlp.EntityMention { return nlp.EntityMention{Text: s, Label: nlp.LabelDate} }

// blockingRecognizer waits until its context ends.
type blockingRecognizer struct{}

func (blockingRecognizer) Recognize(ctx context.Context, _ string) ([]nlp.EntityMention, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
