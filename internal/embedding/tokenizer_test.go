package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("expected CLS %d, got %d", clsTokenID, ids[0])
	}
	if ids[3] != sepTokenID {
		t.Errorf("expected SEP at 3, got %d", ids[3])
	}
	for i, want := range []int64{1, 1, 1, 1, 0} {
		if attn[i] != want {
			t.Errorf("attention[%d] = %d, want %d", i, attn[i], want)
		}
	}
}

func TestSimpleTokenizer_caseInsensitive(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("Cloud", 8)
	b, _, _ := tok.Tokenize("cloud", 8)
	if a[1] != b[1] {
		t.Errorf("ids differ: %d vs %d", a[1], b[1])
	}
}

func TestSimpleTokenizer_truncates(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("a b c d e f g h i j", 5)
	if ids[4] != sepTokenID {
		t.Errorf("last token should be SEP, got %d", ids[4])
	}
	for i := range attn {
		if attn[i] != 1 {
			t.Errorf("attention[%d] = %d", i, attn[i])
		}
	}
}
