package embedding

import (
	"hash/fnv"
	"strings"
)

// BERT special token ids.
const (
	clsTokenID = 101
	sepTokenID = 102
	vocabSize  = 30000
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer maps lower-cased whitespace words to hashed vocabulary ids.
// It has no real vocabulary; it keeps the ONNX path usable without a tokenizer file.
type SimpleTokenizer struct{}

// Tokenize produces [CLS] word... [SEP] padded to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 2 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0], attentionMask[0] = clsTokenID, 1
	pos := 1
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(wordID(w))
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos], attentionMask[pos] = sepTokenID, 1
	return inputIDs, attentionMask, tokenTypeIDs
}

// wordID hashes w into the vocabulary range above the special tokens.
func wordID(w string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(w))
	return 1000 + h.Sum32()%(vocabSize-1000)
}
