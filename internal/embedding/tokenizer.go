package embedding

import (
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Tokenizer produces padded model inputs for BERT-style encoders
// (input_ids, attention_mask, token_type_ids), each exactly maxTokens long.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// PretrainedTokenizer wraps a Hugging Face tokenizer.json (WordPiece for the
// BioLinkBERT family).
type PretrainedTokenizer struct {
	tk *tokenizer.Tokenizer
}

// NewPretrainedTokenizer loads a tokenizer.json file.
func NewPretrainedTokenizer(path string) (*PretrainedTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &PretrainedTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens, truncating to maxTokens while
// keeping the trailing separator, and pads with zeros.
func (t *PretrainedTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, types, mask := enc.Ids, enc.TypeIds, enc.AttentionMask
	return padTruncate(ids, types, mask, maxTokens)
}

func padTruncate(ids, types, mask []int, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	if len(ids) != len(types) || len(ids) != len(mask) {
		return nil, nil, nil, fmt.Errorf("tokenize: inconsistent encoding lengths %d/%d/%d", len(ids), len(types), len(mask))
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	n := len(ids)
	truncated := n > maxTokens
	if truncated {
		n = maxTokens
	}
	for i := 0; i < n; i++ {
		inputIDs[i] = int64(ids[i])
		attentionMask[i] = int64(mask[i])
		tokenTypeIDs[i] = int64(types[i])
	}
	if truncated && len(ids) > 0 {
		inputIDs[n-1] = int64(ids[len(ids)-1])
	}
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
