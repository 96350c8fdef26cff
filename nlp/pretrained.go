package nlp

import (
	"errors"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// PretrainedTokenizer wraps a HuggingFace tokenizer.json model behind the same
// padded-sequence surface as the word-level Tokenizer, for corpora whose
// vocabulary was trained elsewhere.
type PretrainedTokenizer struct {
	tk     *tokenizer.Tokenizer
	maxLen int
}

// LoadPretrained reads a tokenizer.json file.
func LoadPretrained(path string, maxLen int) (*PretrainedTokenizer, error) {
	if maxLen <= 0 {
		return nil, errors.New("maxLen must be positive")
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, err
	}
	return &PretrainedTokenizer{tk: tk, maxLen: maxLen}, nil
}

// Encode tokenizes text into a fixed-length padded id sequence.
func (p *PretrainedTokenizer) Encode(text string) ([]int, error) {
	if p == nil || p.tk == nil {
		return nil, errors.New("pretrained tokenizer not initialized")
	}
	en, err := p.tk.EncodeSingle(text)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(en.Ids))
	for i, id := range en.Ids {
		ids[i] = int(id)
	}
	return Pad(ids, p.maxLen), nil
}

// VocabSize returns the tokenizer's vocabulary size including added tokens.
func (p *PretrainedTokenizer) VocabSize() int {
	if p == nil || p.tk == nil {
		return 0
	}
	return len(p.tk.GetVocab(true))
}

// MaxLen returns the configured sequence length.
func (p *PretrainedTokenizer) MaxLen() int {
	return p.maxLen
}
