package nlp

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
)

// Reserved token indices. Index 0 pads sequences, index 1 stands in for any
// word outside the fitted vocabulary.
const (
	PadIndex = 0
	OOVIndex = 1
)

// numReserved is the first index handed to a real word.
const numReserved = 2

// Tokenizer maps words to integer indices and produces fixed-length padded
// sequences for model input. Fit assigns indices by descending corpus
// frequency, capped at NumWords.
type Tokenizer struct {
	NumWords int

	words []string
	index map[string]int
}

// NewTokenizer caps the vocabulary at numWords words (reserved indices not
// counted). Zero means unlimited.
func NewTokenizer(numWords int) *Tokenizer {
	return &Tokenizer{NumWords: numWords}
}

// Fit builds the vocabulary from a corpus. Ties in frequency break
// lexicographically so fitting is deterministic.
func (t *Tokenizer) Fit(texts []string) {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range Tokens(text) {
			counts[word]++
		}
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if t.NumWords > 0 && len(words) > t.NumWords {
		words = words[:t.NumWords]
	}
	t.words = words
	t.buildIndex()
}

// Encode converts text into vocabulary indices, mapping unknown words to
// OOVIndex.
func (t *Tokenizer) Encode(text string) []int {
	tokens := Tokens(text)
	seq := make([]int, len(tokens))
	for i, word := range tokens {
		if idx, ok := t.index[word]; ok {
			seq[i] = idx
		} else {
			seq[i] = OOVIndex
		}
	}
	return seq
}

// EncodeAll converts a batch of texts.
func (t *Tokenizer) EncodeAll(texts []string) [][]int {
	seqs := make([][]int, len(texts))
	for i, text := range texts {
		seqs[i] = t.Encode(text)
	}
	return seqs
}

// Pad post-pads or truncates a sequence to exactly maxLen entries.
func Pad(seq []int, maxLen int) []int {
	if maxLen <= 0 {
		return nil
	}
	padded := make([]int, maxLen)
	n := len(seq)
	if n > maxLen {
		n = maxLen
	}
	copy(padded, seq[:n])
	return padded
}

// PaddedSequences encodes a batch of texts into fixed-length sequences.
func (t *Tokenizer) PaddedSequences(texts []string, maxLen int) [][]int {
	out := make([][]int, len(texts))
	for i, text := range texts {
		out[i] = Pad(t.Encode(text), maxLen)
	}
	return out
}

// VocabSize is the number of assigned indices including the reserved ones.
// Valid sequence values are always in [0, VocabSize).
func (t *Tokenizer) VocabSize() int {
	return len(t.words) + numReserved
}

// WordIndex returns a copy of the word -> index mapping.
func (t *Tokenizer) WordIndex() map[string]int {
	out := make(map[string]int, len(t.index))
	for word, idx := range t.index {
		out[word] = idx
	}
	return out
}

type tokenizerFile struct {
	NumWords int      `json:"num_words"`
	Words    []string `json:"words"`
}

// Save writes the vocabulary as JSON.
func (t *Tokenizer) Save(path string) error {
	if len(t.words) == 0 {
		return errors.New("tokenizer not fitted")
	}
	payload, err := json.Marshal(tokenizerFile{NumWords: t.NumWords, Words: t.words})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// Load restores a saved vocabulary.
func (t *Tokenizer) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file tokenizerFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return err
	}
	t.NumWords = file.NumWords
	t.words = file.Words
	t.buildIndex()
	return nil
}

func (t *Tokenizer) buildIndex() {
	t.index = make(map[string]int, len(t.words))
	for i, word := range t.words {
		t.index[word] = i + numReserved
	}
}

// BagOfWords turns a sequence into a normalized term-frequency vector over the
// vocabulary, for models that take dense input without embeddings.
func BagOfWords(seq []int, vocabSize int) []float64 {
	vec := make([]float64, vocabSize)
	total := 0.0
	for _, id := range seq {
		if id == PadIndex || id < 0 || id >= vocabSize {
			continue
		}
		vec[id]++
		total++
	}
	if total > 0 {
		for i := range vec {
			vec[i] /= total
		}
	}
	return vec
}
