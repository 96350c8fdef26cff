package nlp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Embedding is a vocabulary-aligned matrix of pretrained word vectors. Row i
// is the vector for token index i; the padding row stays zero and the OOV row
// is the mean of all vectors found for the vocabulary.
type Embedding struct {
	Dim     int
	Vectors [][]float64
}

// LoadEmbeddings reads GloVe-style text vectors ("word v1 v2 ... vDim" per
// line) and aligns them with the tokenizer's vocabulary. Words missing from
// the file keep a zero vector.
func LoadEmbeddings(path string, tok *Tokenizer, dim int) (*Embedding, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dim must be positive")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vocabSize := tok.VocabSize()
	vectors := make([][]float64, vocabSize)
	for i := range vectors {
		vectors[i] = make([]float64, dim)
	}

	index := tok.WordIndex()
	sum := make([]float64, dim)
	found := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("line %d: %d values, want %d", line, len(fields)-1, dim)
		}
		idx, ok := index[fields[0]]
		if !ok {
			continue
		}
		for d := 0; d < dim; d++ {
			v, err := strconv.ParseFloat(fields[d+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vectors[idx][d] = v
			sum[d] += v
		}
		found++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if found > 0 {
		for d := 0; d < dim; d++ {
			vectors[OOVIndex][d] = sum[d] / float64(found)
		}
	}

	return &Embedding{Dim: dim, Vectors: vectors}, nil
}

// Vector returns the embedding row for a token index.
func (e *Embedding) Vector(id int) ([]float64, error) {
	if id < 0 || id >= len(e.Vectors) {
		return nil, fmt.Errorf("token index %d out of range", id)
	}
	return e.Vectors[id], nil
}

// DocVector mean-pools the vectors of a padded sequence, skipping padding.
// An all-padding sequence yields the zero vector.
func (e *Embedding) DocVector(seq []int) []float64 {
	out := make([]float64, e.Dim)
	count := 0
	for _, id := range seq {
		if id == PadIndex || id < 0 || id >= len(e.Vectors) {
			continue
		}
		for d, v := range e.Vectors[id] {
			out[d] += v
		}
		count++
	}
	if count > 0 {
		for d := range out {
			out[d] /= float64(count)
		}
	}
	return out
}
