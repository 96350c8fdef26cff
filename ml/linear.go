package ml

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"os"
)

// LinearClassifier is a multinomial logistic regression over dense vectors,
// trained with plain SGD. It serves as the text-classification head over
// mean-pooled embeddings or bag-of-words vectors.
type LinearClassifier struct {
	// Weights is numClasses x (dim+1); the last column is the bias.
	Weights [][]float64 `json:"weights"`

	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`
}

// NewLinearClassifier configures an untrained classifier.
func NewLinearClassifier(epochs int, learningRate float64, seed int64) *LinearClassifier {
	if epochs <= 0 {
		epochs = 20
	}
	if learningRate <= 0 {
		learningRate = 0.05
	}
	return &LinearClassifier{Epochs: epochs, LearningRate: learningRate, Seed: seed}
}

func (lc *LinearClassifier) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}

	numClasses := 0
	for _, label := range labels {
		if label < 0 {
			return errors.New("labels must be non-negative")
		}
		if label+1 > numClasses {
			numClasses = label + 1
		}
	}
	if numClasses < 2 {
		numClasses = 2
	}
	dim := len(features[0])

	lc.Weights = make([][]float64, numClasses)
	for c := range lc.Weights {
		lc.Weights[c] = make([]float64, dim+1)
	}

	rng := rand.New(rand.NewSource(lc.Seed))
	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < lc.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, idx := range order {
			x := features[idx]
			if len(x) != dim {
				return errors.New("inconsistent feature dimensions")
			}
			probs := lc.probabilities(x)
			for c := 0; c < numClasses; c++ {
				target := 0.0
				if labels[idx] == c {
					target = 1.0
				}
				grad := probs[c] - target
				w := lc.Weights[c]
				for d := 0; d < dim; d++ {
					w[d] -= lc.LearningRate * grad * x[d]
				}
				w[dim] -= lc.LearningRate * grad
			}
		}
	}
	return nil
}

func (lc *LinearClassifier) Predict(features []float64) (int, float64, error) {
	if len(lc.Weights) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	if len(features) != len(lc.Weights[0])-1 {
		return 0, 0, errors.New("feature dimension mismatch")
	}

	probs := lc.probabilities(features)
	bestLabel := 0
	for c, p := range probs {
		if p > probs[bestLabel] {
			bestLabel = c
		}
	}
	return bestLabel, probs[bestLabel], nil
}

// probabilities computes the softmax over class scores, shifted by the max
// score for numeric stability.
func (lc *LinearClassifier) probabilities(x []float64) []float64 {
	scores := make([]float64, len(lc.Weights))
	maxScore := math.Inf(-1)
	for c, w := range lc.Weights {
		s := w[len(w)-1]
		for d := 0; d < len(w)-1 && d < len(x); d++ {
			s += w[d] * x[d]
		}
		scores[c] = s
		if s > maxScore {
			maxScore = s
		}
	}

	sum := 0.0
	for c, s := range scores {
		scores[c] = math.Exp(s - maxScore)
		sum += scores[c]
	}
	for c := range scores {
		scores[c] /= sum
	}
	return scores
}

func (lc *LinearClassifier) Save(path string) error {
	if len(lc.Weights) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(lc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (lc *LinearClassifier) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LinearClassifier
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	*lc = loaded
	return nil
}
