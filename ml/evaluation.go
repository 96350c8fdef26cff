package ml

import "errors"

// Metrics summarizes classifier quality on a held-out set. Precision, recall
// and F1 are macro-averaged over classes.
type Metrics struct {
	Accuracy   float64 `json:"accuracy"`
	Precision  float64 `json:"precision"`
	Recall     float64 `json:"recall"`
	F1         float64 `json:"f1"`
	DataPoints int     `json:"data_points"`
	Confusion  [][]int `json:"confusion"`
}

// Evaluate runs the model over a labelled set and computes metrics.
func Evaluate(model Model, features [][]float64, labels []int) (Metrics, error) {
	if len(features) == 0 {
		return Metrics{}, errors.New("evaluation set is empty")
	}
	if len(features) != len(labels) {
		return Metrics{}, errors.New("features and labels size mismatch")
	}

	numClasses := 0
	predictions := make([]int, len(features))
	for i, row := range features {
		label, _, err := model.Predict(row)
		if err != nil {
			return Metrics{}, err
		}
		predictions[i] = label
		if label+1 > numClasses {
			numClasses = label + 1
		}
		if labels[i]+1 > numClasses {
			numClasses = labels[i] + 1
		}
	}

	confusion := make([][]int, numClasses)
	for i := range confusion {
		confusion[i] = make([]int, numClasses)
	}
	correct := 0
	for i, predicted := range predictions {
		confusion[labels[i]][predicted]++
		if predicted == labels[i] {
			correct++
		}
	}

	var precisionSum, recallSum, f1Sum float64
	for c := 0; c < numClasses; c++ {
		tp := confusion[c][c]
		predictedC := 0
		actualC := 0
		for other := 0; other < numClasses; other++ {
			predictedC += confusion[other][c]
			actualC += confusion[c][other]
		}
		var precision, recall float64
		if predictedC > 0 {
			precision = float64(tp) / float64(predictedC)
		}
		if actualC > 0 {
			recall = float64(tp) / float64(actualC)
		}
		precisionSum += precision
		recallSum += recall
		if precision+recall > 0 {
			f1Sum += 2 * precision * recall / (precision + recall)
		}
	}

	n := float64(numClasses)
	return Metrics{
		Accuracy:   float64(correct) / float64(len(features)),
		Precision:  precisionSum / n,
		Recall:     recallSum / n,
		F1:         f1Sum / n,
		DataPoints: len(features),
		Confusion:  confusion,
	}, nil
}
