package ml

import (
	"math"
	"path/filepath"
	"testing"
)

func TestLinearClassifierSeparable(t *testing.T) {
	features := [][]float64{
		{1, 0}, {0.9, 0.1}, {0.8, 0.0}, {1.0, 0.2},
		{0, 1}, {0.1, 0.9}, {0.0, 0.8}, {0.2, 1.0},
	}
	labels := []int{0, 0, 0, 0, 1, 1, 1, 1}

	model := NewLinearClassifier(200, 0.5, 1)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, row := range features {
		label, confidence, err := model.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != labels[i] {
			t.Fatalf("row %d: expected %d, got %d", i, labels[i], label)
		}
		if confidence <= 0.5 {
			t.Fatalf("row %d: low confidence %f", i, confidence)
		}
	}
}

func TestLinearClassifierProbabilitiesSum(t *testing.T) {
	model := NewLinearClassifier(10, 0.1, 0)
	if err := model.Train([][]float64{{0, 1}, {1, 0}, {0.5, 0.5}}, []int{0, 1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	probs := model.probabilities([]float64{0.3, 0.7})
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %f", sum)
	}
}

func TestLinearClassifierDimensionMismatch(t *testing.T) {
	model := NewLinearClassifier(5, 0.1, 0)
	if err := model.Train([][]float64{{0, 1}, {1, 0}}, []int{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := model.Predict([]float64{0.5}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestLinearClassifierSaveLoad(t *testing.T) {
	features := [][]float64{{1, 0}, {0, 1}, {0.9, 0.1}, {0.1, 0.9}}
	labels := []int{0, 1, 0, 1}

	model := NewLinearClassifier(50, 0.3, 2)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "linear.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := &LinearClassifier{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, row := range features {
		want, wantConf, _ := model.Predict(row)
		got, gotConf, err := loaded.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want || gotConf != wantConf {
			t.Fatalf("loaded model diverged: (%d, %f) vs (%d, %f)", got, gotConf, want, wantConf)
		}
	}
}
