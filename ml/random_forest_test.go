package ml

import (
	"path/filepath"
	"testing"
)

func forestTrainingData() ([][]float64, []int) {
	var features [][]float64
	var labels []int
	for i := 0; i < 20; i++ {
		offset := float64(i) * 0.01
		features = append(features, []float64{0.1 + offset, 0.2 + offset})
		labels = append(labels, 0)
		features = append(features, []float64{0.8 + offset, 0.9 - offset})
		labels = append(labels, 1)
	}
	return features, labels
}

func TestRandomForestTrainPredict(t *testing.T) {
	features, labels := forestTrainingData()

	model := NewRandomForest(10, 4, 7)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, confidence, err := model.Predict([]float64{0.12, 0.22})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if confidence <= 0 || confidence > 1 {
		t.Fatalf("confidence out of range: %f", confidence)
	}

	label, _, err = model.Predict([]float64{0.85, 0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestRandomForestNonLinear(t *testing.T) {
	features, labels := xorTrainingData()

	model := NewRandomForest(50, 8, 5)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	corners := []struct {
		point []float64
		want  int
	}{
		{[]float64{0, 0}, 0},
		{[]float64{1, 1}, 0},
		{[]float64{0, 1}, 1},
		{[]float64{1, 0}, 1},
	}
	for _, c := range corners {
		label, confidence, err := model.Predict(c.point)
		if err != nil {
			t.Fatalf("predict %v: %v", c.point, err)
		}
		if label != c.want {
			t.Fatalf("predict %v: expected %d, got %d", c.point, c.want, label)
		}
		if confidence <= 0 || confidence > 1 {
			t.Fatalf("predict %v: confidence out of range: %f", c.point, confidence)
		}
	}
}

func TestRandomForestDeterministicSeed(t *testing.T) {
	features, labels := forestTrainingData()

	a := NewRandomForest(5, 4, 99)
	b := NewRandomForest(5, 4, 99)
	if err := a.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, sample := range [][]float64{{0.1, 0.2}, {0.5, 0.5}, {0.9, 0.8}} {
		la, ca, _ := a.Predict(sample)
		lb, cb, _ := b.Predict(sample)
		if la != lb || ca != cb {
			t.Fatalf("same seed diverged on %v: (%d, %f) vs (%d, %f)", sample, la, ca, lb, cb)
		}
	}
}

func TestRandomForestSaveLoad(t *testing.T) {
	features, labels := forestTrainingData()

	model := NewRandomForest(5, 4, 1)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rf.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := &RandomForest{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, sample := range [][]float64{{0.1, 0.2}, {0.85, 0.85}} {
		want, _, _ := model.Predict(sample)
		got, _, _ := loaded.Predict(sample)
		if got != want {
			t.Fatalf("loaded forest predicted %d, original %d", got, want)
		}
	}
}

func TestRandomForestPredictBeforeTrain(t *testing.T) {
	model := &RandomForest{}
	if _, _, err := model.Predict([]float64{0.1}); err == nil {
		t.Fatal("expected error before training")
	}
}
