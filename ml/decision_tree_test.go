package ml

import (
	"path/filepath"
	"testing"
)

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, confidence, err := model.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if confidence <= 0 {
		t.Fatalf("expected confidence > 0")
	}
}

func TestDecisionTreeEmptyInput(t *testing.T) {
	model := NewDecisionTree(3)
	if err := model.Train(nil, nil); err == nil {
		t.Fatal("expected error for empty training data")
	}
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	features := [][]float64{
		{0.0, 1.0},
		{0.1, 0.9},
		{1.0, 0.0},
		{0.9, 0.1},
	}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(4)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dt.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := NewDecisionTree(4)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for i, feature := range features {
		want, _, err := model.Predict(feature)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _, err := loaded.Predict(feature)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("row %d: loaded model predicted %d, original %d", i, got, want)
		}
	}
}

// xorTrainingData is not linearly separable, so fitting it takes at least two
// levels of splits.
func xorTrainingData() ([][]float64, []int) {
	var features [][]float64
	var labels []int
	for _, jitter := range []float64{-0.04, -0.02, 0.02, 0.04} {
		features = append(features,
			[]float64{0 + jitter, 0 + jitter},
			[]float64{1 + jitter, 1 + jitter},
			[]float64{0 + jitter, 1 + jitter},
			[]float64{1 + jitter, 0 + jitter},
		)
		labels = append(labels, 0, 0, 1, 1)
	}
	return features, labels
}

func TestDecisionTreeMultiLevelSplits(t *testing.T) {
	features, labels := xorTrainingData()

	model := NewDecisionTree(4)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Children always come after their parent in the flat layout; a child
	// index at or before its parent would make Predict loop.
	internal := 0
	for i, node := range model.nodes {
		if node.IsLeaf {
			continue
		}
		internal++
		if node.LeftChild <= i || node.RightChild <= i {
			t.Fatalf("node %d has children L=%d R=%d", i, node.LeftChild, node.RightChild)
		}
		if node.LeftChild >= len(model.nodes) || node.RightChild >= len(model.nodes) {
			t.Fatalf("node %d has out-of-range children L=%d R=%d", i, node.LeftChild, node.RightChild)
		}
	}
	if internal < 2 {
		t.Fatalf("expected a multi-level tree, got %d internal nodes", internal)
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
		if confidence <= 0.5 || confidence > 1 {
			t.Fatalf("predict %v: confidence out of range: %f", c.point, confidence)
		}
	}
}

func TestGiniPure(t *testing.T) {
	if g := gini([]int{1, 1, 1}); g != 0 {
		t.Fatalf("expected 0 for pure labels, got %f", g)
	}
	if g := gini([]int{0, 1}); g != 0.5 {
		t.Fatalf("expected 0.5 for even split, got %f", g)
	}
}
