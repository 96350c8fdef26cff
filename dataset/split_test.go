package dataset

import "testing"

func splitFixture(n int) ([][]float64, []int) {
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		features[i] = []float64{float64(i)}
		labels[i] = i % 2
	}
	return features, labels
}

func TestSplitPartitions(t *testing.T) {
	features, labels := splitFixture(10)
	trainX, trainY, testX, testY := Split(features, labels, 0.2, 42)

	if len(trainX) != 8 || len(testX) != 2 {
		t.Fatalf("expected 8/2 split, got %d/%d", len(trainX), len(testX))
	}
	if len(trainY) != len(trainX) || len(testY) != len(testX) {
		t.Fatalf("labels misaligned")
	}

	// every row lands on exactly one side
	seen := make(map[float64]int)
	for _, row := range trainX {
		seen[row[0]]++
	}
	for _, row := range testX {
		seen[row[0]]++
	}
	if len(seen) != 10 {
		t.Fatalf("expected 10 distinct rows, got %d", len(seen))
	}
	for v, count := range seen {
		if count != 1 {
			t.Fatalf("row %v appears %d times", v, count)
		}
	}
}

func TestSplitDeterministicSeed(t *testing.T) {
	features, labels := splitFixture(10)
	_, _, testA, _ := Split(features, labels, 0.3, 7)
	_, _, testB, _ := Split(features, labels, 0.3, 7)

	if len(testA) != len(testB) {
		t.Fatalf("sizes differ: %d vs %d", len(testA), len(testB))
	}
	for i := range testA {
		if testA[i][0] != testB[i][0] {
			t.Fatalf("same seed produced different splits")
		}
	}
}

func TestSplitBadRatioFallsBack(t *testing.T) {
	features, labels := splitFixture(10)
	_, _, testX, _ := Split(features, labels, 1.5, 0)
	if len(testX) != 2 {
		t.Fatalf("expected default 0.2 ratio, got %d test rows", len(testX))
	}
}

func TestSplitTable(t *testing.T) {
	table := &Table{
		Columns: []string{"x"},
		Rows:    [][]string{{"0"}, {"1"}, {"2"}, {"3"}, {"4"}},
	}
	train, test := SplitTable(table, 0.2, 1)
	if train.Len()+test.Len() != 5 {
		t.Fatalf("rows lost: %d + %d", train.Len(), test.Len())
	}
	if len(train.Columns) != 1 || len(test.Columns) != 1 {
		t.Fatalf("header not carried over")
	}
}

func TestStratifiedSplitKeepsProportions(t *testing.T) {
	var features [][]float64
	var labels []int
	for i := 0; i < 80; i++ {
		features = append(features, []float64{float64(i)})
		labels = append(labels, 0)
	}
	for i := 0; i < 20; i++ {
		features = append(features, []float64{float64(100 + i)})
		labels = append(labels, 1)
	}

	_, trainY, _, testY := StratifiedSplit(features, labels, 0.25, 3)

	count := func(ys []int, label int) int {
		n := 0
		for _, y := range ys {
			if y == label {
				n++
			}
		}
		return n
	}
	if count(trainY, 0) != 60 || count(testY, 0) != 20 {
		t.Fatalf("class 0 split %d/%d, want 60/20", count(trainY, 0), count(testY, 0))
	}
	if count(trainY, 1) != 15 || count(testY, 1) != 5 {
		t.Fatalf("class 1 split %d/%d, want 15/5", count(trainY, 1), count(testY, 1))
	}
}
