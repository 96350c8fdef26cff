package dataset

import (
	"math"
	"math/rand"
)

// Split shuffles and partitions an encoded dataset. Every input row lands in
// exactly one of the two partitions. The same seed yields the same split.
func Split(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// SplitTable partitions raw rows before encoding, for writing train and
// validation channel files.
func SplitTable(t *Table, testRatio float64, seed int64) (train *Table, test *Table) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(t.Len())

	train = &Table{Columns: t.Columns}
	test = &Table{Columns: t.Columns}
	split := int(math.Round(float64(t.Len()) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			train.Rows = append(train.Rows, t.Rows[idx])
		} else {
			test.Rows = append(test.Rows, t.Rows[idx])
		}
	}
	return train, test
}

// StratifiedSplit partitions per label so class proportions carry over to both
// sides. Rows of a class are shuffled, then the tail of each class goes to the
// test side.
func StratifiedSplit(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))

	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	// Deterministic class order.
	maxLabel := -1
	for label := range byClass {
		if label > maxLabel {
			maxLabel = label
		}
	}

	for label := 0; label <= maxLabel; label++ {
		indices := byClass[label]
		if len(indices) == 0 {
			continue
		}
		rnd.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		split := int(math.Round(float64(len(indices)) * (1 - testRatio)))
		for i, idx := range indices {
			if i < split {
				trainX = append(trainX, features[idx])
				trainY = append(trainY, labels[idx])
			} else {
				testX = append(testX, features[idx])
				testY = append(testY, labels[idx])
			}
		}
	}
	return trainX, trainY, testX, testY
}
