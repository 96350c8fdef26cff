package ml

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"os"
)

// RandomForest is a bagging ensemble of decision trees. Each tree trains on a
// bootstrap sample and considers a random sqrt-sized feature subset per split.
// Prediction is a majority vote; the vote share is the confidence.
type RandomForest struct {
	trees []*DecisionTree

	numTrees int
	maxDepth int
	seed     int64
}

// NewRandomForest configures an untrained forest.
func NewRandomForest(numTrees, maxDepth int, seed int64) *RandomForest {
	if numTrees <= 0 {
		numTrees = 50
	}
	if maxDepth <= 0 {
		maxDepth = 8
	}
	return &RandomForest{numTrees: numTrees, maxDepth: maxDepth, seed: seed}
}

func (rf *RandomForest) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}

	featureCount := len(features[0])
	maxFeatures := int(math.Sqrt(float64(featureCount)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rf.trees = make([]*DecisionTree, rf.numTrees)
	for i := 0; i < rf.numTrees; i++ {
		rng := rand.New(rand.NewSource(rf.seed + int64(i)))

		sampleX := make([][]float64, len(features))
		sampleY := make([]int, len(labels))
		for j := range sampleX {
			pick := rng.Intn(len(features))
			sampleX[j] = features[pick]
			sampleY[j] = labels[pick]
		}

		tree := NewDecisionTree(rf.maxDepth)
		tree.maxFeatures = maxFeatures
		tree.rng = rng
		if err := tree.Train(sampleX, sampleY); err != nil {
			return err
		}
		rf.trees[i] = tree
	}
	return nil
}

func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	if len(rf.trees) == 0 {
		return 0, 0, errors.New("model not trained")
	}

	votes := make(map[int]int)
	for _, tree := range rf.trees {
		label, _, err := tree.Predict(features)
		if err != nil {
			return 0, 0, err
		}
		votes[label]++
	}

	bestLabel := 0
	bestVotes := -1
	for label, count := range votes {
		if count > bestVotes || (count == bestVotes && label < bestLabel) {
			bestVotes = count
			bestLabel = label
		}
	}
	return bestLabel, float64(bestVotes) / float64(len(rf.trees)), nil
}

type forestFile struct {
	NumTrees int          `json:"num_trees"`
	MaxDepth int          `json:"max_depth"`
	Seed     int64        `json:"seed"`
	Trees    [][]TreeNode `json:"trees"`
}

func (rf *RandomForest) Save(path string) error {
	if len(rf.trees) == 0 {
		return errors.New("model not trained")
	}
	file := forestFile{
		NumTrees: rf.numTrees,
		MaxDepth: rf.maxDepth,
		Seed:     rf.seed,
		Trees:    make([][]TreeNode, len(rf.trees)),
	}
	for i, tree := range rf.trees {
		file.Trees[i] = tree.nodes
	}
	payload, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (rf *RandomForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file forestFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return err
	}
	if len(file.Trees) == 0 {
		return errors.New("forest artifact has no trees")
	}
	rf.numTrees = file.NumTrees
	rf.maxDepth = file.MaxDepth
	rf.seed = file.Seed
	rf.trees = make([]*DecisionTree, len(file.Trees))
	for i, nodes := range file.Trees {
		rf.trees[i] = &DecisionTree{nodes: nodes, maxDepth: file.MaxDepth}
	}
	return nil
}
