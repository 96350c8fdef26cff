package ml

// Model is the common surface of every trainable classifier. Predict returns
// the class label and a confidence in [0, 1].
type Model interface {
	Train(features [][]float64, labels []int) error
	Predict(features []float64) (int, float64, error)
	Save(path string) error
	Load(path string) error
}

// Supported model type names, as used by artifacts and hyperparameters.
const (
	TypeDecisionTree = "decision_tree"
	TypeRandomForest = "random_forest"
	TypeLinear       = "linear"
)
