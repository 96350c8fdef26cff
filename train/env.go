// Package train runs a training job against the managed platform's
// file-system contract: input channel directories, a hyperparameters file and
// an output model directory.
package train

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Environment names used by the hosted training container. Local runs usually
// set the paths with flags instead.
const (
	envTrainChannel      = "SM_CHANNEL_TRAIN"
	envValidationChannel = "SM_CHANNEL_VALIDATION"
	envModelDir          = "SM_MODEL_DIR"
)

// Environment is the resolved file-system contract for one training run.
type Environment struct {
	TrainDir      string
	ValidationDir string
	ModelDir      string
}

// ResolveEnvironment fills empty fields from the hosted container's
// environment variables and validates the result. The validation channel is
// optional.
func ResolveEnvironment(trainDir, validationDir, modelDir string) (Environment, error) {
	if trainDir == "" {
		trainDir = os.Getenv(envTrainChannel)
	}
	if validationDir == "" {
		validationDir = os.Getenv(envValidationChannel)
	}
	if modelDir == "" {
		modelDir = os.Getenv(envModelDir)
	}
	if trainDir == "" {
		return Environment{}, errors.New("train channel directory is required")
	}
	if modelDir == "" {
		return Environment{}, errors.New("model output directory is required")
	}
	if info, err := os.Stat(trainDir); err != nil || !info.IsDir() {
		return Environment{}, fmt.Errorf("train channel %s is not a directory", trainDir)
	}
	return Environment{
		TrainDir:      trainDir,
		ValidationDir: validationDir,
		ModelDir:      modelDir,
	}, nil
}

// Hyperparameters configures one training run. Zero values fall back to
// defaults in ApplyDefaults.
type Hyperparameters struct {
	ModelType string `json:"model_type"`
	Target    string `json:"target"`
	Seed      int64  `json:"seed"`

	// tabular
	Categorical []string `json:"categorical,omitempty"`
	Separator   string   `json:"separator,omitempty"`

	// tree models
	MaxDepth int `json:"max_depth,omitempty"`
	NumTrees int `json:"num_trees,omitempty"`

	// linear model
	Epochs       int     `json:"epochs,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`

	// text preprocessing
	TextColumn    string `json:"text_column,omitempty"`
	NumWords      int    `json:"num_words,omitempty"`
	MaxLen        int    `json:"max_len,omitempty"`
	EmbeddingFile string `json:"embedding_file,omitempty"`
	EmbeddingDim  int    `json:"embedding_dim,omitempty"`

	// PretrainedTokenizerFile points at a HuggingFace tokenizer.json; when set
	// it replaces the corpus-fitted word tokenizer.
	PretrainedTokenizerFile string `json:"pretrained_tokenizer,omitempty"`

	// used only when no validation channel is provided
	TestRatio float64 `json:"test_ratio,omitempty"`
}

// LoadHyperparameters reads a hyperparameters JSON file. A missing path
// returns zero hyperparameters so flags alone can drive a run.
func LoadHyperparameters(path string) (Hyperparameters, error) {
	var hp Hyperparameters
	if path == "" {
		return hp, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return hp, err
	}
	if err := json.Unmarshal(payload, &hp); err != nil {
		return hp, fmt.Errorf("parse hyperparameters: %w", err)
	}
	return hp, nil
}

// ApplyDefaults fills unset values.
func (hp *Hyperparameters) ApplyDefaults() {
	if hp.ModelType == "" {
		if hp.TextColumn != "" {
			hp.ModelType = "linear"
		} else {
			hp.ModelType = "random_forest"
		}
	}
	if hp.MaxDepth == 0 {
		hp.MaxDepth = 8
	}
	if hp.NumTrees == 0 {
		hp.NumTrees = 50
	}
	if hp.Epochs == 0 {
		hp.Epochs = 20
	}
	if hp.LearningRate == 0 {
		hp.LearningRate = 0.05
	}
	if hp.NumWords == 0 {
		hp.NumWords = 10000
	}
	if hp.MaxLen == 0 {
		hp.MaxLen = 40
	}
	if hp.TestRatio == 0 {
		hp.TestRatio = 0.2
	}
}

// Validate rejects inconsistent configurations before any data is read.
func (hp *Hyperparameters) Validate() error {
	if hp.Target == "" {
		return errors.New("target column is required")
	}
	switch hp.ModelType {
	case "decision_tree", "random_forest", "linear":
	default:
		return fmt.Errorf("unsupported model type %q", hp.ModelType)
	}
	if hp.EmbeddingFile != "" && hp.EmbeddingDim <= 0 {
		return errors.New("embedding_dim is required with embedding_file")
	}
	if hp.PretrainedTokenizerFile != "" {
		if hp.TextColumn == "" {
			return errors.New("pretrained_tokenizer requires text_column")
		}
		if hp.EmbeddingFile != "" {
			return errors.New("pretrained_tokenizer and embedding_file are exclusive")
		}
	}
	if hp.TestRatio < 0 || hp.TestRatio >= 1 {
		return errors.New("test_ratio must be in [0, 1)")
	}
	return nil
}
