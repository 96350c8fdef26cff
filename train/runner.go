package train

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tom5610/sagemaker-101-workshop/dataset"
	"github.com/tom5610/sagemaker-101-workshop/ml"
	"github.com/tom5610/sagemaker-101-workshop/nlp"
)

// Artifact file names written into the model directory.
const (
	ModelFile     = "model.json"
	ScalerFile    = "scaler.json"
	TokenizerFile = "tokenizer.json"
	ManifestFile  = "manifest.json"
	MetricsFile   = "metrics.json"
)

// Event reports training progress.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Manifest describes a saved model artifact so serving can rebuild the same
// input pipeline.
type Manifest struct {
	ModelType     string   `json:"model_type"`
	Target        string   `json:"target"`
	Classes       []string `json:"classes"`
	FeatureNames  []string `json:"feature_names,omitempty"`
	TextColumn    string   `json:"text_column,omitempty"`
	MaxLen        int      `json:"max_len,omitempty"`
	EmbeddingFile string   `json:"embedding_file,omitempty"`
	EmbeddingDim  int      `json:"embedding_dim,omitempty"`

	// PretrainedTokenizerFile is the tokenizer.json the run encoded text with,
	// when it used one instead of a corpus-fitted vocabulary.
	PretrainedTokenizerFile string `json:"pretrained_tokenizer,omitempty"`

	TrainedAt time.Time `json:"trained_at"`
}

// Result is what a completed run produced.
type Result struct {
	ModelType    string
	ArtifactPath string
	Metrics      ml.Metrics
	Manifest     Manifest
}

// Runner executes one training job: load channels, train, evaluate, save.
type Runner struct {
	Env      Environment
	HP       Hyperparameters
	Progress func(Event)
}

func (r *Runner) emit(stage, format string, args ...interface{}) {
	if r.Progress == nil {
		return
	}
	r.Progress(Event{Stage: stage, Message: fmt.Sprintf(format, args...), Time: time.Now()})
}

// Run trains the configured model and writes the artifact set into the model
// directory.
func (r *Runner) Run() (*Result, error) {
	hp := r.HP
	hp.ApplyDefaults()
	if err := hp.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.Env.ModelDir, 0o755); err != nil {
		return nil, err
	}

	r.emit("load_data", "reading train channel %s", r.Env.TrainDir)
	trainTable, err := readChannel(r.Env.TrainDir, hp)
	if err != nil {
		return nil, fmt.Errorf("train channel: %w", err)
	}

	var valTable *dataset.Table
	if r.Env.ValidationDir != "" {
		r.emit("load_data", "reading validation channel %s", r.Env.ValidationDir)
		valTable, err = readChannel(r.Env.ValidationDir, hp)
		if err != nil {
			return nil, fmt.Errorf("validation channel: %w", err)
		}
	}

	var prepared *preparedData
	if hp.TextColumn != "" {
		prepared, err = r.prepareText(trainTable, valTable, hp)
	} else {
		prepared, err = r.prepareTabular(trainTable, valTable, hp)
	}
	if err != nil {
		return nil, err
	}

	model, err := newModel(hp)
	if err != nil {
		return nil, err
	}

	r.emit("train", "training %s on %d rows", hp.ModelType, len(prepared.trainX))
	if err := model.Train(prepared.trainX, prepared.trainY); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	r.emit("evaluate", "evaluating on %d rows", len(prepared.testX))
	metrics, err := ml.Evaluate(model, prepared.testX, prepared.testY)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	artifactPath := filepath.Join(r.Env.ModelDir, ModelFile)
	r.emit("save", "writing artifact %s", artifactPath)
	if err := model.Save(artifactPath); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	manifest := Manifest{
		ModelType:               hp.ModelType,
		Target:                  hp.Target,
		Classes:                 prepared.classes,
		FeatureNames:            prepared.featureNames,
		TextColumn:              hp.TextColumn,
		MaxLen:                  hp.MaxLen,
		EmbeddingFile:           hp.EmbeddingFile,
		EmbeddingDim:            hp.EmbeddingDim,
		PretrainedTokenizerFile: hp.PretrainedTokenizerFile,
		TrainedAt:               time.Now().UTC(),
	}
	if hp.TextColumn == "" {
		manifest.MaxLen = 0
	}
	if err := writeJSON(filepath.Join(r.Env.ModelDir, ManifestFile), manifest); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(r.Env.ModelDir, MetricsFile), metrics); err != nil {
		return nil, err
	}

	return &Result{
		ModelType:    hp.ModelType,
		ArtifactPath: artifactPath,
		Metrics:      metrics,
		Manifest:     manifest,
	}, nil
}

type preparedData struct {
	trainX [][]float64
	trainY []int
	testX  [][]float64
	testY  []int

	classes      []string
	featureNames []string
}

// prepareTabular encodes the feature matrix. Train and validation rows are
// encoded together so categorical columns get identical one-hot layouts, then
// sliced back apart.
func (r *Runner) prepareTabular(trainTable, valTable *dataset.Table, hp Hyperparameters) (*preparedData, error) {
	combined := &dataset.Table{Columns: trainTable.Columns}
	combined.Rows = append(combined.Rows, trainTable.Rows...)
	if valTable != nil {
		if err := sameColumns(trainTable, valTable); err != nil {
			return nil, err
		}
		combined.Rows = append(combined.Rows, valTable.Rows...)
	}

	matrix, err := dataset.BuildMatrix(combined, hp.Target, hp.Categorical)
	if err != nil {
		return nil, err
	}

	scaler := &ml.Scaler{}
	trainRows := trainTable.Len()
	if err := scaler.Fit(matrix.Features[:trainRows]); err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(matrix.Features)
	if err != nil {
		return nil, err
	}
	if err := scaler.Save(filepath.Join(r.Env.ModelDir, ScalerFile)); err != nil {
		return nil, err
	}

	prepared := &preparedData{
		classes:      matrix.Target.Classes,
		featureNames: matrix.FeatureNames,
	}
	if valTable != nil {
		prepared.trainX = scaled[:trainRows]
		prepared.trainY = matrix.Labels[:trainRows]
		prepared.testX = scaled[trainRows:]
		prepared.testY = matrix.Labels[trainRows:]
		return prepared, nil
	}

	prepared.trainX, prepared.trainY, prepared.testX, prepared.testY =
		dataset.Split(scaled, matrix.Labels, hp.TestRatio, hp.Seed)
	return prepared, nil
}

// prepareText fits the tokenizer on the train texts only, then vectorizes
// both sides with mean-pooled embeddings or bag-of-words.
func (r *Runner) prepareText(trainTable, valTable *dataset.Table, hp Hyperparameters) (*preparedData, error) {
	trainTexts, trainRaw, err := textColumns(trainTable, hp)
	if err != nil {
		return nil, err
	}

	var valTexts, valRaw []string
	if valTable != nil {
		if err := sameColumns(trainTable, valTable); err != nil {
			return nil, err
		}
		valTexts, valRaw, err = textColumns(valTable, hp)
		if err != nil {
			return nil, err
		}
	}

	var vectorize func(texts []string) ([][]float64, error)
	if hp.PretrainedTokenizerFile != "" {
		pre, err := nlp.LoadPretrained(hp.PretrainedTokenizerFile, hp.MaxLen)
		if err != nil {
			return nil, fmt.Errorf("load pretrained tokenizer: %w", err)
		}
		vectorize = func(texts []string) ([][]float64, error) {
			out := make([][]float64, len(texts))
			for i, text := range texts {
				seq, err := pre.Encode(text)
				if err != nil {
					return nil, err
				}
				out[i] = nlp.BagOfWords(seq, pre.VocabSize())
			}
			return out, nil
		}
	} else {
		tok := nlp.NewTokenizer(hp.NumWords)
		tok.Fit(trainTexts)
		if err := tok.Save(filepath.Join(r.Env.ModelDir, TokenizerFile)); err != nil {
			return nil, err
		}

		var emb *nlp.Embedding
		if hp.EmbeddingFile != "" {
			emb, err = nlp.LoadEmbeddings(hp.EmbeddingFile, tok, hp.EmbeddingDim)
			if err != nil {
				return nil, fmt.Errorf("load embeddings: %w", err)
			}
		}

		vectorize = func(texts []string) ([][]float64, error) {
			seqs := tok.PaddedSequences(texts, hp.MaxLen)
			out := make([][]float64, len(seqs))
			for i, seq := range seqs {
				if emb != nil {
					out[i] = emb.DocVector(seq)
				} else {
					out[i] = nlp.BagOfWords(seq, tok.VocabSize())
				}
			}
			return out, nil
		}
	}

	encoder := &dataset.LabelEncoder{}
	encoder.Fit(append(append([]string{}, trainRaw...), valRaw...))
	trainY, err := encoder.Transform(trainRaw)
	if err != nil {
		return nil, err
	}

	prepared := &preparedData{classes: encoder.Classes}
	if valTable != nil {
		valY, err := encoder.Transform(valRaw)
		if err != nil {
			return nil, err
		}
		if prepared.trainX, err = vectorize(trainTexts); err != nil {
			return nil, err
		}
		prepared.trainY = trainY
		if prepared.testX, err = vectorize(valTexts); err != nil {
			return nil, err
		}
		prepared.testY = valY
		return prepared, nil
	}

	vectors, err := vectorize(trainTexts)
	if err != nil {
		return nil, err
	}
	prepared.trainX, prepared.trainY, prepared.testX, prepared.testY =
		dataset.Split(vectors, trainY, hp.TestRatio, hp.Seed)
	return prepared, nil
}

func newModel(hp Hyperparameters) (ml.Model, error) {
	switch hp.ModelType {
	case ml.TypeDecisionTree:
		return ml.NewDecisionTree(hp.MaxDepth), nil
	case ml.TypeRandomForest:
		return ml.NewRandomForest(hp.NumTrees, hp.MaxDepth, hp.Seed), nil
	case ml.TypeLinear:
		return ml.NewLinearClassifier(hp.Epochs, hp.LearningRate, hp.Seed), nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", hp.ModelType)
	}
}

func readChannel(dir string, hp Hyperparameters) (*dataset.Table, error) {
	path, err := dataset.ChannelFile(dir)
	if err != nil {
		return nil, err
	}
	opts := dataset.ReadOptions{}
	if hp.Separator != "" {
		opts.Comma = rune(hp.Separator[0])
	}
	return dataset.ReadCSV(path, opts)
}

func textColumns(t *dataset.Table, hp Hyperparameters) (texts, labels []string, err error) {
	texts, err = t.Column(hp.TextColumn)
	if err != nil {
		return nil, nil, err
	}
	labels, err = t.Column(hp.Target)
	if err != nil {
		return nil, nil, err
	}
	return texts, labels, nil
}

func sameColumns(a, b *dataset.Table) error {
	if len(a.Columns) != len(b.Columns) {
		return errors.New("train and validation headers differ")
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return errors.New("train and validation headers differ")
		}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
