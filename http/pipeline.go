package http

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tom5610/sagemaker-101-workshop/ml"
	"github.com/tom5610/sagemaker-101-workshop/nlp"
	"github.com/tom5610/sagemaker-101-workshop/train"

	"encoding/json"
)

// Pipeline is a loaded model artifact plus the input transforms it was
// trained with, reconstructed from the model directory's manifest.
type Pipeline struct {
	Model    ml.Model
	Manifest train.Manifest

	scaler     *ml.Scaler
	tokenizer  *nlp.Tokenizer
	embedding  *nlp.Embedding
	pretrained *nlp.PretrainedTokenizer
}

var (
	pipelineMu      sync.RWMutex
	currentPipeline *Pipeline
)

// SetPipeline swaps the served pipeline. Nil unloads the model, which makes
// /ping report unhealthy. Cached responses belong to the previous model, so
// the cache is dropped with it.
func SetPipeline(p *Pipeline) {
	pipelineMu.Lock()
	currentPipeline = p
	pipelineMu.Unlock()

	if predictCache != nil {
		predictCache.Purge()
	}
}

// CurrentPipeline returns the served pipeline, or nil when none is loaded.
func CurrentPipeline() *Pipeline {
	pipelineMu.RLock()
	defer pipelineMu.RUnlock()
	return currentPipeline
}

// LoadPipeline reads the artifact set a training run wrote into modelDir.
func LoadPipeline(modelDir string) (*Pipeline, error) {
	manifestPath := filepath.Join(modelDir, train.ManifestFile)
	payload, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest train.Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	model, err := ml.LoadModel(manifest.ModelType, filepath.Join(modelDir, train.ModelFile))
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	pipeline := &Pipeline{Model: model, Manifest: manifest}

	if manifest.TextColumn != "" {
		if manifest.PretrainedTokenizerFile != "" {
			pre, err := nlp.LoadPretrained(manifest.PretrainedTokenizerFile, manifest.MaxLen)
			if err != nil {
				return nil, fmt.Errorf("load pretrained tokenizer: %w", err)
			}
			pipeline.pretrained = pre
			return pipeline, nil
		}

		tok := &nlp.Tokenizer{}
		if err := tok.Load(filepath.Join(modelDir, train.TokenizerFile)); err != nil {
			return nil, fmt.Errorf("load tokenizer: %w", err)
		}
		pipeline.tokenizer = tok
		if manifest.EmbeddingFile != "" {
			emb, err := nlp.LoadEmbeddings(manifest.EmbeddingFile, tok, manifest.EmbeddingDim)
			if err != nil {
				return nil, fmt.Errorf("load embeddings: %w", err)
			}
			pipeline.embedding = emb
		}
		return pipeline, nil
	}

	scaler := &ml.Scaler{}
	scalerPath := filepath.Join(modelDir, train.ScalerFile)
	if _, err := os.Stat(scalerPath); err == nil {
		if err := scaler.Load(scalerPath); err != nil {
			return nil, fmt.Errorf("load scaler: %w", err)
		}
		pipeline.scaler = scaler
	}
	return pipeline, nil
}

// PredictFeatures applies the training-time scaling and predicts.
func (p *Pipeline) PredictFeatures(features []float64) (int, float64, error) {
	if p == nil || p.Model == nil {
		return 0, 0, errors.New("no model loaded")
	}
	input := features
	if p.scaler != nil {
		scaled, err := p.scaler.TransformVector(features)
		if err != nil {
			return 0, 0, err
		}
		input = scaled
	}
	return p.Model.Predict(input)
}

// PredictText runs raw text through the tokenizer pipeline and predicts.
func (p *Pipeline) PredictText(text string) (int, float64, error) {
	if p == nil || p.Model == nil {
		return 0, 0, errors.New("no model loaded")
	}
	if p.pretrained != nil {
		seq, err := p.pretrained.Encode(text)
		if err != nil {
			return 0, 0, err
		}
		return p.Model.Predict(nlp.BagOfWords(seq, p.pretrained.VocabSize()))
	}
	if p.tokenizer == nil {
		return 0, 0, errors.New("model does not accept text input")
	}
	seq := nlp.Pad(p.tokenizer.Encode(text), p.Manifest.MaxLen)
	var vector []float64
	if p.embedding != nil {
		vector = p.embedding.DocVector(seq)
	} else {
		vector = nlp.BagOfWords(seq, p.tokenizer.VocabSize())
	}
	return p.Model.Predict(vector)
}

// ClassName resolves a label to its training-time class name.
func (p *Pipeline) ClassName(label int) string {
	if p == nil || label < 0 || label >= len(p.Manifest.Classes) {
		return ""
	}
	return p.Manifest.Classes[label]
}
