package http

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tom5610/sagemaker-101-workshop/ml"
	"github.com/tom5610/sagemaker-101-workshop/nlp"
	"github.com/tom5610/sagemaker-101-workshop/train"
)

func writeManifest(t *testing.T, dir string, manifest train.Manifest) {
	t.Helper()
	payload, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, train.ManifestFile), payload, 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestLoadPipelineTabular(t *testing.T) {
	dir := t.TempDir()

	features := [][]float64{{0, 0}, {0.1, 0.1}, {10, 10}, {9, 9}}
	labels := []int{0, 0, 1, 1}
	model := ml.NewDecisionTree(3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("train: %v", err)
	}
	if err := model.Save(filepath.Join(dir, train.ModelFile)); err != nil {
		t.Fatalf("save model: %v", err)
	}

	scaler := &ml.Scaler{}
	if err := scaler.Fit(features); err != nil {
		t.Fatalf("fit scaler: %v", err)
	}
	if err := scaler.Save(filepath.Join(dir, train.ScalerFile)); err != nil {
		t.Fatalf("save scaler: %v", err)
	}

	writeManifest(t, dir, train.Manifest{
		ModelType: "decision_tree",
		Target:    "label",
		Classes:   []string{"low", "high"},
		TrainedAt: time.Now().UTC(),
	})

	pipeline, err := LoadPipeline(dir)
	if err != nil {
		t.Fatalf("load pipeline: %v", err)
	}

	label, confidence, err := pipeline.PredictFeatures([]float64{9.5, 9.5})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
	if confidence <= 0 {
		t.Fatal("expected positive confidence")
	}
	if pipeline.ClassName(label) != "high" {
		t.Fatalf("unexpected class name: %s", pipeline.ClassName(label))
	}
}

func TestLoadPipelineText(t *testing.T) {
	dir := t.TempDir()

	texts := []string{
		"good great excellent",
		"wonderful great good",
		"bad awful terrible",
		"horrible awful bad",
	}
	labels := []int{1, 1, 0, 0}
	maxLen := 5

	tok := nlp.NewTokenizer(0)
	tok.Fit(texts)
	if err := tok.Save(filepath.Join(dir, train.TokenizerFile)); err != nil {
		t.Fatalf("save tokenizer: %v", err)
	}

	features := make([][]float64, len(texts))
	for i, text := range texts {
		features[i] = nlp.BagOfWords(nlp.Pad(tok.Encode(text), maxLen), tok.VocabSize())
	}
	model := ml.NewLinearClassifier(100, 0.5, 1)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("train: %v", err)
	}
	if err := model.Save(filepath.Join(dir, train.ModelFile)); err != nil {
		t.Fatalf("save model: %v", err)
	}

	writeManifest(t, dir, train.Manifest{
		ModelType:  "linear",
		Target:     "sentiment",
		Classes:    []string{"negative", "positive"},
		TextColumn: "review",
		MaxLen:     maxLen,
		TrainedAt:  time.Now().UTC(),
	})

	pipeline, err := LoadPipeline(dir)
	if err != nil {
		t.Fatalf("load pipeline: %v", err)
	}

	label, _, err := pipeline.PredictText("great excellent good")
	if err != nil {
		t.Fatalf("predict text: %v", err)
	}
	if pipeline.ClassName(label) != "positive" {
		t.Fatalf("expected positive, got %s", pipeline.ClassName(label))
	}

	label, _, err = pipeline.PredictText("awful terrible horrible")
	if err != nil {
		t.Fatalf("predict text: %v", err)
	}
	if pipeline.ClassName(label) != "negative" {
		t.Fatalf("expected negative, got %s", pipeline.ClassName(label))
	}
}

func TestLoadPipelineMissingManifest(t *testing.T) {
	if _, err := LoadPipeline(t.TempDir()); err == nil {
		t.Fatal("expected error for empty model dir")
	}
}
