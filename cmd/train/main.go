package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/tom5610/sagemaker-101-workshop/db"
	"github.com/tom5610/sagemaker-101-workshop/train"
)

func main() {
	trainDir := flag.String("train", "", "training channel directory (falls back to SM_CHANNEL_TRAIN)")
	validationDir := flag.String("validation", "", "validation channel directory (falls back to SM_CHANNEL_VALIDATION)")
	modelDir := flag.String("model_dir", "", "model output directory (falls back to SM_MODEL_DIR)")
	hpPath := flag.String("hyperparameters", "", "hyperparameters JSON file")
	modelType := flag.String("model_type", "", "decision_tree, random_forest or linear")
	target := flag.String("target", "", "target column")
	textColumn := flag.String("text_column", "", "text input column")
	maxDepth := flag.Int("max_depth", 0, "max tree depth")
	numTrees := flag.Int("num_trees", 0, "number of trees")
	epochs := flag.Int("epochs", 0, "training epochs")
	learningRate := flag.Float64("learning_rate", 0, "learning rate")
	seed := flag.Int64("seed", 0, "random seed")
	dbPath := flag.String("db", "", "sqlite database to record the run in")
	modelName := flag.String("name", "model", "model name for the run record")
	flag.Parse()

	env, err := train.ResolveEnvironment(*trainDir, *validationDir, *modelDir)
	if err != nil {
		log.Fatalf("failed to resolve environment: %v", err)
	}

	hp, err := train.LoadHyperparameters(*hpPath)
	if err != nil {
		log.Fatalf("failed to load hyperparameters: %v", err)
	}
	applyOverrides(&hp, *modelType, *target, *textColumn, *maxDepth, *numTrees, *epochs, *learningRate, *seed)

	runner := &train.Runner{
		Env: env,
		HP:  hp,
		Progress: func(event train.Event) {
			log.Printf("[%s] %s", event.Stage, event.Message)
		},
	}

	result, err := runner.Run()
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	log.Printf("accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f",
		result.Metrics.Accuracy, result.Metrics.Precision, result.Metrics.Recall, result.Metrics.F1)

	if *dbPath != "" {
		if err := recordRun(*dbPath, *modelName, result); err != nil {
			log.Printf("failed to record run: %v", err)
		}
	}

	fmt.Printf("model saved to %s\n", result.ArtifactPath)
}

func applyOverrides(hp *train.Hyperparameters, modelType, target, textColumn string, maxDepth, numTrees, epochs int, learningRate float64, seed int64) {
	if modelType != "" {
		hp.ModelType = modelType
	}
	if target != "" {
		hp.Target = target
	}
	if textColumn != "" {
		hp.TextColumn = textColumn
	}
	if maxDepth != 0 {
		hp.MaxDepth = maxDepth
	}
	if numTrees != 0 {
		hp.NumTrees = numTrees
	}
	if epochs != 0 {
		hp.Epochs = epochs
	}
	if learningRate != 0 {
		hp.LearningRate = learningRate
	}
	if seed != 0 {
		hp.Seed = seed
	}
}

func recordRun(dbPath, modelName string, result *train.Result) error {
	if err := db.InitDB(dbPath); err != nil {
		return err
	}
	defer db.Close()

	hpJSON, err := json.Marshal(result.Manifest)
	if err != nil {
		return err
	}
	return db.SaveTrainingRun(db.TrainingRun{
		ModelName:       modelName,
		ModelType:       result.ModelType,
		Hyperparameters: string(hpJSON),
		Accuracy:        result.Metrics.Accuracy,
		Precision:       result.Metrics.Precision,
		Recall:          result.Metrics.Recall,
		F1:              result.Metrics.F1,
		DataPoints:      result.Metrics.DataPoints,
		ArtifactPath:    result.ArtifactPath,
	})
}
