package ml

import (
	"fmt"
)

// LoadModel restores a saved artifact as the named model type.
func LoadModel(modelType, path string) (Model, error) {
	var model Model
	switch modelType {
	case TypeDecisionTree:
		model = &DecisionTree{maxDepth: 3}
	case TypeRandomForest:
		model = &RandomForest{}
	case TypeLinear:
		model = &LinearClassifier{}
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}
