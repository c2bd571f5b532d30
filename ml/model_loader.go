package ml

import (
	"fmt"
)

const (
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeLinear       = "linear"
)

func LoadModel(modelType, path string) (Model, error) {
	var model Model
	switch modelType {
	case ModelTypeDecisionTree, "":
		model = &DecisionTree{}
	case ModelTypeLinear:
		model = &LinearModel{}
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, fmt.Errorf("load %s model: %w", modelType, err)
	}
	return model, nil
}
