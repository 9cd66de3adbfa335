package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Model is a binary classifier over preprocessed feature vectors.
// PredictProba returns the positive-class (disease present) probability per
// sample; Predict thresholds it at 0.5.
type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	PredictProba(X [][]decimal.Decimal) []float64
	GetName() string
	GetParams() map[string]any
}

type BaseModel struct {
	Name   string
	Params map[string]any
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

// checkTrainingData rejects batches no binary classifier can learn from.
func checkTrainingData(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	positives := 0
	for _, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d is not binary", label)
		}
		if label == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(y) {
		return fmt.Errorf("training labels contain a single class")
	}
	return nil
}

// toFloats converts a decimal feature matrix for models whose internal math
// needs transcendental functions.
func toFloats(X [][]decimal.Decimal) [][]float64 {
	result := make([][]float64, len(X))
	for i, row := range X {
		result[i] = make([]float64, len(row))
		for j, v := range row {
			result[i][j], _ = v.Float64()
		}
	}
	return result
}

func thresholdProba(proba []float64) []int {
	predictions := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			predictions[i] = 1
		}
	}
	return predictions
}
