package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// LogisticRegression is an L2-regularized logistic model trained by batch
// gradient descent. Weights start at zero and no randomness is involved, so
// a fit on the same data always produces the same parameters.
type LogisticRegression struct {
	BaseModel
	MaxIter      int
	LearningRate float64
	L2           float64
	Weights      []float64
	Bias         float64
}

func NewLogisticRegression(maxIter int, learningRate, l2 float64) *LogisticRegression {
	if maxIter <= 0 {
		maxIter = 1000
	}
	if learningRate <= 0 {
		learningRate = 0.1
	}
	if l2 < 0 {
		l2 = 0
	}

	return &LogisticRegression{
		MaxIter:      maxIter,
		LearningRate: learningRate,
		L2:           l2,
		BaseModel: BaseModel{
			Name: "LogisticRegression",
			Params: map[string]any{
				"max_iter":      maxIter,
				"learning_rate": learningRate,
				"l2":            l2,
			},
		},
	}
}

func (lr *LogisticRegression) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return err
	}

	features := toFloats(X)
	n := len(features)
	nFeatures := len(features[0])

	lr.Weights = make([]float64, nFeatures)
	lr.Bias = 0

	gradW := make([]float64, nFeatures)
	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range features {
			residual := sigmoid(lr.decision(row)) - float64(y[i])
			for j, x := range row {
				gradW[j] += residual * x
			}
			gradB += residual
		}

		for j := range lr.Weights {
			gradW[j] = gradW[j]/float64(n) + lr.L2*lr.Weights[j]/float64(n)
			lr.Weights[j] -= lr.LearningRate * gradW[j]
		}
		lr.Bias -= lr.LearningRate * gradB / float64(n)
	}

	return nil
}

func (lr *LogisticRegression) Predict(X [][]decimal.Decimal) []int {
	return thresholdProba(lr.PredictProba(X))
}

func (lr *LogisticRegression) PredictProba(X [][]decimal.Decimal) []float64 {
	proba := make([]float64, len(X))
	for i, row := range toFloats(X) {
		proba[i] = sigmoid(lr.decision(row))
	}
	return proba
}

func (lr *LogisticRegression) decision(row []float64) float64 {
	sum := lr.Bias
	for j, x := range row {
		sum += lr.Weights[j] * x
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
