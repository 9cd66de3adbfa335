package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// NaiveBayes is a Gaussian naive bayes classifier for the two disease
// classes. Per-class feature means and variances are learned in float space;
// probabilities come out of a log-space softmax over the two classes.
type NaiveBayes struct {
	BaseModel
	VarSmoothing float64
	Classes      [2]ClassDensity
}

// ClassDensity holds the fitted per-class Gaussian parameters.
type ClassDensity struct {
	LogPrior float64
	Mean     []float64
	Variance []float64
}

func NewNaiveBayes(varSmoothing float64) *NaiveBayes {
	if varSmoothing <= 0 {
		varSmoothing = 1e-9
	}

	return &NaiveBayes{
		VarSmoothing: varSmoothing,
		BaseModel: BaseModel{
			Name: "NaiveBayes",
			Params: map[string]any{
				"var_smoothing": varSmoothing,
			},
		},
	}
}

func (nb *NaiveBayes) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return err
	}

	features := toFloats(X)
	nFeatures := len(features[0])

	for class := 0; class <= 1; class++ {
		var rows [][]float64
		for i, label := range y {
			if label == class {
				rows = append(rows, features[i])
			}
		}

		density := ClassDensity{
			LogPrior: math.Log(float64(len(rows)) / float64(len(y))),
			Mean:     make([]float64, nFeatures),
			Variance: make([]float64, nFeatures),
		}

		for j := 0; j < nFeatures; j++ {
			sum := 0.0
			for _, row := range rows {
				sum += row[j]
			}
			mean := sum / float64(len(rows))
			density.Mean[j] = mean

			variance := 0.0
			for _, row := range rows {
				diff := row[j] - mean
				variance += diff * diff
			}
			density.Variance[j] = variance/float64(len(rows)) + nb.VarSmoothing
		}

		nb.Classes[class] = density
	}

	return nil
}

func (nb *NaiveBayes) Predict(X [][]decimal.Decimal) []int {
	return thresholdProba(nb.PredictProba(X))
}

func (nb *NaiveBayes) PredictProba(X [][]decimal.Decimal) []float64 {
	proba := make([]float64, len(X))

	for i, row := range toFloats(X) {
		logP0 := nb.jointLogLikelihood(0, row)
		logP1 := nb.jointLogLikelihood(1, row)

		// stable two-class softmax
		maxLog := math.Max(logP0, logP1)
		p1 := math.Exp(logP1 - maxLog)
		proba[i] = p1 / (math.Exp(logP0-maxLog) + p1)
	}

	return proba
}

func (nb *NaiveBayes) jointLogLikelihood(class int, row []float64) float64 {
	density := nb.Classes[class]
	logProb := density.LogPrior

	for j, x := range row {
		variance := density.Variance[j]
		diff := x - density.Mean[j]
		logProb += -0.5*math.Log(2*math.Pi*variance) - (diff*diff)/(2*variance)
	}

	return logProb
}
