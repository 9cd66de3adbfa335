package models

import (
	"fmt"
)

// Spec declares one candidate classifier for a training run. Zero-valued
// hyperparameters fall back to the constructor defaults.
type Spec struct {
	Algorithm string `yaml:"algorithm"`

	// logistic regression
	MaxIter      int     `yaml:"max_iter"`
	LearningRate float64 `yaml:"learning_rate"`
	L2           float64 `yaml:"l2"`

	// trees
	NTrees          int   `yaml:"n_trees"`
	MaxDepth        int   `yaml:"max_depth"`
	MinSamplesSplit int   `yaml:"min_samples_split"`
	Seed            int64 `yaml:"seed"`

	// naive bayes
	VarSmoothing float64 `yaml:"var_smoothing"`
}

func FromSpec(spec Spec) (Model, error) {
	switch spec.Algorithm {
	case "logistic":
		return NewLogisticRegression(spec.MaxIter, spec.LearningRate, spec.L2), nil

	case "forest":
		return NewRandomForest(spec.NTrees, spec.MaxDepth, spec.MinSamplesSplit, spec.Seed), nil

	case "tree":
		return NewDecisionTree(spec.MaxDepth, spec.MinSamplesSplit), nil

	case "bayes":
		return NewNaiveBayes(spec.VarSmoothing), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", spec.Algorithm)
	}
}

// DefaultSpecs is the stock candidate set: a linear baseline and a bagged
// tree ensemble.
func DefaultSpecs(seed int64) []Spec {
	return []Spec{
		{Algorithm: "logistic", MaxIter: 1000, LearningRate: 0.1},
		{Algorithm: "forest", NTrees: 100, MaxDepth: 10, MinSamplesSplit: 2, Seed: seed},
	}
}
