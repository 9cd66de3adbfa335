package evaluation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shvm190/heart-disease-mlops/internal/evaluation"
)

func TestEvaluateKnownConfusion(t *testing.T) {
	yTrue := []int{1, 1, 1, 1, 0, 0, 0, 0}
	yPred := []int{1, 1, 1, 0, 0, 0, 1, 0}
	proba := []float64{0.9, 0.8, 0.7, 0.4, 0.3, 0.2, 0.6, 0.1}

	m, err := evaluation.Evaluate(yTrue, yPred, proba)
	require.NoError(t, err)

	// tp=3 fp=1 fn=1 tn=3
	assert.InDelta(t, 0.75, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.75, m.Precision, 1e-9)
	assert.InDelta(t, 0.75, m.Recall, 1e-9)
	assert.InDelta(t, 0.75, m.F1Score, 1e-9)
	assert.Equal(t, 8, m.NumSamples)
	assert.True(t, m.AUCAvailable)
}

func TestEvaluatePerfectSeparation(t *testing.T) {
	yTrue := []int{0, 0, 1, 1}
	yPred := []int{0, 0, 1, 1}
	proba := []float64{0.1, 0.2, 0.8, 0.9}

	m, err := evaluation.Evaluate(yTrue, yPred, proba)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, m.ROCAUC, 1e-9)
}

func TestEvaluateROCAUCWithTies(t *testing.T) {
	// of the four positive-negative pairs one is tied at 0.5 and counts
	// half: AUC = 3.5 / 4
	yTrue := []int{0, 0, 1, 1}
	yPred := []int{0, 0, 1, 1}
	proba := []float64{0.1, 0.5, 0.5, 0.9}

	m, err := evaluation.Evaluate(yTrue, yPred, proba)
	require.NoError(t, err)
	assert.InDelta(t, 0.875, m.ROCAUC, 1e-9)
}

func TestEvaluateSingleClassGroundTruth(t *testing.T) {
	yTrue := []int{1, 1, 1}
	yPred := []int{1, 0, 1}
	proba := []float64{0.9, 0.4, 0.8}

	m, err := evaluation.Evaluate(yTrue, yPred, proba)
	require.NoError(t, err)

	assert.False(t, m.AUCAvailable)
	assert.Equal(t, evaluation.AUCUnavailable, m.ROCAUC)
	// the remaining metrics still make sense
	assert.InDelta(t, 2.0/3.0, m.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, m.Precision, 1e-9)
}

func TestEvaluateNoPositivePredictions(t *testing.T) {
	yTrue := []int{1, 0, 1, 0}
	yPred := []int{0, 0, 0, 0}
	proba := []float64{0.3, 0.2, 0.4, 0.1}

	m, err := evaluation.Evaluate(yTrue, yPred, proba)
	require.NoError(t, err)

	// tp+fp = 0: precision, recall and F1 degrade to zero instead of NaN
	assert.Zero(t, m.Precision)
	assert.Zero(t, m.Recall)
	assert.Zero(t, m.F1Score)
}

func TestEvaluateLengthMismatch(t *testing.T) {
	_, err := evaluation.Evaluate([]int{1, 0}, []int{1}, []float64{0.5})
	assert.Error(t, err)
}

func TestEvaluateEmpty(t *testing.T) {
	_, err := evaluation.Evaluate(nil, nil, nil)
	assert.Error(t, err)
}
