package evaluation

import (
	"fmt"
	"sort"
)

// AUCUnavailable is the sentinel ROC-AUC reported when the ground truth
// holds a single class and the curve is undefined.
const AUCUnavailable = -1.0

// MetricSet is the fixed evaluation result for one binary classifier.
type MetricSet struct {
	Accuracy     float64 `json:"accuracy"`
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	F1Score      float64 `json:"f1_score"`
	ROCAUC       float64 `json:"roc_auc"`
	AUCAvailable bool    `json:"auc_available"`
	NumSamples   int     `json:"num_samples"`
}

// Evaluate computes accuracy, precision, recall, F1 and ROC-AUC for binary
// predictions. It is a pure function: no state, no I/O. A single-class
// ground truth yields the AUC sentinel instead of an error.
func Evaluate(yTrue, yPred []int, proba []float64) (MetricSet, error) {
	if len(yTrue) != len(yPred) || len(yTrue) != len(proba) {
		return MetricSet{}, fmt.Errorf("labels, predictions and probabilities have different lengths: %d, %d, %d",
			len(yTrue), len(yPred), len(proba))
	}
	if len(yTrue) == 0 {
		return MetricSet{}, fmt.Errorf("cannot evaluate an empty sample")
	}

	var tp, fp, fn, correct int
	for i, truth := range yTrue {
		if yPred[i] == truth {
			correct++
		}
		switch {
		case yPred[i] == 1 && truth == 1:
			tp++
		case yPred[i] == 1 && truth == 0:
			fp++
		case yPred[i] == 0 && truth == 1:
			fn++
		}
	}

	precision := safeDivide(float64(tp), float64(tp+fp))
	recall := safeDivide(float64(tp), float64(tp+fn))

	m := MetricSet{
		Accuracy:   float64(correct) / float64(len(yTrue)),
		Precision:  precision,
		Recall:     recall,
		F1Score:    safeDivide(2*precision*recall, precision+recall),
		NumSamples: len(yTrue),
	}
	m.ROCAUC, m.AUCAvailable = rocAUC(yTrue, proba)
	return m, nil
}

// rocAUC computes the area under the ROC curve by the rank statistic
// (Mann-Whitney U), averaging ranks across probability ties.
func rocAUC(yTrue []int, proba []float64) (float64, bool) {
	positives := 0
	for _, label := range yTrue {
		if label == 1 {
			positives++
		}
	}
	negatives := len(yTrue) - positives
	if positives == 0 || negatives == 0 {
		return AUCUnavailable, false
	}

	order := make([]int, len(proba))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return proba[order[a]] < proba[order[b]]
	})

	ranks := make([]float64, len(proba))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && proba[order[j+1]] == proba[order[i]] {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avgRank
		}
		i = j + 1
	}

	rankSum := 0.0
	for i, label := range yTrue {
		if label == 1 {
			rankSum += ranks[i]
		}
	}

	nPos := float64(positives)
	nNeg := float64(negatives)
	auc := (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
	return auc, true
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}

func (m MetricSet) String() string {
	auc := "n/a"
	if m.AUCAvailable {
		auc = fmt.Sprintf("%.4f", m.ROCAUC)
	}
	return fmt.Sprintf("accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f roc_auc=%s",
		m.Accuracy, m.Precision, m.Recall, m.F1Score, auc)
}
