package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TreeNode is one node of a fitted decision tree. Leaves keep the fraction
// of positive training samples that reached them, so the tree can emit a
// graded probability instead of a hard vote.
type TreeNode struct {
	IsLeaf      bool
	Probability float64
	Feature     int
	Threshold   decimal.Decimal
	Left        *TreeNode
	Right       *TreeNode
	Samples     int
}

// DecisionTree is a CART-style binary classifier splitting on gini impurity.
// Split search is exhaustive over observed thresholds, so fitting is fully
// deterministic.
type DecisionTree struct {
	BaseModel
	Root            *TreeNode
	MaxDepth        int
	MinSamplesSplit int
}

func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit <= 1 {
		minSamplesSplit = 2
	}

	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

func (dt *DecisionTree) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return err
	}
	dt.Root = dt.buildNode(X, y, 0)
	return nil
}

// fitSubsample is the entry point used by the random forest: bootstrap
// resamples may be single-class, which is fine for an individual tree.
func (dt *DecisionTree) fitSubsample(X [][]decimal.Decimal, y []int) {
	dt.Root = dt.buildNode(X, y, 0)
}

func (dt *DecisionTree) buildNode(X [][]decimal.Decimal, y []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples:     len(y),
		Probability: positiveShare(y),
	}

	if depth >= dt.MaxDepth || len(y) < dt.MinSamplesSplit || node.Probability == 0 || node.Probability == 1 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := dt.bestSplit(X, y)
	if gain <= 0 {
		node.IsLeaf = true
		return node
	}

	left, right := partition(X, feature, threshold)
	if len(left) == 0 || len(right) == 0 {
		node.IsLeaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = dt.buildNode(take(X, left), takeLabels(y, left), depth+1)
	node.Right = dt.buildNode(take(X, right), takeLabels(y, right), depth+1)
	return node
}

func (dt *DecisionTree) bestSplit(X [][]decimal.Decimal, y []int) (int, decimal.Decimal, float64) {
	bestFeature := 0
	bestThreshold := decimal.Zero
	bestGain := 0.0

	parent := gini(y)
	n := float64(len(y))

	for feature := range X[0] {
		for _, threshold := range observedValues(X, feature) {
			left, right := partition(X, feature, threshold)
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			weighted := (float64(len(left))/n)*gini(takeLabels(y, left)) +
				(float64(len(right))/n)*gini(takeLabels(y, right))

			if gain := parent - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

func (dt *DecisionTree) Predict(X [][]decimal.Decimal) []int {
	return thresholdProba(dt.PredictProba(X))
}

func (dt *DecisionTree) PredictProba(X [][]decimal.Decimal) []float64 {
	proba := make([]float64, len(X))
	for i, sample := range X {
		proba[i] = dt.predictSample(sample)
	}
	return proba
}

func (dt *DecisionTree) predictSample(sample []decimal.Decimal) float64 {
	node := dt.Root
	for !node.IsLeaf {
		if sample[node.Feature].LessThan(node.Threshold) {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Probability
}

func gini(y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	p := positiveShare(y)
	return 2 * p * (1 - p)
}

func positiveShare(y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	positives := 0
	for _, label := range y {
		if label == 1 {
			positives++
		}
	}
	return float64(positives) / float64(len(y))
}

// observedValues returns the distinct values column feature takes, used as
// candidate thresholds. Order does not matter: bestSplit maximizes a strict
// inequality, so ties fall to the threshold seen first; map iteration order
// is neutralized by sorting on the decimal value.
func observedValues(X [][]decimal.Decimal, feature int) []decimal.Decimal {
	seen := make(map[string]decimal.Decimal)
	for _, sample := range X {
		seen[sample[feature].String()] = sample[feature]
	}

	values := make([]decimal.Decimal, 0, len(seen))
	for _, v := range seen {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].LessThan(values[j])
	})
	return values
}

func partition(X [][]decimal.Decimal, feature int, threshold decimal.Decimal) (left, right []int) {
	for i, sample := range X {
		if sample[feature].LessThan(threshold) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func take(X [][]decimal.Decimal, indices []int) [][]decimal.Decimal {
	selected := make([][]decimal.Decimal, len(indices))
	for i, idx := range indices {
		selected[i] = X[idx]
	}
	return selected
}

func takeLabels(y []int, indices []int) []int {
	selected := make([]int, len(indices))
	for i, idx := range indices {
		selected[i] = y[idx]
	}
	return selected
}
