package models

import (
	"math"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// RandomForest bags probability trees over bootstrap resamples with sqrt(p)
// feature subsampling. Every tree draws from rand seeded with Seed+index, so
// a fixed seed reproduces the whole ensemble regardless of worker scheduling.
type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Seed            int64
	Trees           []*DecisionTree
	FeatureIndices  [][]int
	MaxWorkers      int
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit int, seed int64) *RandomForest {
	if nTrees <= 0 {
		nTrees = 100
	}
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit <= 1 {
		minSamplesSplit = 2
	}

	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		Seed:            seed,
		MaxWorkers:      4,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_trees":           nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"seed":              seed,
			},
		},
	}
}

func (rf *RandomForest) Fit(X [][]decimal.Decimal, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return err
	}

	nFeatures := len(X[0])
	rf.MaxFeatures = int(math.Sqrt(float64(nFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	rf.FeatureIndices = make([][]int, rf.NTrees)

	workers := rf.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > rf.NTrees {
		workers = rf.NTrees
	}

	jobs := make(chan int, rf.NTrees)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rf.Trees[i], rf.FeatureIndices[i] = rf.growTree(X, y, rf.Seed+int64(i))
			}
		}()
	}

	for i := 0; i < rf.NTrees; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return nil
}

func (rf *RandomForest) growTree(X [][]decimal.Decimal, y []int, seed int64) (*DecisionTree, []int) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([][]decimal.Decimal, n)
	yBoot := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	features := rf.sampleFeatures(len(X[0]), r)
	XSelected := make([][]decimal.Decimal, n)
	for i := range XBoot {
		XSelected[i] = make([]decimal.Decimal, len(features))
		for j, feat := range features {
			XSelected[i][j] = XBoot[i][feat]
		}
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit)
	tree.fitSubsample(XSelected, yBoot)
	return tree, features
}

func (rf *RandomForest) sampleFeatures(nFeatures int, r *rand.Rand) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}
	for i := 0; i < rf.MaxFeatures && i < nFeatures; i++ {
		j := i + r.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}
	return features[:rf.MaxFeatures]
}

func (rf *RandomForest) Predict(X [][]decimal.Decimal) []int {
	return thresholdProba(rf.PredictProba(X))
}

// PredictProba averages the per-tree leaf probabilities, which gives a much
// finer-grained score than counting hard votes.
func (rf *RandomForest) PredictProba(X [][]decimal.Decimal) []float64 {
	proba := make([]float64, len(X))

	for i, sample := range X {
		sum := 0.0
		for t, tree := range rf.Trees {
			selected := make([]decimal.Decimal, len(rf.FeatureIndices[t]))
			for k, feat := range rf.FeatureIndices[t] {
				selected[k] = sample[feat]
			}
			sum += tree.predictSample(selected)
		}
		proba[i] = sum / float64(len(rf.Trees))
	}

	return proba
}
