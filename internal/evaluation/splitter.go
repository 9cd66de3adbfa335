package evaluation

import (
	"fmt"
	"math/rand"
	"sort"
)

// Splitter produces a seeded stratified train/held-out partition over sample
// indices. The same seed and labels always yield the same partition, which
// is what makes champion selection reproducible across runs.
type Splitter struct {
	TestSize float64
	Seed     int64
}

func NewSplitter(testSize float64, seed int64) *Splitter {
	return &Splitter{TestSize: testSize, Seed: seed}
}

// StratifiedSplit partitions indices so that each class keeps roughly its
// overall share in both subsets. Classes are walked in sorted order and all
// shuffles share one seeded source, so the result is deterministic.
func (s *Splitter) StratifiedSplit(y []int) (trainIdx, testIdx []int, err error) {
	if len(y) == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}
	if s.TestSize <= 0 || s.TestSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1, got %g", s.TestSize)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(s.Seed))
	for _, class := range classes {
		indices := byClass[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(float64(len(indices)) * s.TestSize)
		if testCount == 0 && len(indices) > 1 {
			testCount = 1
		}

		split := len(indices) - testCount
		trainIdx = append(trainIdx, indices[:split]...)
		testIdx = append(testIdx, indices[split:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) {
		trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
	})
	rng.Shuffle(len(testIdx), func(i, j int) {
		testIdx[i], testIdx[j] = testIdx[j], testIdx[i]
	})

	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, nil, fmt.Errorf("split produced an empty subset (n=%d, test size %g)", len(y), s.TestSize)
	}
	return trainIdx, testIdx, nil
}

// KFold partitions n indices into folds for cross-validation, shuffled with
// the splitter's seed.
func (s *Splitter) KFold(n, folds int) ([][]int, error) {
	if folds < 2 || folds > n {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", folds, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(s.Seed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	result := make([][]int, folds)
	foldSize := n / folds
	for f := 0; f < folds; f++ {
		start := f * foldSize
		end := start + foldSize
		if f == folds-1 {
			end = n
		}
		result[f] = make([]int, end-start)
		copy(result[f], indices[start:end])
	}
	return result, nil
}
