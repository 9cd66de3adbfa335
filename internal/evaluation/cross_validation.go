package evaluation

import (
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/models"
)

// CrossValidator scores a candidate specification by k-fold ROC-AUC on the
// training subset. A fresh model is built per fold from the candidate Spec,
// so folds
// never share fitted state and can run in parallel.
type CrossValidator struct {
	NFolds     int
	Seed       int64
	MaxWorkers int
}

func NewCrossValidator(nFolds int, seed int64) *CrossValidator {
	return &CrossValidator{
		NFolds:     nFolds,
		Seed:       seed,
		MaxWorkers: 4,
	}
}

// ROCAUC returns the mean and sample standard deviation of the per-fold
// held-out ROC-AUC. Folds whose test slice is single-class contribute the
// AUC sentinel and are skipped from the aggregate.
func (cv *CrossValidator) ROCAUC(X [][]decimal.Decimal, y []int, spec models.Spec) (mean, std float64, err error) {
	splitter := NewSplitter(0, cv.Seed)
	folds, err := splitter.KFold(len(X), cv.NFolds)
	if err != nil {
		return 0, 0, err
	}

	scores := make([]float64, cv.NFolds)
	available := make([]bool, cv.NFolds)
	errs := make([]error, cv.NFolds)

	workers := cv.MaxWorkers
	if workers > cv.NFolds {
		workers = cv.NFolds
	}

	jobs := make(chan int, cv.NFolds)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				scores[f], available[f], errs[f] = cv.evaluateFold(X, y, spec, folds[f])
			}
		}()
	}
	for f := 0; f < cv.NFolds; f++ {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	for f, err := range errs {
		if err != nil {
			return 0, 0, fmt.Errorf("fold %d failed: %w", f, err)
		}
	}

	var usable []float64
	for f, score := range scores {
		if available[f] {
			usable = append(usable, score)
		}
	}
	if len(usable) == 0 {
		return AUCUnavailable, 0, nil
	}

	mean, std = meanStd(usable)
	return mean, std, nil
}

func (cv *CrossValidator) evaluateFold(X [][]decimal.Decimal, y []int, spec models.Spec, testIndices []int) (float64, bool, error) {
	inTest := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		inTest[idx] = true
	}

	var XTrain [][]decimal.Decimal
	var yTrain []int
	for i := range X {
		if !inTest[i] {
			XTrain = append(XTrain, X[i])
			yTrain = append(yTrain, y[i])
		}
	}

	XTest := make([][]decimal.Decimal, len(testIndices))
	yTest := make([]int, len(testIndices))
	for i, idx := range testIndices {
		XTest[i] = X[idx]
		yTest[i] = y[idx]
	}

	model, err := models.FromSpec(spec)
	if err != nil {
		return 0, false, err
	}
	if err := model.Fit(XTrain, yTrain); err != nil {
		return 0, false, err
	}

	auc, ok := rocAUC(yTest, model.PredictProba(XTest))
	return auc, ok, nil
}

func meanStd(scores []float64) (mean, std float64) {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean = sum / float64(len(scores))

	if len(scores) > 1 {
		variance := 0.0
		for _, s := range scores {
			diff := s - mean
			variance += diff * diff
		}
		std = math.Sqrt(variance / float64(len(scores)-1))
	}
	return mean, std
}
