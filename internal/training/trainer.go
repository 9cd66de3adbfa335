package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/evaluation"
	"github.com/Shvm190/heart-disease-mlops/internal/models"
	"github.com/Shvm190/heart-disease-mlops/internal/persistence"
	"github.com/Shvm190/heart-disease-mlops/internal/preprocessing"
	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

// ErrNoViableModel is returned when every candidate fails to fit.
var ErrNoViableModel = errors.New("no candidate model could be trained")

// Trainer runs one training pass: seeded stratified split, pipeline fit on
// the training subset only, candidate fitting and held-out scoring, champion
// selection. It is a one-shot batch job, not a service.
type Trainer struct {
	TestSize float64
	Seed     int64
	CVFolds  int
}

func NewTrainer(testSize float64, seed int64, cvFolds int) *Trainer {
	if testSize <= 0 || testSize >= 1 {
		testSize = 0.2
	}
	return &Trainer{TestSize: testSize, Seed: seed, CVFolds: cvFolds}
}

// Train fits every candidate spec and returns the bundle around the one with
// the best held-out ROC-AUC (tie-break: accuracy, then candidate order).
// A candidate whose construction or fit fails is excluded from selection but
// still appears in the metric table with its failure reason.
func (t *Trainer) Train(records []schema.Record, labels []int, specs []models.Spec) (*persistence.Bundle, error) {
	if len(records) == 0 {
		return nil, preprocessing.ErrInsufficientData
	}
	if len(records) != len(labels) {
		return nil, fmt.Errorf("records and labels have different lengths: %d vs %d", len(records), len(labels))
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no candidate specifications given")
	}

	splitter := evaluation.NewSplitter(t.TestSize, t.Seed)
	trainIdx, testIdx, err := splitter.StratifiedSplit(labels)
	if err != nil {
		return nil, err
	}

	trainRecords := make([]schema.Record, len(trainIdx))
	yTrain := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainRecords[i] = records[idx]
		yTrain[i] = labels[idx]
	}

	testRecords := make([]schema.Record, len(testIdx))
	yTest := make([]int, len(testIdx))
	for i, idx := range testIdx {
		testRecords[i] = records[idx]
		yTest[i] = labels[idx]
	}

	// fit on the training subset only; the held-out rows must not leak
	// into imputation or scaling statistics
	pipeline := preprocessing.NewPipeline()
	XTrain, err := pipeline.FitTransform(trainRecords)
	if err != nil {
		return nil, err
	}
	XTest, err := pipeline.Transform(testRecords)
	if err != nil {
		return nil, err
	}

	table := make([]persistence.CandidateResult, 0, len(specs))
	fitted := make([]models.Model, len(specs))

	for i, spec := range specs {
		result := persistence.CandidateResult{Algorithm: spec.Algorithm}

		model, metrics, err := t.fitCandidate(spec, XTrain, yTrain, XTest, yTest)
		if err != nil {
			result.Error = err.Error()
			table = append(table, result)
			continue
		}

		result.Params = model.GetParams()
		result.Metrics = &metrics

		if t.CVFolds >= 2 {
			cv := evaluation.NewCrossValidator(t.CVFolds, t.Seed)
			mean, std, err := cv.ROCAUC(XTrain, yTrain, spec)
			if err != nil {
				result.CVError = err.Error()
			} else {
				result.CVMean = mean
				result.CVStd = std
			}
		}

		fitted[i] = model
		table = append(table, result)
	}

	champion := selectChampion(table)
	if champion < 0 {
		return nil, fmt.Errorf("%w: all %d candidates failed", ErrNoViableModel, len(specs))
	}
	table[champion].Champion = true

	now := time.Now().UTC()
	bundle := &persistence.Bundle{
		Pipeline:    pipeline,
		Model:       fitted[champion],
		MetricTable: table,
		CreatedAt:   now,
		Metadata: persistence.Metadata{
			RunID:           uuid.NewString(),
			ModelName:       fitted[champion].GetName(),
			SelectionReason: selectionReason(table, champion),
			TrainedAt:       now,
			Seed:            t.Seed,
			TestSize:        t.TestSize,
			TrainSamples:    len(trainIdx),
			HeldOutSamples:  len(testIdx),
			Features:        pipeline.FeatureNames(),
			Metrics:         *table[champion].Metrics,
			Parameters:      fitted[champion].GetParams(),
		},
	}
	return bundle, nil
}

func (t *Trainer) fitCandidate(spec models.Spec, XTrain [][]decimal.Decimal, yTrain []int, XTest [][]decimal.Decimal, yTest []int) (models.Model, evaluation.MetricSet, error) {
	model, err := models.FromSpec(spec)
	if err != nil {
		return nil, evaluation.MetricSet{}, err
	}
	if err := model.Fit(XTrain, yTrain); err != nil {
		return nil, evaluation.MetricSet{}, fmt.Errorf("fit failed: %w", err)
	}

	metrics, err := evaluation.Evaluate(yTest, model.Predict(XTest), model.PredictProba(XTest))
	if err != nil {
		return nil, evaluation.MetricSet{}, err
	}
	return model, metrics, nil
}

// selectChampion returns the index of the best surviving candidate, or -1 if
// none survived. Comparison is a strict total order: ROC-AUC (unavailable
// ranks below any real value), then accuracy, then earlier candidate wins.
func selectChampion(table []persistence.CandidateResult) int {
	best := -1
	for i, result := range table {
		if result.Failed() {
			continue
		}
		if best < 0 || better(*result.Metrics, *table[best].Metrics) {
			best = i
		}
	}
	return best
}

func better(a, b evaluation.MetricSet) bool {
	if a.AUCAvailable != b.AUCAvailable {
		return a.AUCAvailable
	}
	if a.AUCAvailable && a.ROCAUC != b.ROCAUC {
		return a.ROCAUC > b.ROCAUC
	}
	return a.Accuracy > b.Accuracy
}

func selectionReason(table []persistence.CandidateResult, champion int) string {
	m := table[champion].Metrics
	if !m.AUCAvailable {
		return fmt.Sprintf("best accuracy %.4f of %d candidates (roc_auc unavailable)", m.Accuracy, len(table))
	}
	return fmt.Sprintf("best held-out roc_auc %.4f of %d candidates", m.ROCAUC, len(table))
}
