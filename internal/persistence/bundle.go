package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/Shvm190/heart-disease-mlops/internal/evaluation"
	"github.com/Shvm190/heart-disease-mlops/internal/models"
	"github.com/Shvm190/heart-disease-mlops/internal/preprocessing"
)

// Bundle is the atomic training artifact: the fitted pipeline, the champion
// model trained on that pipeline's output, and the full selection record.
// The two fitted halves are only ever saved and loaded together; a model is
// meaningless under any other column order or scaling.
type Bundle struct {
	Pipeline    *preprocessing.Pipeline
	Model       models.Model
	Metadata    Metadata
	MetricTable []CandidateResult
	CreatedAt   time.Time
}

// Metadata describes the champion and how it was chosen.
type Metadata struct {
	RunID           string
	ModelName       string
	SelectionReason string
	TrainedAt       time.Time
	Seed            int64
	TestSize        float64
	TrainSamples    int
	HeldOutSamples  int
	Features        []string
	Metrics         evaluation.MetricSet
	Parameters      map[string]any
}

// CandidateResult is one row of the auditable metric table: every candidate
// appears, including the ones whose fit failed. A cross-validation failure
// does not exclude the candidate; it is recorded in CVError so a missing
// score is never mistaken for a near-zero one.
type CandidateResult struct {
	Algorithm string
	Params    map[string]any
	Metrics   *evaluation.MetricSet
	CVMean    float64
	CVStd     float64
	CVError   string
	Error     string
	Champion  bool
}

// Failed reports whether this candidate was excluded from selection.
func (r CandidateResult) Failed() bool {
	return r.Error != ""
}

func registerModels() {
	gob.Register(&models.LogisticRegression{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.DecisionTree{})
	gob.Register(&models.NaiveBayes{})
	gob.Register(&models.TreeNode{})
}

// Save writes the bundle to one file. The write goes through a temp file and
// rename so a crashed run never leaves a half-written artifact behind.
func (b *Bundle) Save(filename string) error {
	registerModels()

	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(b); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, filename)
}

// Load reads a bundle back; it either returns a fully usable bundle or an
// error, never a partial artifact.
func Load(filename string) (*Bundle, error) {
	registerModels()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer file.Close()

	var bundle Bundle
	if err := gob.NewDecoder(file).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	if bundle.Pipeline == nil || !bundle.Pipeline.IsFitted || bundle.Model == nil {
		return nil, fmt.Errorf("bundle %s is incomplete", filename)
	}
	return &bundle, nil
}
