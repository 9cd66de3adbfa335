package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/evaluation"
	"github.com/Shvm190/heart-disease-mlops/internal/persistence"
	"github.com/Shvm190/heart-disease-mlops/internal/schema"
)

// ErrNotReady is returned by Predict before a bundle has been loaded.
var ErrNotReady = errors.New("prediction service is not ready: no model bundle loaded")

// RiskThresholds maps a disease probability to a coarse bucket: below Low is
// low risk, below High moderate, anything above high. Values come from
// configuration; 0.3/0.7 are the stock defaults.
type RiskThresholds struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Low: 0.3, High: 0.7}
}

// Level buckets one probability.
func (t RiskThresholds) Level(probability float64) string {
	switch {
	case probability < t.Low:
		return "Low"
	case probability < t.High:
		return "Moderate"
	default:
		return "High"
	}
}

// Prediction is the per-request inference result. It is never persisted
// here; downstream collaborators own any result logging.
type Prediction struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
	RiskLevel   string  `json:"risk_level"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp"`
}

// ModelInfo is the bundle metadata surfaced by Health.
type ModelInfo struct {
	Name            string               `json:"name"`
	RunID           string               `json:"run_id"`
	TrainedAt       string               `json:"trained_at"`
	SelectionReason string               `json:"selection_reason"`
	Metrics         evaluation.MetricSet `json:"metrics"`
}

// Health reports the service lifecycle state for liveness/readiness probes.
type Health struct {
	Status    string     `json:"status"`
	Model     *ModelInfo `json:"model,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// Ready is true once a bundle is loaded.
func (h Health) Ready() bool {
	return h.Status == "ready"
}

// Observer receives one observation per successful prediction, including
// the validated input record for feature-distribution tracking. The server
// feeds these into prometheus; tests may pass nil.
type Observer interface {
	ObservePrediction(rec schema.Record, class int, probability float64, riskLevel string, elapsed time.Duration)
}

// Predictor owns the loaded bundle and the request path. It starts
// Uninitialized; LoadBundle moves it to Ready exactly once, before serving
// begins. The bundle is immutable afterwards, so concurrent Predict calls
// share it without coordination. A reload means a fresh process.
type Predictor struct {
	thresholds RiskThresholds
	observer   Observer
	bundle     *persistence.Bundle
}

func NewPredictor(thresholds RiskThresholds, observer Observer) *Predictor {
	return &Predictor{thresholds: thresholds, observer: observer}
}

// LoadBundle reads the artifact and transitions the service to Ready. The
// load either completes fully or fails; a partial bundle is never served.
func (p *Predictor) LoadBundle(path string) error {
	if p.bundle != nil {
		return fmt.Errorf("bundle already loaded; restart the process to reload")
	}

	bundle, err := persistence.Load(path)
	if err != nil {
		return err
	}
	p.bundle = bundle
	return nil
}

// UseBundle installs an in-memory bundle; the test seam for LoadBundle.
func (p *Predictor) UseBundle(bundle *persistence.Bundle) error {
	if p.bundle != nil {
		return fmt.Errorf("bundle already loaded; restart the process to reload")
	}
	p.bundle = bundle
	return nil
}

// Predict validates the record against the schema table, runs it through
// the fitted pipeline and the champion model, and buckets the probability.
// Validation failures enumerate every bad field. A bad request never affects
// any other request or the process.
func (p *Predictor) Predict(rec schema.Record) (*Prediction, error) {
	if p.bundle == nil {
		return nil, ErrNotReady
	}

	if err := schema.Validate(rec); err != nil {
		return nil, err
	}

	started := time.Now()
	features, err := p.bundle.Pipeline.TransformOne(rec)
	if err != nil {
		return nil, err
	}

	probability := p.bundle.Model.PredictProba([][]decimal.Decimal{features})[0]
	class := 0
	message := "Heart disease not detected"
	if probability >= 0.5 {
		class = 1
		message = "Heart disease detected"
	}

	riskLevel := p.thresholds.Level(probability)
	if p.observer != nil {
		p.observer.ObservePrediction(rec, class, probability, riskLevel, time.Since(started))
	}

	return &Prediction{
		Prediction:  class,
		Probability: probability,
		RiskLevel:   riskLevel,
		Message:     message,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Health reports not-ready until a bundle is loaded, then the selection
// metadata of the loaded champion.
func (p *Predictor) Health() Health {
	health := Health{
		Status:    "not-ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if p.bundle == nil {
		return health
	}

	meta := p.bundle.Metadata
	health.Status = "ready"
	health.Model = &ModelInfo{
		Name:            meta.ModelName,
		RunID:           meta.RunID,
		TrainedAt:       meta.TrainedAt.UTC().Format(time.RFC3339),
		SelectionReason: meta.SelectionReason,
		Metrics:         meta.Metrics,
	}
	return health
}
