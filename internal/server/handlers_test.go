package server_test

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shvm190/heart-disease-mlops/internal/models"
	"github.com/Shvm190/heart-disease-mlops/internal/persistence"
	"github.com/Shvm190/heart-disease-mlops/internal/schema"
	"github.com/Shvm190/heart-disease-mlops/internal/server"
	"github.com/Shvm190/heart-disease-mlops/internal/service"
	"github.com/Shvm190/heart-disease-mlops/internal/training"
)

func synthDataset(n int, seed int64) ([]schema.Record, []int) {
	rng := rand.New(rand.NewSource(seed))
	records := make([]schema.Record, n)
	labels := make([]int, n)

	for i := range records {
		label := i % 2
		labels[i] = label

		thalach := 160 + rng.Intn(30)
		oldpeak := rng.Float64()
		if label == 1 {
			thalach = 110 + rng.Intn(30)
			oldpeak = 2 + rng.Float64()*2
		}

		records[i] = schema.Record{
			"age":      decimal.NewFromInt(int64(40 + rng.Intn(35))),
			"sex":      decimal.NewFromInt(int64(rng.Intn(2))),
			"cp":       decimal.NewFromInt(int64(rng.Intn(4))),
			"trestbps": decimal.NewFromInt(int64(110 + rng.Intn(50))),
			"chol":     decimal.NewFromInt(int64(180 + rng.Intn(120))),
			"fbs":      decimal.NewFromInt(int64(rng.Intn(2))),
			"restecg":  decimal.NewFromInt(int64(rng.Intn(3))),
			"thalach":  decimal.NewFromInt(int64(thalach)),
			"exang":    decimal.NewFromInt(int64(label)),
			"oldpeak":  decimal.NewFromFloat(oldpeak),
			"slope":    decimal.NewFromInt(int64(rng.Intn(3))),
			"ca":       decimal.NewFromInt(int64(rng.Intn(5))),
			"thal":     decimal.NewFromInt(int64(rng.Intn(4))),
		}
	}
	return records, labels
}

func testBundle(t *testing.T) *persistence.Bundle {
	t.Helper()
	records, labels := synthDataset(100, 42)
	specs := []models.Spec{{Algorithm: "logistic", MaxIter: 300, LearningRate: 0.1}}
	bundle, err := training.NewTrainer(0.2, 42, 0).Train(records, labels, specs)
	require.NoError(t, err)
	return bundle
}

func readyServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics := server.NewMetrics()
	predictor := service.NewPredictor(service.DefaultRiskThresholds(), metrics)
	require.NoError(t, predictor.UseBundle(testBundle(t)))

	ts := httptest.NewServer(server.BuildServer(predictor, metrics, "off"))
	t.Cleanup(ts.Close)
	return ts
}

const validBody = `{
	"age": 54, "sex": 1, "cp": 2, "trestbps": 130, "chol": 246,
	"fbs": 0, "restecg": 1, "thalach": 150, "exang": 0,
	"oldpeak": 1.4, "slope": 1, "ca": 0, "thal": 2
}`

func TestPredictEndpoint(t *testing.T) {
	ts := readyServer(t)

	resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result service.Prediction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Contains(t, []int{0, 1}, result.Prediction)
	assert.GreaterOrEqual(t, result.Probability, 0.0)
	assert.LessOrEqual(t, result.Probability, 1.0)
	assert.Contains(t, []string{"Low", "Moderate", "High"}, result.RiskLevel)
	assert.NotEmpty(t, result.Timestamp)
}

func TestPredictEndpointMissingField(t *testing.T) {
	ts := readyServer(t)

	body := `{
		"sex": 1, "cp": 2, "trestbps": 130, "chol": 246,
		"fbs": 0, "restecg": 1, "thalach": 150, "exang": 0,
		"oldpeak": 1.4, "slope": 1, "ca": 0, "thal": 2
	}`
	resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var apiErr server.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	require.Len(t, apiErr.Violations, 1)
	assert.Equal(t, "age", apiErr.Violations[0].Field)
}

func TestPredictEndpointEnumeratesAllViolations(t *testing.T) {
	ts := readyServer(t)

	body := `{
		"age": 300, "sex": 1, "cp": 9, "trestbps": 130, "chol": 246,
		"fbs": 0, "restecg": 1, "thalach": 150, "exang": 0,
		"oldpeak": 1.4, "slope": 1, "ca": 0, "thal": 2, "bmi": 25
	}`
	resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var apiErr server.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Len(t, apiErr.Violations, 3)
}

func TestPredictEndpointMalformedJSON(t *testing.T) {
	ts := readyServer(t)

	resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictEndpointNotReady(t *testing.T) {
	metrics := server.NewMetrics()
	predictor := service.NewPredictor(service.DefaultRiskThresholds(), metrics)

	ts := httptest.NewServer(server.BuildServer(predictor, metrics, "off"))
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	ts := readyServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health service.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ready", health.Status)
	require.NotNil(t, health.Model)
	assert.Equal(t, "LogisticRegression", health.Model.Name)
}

func TestHealthEndpointNotReady(t *testing.T) {
	metrics := server.NewMetrics()
	predictor := service.NewPredictor(service.DefaultRiskThresholds(), metrics)

	ts := httptest.NewServer(server.BuildServer(predictor, metrics, "off"))
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRootEndpoint(t *testing.T) {
	ts := readyServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "endpoints")
}

func TestMetricsEndpointCountsPredictions(t *testing.T) {
	ts := readyServer(t)

	for i := 0; i < 3; i++ {
		resp, err := http.Post(ts.URL+"/predict", "application/json", strings.NewReader(validBody))
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, "prediction_count_total 3")
	assert.Contains(t, text, "prediction_latency_seconds")
	assert.Contains(t, text, "model_prediction_results_total")
	assert.Contains(t, text, "prediction_confidence")

	// feature gauges track the latest scored applicant
	assert.Contains(t, text, "feature_age_years 54")
	assert.Contains(t, text, "feature_cholesterol_mgdl 246")
}
