package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/schema"
	"github.com/Shvm190/heart-disease-mlops/internal/service"
)

// APIError is the structured error body returned to callers. Validation
// failures carry every violation so the client can fix them in one pass.
type APIError struct {
	Error      string             `json:"error"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// RootHandler lists the available endpoints.
func RootHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"message": "Heart Disease Prediction API",
			"endpoints": map[string]string{
				"health":  "/health",
				"predict": "/predict",
				"metrics": "/metrics",
			},
		})
	}
}

// HealthHandler reports the service lifecycle state plus the loaded
// champion's metadata; readiness probes key off the status field.
func HealthHandler(predictor *service.Predictor) echo.HandlerFunc {
	return func(c echo.Context) error {
		health := predictor.Health()
		status := http.StatusOK
		if !health.Ready() {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, health)
	}
}

// PredictHandler validates and infers one record. Field-level problems come
// back as 400 with the full violation list; a missing bundle as 503; the
// process never dies for a bad request.
func PredictHandler(predictor *service.Predictor) echo.HandlerFunc {
	return func(c echo.Context) error {
		record, err := decodeRecord(c.Request().Body)
		if err != nil {
			c.Logger().Infof("rejecting unparseable request: %s", err)
			return c.JSON(http.StatusBadRequest, APIError{Error: "cannot parse request body: " + err.Error()})
		}

		prediction, err := predictor.Predict(record)
		if err != nil {
			return predictionError(c, err)
		}
		return c.JSON(http.StatusOK, prediction)
	}
}

func predictionError(c echo.Context, err error) error {
	var validation *schema.ValidationError
	if errors.As(err, &validation) {
		c.Logger().Infof("invalid record: %s", validation)
		return c.JSON(http.StatusBadRequest, APIError{
			Error:      "validation failed",
			Violations: validation.Violations,
		})
	}

	if errors.Is(err, service.ErrNotReady) {
		return c.JSON(http.StatusServiceUnavailable, APIError{Error: err.Error()})
	}

	c.Logger().Errorf("prediction failed: %s", err)
	return c.JSON(http.StatusInternalServerError, APIError{Error: "prediction failed"})
}

// decodeRecord reads the flat JSON object into a Record, keeping numbers as
// decimals so categorical codes survive the trip exactly.
func decodeRecord(body io.Reader) (schema.Record, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	raw := make(map[string]json.Number)
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	record := make(schema.Record, len(raw))
	for name, number := range raw {
		value, err := decimal.NewFromString(number.String())
		if err != nil {
			return nil, err
		}
		record[name] = value
	}
	return record, nil
}
