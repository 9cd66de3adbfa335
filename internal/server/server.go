package server

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Shvm190/heart-disease-mlops/internal/service"
)

// BuildServer wires the REST surface around a predictor: the prediction and
// health endpoints, the prometheus scrape endpoint, and request logging.
func BuildServer(predictor *service.Predictor, metrics *Metrics, loglevel string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
	}

	e.Use(middleware.Recover())

	// server-side latency logging
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)
			c.Logger().Infof(
				"%s %s -> %d in %v",
				c.Request().Method, c.Request().URL.Path,
				c.Response().Status, time.Since(begin),
			)
			return err
		}
	})

	e.GET("/", RootHandler())
	e.GET("/health", HealthHandler(predictor))
	e.POST("/predict", PredictHandler(predictor))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e
}
