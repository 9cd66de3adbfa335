package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Shvm190/heart-disease-mlops/internal/models"
	"github.com/Shvm190/heart-disease-mlops/internal/service"
)

// Config is the single YAML configuration for training and serving.
type Config struct {
	Data struct {
		Path         string  `yaml:"path"`
		TargetColumn string  `yaml:"target_column"`
		TestSize     float64 `yaml:"test_size"`
		Seed         int64   `yaml:"seed"`
	} `yaml:"data"`

	Training struct {
		CVFolds    int           `yaml:"cv_folds"`
		OutputDir  string        `yaml:"output_dir"`
		Candidates []models.Spec `yaml:"candidates"`
	} `yaml:"training"`

	Serving struct {
		Host           string                 `yaml:"host"`
		Port           int                    `yaml:"port"`
		BundlePath     string                 `yaml:"bundle_path"`
		LogLevel       string                 `yaml:"log_level"`
		RiskThresholds service.RiskThresholds `yaml:"risk_thresholds"`
	} `yaml:"serving"`
}

// Default mirrors the stock setup: seed 42, 80/20 split, 5-fold CV, the two
// standard candidates, and 0.3/0.7 risk thresholds.
func Default() *Config {
	cfg := &Config{}
	cfg.Data.Path = "data/raw/heart_disease.csv"
	cfg.Data.TargetColumn = "target"
	cfg.Data.TestSize = 0.2
	cfg.Data.Seed = 42
	cfg.Training.CVFolds = 5
	cfg.Training.OutputDir = "models"
	cfg.Training.Candidates = models.DefaultSpecs(42)
	cfg.Serving.Host = "0.0.0.0"
	cfg.Serving.Port = 8000
	cfg.Serving.BundlePath = "models/best_model.bundle"
	cfg.Serving.LogLevel = "info"
	cfg.Serving.RiskThresholds = service.DefaultRiskThresholds()
	return cfg
}

// Load reads a YAML file over the defaults. A missing file is an error;
// missing keys keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Data.TestSize <= 0 || c.Data.TestSize >= 1 {
		return fmt.Errorf("data.test_size must be between 0 and 1, got %g", c.Data.TestSize)
	}
	t := c.Serving.RiskThresholds
	if t.Low <= 0 || t.High <= t.Low || t.High >= 1 {
		return fmt.Errorf("risk thresholds must satisfy 0 < low < high < 1, got %g/%g", t.Low, t.High)
	}
	if len(c.Training.Candidates) == 0 {
		return fmt.Errorf("training.candidates must not be empty")
	}
	return nil
}

// Addr is the listen address for the prediction server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Serving.Host, c.Serving.Port)
}
