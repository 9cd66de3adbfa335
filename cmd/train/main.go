package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Shvm190/heart-disease-mlops/internal/config"
	"github.com/Shvm190/heart-disease-mlops/internal/data"
	"github.com/Shvm190/heart-disease-mlops/internal/training"
)

func main() {
	configFile := flag.String("config", "config/config.yaml", "Path to configuration file")
	dataFile := flag.String("data", "", "Path to training data CSV (overrides config)")
	outputDir := flag.String("output", "", "Output directory for the bundle (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataFile != "" {
		cfg.Data.Path = *dataFile
	}
	if *outputDir != "" {
		cfg.Training.OutputDir = *outputDir
	}

	fmt.Printf("Loading dataset from %s...\n", cfg.Data.Path)
	records, labels, err := data.LoadDataset(cfg.Data.Path, cfg.Data.TargetColumn)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	fmt.Printf("Loaded %d usable records\n", len(records))

	trainer := training.NewTrainer(cfg.Data.TestSize, cfg.Data.Seed, cfg.Training.CVFolds)

	fmt.Printf("Training %d candidates (seed %d, test size %.0f%%)...\n",
		len(cfg.Training.Candidates), cfg.Data.Seed, cfg.Data.TestSize*100)
	startTime := time.Now()
	bundle, err := trainer.Train(records, labels, cfg.Training.Candidates)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	trainingTime := time.Since(startTime)

	fmt.Printf("\nCandidate results:\n")
	for _, result := range bundle.MetricTable {
		marker := " "
		if result.Champion {
			marker = "*"
		}
		if result.Failed() {
			fmt.Printf("%s %-20s FAILED: %s\n", marker, result.Algorithm, result.Error)
			continue
		}
		if result.CVError != "" {
			fmt.Printf("%s %-20s %s cv_roc_auc=error (%s)\n",
				marker, result.Algorithm, result.Metrics, result.CVError)
			continue
		}
		fmt.Printf("%s %-20s %s cv_roc_auc=%.4f±%.4f\n",
			marker, result.Algorithm, result.Metrics, result.CVMean, result.CVStd)
	}

	fmt.Printf("\nChampion: %s (%s)\n", bundle.Metadata.ModelName, bundle.Metadata.SelectionReason)
	fmt.Printf("Training time: %v\n", trainingTime)

	if err := os.MkdirAll(cfg.Training.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	bundlePath := filepath.Join(cfg.Training.OutputDir, "best_model.bundle")
	if err := bundle.Save(bundlePath); err != nil {
		log.Fatalf("Failed to save bundle: %v", err)
	}
	fmt.Printf("Bundle saved to: %s\n", bundlePath)

	tablePath := filepath.Join(cfg.Training.OutputDir, "metric_table.csv")
	if err := training.ExportMetricTable(bundle.MetricTable, tablePath); err != nil {
		log.Printf("Failed to export metric table: %v", err)
	} else {
		fmt.Printf("Metric table saved to: %s\n", tablePath)
	}

	fmt.Println("\nTraining completed successfully!")
}
