package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/Shvm190/heart-disease-mlops/internal/config"
	"github.com/Shvm190/heart-disease-mlops/internal/server"
	"github.com/Shvm190/heart-disease-mlops/internal/service"
)

func main() {
	configFile := flag.String("config", "config/config.yaml", "Path to configuration file")
	bundleFile := flag.String("bundle", "", "Path to the model bundle (overrides config)")
	addr := flag.String("addr", "", "Listen address host:port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *bundleFile != "" {
		cfg.Serving.BundlePath = *bundleFile
	}

	metrics := server.NewMetrics()
	predictor := service.NewPredictor(cfg.Serving.RiskThresholds, metrics)

	if err := predictor.LoadBundle(cfg.Serving.BundlePath); err != nil {
		log.Fatalf("Failed to load model bundle %s: %v", cfg.Serving.BundlePath, err)
	}
	health := predictor.Health()
	fmt.Printf("Loaded model %s from %s\n", health.Model.Name, cfg.Serving.BundlePath)

	e := server.BuildServer(predictor, metrics, cfg.Serving.LogLevel)

	listen := cfg.Addr()
	if *addr != "" {
		listen = *addr
	}
	if err := e.Start(listen); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
