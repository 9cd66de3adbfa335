package main

import (
	"flag"
	"log"

	"github.com/Shvm190/heart-disease-mlops/internal/console"
	"github.com/Shvm190/heart-disease-mlops/internal/service"
)

func main() {
	bundleFile := flag.String("bundle", "", "Model bundle to load on startup")
	flag.Parse()

	predictor := service.NewPredictor(service.DefaultRiskThresholds(), nil)
	shell := console.New(predictor)

	if *bundleFile != "" {
		if err := predictor.LoadBundle(*bundleFile); err != nil {
			log.Fatalf("Failed to load bundle %s: %v", *bundleFile, err)
		}
	}

	shell.Start()
}
