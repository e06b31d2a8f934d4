package main

import (
	"log"

	"gopower/adapters/simulate"
	"gopower/app"
	"gopower/internal/config"
	"gopower/internal/testkit"
	"gopower/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	estimator := simulate.NewZTestEstimator()
	rngPort := testkit.NewRNGAdapter()
	sweepService := app.NewSweepService(estimator, rngPort, appConfig.Simulation.Workers)

	server, err := ui.NewServer(sweepService, appConfig.Simulation, appConfig.Server.GinMode)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Starting power analysis server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
