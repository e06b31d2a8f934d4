package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopower/domain/power"
	"gopower/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Server     ServerConfig
	Output     OutputConfig
}

// SimulationConfig holds the fixed power-sweep parameters.
// Defaults mirror the reference analysis: alpha 0.05, target power 0.8,
// 10000 repetitions, sample sizes 500..15000 (exclusive) step 1000.
type SimulationConfig struct {
	Alpha       float64
	TargetPower float64
	Repetitions int
	SizeStart   int
	SizeStop    int
	SizeStep    int
	Seed        int64
	Workers     int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OutputConfig holds file system paths
type OutputConfig struct {
	XLSXFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Simulation: loadSimulationConfig(),
		Server:     loadServerConfig(),
		Output:     loadOutputConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Alpha:       getEnvFloatOrDefault("ALPHA", 0.05),
		TargetPower: getEnvFloatOrDefault("TARGET_POWER", 0.8),
		Repetitions: getEnvIntOrDefault("REPETITIONS", 10000),
		SizeStart:   getEnvIntOrDefault("SIZE_START", 500),
		SizeStop:    getEnvIntOrDefault("SIZE_STOP", 15000),
		SizeStep:    getEnvIntOrDefault("SIZE_STEP", 1000),
		// 0 means derive the seed from the clock at startup (ad hoc runs vary,
		// set SEED for reproducible sweeps)
		Seed:    getEnvInt64OrDefault("SEED", 0),
		Workers: getEnvIntOrDefault("SWEEP_WORKERS", 4),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadOutputConfig() OutputConfig {
	return OutputConfig{
		XLSXFile: getEnvOrDefault("XLSX_FILE", ""),
	}
}

// ExperimentConfig converts the simulation settings into the domain config.
func (s SimulationConfig) ExperimentConfig() (power.ExperimentConfig, error) {
	sizes, err := power.SizeGrid(s.SizeStart, s.SizeStop, s.SizeStep)
	if err != nil {
		return power.ExperimentConfig{}, errors.Wrap(err, "invalid sample size grid")
	}
	cfg := power.ExperimentConfig{
		Alpha:       s.Alpha,
		TargetPower: s.TargetPower,
		Repetitions: s.Repetitions,
		SampleSizes: sizes,
	}
	if err := cfg.Validate(); err != nil {
		return power.ExperimentConfig{}, errors.Wrap(err, "invalid simulation parameters")
	}
	return cfg, nil
}

// BaseSeed resolves the configured seed, falling back to the clock when unset.
func (s SimulationConfig) BaseSeed() int64 {
	if s.Seed != 0 {
		return s.Seed
	}
	return time.Now().UnixNano()
}

func validateConfig(config *Config) error {
	if config.Simulation.Alpha <= 0 || config.Simulation.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be strictly between 0 and 1")
	}
	if config.Simulation.Repetitions <= 0 {
		return errors.ConfigInvalid("REPETITIONS must be positive")
	}
	if config.Simulation.Workers <= 0 {
		return errors.ConfigInvalid("SWEEP_WORKERS must be positive")
	}
	if strings.TrimSpace(config.Server.Port) == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
