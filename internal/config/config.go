package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Dimension    int
	Qudits       int
	Samples      int
	Workers      int
	Seed         uint64 // 0 picks a time-based seed
	TVDThreshold float64
	ProbCutoff   float64
	LogLevel     string
	LogPretty    bool
	LogFile      string
}

// Load reads configuration from .env and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Dimension:    getEnvAsInt("QUDECK_DIMENSION", 3),
		Qudits:       getEnvAsInt("QUDECK_QUDITS", 3),
		Samples:      getEnvAsInt("QUDECK_SAMPLES", 1000),
		Workers:      getEnvAsInt("QUDECK_WORKERS", runtime.GOMAXPROCS(0)),
		Seed:         getEnvAsUint64("QUDECK_SEED", 0),
		TVDThreshold: getEnvAsFloat("QUDECK_TVD_THRESHOLD", 0.20),
		ProbCutoff:   getEnvAsFloat("QUDECK_PROB_CUTOFF", 1e-13),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("LOG_PRETTY", true),
		LogFile:      getEnv("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Dimension < 2 {
		errs = append(errs, fmt.Errorf("QUDECK_DIMENSION must be at least 2, got %d", c.Dimension))
	}
	if c.Qudits < 1 {
		errs = append(errs, fmt.Errorf("QUDECK_QUDITS must be at least 1, got %d", c.Qudits))
	}
	if c.Samples < 1 {
		errs = append(errs, fmt.Errorf("QUDECK_SAMPLES must be at least 1, got %d", c.Samples))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("QUDECK_WORKERS must be at least 1, got %d", c.Workers))
	}
	if c.TVDThreshold <= 0 || c.TVDThreshold > 1 {
		errs = append(errs, fmt.Errorf("QUDECK_TVD_THRESHOLD must be in (0, 1], got %g", c.TVDThreshold))
	}
	if c.ProbCutoff < 0 || c.ProbCutoff >= 1 {
		errs = append(errs, fmt.Errorf("QUDECK_PROB_CUTOFF must be in [0, 1), got %g", c.ProbCutoff))
	}
	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
