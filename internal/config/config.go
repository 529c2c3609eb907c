// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir    string // Base directory for databases and model artifacts (always absolute)
	ModelPath  string // Path to the persisted model artifact
	LogLevel   string
	Port       int
	DevMode    bool
	Seed       int64 // Random seed for training and synthetic data generation
	TrainUsers int   // Population size used by the offline trainer
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory:
	// 1. FRAUDWATCH_DATA_DIR environment variable
	// 2. Fallback to ./data
	// Always resolved to an absolute path, created if missing.
	dataDir := getEnv("FRAUDWATCH_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory to absolute path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", absDataDir, err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}

	seed, err := strconv.ParseInt(getEnv("FRAUDWATCH_SEED", "42"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FRAUDWATCH_SEED value: %w", err)
	}

	trainUsers, err := strconv.Atoi(getEnv("FRAUDWATCH_TRAIN_USERS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid FRAUDWATCH_TRAIN_USERS value: %w", err)
	}

	modelPath := getEnv("FRAUDWATCH_MODEL_PATH", "")
	if modelPath == "" {
		modelPath = filepath.Join(absDataDir, "fraud_detector.model")
	}

	return &Config{
		DataDir:    absDataDir,
		ModelPath:  modelPath,
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Port:       port,
		DevMode:    getEnv("DEV_MODE", "false") == "true",
		Seed:       seed,
		TrainUsers: trainUsers,
	}, nil
}

// getEnv retrieves an environment variable value with a fallback default
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
