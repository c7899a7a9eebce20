package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fastfisher/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Fisher   FisherConfig
	Compare  CompareConfig
	Bench    BenchConfig
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

// Backend names accepted by FISHER_BACKEND.
const (
	BackendTable  = "table"  // shared ln(k!) cache
	BackendLocal  = "local"  // per-engine cache
	BackendLgamma = "lgamma" // no cache
)

// FisherConfig holds engine settings
type FisherConfig struct {
	Backend    string
	Tolerance  float64
	CacheLimit int
	Preload    int
}

// CompareConfig holds reference comparison settings
type CompareConfig struct {
	Oracle       string // see referee.GetOracleByName
	Samples      int
	Seed         int64
	Workers      int
	Decades      float64
	AbsTolerance float64
	RelTolerance float64
	OracleMaxN   int
}

// BenchConfig holds benchmark harness settings
type BenchConfig struct {
	Iterations int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	MaxSupport      int // largest support walk one API table may request
}

// DatabaseConfig holds run history storage settings. An empty URL disables
// storage.
type DatabaseConfig struct {
	URL    string
	Driver string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Fisher:  *loadFisherConfig(),
		Compare: *loadCompareConfig(),
		Bench:   *loadBenchConfig(),
		Server:  *loadServerConfig(),
		Database: DatabaseConfig{
			URL:    os.Getenv("DATABASE_URL"),
			Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		},
		Log: LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration Load produces with an empty environment.
func Default() *Config {
	return &Config{
		Fisher: FisherConfig{
			Backend:   BackendTable,
			Tolerance: 1e-7,
		},
		Compare: CompareConfig{
			Oracle:       "log-binomial",
			Samples:      10000,
			Seed:         1,
			Workers:      4,
			Decades:      4,
			AbsTolerance: 1e-9,
			RelTolerance: 1e-6,
			OracleMaxN:   20000,
		},
		Bench:  BenchConfig{Iterations: 1000},
		Server:   ServerConfig{Port: "8080", ShutdownTimeout: 10 * time.Second, MaxSupport: 1 << 22},
		Database: DatabaseConfig{Driver: "postgres"},
		Log:      LogConfig{Level: "INFO"},
	}
}

func loadFisherConfig() *FisherConfig {
	d := Default().Fisher
	return &FisherConfig{
		Backend:    strings.ToLower(getEnvOrDefault("FISHER_BACKEND", d.Backend)),
		Tolerance:  getEnvFloatOrDefault("FISHER_TWO_SIDED_TOLERANCE", d.Tolerance),
		CacheLimit: getEnvIntOrDefault("FISHER_CACHE_LIMIT", d.CacheLimit),
		Preload:    getEnvIntOrDefault("FISHER_CACHE_PRELOAD", d.Preload),
	}
}

func loadCompareConfig() *CompareConfig {
	d := Default().Compare
	return &CompareConfig{
		Oracle:       strings.ToLower(getEnvOrDefault("COMPARE_ORACLE", d.Oracle)),
		Samples:      getEnvIntOrDefault("COMPARE_SAMPLES", d.Samples),
		Seed:         int64(getEnvIntOrDefault("COMPARE_SEED", int(d.Seed))),
		Workers:      getEnvIntOrDefault("COMPARE_WORKERS", d.Workers),
		Decades:      getEnvFloatOrDefault("COMPARE_DECADES", d.Decades),
		AbsTolerance: getEnvFloatOrDefault("COMPARE_ABS_TOLERANCE", d.AbsTolerance),
		RelTolerance: getEnvFloatOrDefault("COMPARE_REL_TOLERANCE", d.RelTolerance),
		OracleMaxN:   getEnvIntOrDefault("COMPARE_ORACLE_MAX_N", d.OracleMaxN),
	}
}

func loadBenchConfig() *BenchConfig {
	return &BenchConfig{
		Iterations: getEnvIntOrDefault("BENCH_ITERATIONS", Default().Bench.Iterations),
	}
}

func loadServerConfig() *ServerConfig {
	d := Default().Server
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", d.Port),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", d.ShutdownTimeout),
		MaxSupport:      getEnvIntOrDefault("API_MAX_SUPPORT", d.MaxSupport),
	}
}

func validateConfig(config *Config) error {
	switch config.Fisher.Backend {
	case BackendTable, BackendLocal, BackendLgamma:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("FISHER_BACKEND must be %q, %q or %q, got %q",
			BackendTable, BackendLocal, BackendLgamma, config.Fisher.Backend))
	}
	if config.Fisher.Tolerance < 0 {
		return errors.ConfigInvalid("FISHER_TWO_SIDED_TOLERANCE must be non-negative")
	}
	if config.Fisher.CacheLimit < 0 || config.Fisher.Preload < 0 {
		return errors.ConfigInvalid("FISHER_CACHE_LIMIT and FISHER_CACHE_PRELOAD must be non-negative")
	}
	if config.Compare.Samples <= 0 {
		return errors.ConfigInvalid("COMPARE_SAMPLES must be positive")
	}
	if config.Compare.Workers <= 0 {
		return errors.ConfigInvalid("COMPARE_WORKERS must be positive")
	}
	if config.Compare.Decades <= 0 {
		return errors.ConfigInvalid("COMPARE_DECADES must be positive")
	}
	if config.Compare.AbsTolerance < 0 || config.Compare.RelTolerance < 0 {
		return errors.ConfigInvalid("comparison tolerances must be non-negative")
	}
	if config.Bench.Iterations <= 0 {
		return errors.ConfigInvalid("BENCH_ITERATIONS must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxSupport <= 0 {
		return errors.ConfigInvalid("API_MAX_SUPPORT must be positive")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
