// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported language oracle providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default fallback catalogs, used when the live store is unreachable or empty
var (
	DefaultFallbackPortfolios = []string{
		"Growth Plus",
		"Global Dividend",
		"Secure Income",
		"Global Macro Opportunities",
	}
	DefaultFallbackBenchmarks = []string{
		"Secure Income Benchmark",
		"MSCI World",
		"S&P 500",
	}
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the database (always absolute)
	DatabasePath string
	LogLevel     string
	Port         int
	DevMode      bool

	// Language oracle
	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string // Optional, for OpenAI-compatible gateways
	GeminiAPIKey  string
	GeminiModel   string
	OracleTimeout time.Duration

	// Collaborators. Empty URLs select the in-process implementations.
	AnalyticsAPIURL  string
	AnalyticsTimeout time.Duration
	DataAPIURL       string
	DataAPITimeout   time.Duration // Per call to the data API

	FallbackPortfolios []string
	FallbackBenchmarks []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:      absDataDir,
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join(absDataDir, "performance.db")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnvAsInt("PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-5"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OracleTimeout: getEnvAsDuration("ORACLE_TIMEOUT", 60*time.Second),

		AnalyticsAPIURL:  getEnv("ANALYTICS_API_URL", ""),
		AnalyticsTimeout: getEnvAsDuration("ANALYTICS_TIMEOUT", 30*time.Second),
		DataAPIURL:       getEnv("DATA_API_URL", ""),
		DataAPITimeout:   getEnvAsDuration("DATA_API_TIMEOUT", 10*time.Second),

		FallbackPortfolios: getEnvAsList("FALLBACK_PORTFOLIOS", DefaultFallbackPortfolios),
		FallbackBenchmarks: getEnvAsList("FALLBACK_BENCHMARKS", DefaultFallbackBenchmarks),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", ProviderOpenAI)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=%s", ProviderGemini)
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (expected %s or %s)", c.LLMProvider, ProviderOpenAI, ProviderGemini)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.OracleTimeout <= 0 || c.AnalyticsTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.DataAPIURL != "" && c.DataAPITimeout <= 0 {
		return fmt.Errorf("timeouts must be positive: DATA_API_TIMEOUT is required with DATA_API_URL")
	}

	return nil
}

// RequestTimeoutMargin is added on top of the collaborator timeouts when
// bounding a whole HTTP request
const RequestTimeoutMargin = 10 * time.Second

// RequestTimeout is the budget for one HTTP request. A chat turn fetches both
// catalogs, calls the oracle and then the analytics backend, one after another.
func (c *Config) RequestTimeout() time.Duration {
	budget := c.OracleTimeout + c.AnalyticsTimeout + RequestTimeoutMargin
	if c.DataAPIURL != "" {
		budget += 2 * c.DataAPITimeout
	}
	return budget
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList parses a comma-separated variable, dropping blank entries
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return result
}
