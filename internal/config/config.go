package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port     string
	LogLevel string

	// Remote rate source
	RatesAPIURL  string
	BaseCurrency string
	FetchTimeout time.Duration

	// Connectivity probe
	ProbeURL     string
	ProbeTimeout time.Duration

	// Local stores
	RatesCacheFile string
	HistoryFile    string

	// History retention
	HistoryMaxEntries    int
	HistoryRetentionDays int

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RatesAPIURL:  getEnv("RATES_API_URL", "https://api.exchangerate-api.com/v4/latest"),
		BaseCurrency: getEnv("BASE_CURRENCY", "USD"),
		FetchTimeout: time.Duration(mustAtoi(getEnv("FETCH_TIMEOUT_SECONDS", "10"))) * time.Second,

		ProbeURL:     getEnv("PROBE_URL", "http://www.google.com"),
		ProbeTimeout: time.Duration(mustAtoi(getEnv("PROBE_TIMEOUT_SECONDS", "1"))) * time.Second,

		RatesCacheFile: getEnv("RATES_CACHE_FILE", "exchange_rates.json"),
		HistoryFile:    getEnv("HISTORY_FILE", "conversion_history.json"),

		HistoryMaxEntries:    mustAtoi(getEnv("HISTORY_MAX_ENTRIES", "100")),
		HistoryRetentionDays: mustAtoi(getEnv("HISTORY_RETENTION_DAYS", "15")),

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: mustAtoi(getEnv("RATE_LIMIT_REQUESTS", "100")),
		RateLimitWindow:   time.Duration(mustAtoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))) * time.Second,
		RateLimitBurst:    mustAtoi(getEnv("RATE_LIMIT_BURST", "10")),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 60
	}
	return i
}
