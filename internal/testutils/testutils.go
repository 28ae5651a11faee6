package testutils

import (
	"path/filepath"
	"time"

	"currency-converter-service/internal/config"
	"currency-converter-service/internal/logger"
	"currency-converter-service/internal/models"
)

// MockLogger creates a mock logger for testing
func MockLogger() *logger.Logger {
	return logger.New("debug")
}

// MockConfig creates a mock configuration for testing
func MockConfig() *config.Config {
	return &config.Config{
		Port:     "8081",
		LogLevel: "debug",

		RatesAPIURL:  "https://api.test.com/v4/latest",
		BaseCurrency: "USD",
		FetchTimeout: 10 * time.Second,

		ProbeURL:     "http://probe.test.com",
		ProbeTimeout: 1 * time.Second,

		RatesCacheFile: "exchange_rates.json",
		HistoryFile:    "conversion_history.json",

		HistoryMaxEntries:    100,
		HistoryRetentionDays: 15,

		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBurst:    10,
	}
}

// MockConfigWithStores creates a mock configuration whose store files live
// under dir (normally t.TempDir())
func MockConfigWithStores(dir string) *config.Config {
	cfg := MockConfig()
	cfg.RatesCacheFile = filepath.Join(dir, "exchange_rates.json")
	cfg.HistoryFile = filepath.Join(dir, "conversion_history.json")
	return cfg
}

// MockSnapshot creates a mock rate snapshot for testing
func MockSnapshot() models.RateSnapshot {
	return models.RateSnapshot{
		Base: "USD",
		Rates: map[string]float64{
			"EUR": 0.92,
			"GBP": 0.79,
			"JPY": 148.5,
			"CAD": 1.36,
			"AUD": 1.52,
		},
		FetchedAt: time.Now(),
	}
}

// MockHistoryEntry creates a mock history entry timestamped at t
func MockHistoryEntry(t time.Time, from, to string, amount, converted float64) models.HistoryEntry {
	return models.HistoryEntry{
		Timestamp:       models.NewHistoryTime(t),
		FromCurrency:    from,
		ToCurrency:      to,
		Amount:          amount,
		ConvertedAmount: converted,
	}
}
