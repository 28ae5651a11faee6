package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"currency-converter-service/internal/config"
	"currency-converter-service/internal/models"
)

// Fetcher retrieves a fresh snapshot from the remote rate source.
type Fetcher interface {
	Fetch(ctx context.Context, baseCurrency string) (models.RateSnapshot, error)
}

// HTTPFetcher fetches rates from an exchangerate-api style endpoint:
// GET {baseURL}/{baseCurrency} returning a JSON body with a "rates" map.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPFetcher creates an HTTP fetcher from configuration.
func NewHTTPFetcher(configuration *config.Config) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimSuffix(configuration.RatesAPIURL, "/"),
		httpClient: &http.Client{
			Timeout: configuration.FetchTimeout,
		},
	}
}

// Fetch performs a single request with no retries. Non-200 status or a
// malformed body is a fetch failure.
func (fetcher *HTTPFetcher) Fetch(ctx context.Context, baseCurrency string) (models.RateSnapshot, error) {
	url := fmt.Sprintf("%s/%s", fetcher.baseURL, baseCurrency)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.RateSnapshot{}, fmt.Errorf("failed to create request: %w", err)
	}

	response, err := fetcher.httpClient.Do(request)
	if err != nil {
		return models.RateSnapshot{}, fmt.Errorf("failed to reach rate source: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return models.RateSnapshot{}, fmt.Errorf("rate source returned status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return models.RateSnapshot{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.RateSnapshot{}, fmt.Errorf("failed to parse rate source response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return models.RateSnapshot{}, fmt.Errorf("rate source response contains no rates")
	}

	// Normalize codes so snapshot keys are always upper-case.
	normalized := make(map[string]float64, len(payload.Rates))
	for code, rate := range payload.Rates {
		normalized[strings.ToUpper(code)] = rate
	}

	return models.RateSnapshot{
		Base:      baseCurrency,
		Rates:     normalized,
		FetchedAt: time.Now(),
	}, nil
}
