package rates

import (
	"context"
	"net/http"
	"testing"

	"currency-converter-service/internal/testutils"
)

func newTestFetcher(serverURL string) *HTTPFetcher {
	cfg := testutils.MockConfig()
	cfg.RatesAPIURL = serverURL
	return NewHTTPFetcher(cfg)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	mockServer := testutils.NewMockRateServer()
	defer mockServer.Close()

	fetcher := newTestFetcher(mockServer.URL())

	snapshot, err := fetcher.Fetch(context.Background(), "USD")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if snapshot.Base != "USD" {
		t.Errorf("Fetch() base = %q, want USD", snapshot.Base)
	}
	if snapshot.Rates["EUR"] != 0.92 {
		t.Errorf("Fetch() EUR = %v, want 0.92", snapshot.Rates["EUR"])
	}
	if snapshot.FetchedAt.IsZero() {
		t.Error("Fetch() FetchedAt is zero")
	}
}

func TestHTTPFetcher_FetchNon200(t *testing.T) {
	mockServer := testutils.NewMockRateServer()
	defer mockServer.Close()
	mockServer.SetStatusCode(http.StatusServiceUnavailable)

	fetcher := newTestFetcher(mockServer.URL())

	if _, err := fetcher.Fetch(context.Background(), "USD"); err == nil {
		t.Error("Fetch() error = nil, want error on status 503")
	}
}

func TestHTTPFetcher_FetchMalformedBody(t *testing.T) {
	mockServer := testutils.NewMockRateServer()
	defer mockServer.Close()
	mockServer.SetRawBody("{not json")

	fetcher := newTestFetcher(mockServer.URL())

	if _, err := fetcher.Fetch(context.Background(), "USD"); err == nil {
		t.Error("Fetch() error = nil, want error on malformed body")
	}
}

func TestHTTPFetcher_FetchEmptyRates(t *testing.T) {
	mockServer := testutils.NewMockRateServer()
	defer mockServer.Close()
	mockServer.SetRawBody(`{"base":"USD","rates":{}}`)

	fetcher := newTestFetcher(mockServer.URL())

	if _, err := fetcher.Fetch(context.Background(), "USD"); err == nil {
		t.Error("Fetch() error = nil, want error on empty rates")
	}
}

func TestHTTPFetcher_NormalizesCodes(t *testing.T) {
	mockServer := testutils.NewMockRateServer()
	defer mockServer.Close()
	mockServer.SetRawBody(`{"base":"USD","rates":{"eur":0.92}}`)

	fetcher := newTestFetcher(mockServer.URL())

	snapshot, err := fetcher.Fetch(context.Background(), "USD")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, ok := snapshot.Rates["EUR"]; !ok {
		t.Errorf("Fetch() rates = %v, want upper-cased EUR key", snapshot.Rates)
	}
}
