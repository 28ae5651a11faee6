package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockRateServer is a mock upstream rate source speaking the
// exchangerate-api response format
type MockRateServer struct {
	server *httptest.Server

	mu         sync.Mutex
	rates      map[string]float64
	statusCode int
	rawBody    string
	hits       int
}

// NewMockRateServer creates a mock rate server with a default USD rate set
func NewMockRateServer() *MockRateServer {
	mock := &MockRateServer{
		rates: map[string]float64{
			"EUR": 0.92,
			"GBP": 0.79,
			"JPY": 148.5,
			"CAD": 1.36,
			"AUD": 1.52,
		},
		statusCode: http.StatusOK,
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

func (m *MockRateServer) handler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++

	if m.statusCode != http.StatusOK {
		w.WriteHeader(m.statusCode)
		return
	}
	if m.rawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(m.rawBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"base":  "USD",
		"rates": m.rates,
	})
}

// URL returns the mock server URL
func (m *MockRateServer) URL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockRateServer) Close() {
	m.server.Close()
}

// SetRates replaces the rates the server returns
func (m *MockRateServer) SetRates(rates map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = rates
}

// SetStatusCode makes the server answer with the given status
func (m *MockRateServer) SetStatusCode(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = statusCode
}

// SetRawBody makes the server answer with a literal body, for malformed
// payload tests
func (m *MockRateServer) SetRawBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawBody = body
}

// Hits returns how many requests the server has answered
func (m *MockRateServer) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// NewMockProbeServer creates a probe target answering with statusCode
func NewMockProbeServer(statusCode int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}))
}
