package connectivity

import (
	"context"
	"net/http"

	"currency-converter-service/internal/config"
	"currency-converter-service/internal/logger"
)

// Probe answers whether the remote rate source is currently reachable by
// issuing one short-timeout GET against a well-known endpoint.
type Probe struct {
	url        string
	logger     *logger.Logger
	httpClient *http.Client
}

// NewProbe creates a connectivity probe from configuration.
func NewProbe(configuration *config.Config, logger *logger.Logger) *Probe {
	return &Probe{
		url:    configuration.ProbeURL,
		logger: logger,
		httpClient: &http.Client{
			Timeout: configuration.ProbeTimeout,
		},
	}
}

// IsAvailable performs a single reachability check. Any transport error,
// timeout, or error-class status reads as offline; connectivity failure is
// the answer, never an error. One outbound request per call, no retries.
func (probe *Probe) IsAvailable(ctx context.Context) bool {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.url, nil)
	if err != nil {
		probe.logger.Debugf("Connectivity probe request invalid: %v", err)
		return false
	}

	response, err := probe.httpClient.Do(request)
	if err != nil {
		probe.logger.Debugf("Connectivity probe failed: %v", err)
		return false
	}
	defer response.Body.Close()

	// Redirect chains are followed by the client, so anything below 400
	// means the endpoint answered.
	if response.StatusCode >= http.StatusBadRequest {
		probe.logger.Debugf("Connectivity probe got status %d", response.StatusCode)
		return false
	}
	return true
}
