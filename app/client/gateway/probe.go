package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Prober struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewProber judges the root's own answer, so redirects are not followed.
func NewProber(httpClient *http.Client, timeout time.Duration) *Prober {
	probeClient := *httpClient
	probeClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Prober{
		httpClient: &probeClient,
		timeout:    timeout,
	}
}

// Probe reports whether GET {endpoint}/ answers with a 2xx or 3xx status within the timeout.
func (p *Prober) Probe(ctx context.Context, endpoint Endpoint) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL("/"), nil)
	if err != nil {
		slog.Warn("Health probe failed", "endpoint", endpoint, "error", err)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("Health probe failed", "endpoint", endpoint, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		slog.Warn("Health probe failed", "endpoint", endpoint, "status", resp.StatusCode)
		return false
	}

	return true
}
