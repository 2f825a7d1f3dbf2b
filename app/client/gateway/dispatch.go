package gateway

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
)

type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type Dispatcher struct {
	httpClient *http.Client
	prober     *Prober
	primary    Endpoint
	secondary  Endpoint
}

func NewDispatcher(httpClient *http.Client, prober *Prober, primary, secondary Endpoint) *Dispatcher {
	return &Dispatcher{
		httpClient: httpClient,
		prober:     prober,
		primary:    primary,
		secondary:  secondary,
	}
}

func (d *Dispatcher) Primary() Endpoint {
	return d.primary
}

func (d *Dispatcher) Secondary() Endpoint {
	return d.secondary
}

// Do sends req to the primary endpoint. Only when that request cannot complete
// is the secondary probed, and only a healthy secondary receives the same request.
// Responses with error statuses are returned as is, the caller owns the body.
func (d *Dispatcher) Do(ctx context.Context, req Request) (*http.Response, error) {
	resp, primaryErr := d.send(ctx, d.primary, req)
	if primaryErr == nil {
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, primaryErr
	}

	slog.Warn("Primary backend failed, probing secondary",
		"primary", d.primary,
		"secondary", d.secondary,
		"error", primaryErr)

	if !d.prober.Probe(ctx, d.secondary) {
		return nil, oops.
			In("gateway").
			With("primary", string(d.primary), "secondary", string(d.secondary)).
			Errorf("%w: %w", ErrAllBackendsUnavailable, primaryErr)
	}

	resp, err := d.send(ctx, d.secondary, req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (d *Dispatcher) send(ctx context.Context, endpoint Endpoint, req Request) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint.URL(req.Path), body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	return resp, nil
}
