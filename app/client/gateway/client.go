package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"leadcapture/app/config"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

const FallbackMessage = "I'm having trouble connecting right now. Please try again in a moment."

type Client struct {
	endpoints  Endpoints
	prober     *Prober
	dispatcher *Dispatcher
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewClient(cfg.Gateway, http.DefaultClient), nil
}

// NewClient resolves the primary endpoint once; it stays fixed for the client's lifetime.
func NewClient(cfg config.Gateway, httpClient *http.Client) *Client {
	endpoints := Endpoints{
		Local:      Endpoint(cfg.LocalURL),
		Production: Endpoint(cfg.ProductionURL),
	}

	primary := endpoints.Resolve(cfg.APIURL, cfg.SiteHost)
	secondary := endpoints.Secondary(primary)

	prober := NewProber(httpClient, cfg.ProbeTimeout)

	slog.Debug("Resolved backend endpoints",
		"primary", primary,
		"secondary", secondary)

	return &Client{
		endpoints:  endpoints,
		prober:     prober,
		dispatcher: NewDispatcher(httpClient, prober, primary, secondary),
	}
}

func (c *Client) Primary() Endpoint {
	return c.dispatcher.Primary()
}

func (c *Client) Secondary() Endpoint {
	return c.dispatcher.Secondary()
}

// SendChatMessage never fails: any error is logged and replaced with FallbackMessage.
func (c *Client) SendChatMessage(ctx context.Context, message string, history []ChatMessage) ChatResponse {
	resp, err := c.sendChatMessage(ctx, message, history)
	if err != nil {
		slog.Error("Failed to send chat message", "error", err)

		return ChatResponse{
			Message:          FallbackMessage,
			CapturedLeadInfo: nil,
		}
	}

	return *resp
}

func (c *Client) sendChatMessage(ctx context.Context, message string, history []ChatMessage) (*ChatResponse, error) {
	if history == nil {
		history = []ChatMessage{}
	}

	body, err := json.Marshal(ChatRequest{
		Message:             message,
		ConversationHistory: history,
	})
	if err != nil {
		return nil, oops.In("gateway").Errorf("failed to marshal chat request: %w", err)
	}

	resp, err := c.dispatcher.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/chat",
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isOK(resp.StatusCode) {
		return nil, oops.
			In("gateway").
			With("status", resp.StatusCode).
			Wrap(&APIError{StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)})
	}

	var result ChatResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, oops.In("gateway").Errorf("failed to decode chat response: %w", err)
	}

	return &result, nil
}

// GetLeads returns the backend's lead records untouched, or an empty slice on any failure.
func (c *Client) GetLeads(ctx context.Context) []json.RawMessage {
	leads, err := c.getLeads(ctx)
	if err != nil {
		slog.Error("Failed to fetch leads", "error", err)
		return []json.RawMessage{}
	}

	return leads
}

func (c *Client) getLeads(ctx context.Context) ([]json.RawMessage, error) {
	var leads []json.RawMessage
	if err := c.getJSON(ctx, "/leads", &leads); err != nil {
		return nil, err
	}

	if leads == nil {
		leads = []json.RawMessage{}
	}

	return leads, nil
}

// GetLead returns a single lead record; false on any failure, including an unknown id.
func (c *Client) GetLead(ctx context.Context, id int64) (json.RawMessage, bool) {
	var lead json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf("/leads/%d", id), &lead); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			slog.Warn("Lead not found", "id", id)
		} else {
			slog.Error("Failed to fetch lead", "id", id, "error", err)
		}

		return nil, false
	}

	return lead, true
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.dispatcher.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   path,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isOK(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)

		return oops.
			In("gateway").
			With("status", resp.StatusCode, "path", path).
			Wrap(&APIError{StatusCode: resp.StatusCode})
	}

	if err = json.NewDecoder(resp.Body).Decode(target); err != nil {
		return oops.In("gateway").With("path", path).Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Connectivity probes both well-known backends in parallel.
func (c *Client) Connectivity(ctx context.Context) []BackendStatus {
	targets := []struct {
		name     string
		endpoint Endpoint
	}{
		{"local", c.endpoints.Local},
		{"production", c.endpoints.Production},
	}

	result := make([]BackendStatus, len(targets))

	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			start := time.Now()
			reachable := c.prober.Probe(ctx, target.endpoint)

			result[i] = BackendStatus{
				Name:      target.name,
				URL:       string(target.endpoint),
				Reachable: reachable,
				Latency:   time.Since(start),
			}

			return nil
		})
	}
	_ = g.Wait()

	return result
}

func isOK(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func readErrorBody(body io.Reader) map[string]any {
	result := map[string]any{}

	data, err := io.ReadAll(body)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err = json.Unmarshal(data, &parsed); err != nil || parsed == nil {
		return result
	}

	return parsed
}
