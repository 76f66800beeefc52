// Package enrichment calls the external text-rewriting service that polishes
// agent drafts before they reach the customer.
package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Rewriter produces the final text for an agent draft.
type Rewriter interface {
	Rewrite(ctx context.Context, draft string) (string, error)
}

// Gateway is an HTTP client for the rewriting webhook. One attempt per call,
// no retries; retrying is the caller's decision.
type Gateway struct {
	client     *http.Client
	webhookURL string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// NewGateway creates a client for the given webhook URL.
func NewGateway(webhookURL string, opts ...Option) *Gateway {
	g := &Gateway{
		client:     &http.Client{Timeout: 30 * time.Second},
		webhookURL: webhookURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type rewriteRequest struct {
	Message string `json:"message"`
}

type rewriteResponse struct {
	Output string `json:"output"`
}

// Rewrite submits the draft and returns the polished text. A transport
// failure or non-2xx status is an error: the service is mandatory for agent
// replies. A successful response whose body is empty, not JSON, or missing
// the output field yields the draft unchanged.
func (g *Gateway) Rewrite(ctx context.Context, draft string) (string, error) {
	payload, err := json.Marshal(rewriteRequest{Message: draft})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("rewrite service status %d", resp.StatusCode)
	}

	if strings.TrimSpace(string(body)) == "" {
		return draft, nil
	}

	var parsed rewriteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Not JSON, use the draft as written.
		return draft, nil
	}
	if parsed.Output == "" {
		return draft, nil
	}
	return parsed.Output, nil
}
