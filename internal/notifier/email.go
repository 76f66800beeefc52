// Package notifier sends the transactional email a customer receives when a
// support agent answers their ticket.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.useplunk.com/v1/send"

// Sender dispatches a transactional email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// EmailClient talks to the Plunk transactional email API.
type EmailClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// EmailOption configures an EmailClient.
type EmailOption func(*EmailClient)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(url string) EmailOption {
	return func(e *EmailClient) { e.endpoint = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) EmailOption {
	return func(e *EmailClient) { e.client = c }
}

// NewEmailClient creates a client authenticated with the given API key.
func NewEmailClient(apiKey string, opts ...EmailOption) *EmailClient {
	e := &EmailClient{
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send dispatches one email and waits for the API to accept it.
func (e *EmailClient) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(sendRequest{To: to, Subject: subject, Body: htmlBody})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email api status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
