// Package client talks to the back-office API that owns the catalog,
// sales ledger and cashier sessions.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the back-office API client. All terminal traffic goes
// through it with a bearer token issued per terminal.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError carries a non-2xx response. Detail is the service-provided
// message, passed through verbatim to the operator.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("service returned status %d", e.Status)
}

// New creates a back-office client. timeout <= 0 falls back to 15s.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken replaces the bearer token, e.g. after re-pairing the terminal.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetBaseURL repoints the client, used by the setup wizard after the
// back-office address is entered.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// doJSON performs a request with a JSON body and decodes a JSON response.
// body and out may be nil.
func (c *Client) doJSON(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status: resp.StatusCode,
			Detail: parseDetail(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseDetail extracts the error message from a service error body.
// The service wraps messages as {"detail": "..."}; anything else is
// returned as the raw body.
func parseDetail(data []byte) string {
	var wrapped struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Detail != "" {
		return wrapped.Detail
	}
	return string(bytes.TrimSpace(data))
}
