// Package client talks to a running plugsunset daemon over its status API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmylchreest/plugsunset/internal/http/handlers"
	"github.com/jmylchreest/plugsunset/internal/status"
)

// Client is an HTTP client for the status API
type Client struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

// APIError is a non-2xx response from the daemon
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP error %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Detail)
}

// New creates a client for the API at baseURL, e.g. http://127.0.0.1:9123
func New(logger *slog.Logger, baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// get performs a GET and decodes the JSON response into resp
func (c *Client) get(ctx context.Context, path string, resp any) error {
	url := c.baseURL + path
	c.logger.Debug("HTTP request", "method", http.MethodGet, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		// huma answers with RFC 9457 problem details
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &problem) == nil {
			apiErr.Detail = problem.Detail
			if apiErr.Detail == "" {
				apiErr.Detail = problem.Title
			}
		}
		c.logger.Debug("HTTP error response", "status", httpResp.StatusCode, "body", string(body))
		return apiErr
	}

	if resp != nil {
		if err := json.Unmarshal(body, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Health reports whether the daemon answers its health check
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/api/v1/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("daemon unhealthy: %q", resp.Status)
	}
	return nil
}

// GetVersion returns the running daemon's build information.
func (c *Client) GetVersion(ctx context.Context) (handlers.BuildInfo, error) {
	var info handlers.BuildInfo
	err := c.get(ctx, "/api/v1/version", &info)
	return info, err
}

// GetStatus returns the daemon's current plug and schedule state
func (c *Client) GetStatus(ctx context.Context) (status.Snapshot, error) {
	var snap status.Snapshot
	err := c.get(ctx, "/api/v1/status", &snap)
	return snap, err
}
