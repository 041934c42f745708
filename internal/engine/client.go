// Package engine talks to the external segmentation engine: an HTTP client
// for segmentation runs and a Docker manager for the engine container.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/folio/internal/segmentation"
)

// ErrEngineUnavailable is returned when the engine cannot be reached or
// keeps failing after all retries.
var ErrEngineUnavailable = errors.New("segmentation engine unavailable")

// ErrEngineRejected is returned when the engine answers a request with a
// 4xx status.
var ErrEngineRejected = errors.New("segmentation engine rejected the request")

// Request asks the engine to segment one page.
type Request struct {
	RunID  string `json:"runId"`
	BookID int    `json:"bookId"`
	PageID int    `json:"pageId"`
	// Image is the page image path relative to the books root.
	Image      string                   `json:"image"`
	PDFPage    int                      `json:"pdfPage,omitempty"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	Parameters *segmentation.Parameters `json:"parameters"`
}

// ClientConfig configures a Client.
type ClientConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	// RetryDelay is the base backoff between attempts. Zero means one second.
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Client is an HTTP client for the segmentation engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	logger     *slog.Logger
}

// NewClient creates a new engine client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	attempts := uint(1)
	if cfg.MaxRetries > 0 {
		attempts += uint(cfg.MaxRetries)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		attempts:   attempts,
		delay:      cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// URL returns the engine base URL.
func (c *Client) URL() string { return c.baseURL }

// StatusError is a non-2xx engine response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine returned %d: %s", e.Code, e.Body)
}

// Unwrap lets 4xx responses match ErrEngineRejected.
func (e *StatusError) Unwrap() error {
	if e.Code < 500 {
		return ErrEngineRejected
	}
	return nil
}

// Segment runs segmentation for one page. Connection failures and 5xx
// responses are retried; 4xx responses mean the request itself is wrong
// and are returned immediately.
func (c *Client) Segment(ctx context.Context, req *Request) (*segmentation.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal engine request: %w", err)
	}

	var result segmentation.Result
	err = retry.Do(
		func() error {
			return c.post(ctx, "/segment", body, &result)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("engine request failed, retrying",
				"run", req.RunID, "book", req.BookID, "page", req.PageID,
				"attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		if errors.Is(err, ErrEngineRejected) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return &result, nil
}

// Health checks that the engine answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrEngineUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		se := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if resp.StatusCode < 500 {
			return retry.Unrecoverable(se)
		}
		return se
	}
	if err := json.Unmarshal(data, result); err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to decode engine response: %w", err))
	}
	return nil
}
