package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nhle/daily-checkin/internal/model"
)

// API paths consumed by the client.
const (
	PathStatus   = "/api/status"
	PathCheckins = "/api/checkins"
	PathCheckIn  = "/api/checkin"
)

// Client is a thin HTTP client for the check-in API. It handles optional
// Bearer token authentication, client-side rate limiting, JSON decoding,
// and automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the Bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithMaxRetries sets how many times a 429 response is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRateLimit caps outgoing requests per second. A non-positive value
// disables the limiter.
func WithRateLimit(perSec float64) Option {
	return func(c *Client) {
		if perSec <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(perSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new check-in API client. The baseURL should be the
// root URL of the server (e.g., http://localhost:5000).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		maxRetries: 3,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig builds a client from the api section of the app config.
func FromConfig(cfg model.APIConfig, token string, logger *zap.Logger) *Client {
	return NewClient(cfg.BaseURL,
		WithTimeout(cfg.Timeout()),
		WithMaxRetries(cfg.MaxRetries),
		WithRateLimit(cfg.RatePerSec),
		WithToken(token),
		WithLogger(logger),
	)
}

// BaseURL returns the server root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches the current streak summary.
func (c *Client) Status(ctx context.Context) (*model.CheckInStatus, error) {
	var status model.CheckInStatus
	if err := c.do(ctx, http.MethodGet, PathStatus, false, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Checkins fetches the set of dates with a recorded check-in.
func (c *Client) Checkins(ctx context.Context) (model.DateSet, error) {
	var set model.DateSet
	if err := c.do(ctx, http.MethodGet, PathCheckins, false, &set); err != nil {
		return nil, err
	}
	if set == nil {
		set = model.NewDateSet()
	}
	return set, nil
}

// CheckIn records today's check-in. Servers report failures as a JSON
// body with a non-2xx status, so such bodies are decoded into the result
// rather than turned into errors.
func (c *Client) CheckIn(ctx context.Context) (*model.CheckInResult, error) {
	var result model.CheckInResult
	if err := c.do(ctx, http.MethodPost, PathCheckIn, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON deserialization.
// With lenient set, a non-2xx response whose body decodes into result is
// returned as a result instead of an error.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	lenient bool,
	result interface{},
) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}

		var body io.Reader
		if method == http.MethodPost {
			body = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		requestID := uuid.NewString()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if method == http.MethodPost {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		c.logger.Debug("api request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)),
		)

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{
				BaseURL: c.baseURL,
				Message: "authentication failed (401): check the API token",
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if lenient && result != nil && json.Unmarshal(respBody, result) == nil {
				return nil
			}
			return &StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       truncate(string(respBody), 200),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
