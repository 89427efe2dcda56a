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
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

const HeaderXRequestID = "X-Request-ID"

// Requester is everything the stores need from the request layer: a raw
// payload on success, an error on failure.
type Requester interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error)
	Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// TokenSource yields the bearer token when a session exists.
type TokenSource interface {
	Token() (string, bool)
}

type Config struct {
	BaseURL string
	// Timeout of 0 means requests never time out on their own.
	Timeout time.Duration
	// RateLimit is requests per second; 0 disables throttling.
	RateLimit float64
	RateBurst int
	// BreakerFailures consecutive failures open the breaker; 0 disables it.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client is the HTTP Requester.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg Config, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  zerolog.Nop(),
	}

	if cfg.BreakerFailures > 0 {
		timeout := cfg.BreakerTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		failures := cfg.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "clinic-api",
			Timeout: timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			// A 4xx is the server answering; only transport failures and 5xx count.
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				if respErr, ok := err.(*ResponseError); ok {
					return respErr.Status < http.StatusInternalServerError
				}
				return false
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	if c.breaker == nil {
		return c.send(ctx, method, path, body)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, method, path, body)
	})
	if err != nil {
		return nil, err
	}
	raw, _ := out.(json.RawMessage)
	return raw, nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderXRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, "network_error", started)
		c.logger.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(method, strconv.Itoa(resp.StatusCode), started)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("request settled")

	if resp.StatusCode >= http.StatusBadRequest {
		respErr := &ResponseError{Status: resp.StatusCode, StatusText: statusText(resp)}
		respErr.Data.Message = serverMessage(data)
		return nil, respErr
	}

	return json.RawMessage(bytes.TrimSpace(data)), nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func statusText(resp *http.Response) string {
	if txt := http.StatusText(resp.StatusCode); txt != "" {
		return txt
	}
	// "599 Custom Reason" -> "Custom Reason"
	if _, reason, ok := strings.Cut(resp.Status, " "); ok {
		return reason
	}
	return ""
}
