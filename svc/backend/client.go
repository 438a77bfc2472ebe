package backend

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

	"github.com/loopinhq/loopin/pkg/logger"
	"github.com/loopinhq/loopin/pkg/requestid"
)

// Config is loaded from the environment by pkg/config.
type Config struct {
	URL              string        `env:"BACKEND_URL" envDefault:"https://loopin-backend-dev-env.eba-9w2ppy6p.eu-north-1.elasticbeanstalk.com"`
	Timeout          time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	MaxRetries       int           `env:"BACKEND_MAX_RETRIES" envDefault:"2"`
	BreakerThreshold int           `env:"BACKEND_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerRecovery  time.Duration `env:"BACKEND_BREAKER_RECOVERY" envDefault:"30s"`
}

// Client talks JSON to the summarization backend. Every call except
// LoginOrSignup carries the user's backend bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    Backoff
	breaker    *CircuitBreaker
	log        *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

func WithBackoff(b Backoff) Option {
	return func(cl *Client) {
		if b != nil {
			cl.backoff = b
		}
	}
}

// WithCircuitBreaker replaces the breaker built from Config. Passing nil
// disables it.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(cl *Client) { cl.breaker = cb }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Transport: &requestid.Transport{}},
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    ExponentialBackoff{JitterFactor: 0.2},
		breaker:    NewCircuitBreaker(cfg.BreakerThreshold, 1, cfg.BreakerRecovery),
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends in as JSON to path and decodes the 2xx answer into out when
// out is not nil. Network failures, 5xx and throttling answers are retried.
func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return ErrCircuitOpen
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.record(lastErr)
				return ctx.Err()
			case <-time.After(c.backoff.NextInterval(attempt)):
			}
		}

		start := time.Now()
		body, err := c.attempt(ctx, path, token, payload)
		if err == nil {
			c.record(nil)
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return errors.Join(ErrDecode, err)
			}
			return nil
		}

		lastErr = err
		c.log.WarnContext(ctx, "backend call failed",
			logger.Component("backend"),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.permanent() {
			c.record(nil)
			return err
		}
		if ctx.Err() != nil {
			break
		}
	}
	c.record(lastErr)
	return lastErr
}

func (c *Client) record(err error) {
	if c.breaker == nil {
		return
	}
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func (c *Client) attempt(ctx context.Context, path, token string, payload []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
