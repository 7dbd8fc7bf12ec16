package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

const maxBodyBytes = 10 << 20

// Waiter throttles outbound requests.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// StatusError reports a non-2xx provider response. URL is already
// redacted.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Unwrap classifies every bad status as the provider being unavailable.
func (e *StatusError) Unwrap() error {
	return opportunity.ErrProviderUnavailable
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ClientConfig controls the shared provider client.
type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	UserAgent      string
}

// Client performs provider HTTP calls with a per-call timeout, host
// throttling and retries for transient failures.
type Client struct {
	http      *http.Client
	transport http.RoundTripper
	limiter   Waiter
	retry     *RetryPolicy
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger

	mu      sync.RWMutex
	secrets []string
}

// NewClient builds a Client. limiter may be nil.
func NewClient(cfg ClientConfig, limiter Waiter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := newHTTPTransport()
	return &Client{
		http:      &http.Client{Transport: transport},
		transport: transport,
		limiter:   limiter,
		retry:     NewRetryPolicy(cfg.MaxRetries, cfg.BackoffInitial, cfg.BackoffMax),
		timeout:   timeout,
		userAgent: cfg.UserAgent,
		logger:    logger.Named("client"),
	}
}

// AddSecrets registers credentials that must never appear in logs or
// error text, such as API keys carried in a URL path.
func (c *Client) AddSecrets(secrets ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range secrets {
		if s != "" {
			c.secrets = append(c.secrets, s)
		}
	}
}

// Redact returns rawURL with its query and user info removed and every
// registered secret masked.
func (c *Client) Redact(rawURL string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return RedactURL(rawURL, c.secrets...)
}

// RedactURL keeps only scheme, host and path of rawURL and masks each
// secret found in what remains.
func RedactURL(rawURL string, secrets ...string) string {
	out := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		u.User = nil
		u.RawQuery = ""
		u.Fragment = ""
		out = u.String()
	} else if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		out = rawURL[:i]
	}
	for _, s := range secrets {
		if s == "" {
			continue
		}
		out = strings.ReplaceAll(out, s, "REDACTED")
		if escaped := url.PathEscape(s); escaped != s {
			out = strings.ReplaceAll(out, escaped, "REDACTED")
		}
	}
	return out
}

// Transport exposes the pooled transport for collectors that fetch on
// their own.
func (c *Client) Transport() http.RoundTripper {
	return c.transport
}

// Timeout returns the per-call budget.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// UserAgent returns the configured User-Agent.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Wait applies the host throttle to rawURL.
func (c *Client) Wait(ctx context.Context, rawURL string) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return fmt.Errorf("%w: %w", opportunity.ErrProviderUnavailable, err)
	}
	return nil
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	body, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// PostJSON sends payload as JSON and decodes the response body into out.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	body, err := c.do(ctx, http.MethodPost, rawURL, header, encoded)
	if err != nil {
		return err
	}
	return decodeJSON(body, out)
}

// Get fetches rawURL and returns the raw body.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, header, nil)
}

func (c *Client) do(ctx context.Context, method, rawURL string, header http.Header, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		body, err := c.attempt(ctx, method, rawURL, header, payload)
		if err == nil {
			return body, nil
		}
		if !c.retry.ShouldRetry(err, attempt) {
			return nil, err
		}
		wait := c.retry.Backoff(attempt)
		c.logger.Debug("retrying provider request",
			zap.String("url", c.Redact(rawURL)),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", opportunity.ErrProviderUnavailable, ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, header http.Header, payload []byte) ([]byte, error) {
	if err := c.Wait(ctx, rawURL); err != nil {
		return nil, err
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s", opportunity.ErrProviderUnavailable, c.Redact(rawURL))
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error embeds the full request URL.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = fmt.Errorf("%s %s: %w", uerr.Op, c.Redact(rawURL), uerr.Err)
		}
		return nil, fmt.Errorf("%w: %w", opportunity.ErrProviderUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{URL: c.Redact(rawURL), StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", opportunity.ErrProviderUnavailable, err)
	}
	return body, nil
}

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", opportunity.ErrParseFailure, err)
	}
	return nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
