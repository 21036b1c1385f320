package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/mtg-collector/internal/metrics"
)

const (
	// DefaultBaseURL is the public Scryfall API.
	DefaultBaseURL = "https://api.scryfall.com"

	// DefaultRequestInterval is the minimum spacing between outbound calls (10 req/sec).
	DefaultRequestInterval = 100 * time.Millisecond

	DefaultUserAgent = "MTG-Collector/1.0"

	// DefaultBackoff is the first retry delay; it doubles per attempt.
	DefaultBackoff = 250 * time.Millisecond

	requestTimeout = 30 * time.Second
	maxRetries     = 2
	maxBackoff     = 4 * time.Second
)

// Limiter blocks until the next outbound request may be sent.
// *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewLimiter returns a limiter that spaces requests at least interval apart.
// The burst of one means it bounds rate only; idle time is not banked.
func NewLimiter(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Client represents a Scryfall API client with rate limiting.
// Each Client owns its limiter, so independent clients do not share a budget.
type Client struct {
	httpClient     *http.Client
	rateLimiter    Limiter
	baseURL        string
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
	metrics        *metrics.LookupMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithLimiter replaces the default 100ms limiter.
func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.rateLimiter = l }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent sets the identifying client tag sent on every call.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetryPolicy bounds retries on transient failures. Zero disables retries.
func WithRetryPolicy(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = retries
		c.initialBackoff = backoff
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *metrics.LookupMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new Scryfall API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter:    NewLimiter(DefaultRequestInterval),
		baseURL:        DefaultBaseURL,
		userAgent:      DefaultUserAgent,
		maxRetries:     maxRetries,
		initialBackoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCard retrieves a card by its Scryfall ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.get(ctx, "card", "/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return &card, nil
}

// GetCardByExactName retrieves the card whose English name matches exactly
// (case-insensitive on Scryfall's side).
func (c *Client) GetCardByExactName(ctx context.Context, name string) (*Card, error) {
	var card Card
	if err := c.get(ctx, "named_exact", "/cards/named", url.Values{"exact": {name}}, &card); err != nil {
		return nil, fmt.Errorf("failed to get card named %q: %w", name, err)
	}
	return &card, nil
}

// GetCardByFuzzyName retrieves the single best match for name, tolerating
// misspellings and partial words.
func (c *Client) GetCardByFuzzyName(ctx context.Context, name string) (*Card, error) {
	var card Card
	if err := c.get(ctx, "named_fuzzy", "/cards/named", url.Values{"fuzzy": {name}}, &card); err != nil {
		return nil, fmt.Errorf("failed to fuzzy match %q: %w", name, err)
	}
	return &card, nil
}

// SearchOptions narrows a full-text search.
type SearchOptions struct {
	// Lang restricts results to one language code ("de", "ja").
	// "any" searches every language. Empty keeps Scryfall's default (English).
	Lang string
	// Unique is Scryfall's unique mode: "cards", "art" or "prints".
	Unique string
}

// SearchCards performs a full-text search for cards. Scryfall answers an
// empty result set with 404, which surfaces as a NotFoundError.
func (c *Client) SearchCards(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	q := query
	params := url.Values{}
	if opts.Lang != "" {
		q = fmt.Sprintf("%s lang:%s", query, opts.Lang)
		params.Set("include_multilingual", "true")
	}
	params.Set("q", q)
	if opts.Unique != "" {
		params.Set("unique", opts.Unique)
	}

	var result SearchResult
	if err := c.get(ctx, "search", "/cards/search", params, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query '%s': %w", q, err)
	}
	return &result, nil
}

// Autocomplete returns up to 20 card names beginning with, or containing, prefix.
func (c *Client) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	var catalog Catalog
	if err := c.get(ctx, "autocomplete", "/cards/autocomplete", url.Values{"q": {prefix}}, &catalog); err != nil {
		return nil, fmt.Errorf("failed to autocomplete '%s': %w", prefix, err)
	}
	return catalog.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.doRequest(ctx, endpoint, http.MethodGet, u, nil, result)
}

// doRequest performs an HTTP request with rate limiting and retry logic.
// Every attempt, retries included, waits on the limiter.
func (c *Client) doRequest(ctx context.Context, endpoint, method, url string, body []byte, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry(endpoint)
		}

		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		c.metrics.ObserveThrottle(time.Since(waitStart))

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.ObserveRequest(endpoint, 0, time.Since(start))
			lastErr = &TransportError{URL: url, Err: err}

			// A cancelled caller gets no further attempts
			if ctx.Err() != nil {
				return lastErr
			}
			if attempt < c.maxRetries {
				if err := sleep(ctx, backoff); err != nil {
					return lastErr
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		c.metrics.ObserveRequest(endpoint, resp.StatusCode, time.Since(start))
		if readErr != nil {
			return &TransportError{URL: url, StatusCode: resp.StatusCode, Err: readErr}
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			nf := &NotFoundError{URL: url}
			var apiErr APIError
			if err := json.Unmarshal(respBody, &apiErr); err == nil {
				nf.Details = apiErr.Details
			}
			return nf

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &TransportError{URL: url, StatusCode: resp.StatusCode}

			if attempt < c.maxRetries {
				wait := backoff
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if secs, err := strconv.Atoi(retryAfter); err == nil {
						wait = min(time.Duration(secs)*time.Second, maxBackoff)
					}
				}
				if err := sleep(ctx, wait); err != nil {
					return lastErr
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}

		default:
			var apiErr APIError
			if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Details != "" {
				if apiErr.Status == 0 {
					apiErr.Status = resp.StatusCode
				}
				return &apiErr
			}
			return &TransportError{
				URL:        url,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("unexpected response: %s", string(respBody)),
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
