// Package patentsview is a client for the PatentsView patents query API.
package patentsview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// DefaultURL is the patents query endpoint.
const DefaultURL = "https://api.patentsview.org/patents/query"

// DefaultPostThreshold is the encoded query length above which requests are
// sent as POST, since long GET URLs are rejected.
const DefaultPostThreshold = 1800

// Request pacing and retry defaults.
const (
	DefaultPageInterval  = time.Minute
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 10 * time.Second
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code       int
	Header     http.Header
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s, headers: %v, body: %s", e.Code, http.StatusText(e.Code), e.Header, e.Body)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client fetches single result pages from the API. It retries rate-limited
// and failed requests with exponential backoff, spaces requests by a fixed
// interval, and stops sending requests altogether while its circuit breaker
// is open.
type Client struct {
	URL           string
	HTTP          *http.Client
	PerPage       int
	PostThreshold int

	RetryAttempts uint
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	Log   pdk.Logger
	Stats pdk.Statter

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*pdk.Page]
}

// ClientOption configures a Client.
type ClientOption func(c *Client)

// OptClientURL sets the endpoint.
func OptClientURL(u string) ClientOption {
	return func(c *Client) {
		c.URL = u
	}
}

// OptClientHTTP sets the underlying http client.
func OptClientHTTP(h *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTP = h
	}
}

// OptClientPageInterval sets the minimum time between two requests. Zero
// disables pacing.
func OptClientPageInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// OptClientRetry sets the number of attempts per page and the initial backoff
// delay.
func OptClientRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

// OptClientPerPage sets the page size.
func OptClientPerPage(n int) ClientOption {
	return func(c *Client) {
		c.PerPage = n
	}
}

// OptClientPostThreshold sets the encoded query length above which POST is
// used.
func OptClientPostThreshold(n int) ClientOption {
	return func(c *Client) {
		c.PostThreshold = n
	}
}

// OptClientBreaker sets the number of consecutive page failures which open
// the circuit breaker, and how long it stays open.
func OptClientBreaker(failures uint32, timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.breaker = newBreaker(c, failures, timeout)
	}
}

// OptClientLogger sets the logger.
func OptClientLogger(l pdk.Logger) ClientOption {
	return func(c *Client) {
		c.Log = l
	}
}

// OptClientStats sets the statter.
func OptClientStats(s pdk.Statter) ClientOption {
	return func(c *Client) {
		c.Stats = s
	}
}

// NewClient gets a Client with sensible defaults: one request per minute,
// five attempts per page starting at a 10 second backoff.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		URL:           DefaultURL,
		HTTP:          &http.Client{Timeout: 5 * time.Minute},
		PerPage:       PerPage,
		PostThreshold: DefaultPostThreshold,
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: 10 * time.Minute,
		Log:           pdk.NopLogger{},
		Stats:         pdk.NopStatter{},
		limiter:       rate.NewLimiter(rate.Every(DefaultPageInterval), 1),
	}
	c.breaker = newBreaker(c, 3, 10*time.Minute)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(c *Client, failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[*pdk.Page] {
	if failures == 0 {
		failures = 1
	}
	return gobreaker.NewCircuitBreaker[*pdk.Page](gobreaker.Settings{
		Name:    "patentsview",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.Log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Page fetches a single page (1-based) of results for q.
func (c *Client) Page(ctx context.Context, q Query, fields []string, page int) (*pdk.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "waiting for rate limiter")
	}
	p, err := c.breaker.Execute(func() (*pdk.Page, error) {
		return c.pageWithRetry(ctx, q, fields, page)
	})
	return p, errors.Wrapf(err, "getting page %d", page)
}

func (c *Client) pageWithRetry(ctx context.Context, q Query, fields []string, page int) (*pdk.Page, error) {
	attempts := c.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return retry.DoWithData(func() (*pdk.Page, error) {
		start := time.Now()
		p, err := c.do(ctx, q, fields, page)
		c.Stats.Timing("client.request", time.Since(start), 1)
		return p, err
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.RetryDelay),
		retry.MaxDelay(c.MaxRetryDelay),
		retry.DelayType(retryAfterDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.Stats.Count("client.retries", 1, 1)
			c.Log.Printf("page %d attempt %d/%d failed: %v", page, n+1, attempts, err)
		}),
	)
}

// retryAfterDelay backs off exponentially unless the server said how long to
// wait.
func retryAfterDelay(n uint, err error, config *retry.Config) time.Duration {
	if se, ok := errors.Cause(err).(*StatusError); ok && se.RetryAfter > 0 {
		return se.RetryAfter
	}
	return retry.BackOffDelay(n, err, config)
}

func (c *Client) do(ctx context.Context, q Query, fields []string, page int) (*pdk.Page, error) {
	req, err := c.request(ctx, q, fields, page)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Unrecoverable(ctx.Err())
		}
		return nil, errors.Wrap(err, "doing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		se := &StatusError{
			Code:       resp.StatusCode,
			Header:     resp.Header,
			Body:       string(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if se.Temporary() {
			return nil, se
		}
		return nil, retry.Unrecoverable(se)
	}

	p := &pdk.Page{}
	if err := json.NewDecoder(resp.Body).Decode(p); err != nil {
		return nil, errors.Wrap(err, "decoding page")
	}
	return p, nil
}

func (c *Client) request(ctx context.Context, q Query, fields []string, page int) (*http.Request, error) {
	qj, err := json.Marshal(q)
	if err != nil {
		return nil, errors.Wrap(err, "encoding query")
	}
	fj, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "encoding fields")
	}
	oj, err := json.Marshal(Options{Page: page, PerPage: c.PerPage})
	if err != nil {
		return nil, errors.Wrap(err, "encoding options")
	}

	if len(qj) > c.PostThreshold {
		body, err := json.Marshal(map[string]json.RawMessage{"q": qj, "f": fj, "o": oj})
		if err != nil {
			return nil, errors.Wrap(err, "encoding body")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, "creating POST request")
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	vals := url.Values{}
	vals.Set("q", string(qj))
	vals.Set("f", string(fj))
	vals.Set("o", string(oj))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"?"+vals.Encode(), nil)
	return req, errors.Wrap(err, "creating GET request")
}

// parseRetryAfter handles both forms of the header: delay seconds or an HTTP
// date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
