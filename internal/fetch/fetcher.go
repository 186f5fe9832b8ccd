// Package fetch retrieves raw HTML over HTTP for the crawler and the search
// pipeline. Redirects are followed and the final URL is reported.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is sent with every request. Some sites refuse the Go
// client's default.
const DefaultUserAgent = "Mozilla/5.0"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Page is a fetched document.
type Page struct {
	HTML string
	// URL is where the request ended up after redirects.
	URL string
}

// Error is returned for every failed fetch: transport errors, timeouts and
// non-2xx responses. Status is zero when no response was received.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch content from URL %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("failed to fetch content from URL %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves HTML content using plain HTTP GET requests.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHTTPClient uses a copy of c, so its transport and redirect policy are
// shared but the caller's client is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c == nil {
			return
		}
		cp := *c
		f.client = &cp
	}
}

// NewFetcher creates a Fetcher with the given options. The per-request
// timeout is applied to its own client.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = f.timeout
	return f
}

// Fetch GETs url and returns its body along with the resolved URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: url, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	return &Page{HTML: string(body), URL: resp.Request.URL.String()}, nil
}
