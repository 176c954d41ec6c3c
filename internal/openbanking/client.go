// Package openbanking talks to the bank's open-banking API: account discovery,
// paginated transaction feeds and the aggregation of both.
package openbanking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL  = "https://api.hackathon.developer.nordeaopenbanking.com"
	DefaultMaxPages = 100

	accountsPath = "/v2/accounts"
)

// ErrTooManyPages is returned when a transaction feed keeps paginating past
// the configured page cap.
var ErrTooManyPages = errors.New("too many transaction pages")

// Config carries everything the client needs to reach the API. It is passed in
// at construction time.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Token        string
	Timeout      time.Duration
	MaxPages     int
}

// FetchError is any failure talking to the upstream API.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Client struct {
	http     *http.Client
	base     *url.URL
	headers  http.Header
	maxPages int
	log      zerolog.Logger
}

// NewClient builds a client from cfg. A nil httpClient gets a default one with
// cfg.Timeout applied.
func NewClient(cfg Config, httpClient *http.Client, log zerolog.Logger) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", raw)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	headers := http.Header{}
	headers.Set("X-IBM-Client-Id", cfg.ClientID)
	headers.Set("X-IBM-Client-Secret", cfg.ClientSecret)
	headers.Set("Authorization", "Bearer "+cfg.Token)
	headers.Set("Accept", "application/json")

	return &Client{
		http:     httpClient,
		base:     base,
		headers:  headers,
		maxPages: maxPages,
		log:      log.With().Str("component", "openbanking").Logger(),
	}, nil
}

// resolve turns an href from a link relation into an absolute URL.
func (c *Client) resolve(href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) getJSON(ctx context.Context, op, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("op", op).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, URL: target, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
