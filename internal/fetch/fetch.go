// Package fetch wraps the HTTP client used to reach upstream headline sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client is a GET-only HTTP client with a fixed user agent and timeout.
type Client struct {
	http      *http.Client
	userAgent string
}

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// New creates a client. A zero timeout defaults to 15 seconds.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: opts.Timeout,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
	return &Client{
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
	}
}

// Get fetches url and returns the (size-capped) body. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
