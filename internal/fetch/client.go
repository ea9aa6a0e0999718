// Package fetch is the plain HTTP client used by the scrape-based extractors
// (GitHub trending, Trendshift, Reddit listings, README and avatar lookups).
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Client wraps net/http with transparent brotli/gzip/deflate decoding and
// rotating user agents.
type Client struct {
	client     *http.Client
	userAgents []string
	uaIndex    atomic.Int64
	logger     *slog.Logger
}

// NewClient creates a fetch client with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decompression handled below, including brotli
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		userAgents: defaultUserAgents,
		logger:     logger.With("component", "fetch_client"),
	}
}

// Get fetches a URL and returns the decoded body and status code. Extra
// headers override the defaults.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode %s: %w", rawURL, err)
	}

	c.logger.Debug("fetched",
		"url", rawURL,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)
	return body, resp.StatusCode, nil
}

// GetJSON fetches a URL and unmarshals the JSON body into out. Non-2xx
// statuses are errors.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	body, status, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("fetch %s: status %d", rawURL, status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse json from %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) nextUserAgent() string {
	idx := c.uaIndex.Add(1)
	return c.userAgents[int(idx)%len(c.userAgents)]
}

func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch resp.Header.Get("Content-Encoding") {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	return io.ReadAll(reader)
}
