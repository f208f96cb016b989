// Package tmdb provides a rate-limited client for the external movie
// metadata catalog: search, details, credits, genres, keywords, and
// person lookups.
package tmdb

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/reelmates/reelmates-core/internal/errors"
	"github.com/reelmates/reelmates-core/internal/ratelimit"
)

const (
	defaultHost    = "api.themoviedb.org"
	defaultTimeout = 30 * time.Second

	// Rate limit: 4 requests per second, burst of 8. The catalog
	// throttles aggressively beyond that.
	defaultRPS   = 4.0
	defaultBurst = 8
)

// Client is a rate-limited metadata catalog client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.Limiter
	apiKey  string
	host    string
	logger  *slog.Logger
}

// New creates a new catalog client. An empty apiKey is allowed; every
// call then fails with a distinguished missing-credential error so the
// UI can show a configuration hint instead of a generic failure.
func New(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		apiKey:  apiKey,
		host:    defaultHost,
		logger:  logger,
	}
}

// SetHost overrides the API host. Tests point this at a local server.
func (c *Client) SetHost(host string) {
	c.host = host
}

// doRequest executes one catalog request and decodes the JSON response
// into out.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return errors.MissingCredential("metadata API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	u := url.URL{
		Scheme:   "https",
		Host:     c.host,
		Path:     path,
		RawQuery: query.Encode(),
	}
	// Local test servers are plain HTTP.
	if u.Host != defaultHost {
		u.Scheme = "http"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("metadata request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return errors.MissingCredential("metadata API key rejected")
	case http.StatusNotFound:
		return errors.NotFoundf("metadata: %s not found", path)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
