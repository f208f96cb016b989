package remote

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reelmates/reelmates-core/internal/domain"
	"github.com/reelmates/reelmates-core/internal/errors"
)

const defaultHTTPTimeout = 30 * time.Second

// Client is an HTTP client for a shared record-store service exposing
// the movie, rating, and goal partitions. It implements MovieStore,
// RatingStore, and GoalStore.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

// NewClient creates a record-store client. token may be empty when the
// service is unauthenticated (e.g. a LAN deployment).
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// doRequest executes one request and decodes the JSON response into out
// (when out is non-nil).
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("record store request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.ErrRemote.WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ErrRemote.WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NotFoundf("record store: %s not found", path)
	case resp.StatusCode >= 400:
		return errors.Remotef("record store: unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.ErrRemote.WithCause(err)
		}
	}
	return nil
}

// Fetch implements MovieStore.
func (c *Client) Fetch(ctx context.Context, groupID string) ([]MovieRecord, error) {
	var records []MovieRecord
	path := fmt.Sprintf("/groups/%s/movies", url.PathEscape(Scope(groupID)))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save implements MovieStore.
func (c *Client) Save(ctx context.Context, m domain.Movie, backlog bool) error {
	path := fmt.Sprintf("/groups/%s/movies/%s",
		url.PathEscape(Scope(m.GroupID)), url.PathEscape(m.ID))
	return c.doRequest(ctx, http.MethodPut, path, nil, MovieRecord{Movie: m, Backlog: backlog}, nil)
}

// Delete implements MovieStore.
func (c *Client) Delete(ctx context.Context, movieID string) error {
	path := "/movies/" + url.PathEscape(movieID)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

// FetchRatings implements RatingStore.
func (c *Client) FetchRatings(ctx context.Context, groupID string, movieIDs []string) (map[string][]domain.Rating, error) {
	if len(movieIDs) == 0 {
		return map[string][]domain.Rating{}, nil
	}

	query := url.Values{"movie_ids": {strings.Join(movieIDs, ",")}}
	path := fmt.Sprintf("/groups/%s/ratings", url.PathEscape(Scope(groupID)))

	out := make(map[string][]domain.Rating)
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRating implements RatingStore.
func (c *Client) SaveRating(ctx context.Context, groupID, movieID string, r domain.Rating) error {
	path := fmt.Sprintf("/groups/%s/movies/%s/ratings/%s",
		url.PathEscape(Scope(groupID)), url.PathEscape(movieID), url.PathEscape(r.Key()))
	return c.doRequest(ctx, http.MethodPut, path, nil, r, nil)
}

// DeleteRating implements RatingStore.
func (c *Client) DeleteRating(ctx context.Context, groupID, movieID, reviewer string) error {
	path := fmt.Sprintf("/groups/%s/movies/%s/ratings/%s",
		url.PathEscape(Scope(groupID)), url.PathEscape(movieID),
		url.PathEscape(domain.Rating{Reviewer: reviewer}.Key()))
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

// FetchYearlyGoals implements GoalStore.
func (c *Client) FetchYearlyGoals(ctx context.Context, groupID string) (domain.YearlyGoals, error) {
	path := fmt.Sprintf("/groups/%s/goals/yearly", url.PathEscape(Scope(groupID)))
	out := make(domain.YearlyGoals)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveYearlyGoal implements GoalStore.
func (c *Client) SaveYearlyGoal(ctx context.Context, groupID string, year, target int) error {
	path := fmt.Sprintf("/groups/%s/goals/yearly/%d", url.PathEscape(Scope(groupID)), year)
	return c.doRequest(ctx, http.MethodPut, path, nil, map[string]int{"target": target}, nil)
}

// FetchCustomGoals implements GoalStore. The payload is passed through
// opaquely; versioned decoding happens in the domain layer.
func (c *Client) FetchCustomGoals(ctx context.Context, groupID string) ([]byte, error) {
	path := fmt.Sprintf("/groups/%s/goals/custom", url.PathEscape(Scope(groupID)))

	var payload []byte
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.ErrRemote.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, errors.Remotef("record store: unexpected status %d", resp.StatusCode)
	}

	payload, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ErrRemote.WithCause(err)
	}
	return payload, nil
}

// SaveCustomGoals implements GoalStore.
func (c *Client) SaveCustomGoals(ctx context.Context, groupID string, payload []byte) error {
	path := fmt.Sprintf("/groups/%s/goals/custom", url.PathEscape(Scope(groupID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.ErrRemote.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.Remotef("record store: unexpected status %d", resp.StatusCode)
	}
	return nil
}
