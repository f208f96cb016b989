package tmdb

import (
	"context"
	"net/url"
)

// Search looks up movies by title.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var resp searchResponse
	q := url.Values{"query": {query}, "include_adult": {"false"}}
	if err := c.doRequest(ctx, "/3/search/movie", q, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
