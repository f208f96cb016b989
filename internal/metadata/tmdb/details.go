package tmdb

import (
	"context"
	"fmt"
)

// Details fetches the full record for one movie.
func (c *Client) Details(ctx context.Context, movieID int64) (*MovieDetails, error) {
	var details MovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/3/movie/%d", movieID), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Credits fetches the cast and crew for one movie.
func (c *Client) Credits(ctx context.Context, movieID int64) (*Credits, error) {
	var credits Credits
	if err := c.doRequest(ctx, fmt.Sprintf("/3/movie/%d/credits", movieID), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Keywords fetches the keyword list for one movie.
func (c *Client) Keywords(ctx context.Context, movieID int64) ([]Keyword, error) {
	var resp keywordsResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/3/movie/%d/keywords", movieID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Keywords, nil
}

// Person fetches one person record, including the popularity score the
// enrichment cache stores.
func (c *Client) Person(ctx context.Context, personID int64) (*Person, error) {
	var person Person
	if err := c.doRequest(ctx, fmt.Sprintf("/3/person/%d", personID), nil, &person); err != nil {
		return nil, err
	}
	return &person, nil
}
