// Package usagym is the HTTP client for the federation results API.
// It fetches sanction detail documents, result-set scores and the
// past-meets listing, and reports failures as typed *FetchError values
// so batch callers can skip and continue.
package usagym

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/roundoff/gymstats/pkg/metrics"
)

// Fetcher is the read surface the sync service needs from upstream.
type Fetcher interface {
	Sanction(ctx context.Context, sanctionID int) (*SanctionDocument, error)
	Scores(ctx context.Context, resultSetID int) (*ScoresDocument, error)
	PastMeets(ctx context.Context) ([]Meet, error)
}

// Client talks to the federation API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL, e.g.
// "https://api.myusagym.com".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sanction fetches the full detail document for one sanction.
func (c *Client) Sanction(ctx context.Context, sanctionID int) (*SanctionDocument, error) {
	var doc SanctionDocument
	url := fmt.Sprintf("%s/v2/sanctions/%d", c.baseURL, sanctionID)
	if err := c.getJSON(ctx, url, "sanction", sanctionID, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Scores fetches the score list for one result set.
func (c *Client) Scores(ctx context.Context, resultSetID int) (*ScoresDocument, error) {
	var doc ScoresDocument
	url := fmt.Sprintf("%s/v2/resultsSets/%d", c.baseURL, resultSetID)
	if err := c.getJSON(ctx, url, "scores", resultSetID, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// PastMeets fetches the flat listing of past meets.
func (c *Client) PastMeets(ctx context.Context) ([]Meet, error) {
	var meets []Meet
	url := c.baseURL + "/v1/meets/past"
	if err := c.getJSON(ctx, url, "meets", 0, &meets); err != nil {
		return nil, err
	}
	return meets, nil
}

// getJSON issues one GET and decodes a 2xx body into out. Non-success
// statuses and transport errors both surface as *FetchError; a decode
// failure on a success response wraps ErrDecode instead, since it points
// at a contract change rather than a flaky upstream.
func (c *Client) getJSON(ctx context.Context, url, resource string, id int, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFetchFailure(resource, "transport")
		return &FetchError{Resource: resource, ID: id, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordFetchFailure(resource, "http")
		return &FetchError{Resource: resource, ID: id, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %d: %w: %w", resource, id, ErrDecode, err)
	}
	return nil
}
