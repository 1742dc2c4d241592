// Package apify provides a client for the Apify Google Search actor.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.apify.com"
	// DefaultActorID is the Google Search Results Scraper actor.
	DefaultActorID = "nFJndFXA5zjCTuudP"
)

// Client runs Google searches through an Apify actor.
type Client interface {
	// Search runs one query and returns the organic results of its first
	// result page.
	Search(ctx context.Context, query string, maxResults int) ([]OrganicResult, error)
}

// OrganicResult is one organic search result.
type OrganicResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
	Position    int    `json:"position,omitempty"`
}

// searchPage is one dataset item produced by the actor.
type searchPage struct {
	OrganicResults []OrganicResult `json:"organicResults"`
}

type runInput struct {
	Queries                  string `json:"queries"`
	ResultsPerPage           int    `json:"resultsPerPage"`
	MaxPagesPerQuery         int    `json:"maxPagesPerQuery"`
	LanguageCode             string `json:"languageCode"`
	MobileResults            bool   `json:"mobileResults"`
	IncludeUnfilteredResults bool   `json:"includeUnfilteredResults"`
	SaveHTML                 bool   `json:"saveHtml"`
	SaveHTMLToKeyValueStore  bool   `json:"saveHtmlToKeyValueStore"`
	IncludeIcons             bool   `json:"includeIcons"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithActorID overrides the search actor.
func WithActorID(id string) Option {
	return func(c *httpClient) {
		c.actorID = id
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	actorID string
	http    *http.Client
}

// NewClient creates an Apify search client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		actorID: DefaultActorID,
		http: &http.Client{
			// Synchronous actor runs routinely take tens of seconds.
			Timeout: 5 * time.Minute,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, maxResults int) ([]OrganicResult, error) {
	body, err := json.Marshal(runInput{
		Queries:          query,
		ResultsPerPage:   maxResults,
		MaxPagesPerQuery: 1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal input")
	}

	reqURL := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(c.actorID), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apify: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "apify: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apify: read response")
	}

	// run-sync-get-dataset-items answers 201 when the run finished.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, eris.Errorf("apify: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var pages []searchPage
	if err := json.Unmarshal(respBody, &pages); err != nil {
		return nil, eris.Wrap(err, "apify: unmarshal dataset items")
	}

	results := []OrganicResult{}
	for _, p := range pages {
		results = append(results, p.OrganicResults...)
	}
	return results, nil
}
