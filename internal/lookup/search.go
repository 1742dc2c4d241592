// Package lookup adapts the external search, profile and image providers to
// the enrichment pipeline, bounding each provider's concurrency and rate.
package lookup

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/pkg/apify"
	"github.com/sells-group/contact-enrich/pkg/jina"
)

// SearchBackend runs one web search.
type SearchBackend interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.Link, error)
}

type apifySearch struct {
	client apify.Client
}

// NewApifySearch returns a SearchBackend backed by the Apify Google Search
// actor.
func NewApifySearch(client apify.Client) SearchBackend {
	return &apifySearch{client: client}
}

func (s *apifySearch) Search(ctx context.Context, query string, maxResults int) ([]model.Link, error) {
	results, err := s.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: apify search")
	}
	links := make([]model.Link, 0, len(results))
	for _, r := range results {
		links = append(links, model.Link{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Date:        r.Date,
		})
	}
	return links, nil
}

type jinaSearch struct {
	client jina.Client
}

// NewJinaSearch returns a SearchBackend backed by Jina AI Search.
func NewJinaSearch(client jina.Client) SearchBackend {
	return &jinaSearch{client: client}
}

func (s *jinaSearch) Search(ctx context.Context, query string, maxResults int) ([]model.Link, error) {
	resp, err := s.client.Search(ctx, query, jina.WithCount(maxResults))
	if err != nil {
		return nil, eris.Wrap(err, "lookup: jina search")
	}
	links := make([]model.Link, 0, len(resp.Data))
	for _, r := range resp.Data {
		if len(links) == maxResults && maxResults > 0 {
			break
		}
		links = append(links, model.Link{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Date:        r.Date,
		})
	}
	return links, nil
}
