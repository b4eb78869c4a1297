// Package search queries the web for evidence about deck claims.
package search

import (
	"context"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// Searcher runs one web query and returns at most maxResults hits
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (*Response, error)
}

// Response is one query's results in ranking order
type Response struct {
	Query   string            `json:"query"`
	Results []model.SearchHit `json:"results"`
}

// URLs returns result URLs in order, skipping blanks and repeats
func (r *Response) URLs() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool, len(r.Results))
	urls := make([]string, 0, len(r.Results))
	for _, hit := range r.Results {
		if hit.URL == "" || seen[hit.URL] {
			continue
		}
		seen[hit.URL] = true
		urls = append(urls, hit.URL)
	}
	return urls
}

// Hits returns the results, never nil
func (r *Response) Hits() []model.SearchHit {
	if r == nil || r.Results == nil {
		return []model.SearchHit{}
	}
	return r.Results
}
