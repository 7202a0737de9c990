package search

import (
	"context"
	"errors"
)

// ErrQuotaExhausted signals a provider quota or rate-limit condition. Callers
// need to tell it apart from an empty result set, which is a normal outcome.
var ErrQuotaExhausted = errors.New("search quota exhausted")

// Searcher is the common search provider interface.
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request is a provider-independent search request.
type Request struct {
	Query           string
	MaxResults      int
	SiteRestriction string // optional: limit results to one site
}

// Response is a provider-independent search response.
type Response struct {
	Results []Result
}

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}
