package googlecse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mindbloom-labs/research_agent/internal/search"
)

const baseURL = "https://www.googleapis.com/customsearch/v1"

// Client calls the Google Custom Search JSON API.
type Client struct {
	apiKey   string
	engineID string
	client   *http.Client
}

// NewClient creates a new Google CSE client.
func NewClient(apiKey, engineID string) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		client:   http.DefaultClient,
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

type cseResponse struct {
	Items []cseItem `json:"items"`
}

type cseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search implements search.Searcher.
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	num := req.MaxResults
	if num <= 0 {
		num = 5
	}
	// The API caps num at 10 per call.
	if num > 10 {
		num = 10
	}

	query := req.Query
	if req.SiteRestriction != "" {
		query = fmt.Sprintf("site:%s %s", req.SiteRestriction, query)
	}

	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)
	q.Set("q", query)
	q.Set("num", fmt.Sprintf("%d", num))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	// The CSE daily quota surfaces as 429 Too Many Requests or 403 with a
	// rateLimitExceeded reason. Either way the loop should treat the attempt
	// as empty rather than abort.
	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("google cse (status %d): %w", res.StatusCode, search.ErrQuotaExhausted)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google cse error (status %d): %s", res.StatusCode, string(body))
	}

	var cseResp cseResponse
	if err := json.Unmarshal(body, &cseResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	var results []search.Result
	for _, item := range cseResp.Items {
		results = append(results, search.Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}

	return &search.Response{Results: results}, nil
}
