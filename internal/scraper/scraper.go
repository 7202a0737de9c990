// Package scraper fetches web pages and extracts the main body text,
// discarding navigation, ads and other boilerplate.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// Extractor fetches a URL and returns its cleaned main-body text.
type Extractor interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ReadabilityExtractor extracts article text with go-readability.
type ReadabilityExtractor struct {
	client  *http.Client
	timeout time.Duration
}

// NewExtractor creates an extractor with the given per-page timeout.
// Zero means 30s.
func NewExtractor(timeout time.Duration) *ReadabilityExtractor {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ReadabilityExtractor{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Ensure ReadabilityExtractor implements Extractor
var _ Extractor = (*ReadabilityExtractor)(nil)

// Fetch downloads pageURL and extracts the core text. Any fetch or parse
// problem comes back as an error; callers treat it as "skip this page".
func (e *ReadabilityExtractor) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}

	// Plenty of publishers reject the default Go User-Agent outright.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Referer", "https://www.google.com/")

	res, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch failed: status %d", res.StatusCode)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	article, err := readability.FromReader(res.Body, parsedURL)
	if err != nil {
		return "", fmt.Errorf("extract failed: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no extractable text")
	}
	return text, nil
}
