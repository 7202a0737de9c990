package factory

import (
	"fmt"

	"github.com/mindbloom-labs/research_agent/internal/config"
	"github.com/mindbloom-labs/research_agent/internal/search"
	"github.com/mindbloom-labs/research_agent/internal/search/googlecse"
	"github.com/mindbloom-labs/research_agent/internal/search/searxng"
	"github.com/mindbloom-labs/research_agent/internal/search/tavily"
)

// NewSearcher builds the configured search provider.
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		// Fallback selection: prefer whichever provider has credentials.
		switch {
		case cfg.Search.GoogleCSE.APIKey != "":
			provider = "googlecse"
		case cfg.Search.Tavily.APIKey != "":
			provider = "tavily"
		default:
			return nil, fmt.Errorf("search provider not configured")
		}
	}

	switch provider {
	case "googlecse":
		if cfg.Search.GoogleCSE.APIKey == "" || cfg.Search.GoogleCSE.EngineID == "" {
			return nil, fmt.Errorf("google cse api key or engine id is missing")
		}
		return googlecse.NewClient(cfg.Search.GoogleCSE.APIKey, cfg.Search.GoogleCSE.EngineID), nil

	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Search.Tavily.APIKey), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
