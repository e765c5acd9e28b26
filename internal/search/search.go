// Package search implements the web search backends behind the search tool.
package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/petasbytes/search-agent/internal/config"
)

// DefaultMaxResults matches the two results the agent asks for unless told otherwise.
const DefaultMaxResults = 2

const (
	ProviderTavily     = "tavily"
	ProviderDuckDuckGo = "duckduckgo"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes bounds how much of a backend response is read.
const maxBodyBytes = 5 << 20

type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Backend runs a query against a search service.
type Backend interface {
	Search(ctx context.Context, query string, maxResults int) (Response, error)
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// New builds the backend named by provider. settings is the free-form
// provider block from the configuration file.
func New(provider, apiKey string, settings map[string]any) (Backend, error) {
	switch provider {
	case ProviderTavily, "":
		var s TavilySettings
		if err := config.DecodeSettings(settings, &s); err != nil {
			return nil, fmt.Errorf("tavily settings: %w", err)
		}
		if err := config.RequireString(apiKey, "search.api_key"); err != nil {
			return nil, fmt.Errorf("tavily: %w", err)
		}
		return NewTavily(apiKey, s), nil
	case ProviderDuckDuckGo:
		var s DuckDuckGoSettings
		if err := config.DecodeSettings(settings, &s); err != nil {
			return nil, fmt.Errorf("duckduckgo settings: %w", err)
		}
		return NewDuckDuckGo(s), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", provider)
	}
}

func clientWithTimeout(d time.Duration) *http.Client {
	if d <= 0 {
		d = defaultTimeout
	}
	return &http.Client{Timeout: d}
}
