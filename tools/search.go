package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petasbytes/search-agent/internal/search"
)

// SearchToolName is the name the model uses to request a web search.
const SearchToolName = "search"

// maxSearchResults caps what a single call may ask the backend for.
const maxSearchResults = 10

type SearchInput struct {
	Query      string `json:"query" jsonschema_description:"Search query. Required."`
	MaxResults int    `json:"max_results,omitempty" jsonschema_description:"Maximum number of results to return (default set by configuration, at most 10)."`
}

// Searcher is the backend contract of the search tool.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (search.Response, error)
}

var SearchInputSchema = GenerateSchema[SearchInput]()

// NewSearchDefinition wires s as the "search" tool. defaultMax applies when the
// model omits max_results.
func NewSearchDefinition(s Searcher, defaultMax int) ToolDefinition {
	if defaultMax <= 0 {
		defaultMax = search.DefaultMaxResults
	}
	return ToolDefinition{
		Name:        SearchToolName,
		Description: "Search the web for current information. Returns a JSON object with the query and a list of results (title, url, content).",
		InputSchema: SearchInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in SearchInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("invalid search input: %w", err)
			}
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return "", fmt.Errorf("query must not be empty")
			}
			limit := in.MaxResults
			if limit <= 0 {
				limit = defaultMax
			}
			if limit > maxSearchResults {
				limit = maxSearchResults
			}

			resp, err := s.Search(ctx, query, limit)
			if err != nil {
				return "", err
			}
			if len(resp.Results) > limit {
				resp.Results = resp.Results[:limit]
			}
			b, err := json.Marshal(resp)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}
}
