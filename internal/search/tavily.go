package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const defaultTavilyURL = "https://api.tavily.com"

type TavilySettings struct {
	BaseURL       string        `mapstructure:"base_url"`
	SearchDepth   string        `mapstructure:"search_depth"`
	Topic         string        `mapstructure:"topic"`
	IncludeAnswer bool          `mapstructure:"include_answer"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Tavily queries the Tavily search API.
type Tavily struct {
	apiKey   string
	settings TavilySettings
	client   httpDoer
}

func NewTavily(apiKey string, s TavilySettings) *Tavily {
	if s.BaseURL == "" {
		s.BaseURL = defaultTavilyURL
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	return &Tavily{apiKey: apiKey, settings: s, client: clientWithTimeout(s.Timeout)}
}

func (t *Tavily) Search(ctx context.Context, query string, maxResults int) (Response, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	body, err := t.requestBody(query, maxResults)
	if err != nil {
		return Response{}, fmt.Errorf("tavily: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.settings.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("tavily: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("tavily: bad status: %s: %s", resp.Status, errorDetail(raw))
	}
	if !gjson.ValidBytes(raw) {
		return Response{}, fmt.Errorf("tavily: invalid JSON response")
	}
	return parseTavily(query, raw), nil
}

func (t *Tavily) requestBody(query string, maxResults int) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if body, err = sjson.SetBytes(body, "query", query); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "max_results", maxResults); err != nil {
		return nil, err
	}
	if t.settings.SearchDepth != "" {
		if body, err = sjson.SetBytes(body, "search_depth", t.settings.SearchDepth); err != nil {
			return nil, err
		}
	}
	if t.settings.Topic != "" {
		if body, err = sjson.SetBytes(body, "topic", t.settings.Topic); err != nil {
			return nil, err
		}
	}
	if t.settings.IncludeAnswer {
		if body, err = sjson.SetBytes(body, "include_answer", true); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func parseTavily(query string, raw []byte) Response {
	out := Response{
		Query:   query,
		Answer:  gjson.GetBytes(raw, "answer").String(),
		Results: []Result{},
	}
	if q := gjson.GetBytes(raw, "query").String(); q != "" {
		out.Query = q
	}
	gjson.GetBytes(raw, "results").ForEach(func(_, r gjson.Result) bool {
		out.Results = append(out.Results, Result{
			Title:   r.Get("title").String(),
			URL:     r.Get("url").String(),
			Content: r.Get("content").String(),
			Score:   r.Get("score").Float(),
		})
		return true
	})
	return out
}

// errorDetail pulls a readable message out of an error payload.
func errorDetail(raw []byte) string {
	for _, path := range []string{"detail.error", "detail", "error", "message"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
