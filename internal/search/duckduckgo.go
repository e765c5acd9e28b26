package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

type DuckDuckGoSettings struct {
	BaseURL string        `mapstructure:"base_url"`
	Region  string        `mapstructure:"region"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DuckDuckGo scrapes the keyless HTML endpoint of DuckDuckGo.
type DuckDuckGo struct {
	settings DuckDuckGoSettings
	client   httpDoer
}

func NewDuckDuckGo(s DuckDuckGoSettings) *DuckDuckGo {
	if s.BaseURL == "" {
		s.BaseURL = defaultDuckDuckGoURL
	}
	return &DuckDuckGo{settings: s, client: clientWithTimeout(s.Timeout)}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) (Response, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	u, err := url.Parse(d.settings.BaseURL)
	if err != nil {
		return Response{}, fmt.Errorf("duckduckgo: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	if d.settings.Region != "" {
		q.Set("kl", d.settings.Region)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("duckduckgo: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("duckduckgo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("duckduckgo: bad status: %s", resp.Status)
	}

	var r io.Reader = io.LimitReader(resp.Body, maxBodyBytes)
	if cr, err := charset.NewReader(r, resp.Header.Get("Content-Type")); err == nil {
		r = cr
	}
	doc, err := html.Parse(r)
	if err != nil {
		return Response{}, fmt.Errorf("duckduckgo: parse html: %w", err)
	}

	return Response{Query: query, Results: extractResults(doc, maxResults)}, nil
}

// extractResults collects organic results from the result page, skipping ads.
func extractResults(doc *html.Node, limit int) []Result {
	results := []Result{}
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if res, ok := resultFrom(n); ok {
				results = append(results, res)
				if len(results) >= limit {
					return false
				}
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return results
}

func resultFrom(n *html.Node) (Result, bool) {
	var res Result
	if a := findByClass(n, "result__a"); a != nil {
		res.Title = nodeText(a)
		res.URL = unwrapRedirect(attr(a, "href"))
	}
	if s := findByClass(n, "result__snippet"); s != nil {
		res.Content = nodeText(s)
	}
	return res, res.Title != "" && res.URL != ""
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(nd *html.Node) {
		if nd.Type == html.TextNode {
			sb.WriteString(nd.Data)
			sb.WriteByte(' ')
		}
		for c := nd.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// unwrapRedirect turns //duckduckgo.com/l/?uddg=<target> links into the target URL.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
