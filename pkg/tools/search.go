package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const (
	searchEndpoint     = "https://html.duckduckgo.com/html/"
	defaultMaxResults  = 5
	maxContentSnippet  = 1000
	defaultSearchAgent = "Mozilla/5.0 (compatible; make-it-heavy/1.0)"
)

// SearchConfig configures the web search tool.
type SearchConfig struct {
	UserAgent  string
	MaxResults int
	Timeout    time.Duration
}

// SearchTool searches the web via DuckDuckGo and fetches readable page content
// for each hit.
type SearchTool struct {
	client     *http.Client
	userAgent  string
	maxResults int
}

type searchHit struct {
	Title   string
	URL     string
	Snippet string
}

// NewSearchTool creates the web search tool.
func NewSearchTool(cfg SearchConfig) *SearchTool {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultSearchAgent
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SearchTool{
		client:     &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxResults: cfg.MaxResults,
	}
}

// Name implements Tool.
func (t *SearchTool) Name() string {
	return "search_web"
}

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search the web using DuckDuckGo for current information"
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query to find information on the web",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of search results to return",
			},
		},
		"required": []interface{}{"query"},
	}
}

// Execute implements Tool. Failures are reported inside the payload so a bad
// search never aborts the agent turn.
func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return []map[string]string{{"error": "Search failed: query is required"}}, nil
	}

	maxResults := t.maxResults
	if raw, ok := args["max_results"].(float64); ok && int(raw) > 0 {
		maxResults = int(raw)
	}

	hits, err := t.search(ctx, query, maxResults)
	if err != nil {
		return []map[string]string{{"error": fmt.Sprintf("Search failed: %v", err)}}, nil
	}

	results := make([]map[string]string, 0, len(hits))
	for _, hit := range hits {
		entry := map[string]string{
			"title":   hit.Title,
			"url":     hit.URL,
			"snippet": hit.Snippet,
		}
		if hit.URL == "" {
			entry["content"] = "No URL returned by search provider"
			results = append(results, entry)
			continue
		}
		content, err := t.fetchContent(ctx, hit.URL)
		if err != nil {
			entry["content"] = fmt.Sprintf("Could not fetch content: %v", err)
		} else {
			entry["content"] = content
		}
		results = append(results, entry)
	}
	return results, nil
}

func (t *SearchTool) search(ctx context.Context, query string, maxResults int) ([]searchHit, error) {
	endpoint := searchEndpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	hits := parseResults(doc)
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	return hits, nil
}

// parseResults extracts hits from the DuckDuckGo HTML results page. Result
// links carry class "result__a" and snippets "result__snippet".
func parseResults(doc *html.Node) []searchHit {
	var hits []searchHit
	var snippets []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				hits = append(hits, searchHit{
					Title: strings.TrimSpace(nodeText(n)),
					URL:   resolveRedirect(attrValue(n, "href")),
				})
			case strings.Contains(class, "result__snippet"):
				snippets = append(snippets, strings.TrimSpace(nodeText(n)))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for i := range hits {
		if i < len(snippets) {
			hits[i].Snippet = snippets[i]
		}
	}
	return hits
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if parsed.Scheme == "" && parsed.Host != "" {
		parsed.Scheme = "https"
		return parsed.String()
	}
	return href
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func (t *SearchTool) fetchContent(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", err
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) > maxContentSnippet {
		text = text[:maxContentSnippet] + "..."
	}
	return text, nil
}
