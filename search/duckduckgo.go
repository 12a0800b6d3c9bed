package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Result is a single item returned by a search call. Published is empty for
// text results unless the snippet carried an explicit date; news results
// always carry the provider's publication date.
type Result struct {
	Title     string
	Body      string
	URL       string
	Published string
}

// ddgRateLimit enforces a global rate limit of 1 query per second across all
// client instances and goroutines.
var ddgRateLimit struct {
	mu   sync.Mutex
	last time.Time
}

const (
	liteEndpoint = "https://lite.duckduckgo.com/lite/"
	newsEndpoint = "https://duckduckgo.com/news.js"
	vqdEndpoint  = "https://duckduckgo.com/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client queries DuckDuckGo's HTML lite interface for text results and the
// news.js JSON endpoint for news results. No API key is required.
type Client struct {
	http   *http.Client
	region string // DuckDuckGo region code, e.g. "jp-ja", "us-en"
}

// NewClient creates a DuckDuckGo client with a modest timeout.
func NewClient(region string) *Client {
	return &Client{
		http:   &http.Client{Timeout: 15 * time.Second},
		region: region,
	}
}

// NewClientWithHTTP creates a DuckDuckGo client using the supplied HTTP
// client. Useful for overriding the default timeout in tests.
func NewClientWithHTTP(region string, httpClient *http.Client) *Client {
	return &Client{http: httpClient, region: region}
}

// Text scrapes the DuckDuckGo lite HTML page for up to max results.
func (c *Client) Text(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if max <= 0 {
		return nil, nil
	}

	if err := waitForRateLimit(ctx); err != nil {
		return nil, err
	}

	formData := url.Values{}
	formData.Set("q", query)
	if c.region != "" {
		formData.Set("kl", c.region)
	}

	body, err := c.doWithBackoff(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, liteEndpoint, strings.NewReader(formData.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	return parseLiteResults(string(body), max), nil
}

// News queries the news.js JSON endpoint for up to max results. The endpoint
// requires a vqd token scraped from the regular search page first.
func (c *Client) News(ctx context.Context, query string, max int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if max <= 0 {
		return nil, nil
	}

	if err := waitForRateLimit(ctx); err != nil {
		return nil, err
	}

	vqd, err := c.fetchVQD(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain vqd token: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("o", "json")
	params.Set("vqd", vqd)
	if c.region != "" {
		params.Set("l", c.region)
	}

	body, err := c.doWithBackoff(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsEndpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	return parseNewsPayload(body, max)
}

// fetchVQD scrapes the search page for the per-query vqd token the JSON
// endpoints require.
func (c *Client) fetchVQD(ctx context.Context, query string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vqdEndpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	vqd := extractVQD(string(body))
	if vqd == "" {
		return "", errors.New("vqd token not found in page")
	}
	return vqd, nil
}

// doWithBackoff executes the request, backing off and retrying on 429,
// doubling the delay each time up to 30 s.
func (c *Client) doWithBackoff(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	delay := 1 * time.Second
	for {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			if delay < 30*time.Second {
				delay *= 2
			}
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
}

func waitForRateLimit(ctx context.Context) error {
	ddgRateLimit.mu.Lock()
	if wait := time.Until(ddgRateLimit.last.Add(time.Second)); wait > 0 {
		ddgRateLimit.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		ddgRateLimit.mu.Lock()
	}
	ddgRateLimit.last = time.Now()
	ddgRateLimit.mu.Unlock()
	return nil
}

var (
	vqdPattern = regexp.MustCompile(`vqd=['"]?([\d-]+)['"]?`)

	// Result links on the lite page: <a ... class='result-link' href='URL'>TITLE</a>,
	// with the attribute order varying between renders.
	liteLinkPattern  = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	liteLinkPattern2 = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	liteSnippet      = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)

	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
)

func extractVQD(page string) string {
	if m := vqdPattern.FindStringSubmatch(page); len(m) > 1 {
		return m[1]
	}
	return ""
}

// parseLiteResults extracts up to max search results from the DuckDuckGo
// lite HTML.
func parseLiteResults(html string, max int) []Result {
	matches := liteLinkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = liteLinkPattern2.FindAllStringSubmatch(html, -1)
	}
	snippets := liteSnippet.FindAllStringSubmatch(html, -1)

	var results []Result
	for i, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(match[2])
		if urlStr == "" || title == "" {
			continue
		}

		body := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			body = cleanHTML(snippets[i][1])
		}

		results = append(results, Result{Title: title, Body: body, URL: urlStr})
		if len(results) >= max {
			break
		}
	}

	return results
}

// newsPayload mirrors the news.js response shape.
type newsPayload struct {
	Results []struct {
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
		URL     string `json:"url"`
		Date    int64  `json:"date"` // unix seconds
		Source  string `json:"source"`
	} `json:"results"`
}

func parseNewsPayload(body []byte, max int) ([]Result, error) {
	var payload newsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse news payload: %w", err)
	}

	var results []Result
	for _, item := range payload.Results {
		if item.URL == "" || item.Title == "" {
			continue
		}

		published := ""
		if item.Date > 0 {
			published = time.Unix(item.Date, 0).UTC().Format("2006-01-02")
		}

		results = append(results, Result{
			Title:     cleanHTML(item.Title),
			Body:      cleanHTML(item.Excerpt),
			URL:       item.URL,
			Published: published,
		})
		if len(results) >= max {
			break
		}
	}

	return results, nil
}

// cleanHTML removes tags and decodes the entities the lite page emits.
func cleanHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}
