// Package search aggregates web search providers behind a single client.
// The default chain tries keyless providers first and only spends Serper
// quota when both fail.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	search1APIURL = "https://api.search1api.com/search"
	duckDuckGoURL = "https://api.duckduckgo.com/"
	serperURL     = "https://google.serper.dev/search"

	conclusionModel = "llama-3-8b-8192"
)

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Response bundles search hits with an Indonesian summary line.
type Response struct {
	Results    []Result `json:"results"`
	Conclusion string   `json:"conclusion"`
}

// GenerateFunc produces a completion for the conclusion prompt.
type GenerateFunc func(ctx context.Context, model, prompt string) (string, error)

// Client queries the search provider chain.
type Client struct {
	httpClient *http.Client
	serperKey  string
	generate   GenerateFunc

	search1APIURL string
	duckDuckGoURL string
	serperURL     string
}

// NewClient constructs a search Client. A nil httpClient gets a 15 second
// timeout default, a nil generate disables AI conclusions.
func NewClient(serperKey string, generate GenerateFunc, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient:    httpClient,
		serperKey:     serperKey,
		generate:      generate,
		search1APIURL: search1APIURL,
		duckDuckGoURL: duckDuckGoURL,
		serperURL:     serperURL,
	}
}

// Google runs the full provider chain and summarizes the hits.
func (c *Client) Google(ctx context.Context, query string) Response {
	results := c.search1API(ctx, query)
	if len(results) == 0 {
		results = c.duckDuckGo(ctx, query)
	}
	if len(results) == 0 {
		results = c.serper(ctx, query)
	}

	conclusion := "Tidak ditemukan hasil pencarian yang relevan."
	if len(results) > 0 {
		conclusion = fmt.Sprintf("Ditemukan %d hasil relevan untuk \"%s\".", len(results), query)
		if generated, ok := c.conclude(ctx, query, results); ok {
			conclusion = generated
		}
	}
	return Response{Results: results, Conclusion: conclusion}
}

// SerperOnly queries Serper directly, skipping the keyless providers.
func (c *Client) SerperOnly(ctx context.Context, query string) Response {
	results := c.serper(ctx, query)

	conclusion := "Tidak ditemukan hasil pencarian yang relevan menggunakan Serper."
	if len(results) > 0 {
		conclusion = fmt.Sprintf("Ditemukan %d hasil relevan menggunakan Serper untuk \"%s\".", len(results), query)
		if generated, ok := c.conclude(ctx, query, results); ok {
			conclusion = generated
		}
	}
	return Response{Results: results, Conclusion: conclusion}
}

func (c *Client) conclude(ctx context.Context, query string, results []Result) (string, bool) {
	if c.generate == nil {
		return "", false
	}
	snippets := make([]string, 0, 5)
	for _, r := range results {
		snippets = append(snippets, r.Snippet)
		if len(snippets) == 5 {
			break
		}
	}
	prompt := fmt.Sprintf(
		"Berikan kesimpulan yang sangat rapi dan informatif (3-4 kalimat) dalam bahasa Indonesia berdasarkan hasil pencarian berikut untuk query: \"%s\"\n\n%s\n\nFormat dengan markdown: gunakan bold untuk poin penting dan tambahkan 1-2 emoji yang relevan. Jangan gunakan kata-kata pembuka seperti \"Berdasarkan hasil pencarian...\". Langsung ke intinya.",
		query, strings.Join(snippets, "\n\n"))

	text, errGenerate := c.generate(ctx, conclusionModel, prompt)
	if errGenerate != nil {
		log.WithError(errGenerate).Warn("failed to generate search conclusion")
		return "", false
	}
	return strings.TrimSpace(text), true
}

func (c *Client) search1API(ctx context.Context, query string) []Result {
	payload, _ := json.Marshal(map[string]any{
		"query":          query,
		"search_service": "google",
		"max_results":    10,
	})
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.search1APIURL, bytes.NewReader(payload))
	if errReq != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	body, ok := c.do(req, "search1api")
	if !ok {
		return nil
	}

	parsed := gjson.ParseBytes(body)
	items := parsed.Get("results")
	if !items.Exists() {
		items = parsed
	}

	var results []Result
	items.ForEach(func(_, item gjson.Result) bool {
		r := Result{
			Title:   firstString(item, "title", "name"),
			Link:    firstString(item, "link", "url", "href"),
			Snippet: firstString(item, "snippet", "description", "content"),
		}
		if r.Title == "" {
			r.Title = "No Title"
		}
		if r.Link != "" {
			results = append(results, r)
		}
		return true
	})
	return results
}

func (c *Client) duckDuckGo(ctx context.Context, query string) []Result {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, c.duckDuckGoURL+"?"+params.Encode(), nil)
	if errReq != nil {
		return nil
	}

	body, ok := c.do(req, "duckduckgo")
	if !ok {
		return nil
	}

	parsed := gjson.ParseBytes(body)
	var results []Result

	if abstract := parsed.Get("AbstractText").String(); abstract != "" {
		title := parsed.Get("Heading").String()
		if title == "" {
			title = "DuckDuckGo Abstract"
		}
		results = append(results, Result{
			Title:   title,
			Link:    parsed.Get("AbstractURL").String(),
			Snippet: abstract,
		})
	}

	count := 0
	parsed.Get("RelatedTopics").ForEach(func(_, topic gjson.Result) bool {
		if count >= 5 {
			return false
		}
		count++
		text := topic.Get("Text").String()
		link := topic.Get("FirstURL").String()
		if text == "" || link == "" {
			return true
		}
		title := strings.SplitN(text, " - ", 2)[0]
		if title == "" {
			title = "Related Topic"
		}
		results = append(results, Result{Title: title, Link: link, Snippet: text})
		return true
	})

	filtered := results[:0]
	for _, r := range results {
		if r.Link != "" {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (c *Client) serper(ctx context.Context, query string) []Result {
	if strings.TrimSpace(c.serperKey) == "" {
		return nil
	}

	payload, _ := json.Marshal(map[string]any{"q": query, "num": 10})
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.serperURL, bytes.NewReader(payload))
	if errReq != nil {
		return nil
	}
	req.Header.Set("X-API-KEY", c.serperKey)
	req.Header.Set("Content-Type", "application/json")

	body, ok := c.do(req, "serper")
	if !ok {
		return nil
	}

	var results []Result
	gjson.GetBytes(body, "organic").ForEach(func(_, item gjson.Result) bool {
		results = append(results, Result{
			Title:   item.Get("title").String(),
			Link:    item.Get("link").String(),
			Snippet: item.Get("snippet").String(),
		})
		return true
	})
	return results
}

func (c *Client) do(req *http.Request, provider string) ([]byte, bool) {
	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		log.WithError(errDo).WithField("provider", provider).Warn("search provider request failed")
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.WithField("provider", provider).WithField("status", resp.StatusCode).Warn("search provider returned non-200")
		return nil, false
	}
	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return nil, false
	}
	return body, true
}

func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if value := item.Get(key).String(); value != "" {
			return value
		}
	}
	return ""
}
