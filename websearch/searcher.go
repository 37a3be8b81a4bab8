package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RaymonMudrig/ManualBook/core"
)

const (
	serperURL     = "https://google.serper.dev/search"
	duckDuckGoURL = "https://api.duckduckgo.com/"

	serperTimeout     = 30 * time.Second
	duckDuckGoTimeout = 15 * time.Second

	defaultNumResults = 5
)

// Searcher implements web search over Serper with a DuckDuckGo fallback.
type Searcher struct {
	apiKey        string
	numResults    int
	client        *http.Client
	logger        *slog.Logger
	serperURL     string
	duckDuckGoURL string
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithAPIKey sets the Serper API key. Without a key, all searches use the
// DuckDuckGo Instant Answer API.
func WithAPIKey(key string) SearcherOption {
	return func(s *Searcher) {
		s.apiKey = key
	}
}

// WithNumResults caps how many results a search returns.
// Default is 5.
func WithNumResults(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.numResults = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client, primarily for tests.
func WithHTTPClient(client *http.Client) SearcherOption {
	return func(s *Searcher) {
		if client != nil {
			s.client = client
		}
	}
}

// WithBaseURLs overrides the service endpoints, primarily for tests.
func WithBaseURLs(serper, duckduckgo string) SearcherOption {
	return func(s *Searcher) {
		if serper != "" {
			s.serperURL = serper
		}
		if duckduckgo != "" {
			s.duckDuckGoURL = duckduckgo
		}
	}
}

// NewSearcher creates a web searcher.
func NewSearcher(opts ...SearcherOption) *Searcher {
	s := &Searcher{
		numResults:    defaultNumResults,
		client:        &http.Client{},
		logger:        slog.Default().With("component", "websearch"),
		serperURL:     serperURL,
		duckDuckGoURL: duckDuckGoURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries the web for the given query.
// With an API key configured it uses Serper, otherwise DuckDuckGo.
func (s *Searcher) Search(ctx context.Context, query string) ([]core.WebResult, error) {
	if s.apiKey != "" {
		return s.searchSerper(ctx, query)
	}
	return s.searchDuckDuckGo(ctx, query)
}

type serperHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	Organic []serperHit `json:"organic"`
}

func (s *Searcher) searchSerper(ctx context.Context, query string) ([]core.WebResult, error) {
	ctx, cancel := context.WithTimeout(ctx, serperTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{"q": query, "num": s.numResults})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serperURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper search error %d: %s", resp.StatusCode, body)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	results := make([]core.WebResult, 0, len(parsed.Organic))
	for _, hit := range parsed.Organic {
		if len(results) >= s.numResults {
			break
		}
		title := hit.Title
		if title == "" {
			title = "Untitled result"
		}
		results = append(results, core.WebResult{
			Title:   title,
			URL:     hit.Link,
			Snippet: hit.Snippet,
		})
	}

	s.logger.Debug("serper search complete", "query", query, "results", len(results))
	return results, nil
}

type duckDuckGoTopic struct {
	FirstURL string            `json:"FirstURL"`
	Text     string            `json:"Text"`
	Topics   []duckDuckGoTopic `json:"Topics"`
}

type duckDuckGoResponse struct {
	RelatedTopics []duckDuckGoTopic `json:"RelatedTopics"`
}

func (s *Searcher) searchDuckDuckGo(ctx context.Context, query string) ([]core.WebResult, error) {
	ctx, cancel := context.WithTimeout(ctx, duckDuckGoTimeout)
	defer cancel()

	params := url.Values{
		"q":           {query},
		"format":      {"json"},
		"no_html":     {"1"},
		"no_redirect": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.duckDuckGoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("duckduckgo search error %d: %s", resp.StatusCode, body)
	}

	var parsed duckDuckGoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	var results []core.WebResult
	add := func(topic duckDuckGoTopic) {
		if topic.FirstURL == "" || topic.Text == "" {
			return
		}
		title, _, _ := strings.Cut(topic.Text, " - ")
		results = append(results, core.WebResult{
			Title:   title,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
	}

	for _, topic := range parsed.RelatedTopics {
		if topic.FirstURL != "" {
			add(topic)
		} else {
			for _, sub := range topic.Topics {
				add(sub)
			}
		}
		if len(results) >= s.numResults {
			break
		}
	}

	if len(results) > s.numResults {
		results = results[:s.numResults]
	}

	s.logger.Debug("duckduckgo search complete", "query", query, "results", len(results))
	return results, nil
}
