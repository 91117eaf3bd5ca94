// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package tavily implements the broad-web search port against the Tavily
// search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/inquiro/retrieval"
)

const (
	defaultBaseURL    = "https://api.tavily.com"
	defaultMaxResults = 5
	defaultTimeout    = 30 * time.Second
)

// ErrAPIKeyRequired is returned when a searcher is constructed without a key.
var ErrAPIKeyRequired = errors.New("tavily API key required")

// Searcher implements retrieval.WebSearcher using the Tavily REST API.
type Searcher struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBaseURL overrides the API endpoint. Used by tests to point at a stub server.
func WithBaseURL(url string) Option {
	return func(s *Searcher) {
		s.baseURL = url
	}
}

// WithMaxResults sets how many hits to request per search.
// Default is 5.
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Searcher) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewSearcher creates a Tavily-backed web searcher.
//
// Returns retrieval.WebSearcher interface to enforce abstraction.
func NewSearcher(apiKey string, opts ...Option) (retrieval.WebSearcher, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	s := &Searcher{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: defaultMaxResults,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default().With("component", "tavily-searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts the query to Tavily and returns its ranked hits.
// Hits with missing fields are passed through as-is; the caller decides how
// to degrade them.
func (s *Searcher) Search(ctx context.Context, query string) ([]retrieval.Result, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:     s.apiKey,
		Query:      query,
		MaxResults: s.maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("tavily request failed", "query", query, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error("tavily returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("tavily search: status %d: %s", resp.StatusCode, payload)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Error("tavily response parse failed", "err", err)
		return nil, fmt.Errorf("tavily search: decode response: %w", err)
	}

	results := make([]retrieval.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, retrieval.Result{
			Content: r.Content,
			URL:     r.URL,
		})
	}

	s.logger.Debug("tavily search complete", "query", query, "results", len(results))
	return results, nil
}
