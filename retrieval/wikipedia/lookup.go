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


// Package wikipedia implements the authoritative lookup port against the
// Wikipedia API, via the langchaingo wikipedia tool.
package wikipedia

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/inquiro/retrieval"
	"github.com/tmc/langchaingo/tools/wikipedia"
)

// DefaultUserAgent identifies lookups that did not configure their own agent.
// Wikipedia asks API consumers to send a descriptive User-Agent.
const DefaultUserAgent = "inquiro (https://github.com/poiesic/inquiro)"

// Lookup implements retrieval.Lookup using the Wikipedia search API.
type Lookup struct {
	tool   wikipedia.Tool
	logger *slog.Logger
}

// NewLookup creates a Wikipedia-backed lookup. An empty userAgent falls back
// to DefaultUserAgent.
//
// Returns retrieval.Lookup interface to enforce abstraction.
func NewLookup(userAgent string) retrieval.Lookup {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Lookup{
		tool:   wikipedia.New(userAgent),
		logger: slog.Default().With("component", "wikipedia-lookup"),
	}
}

// Lookup queries Wikipedia and splits the tool's combined response into
// per-article snippets, capped at topK. Zero results is not an error.
func (l *Lookup) Lookup(ctx context.Context, query string, topK int) ([]string, error) {
	text, err := l.tool.Call(ctx, query)
	if err != nil {
		l.logger.Error("wikipedia call failed", "query", query, "err", err)
		return nil, err
	}

	snippets := splitSnippets(text, topK)
	l.logger.Debug("wikipedia lookup complete", "query", query, "snippets", len(snippets))
	return snippets, nil
}

// splitSnippets breaks the tool's blank-line separated article summaries into
// individual snippets. Empty or "no results" responses yield an empty slice.
func splitSnippets(text string, topK int) []string {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(strings.ToLower(text), "no wikipedia") {
		return []string{}
	}

	parts := strings.Split(text, "\n\n")
	snippets := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		snippets = append(snippets, part)
		if topK > 0 && len(snippets) >= topK {
			break
		}
	}
	return snippets
}
