// Package mock provides test double implementations of the retrieval ports.
//
// The mocks follow the same conventions as ai/mock: constructors return
// concrete types, behavior is injected via function fields, and call counts
// are recorded for assertions.
package mock

import (
	"context"

	"github.com/poiesic/inquiro/retrieval"
)

// MockLookup is a test double for retrieval.Lookup.
type MockLookup struct {
	// LookupFunc is called by Lookup if set.
	// If nil, returns Snippets capped at topK.
	LookupFunc func(ctx context.Context, query string, topK int) ([]string, error)

	// Snippets is the canned result set used when LookupFunc is nil.
	Snippets []string

	callCount int
}

// NewMockLookup creates a mock lookup returning the given snippets.
func NewMockLookup(snippets ...string) *MockLookup {
	return &MockLookup{Snippets: snippets}
}

// Lookup returns the injected behavior or the canned snippets.
func (m *MockLookup) Lookup(ctx context.Context, query string, topK int) ([]string, error) {
	m.callCount++

	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, query, topK)
	}

	if topK > 0 && len(m.Snippets) > topK {
		return m.Snippets[:topK], nil
	}
	return m.Snippets, nil
}

// CallCount returns the number of times Lookup was called.
func (m *MockLookup) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom behavior.
func (m *MockLookup) Reset() {
	m.callCount = 0
	m.LookupFunc = nil
	m.Snippets = nil
}

// MockSearcher is a test double for retrieval.WebSearcher.
type MockSearcher struct {
	// SearchFunc is called by Search if set.
	// If nil, returns Results.
	SearchFunc func(ctx context.Context, query string) ([]retrieval.Result, error)

	// Results is the canned result set used when SearchFunc is nil.
	Results []retrieval.Result

	callCount int
}

// NewMockSearcher creates a mock searcher returning the given results.
func NewMockSearcher(results ...retrieval.Result) *MockSearcher {
	return &MockSearcher{Results: results}
}

// Search returns the injected behavior or the canned results.
func (m *MockSearcher) Search(ctx context.Context, query string) ([]retrieval.Result, error) {
	m.callCount++

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}

	return m.Results, nil
}

// CallCount returns the number of times Search was called.
func (m *MockSearcher) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom behavior.
func (m *MockSearcher) Reset() {
	m.callCount = 0
	m.SearchFunc = nil
	m.Results = nil
}
