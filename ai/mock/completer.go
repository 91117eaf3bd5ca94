package mock

import (
	"context"
	"strings"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses a default canned response.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Responses, when non-empty, is consumed one entry per call, in order.
	// After the slice is exhausted the last entry is repeated. Ignored when
	// CompleteFunc is set.
	Responses []string

	callCount int
	prompts   []string
}

// NewMockCompleter creates a mock completer with default behavior.
// Note: Returns concrete type to allow test assertions via CallCount/Prompts.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// NewMockCompleterWithResponses creates a mock completer that replays the
// given responses in order.
func NewMockCompleterWithResponses(responses ...string) *MockCompleter {
	return &MockCompleter{Responses: responses}
}

// Complete returns the injected behavior, scripted responses, or a default.
// Default behavior: echoes a short acknowledgment containing the prompt's
// first line, which is enough for tests that only assert plumbing.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}

	if len(m.Responses) > 0 {
		idx := m.callCount - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		return m.Responses[idx], nil
	}

	firstLine, _, _ := strings.Cut(prompt, "\n")
	return "mock response to: " + firstLine, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// Prompts returns every prompt Complete received, in call order.
func (m *MockCompleter) Prompts() []string {
	return m.prompts
}

// LastPrompt returns the most recent prompt, or "" if none were made.
func (m *MockCompleter) LastPrompt() string {
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears the call count, recorded prompts, and custom functions.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
	m.Responses = nil
}
