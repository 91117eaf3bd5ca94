// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Completer, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Scripted responses, consumed one per call
//	completer := mock.NewMockCompleterWithResponses("no", "yes")
//
//	// Custom behavior injection
//	completer := mock.NewMockCompleter()
//	completer.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return "", errors.New("model unavailable")
//	}
//
//	// Check call counts and received prompts
//	count := completer.CallCount()
//	last := completer.LastPrompt()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockCompleter: echoes an acknowledgment of the prompt's first line
//   - MockEmbedder: returns deterministic vectors based on text hash
//   - MockProvider: aggregates mock completer and embedder
package mock
