package retrieval

import "context"

// Lookup is the authoritative, fast document source consulted first by the
// answer pipeline. Implementations must be thread-safe for concurrent use.
type Lookup interface {
	// Lookup returns up to topK text snippets relevant to the query.
	// Zero results is a valid outcome, not an error; implementations
	// return an error only for transport-level failure.
	Lookup(ctx context.Context, query string, topK int) ([]string, error)
}

// Result is a single hit from the broad-web fallback source.
type Result struct {
	Content string
	URL     string
}

// WebSearcher is the fallback broad-web source, consulted only when the
// authoritative source's content is graded insufficient.
// Implementations must be thread-safe for concurrent use.
type WebSearcher interface {
	// Search returns ranked hits for the query. Individual results may be
	// malformed (empty content or URL); callers are expected to degrade
	// gracefully rather than fail the whole run on one bad entry.
	Search(ctx context.Context, query string) ([]Result, error)
}
