package flow

import (
	"context"
	"fmt"

	"github.com/poiesic/inquiro/core"
)

// retrievePrimary queries the authoritative source and wraps each returned
// snippet into a document tagged with the primary source label. Zero results
// propagate as an empty list, not an error.
func (r *Runner) retrievePrimary(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageRetrievePrimary, "Started processing retrieve_primary stage")

	query := s.EffectiveQuestion()
	snippets, err := r.lookup.Lookup(ctx, query, r.lookupTopK)
	if err != nil {
		return Update{}, err
	}

	docs := make([]core.Document, 0, len(snippets))
	for _, snippet := range snippets {
		docs = append(docs, core.Document{
			Content: snippet,
			Source:  r.primaryLabel,
		})
	}

	r.trace(s.SessionID, StageRetrievePrimary, fmt.Sprintf("Retrieved %d primary document(s)", len(docs)))
	return Update{PrimaryDocs: docs}, nil
}

// retrieveSecondary queries the fallback web source. A malformed hit degrades
// to an empty content string and an "unknown" source rather than failing the
// stage.
func (r *Runner) retrieveSecondary(ctx context.Context, s State) (Update, error) {
	r.trace(s.SessionID, StageRetrieveSecondary, "Started processing retrieve_secondary stage")

	query := s.EffectiveQuestion()
	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		return Update{}, err
	}

	docs := make([]core.Document, 0, len(results))
	for _, result := range results {
		source := result.URL
		if source == "" {
			source = "unknown"
		}
		docs = append(docs, core.Document{
			Content: result.Content,
			Source:  source,
		})
	}

	r.trace(s.SessionID, StageRetrieveSecondary, fmt.Sprintf("Retrieved %d web document(s)", len(docs)))
	return Update{SecondaryDocs: docs}, nil
}
