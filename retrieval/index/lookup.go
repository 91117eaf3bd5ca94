package index

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/inquiro/ai"
	"github.com/poiesic/inquiro/retrieval"
	"github.com/poiesic/inquiro/storage"
)

// defaultMinSimilarity is the cosine similarity floor for index hits.
const defaultMinSimilarity = 0.60

// verbatimBoost is added to the score of hits containing every query word.
const verbatimBoost = 0.3

// Lookup serves authoritative snippets from the local document index by
// embedding the query and scanning for similar vectors. It implements the
// retrieval lookup port, so the pipeline can run against ingested documents
// instead of Wikipedia.
type Lookup struct {
	repo          storage.DocumentRepository
	embedder      ai.Embedder
	logger        *slog.Logger
	minSimilarity float32
}

var _ retrieval.Lookup = (*Lookup)(nil)

// Option configures a Lookup.
type Option func(*Lookup) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lookup) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for hits. Default is 0.60.
func WithMinSimilarity(min float32) Option {
	return func(l *Lookup) error {
		l.minSimilarity = min
		return nil
	}
}

// NewLookup creates an index lookup over the given repository and embedder.
func NewLookup(repo storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Lookup, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	l := &Lookup{
		repo:          repo,
		embedder:      embedder,
		logger:        slog.Default(),
		minSimilarity: defaultMinSimilarity,
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Lookup returns the content of up to topK indexed documents relevant to the
// query, best match first. Hits containing every query word verbatim are
// boosted above purely semantic matches.
func (l *Lookup) Lookup(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return []string{}, nil
	}

	embedding, err := l.embedder.EmbedText(ctx, query)
	if err != nil {
		l.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Over-fetch so the verbatim boost can reorder past the cutoff
	matches, err := l.repo.FindSimilar(ctx, embedding, l.minSimilarity, topK*2)
	if err != nil {
		l.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	type scored struct {
		content string
		score   float32
	}

	results := make([]scored, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		if containsAllQueryWords(match.Document.Content, query) {
			score += verbatimBoost
		}
		results = append(results, scored{content: match.Document.Content, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.content)
	}
	return snippets, nil
}
