package storage

import (
	"context"

	"github.com/poiesic/inquiro/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for the local document index.
type DocumentRepository interface {
	Repository

	// AddDocuments adds one or more documents to the index.
	// For documents with Id=0, derives the ID from the content hash, which
	// makes ingestion idempotent: re-adding identical content overwrites
	// the same entry. Sets InsertedAt if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.IndexedDocument) ([]*core.IndexedDocument, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.IndexedDocument) ([]*core.IndexedDocument, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.IndexedDocument, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.IndexedDocument, error)

	// AllDocumentIDs returns the IDs of every document in the index.
	AllDocumentIDs(ctx context.Context) ([]core.ID, error)

	// FindSimilar finds indexed documents similar to the given vector.
	// Returns documents with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// SessionRepository provides operations for per-session chat histories.
type SessionRepository interface {
	Repository

	// AppendTurns appends turns to a session's history in order.
	// Sets each turn's Timestamp if not already set.
	AppendTurns(ctx context.Context, sessionID string, turns ...core.Turn) error

	// GetHistory retrieves a session's turns in append order.
	// An unknown session returns an empty history, not an error.
	GetHistory(ctx context.Context, sessionID string) ([]core.Turn, error)

	// DeleteSession removes a session's history.
	// Deleting an unknown session is a no-op.
	DeleteSession(ctx context.Context, sessionID string) error
}
