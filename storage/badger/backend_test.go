package badger

import (
	"context"
	"testing"

	"github.com/poiesic/inquiro/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestFindSimilar(t *testing.T) {
	docRepo, sessionRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Normalized vectors so the dot product is the cosine
	_, err = docRepo.AddDocuments(ctx,
		&core.IndexedDocument{Content: "exact match", Source: "s", Vector: []float32{1, 0, 0}},
		&core.IndexedDocument{Content: "close match", Source: "s", Vector: []float32{0.9486833, 0.31622776, 0}},
		&core.IndexedDocument{Content: "orthogonal", Source: "s", Vector: []float32{0, 1, 0}},
		&core.IndexedDocument{Content: "no vector", Source: "s"},
	)
	require.NoError(t, err)

	results, err := backend.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "exact match", results[0].Document.Content)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
	assert.Equal(t, "close match", results[1].Document.Content)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilarLimit(t *testing.T) {
	docRepo, sessionRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = docRepo.AddDocuments(ctx,
		&core.IndexedDocument{Content: "a", Source: "s", Vector: []float32{1, 0}},
		&core.IndexedDocument{Content: "b", Source: "s", Vector: []float32{1, 0}},
		&core.IndexedDocument{Content: "c", Source: "s", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	results, err := backend.FindSimilar(ctx, []float32{1, 0}, 0.5, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestWithTransactionRollback(t *testing.T) {
	docRepo, sessionRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	err = backend.WithTransaction(ctx, func(ctx context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
