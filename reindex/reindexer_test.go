package reindex

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/inquiro/ai/mock"
	"github.com/poiesic/inquiro/core"
	"github.com/poiesic/inquiro/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexerRun(t *testing.T) {
	docRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := docRepo.AddDocuments(ctx,
		&core.IndexedDocument{Content: "alpha content", Source: "s.txt", Vector: []float32{9, 9}},
		&core.IndexedDocument{Content: "beta content", Source: "s.txt", Vector: []float32{9, 9}},
		&core.IndexedDocument{Content: "gamma content", Source: "s.txt"},
	)
	require.NoError(t, err)

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, mock.NewMockEmbedder(), nil, &progress)
	require.NoError(t, reindexer.Run(ctx))

	// Every document got a fresh, normalized vector
	for _, doc := range added {
		fresh, err := docRepo.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.NotEmpty(t, fresh.Vector)

		var magnitude float64
		for _, v := range fresh.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-4, "vector for %q must be unit length", fresh.Content)
	}

	assert.Contains(t, progress.String(), "Reindexing complete")
}

func TestReindexerRunEmptyIndex(t *testing.T) {
	docRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, mock.NewMockEmbedder(), nil, &progress)
	require.NoError(t, reindexer.Run(context.Background()))
	assert.Contains(t, progress.String(), "No documents found")
}

func TestReindexerEmbedderFailure(t *testing.T) {
	docRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = docRepo.AddDocuments(ctx, &core.IndexedDocument{Content: "doomed", Source: "s.txt"})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 0

	var progress bytes.Buffer
	reindexer := NewReindexer(docRepo, embedder, config, &progress)
	err = reindexer.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch")
}

func TestDocumentIteratorBatches(t *testing.T) {
	docRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	docs := make([]*core.IndexedDocument, 7)
	for i := range docs {
		docs[i] = &core.IndexedDocument{
			Content: "batch doc " + string(rune('a'+i)),
			Source:  "s.txt",
		}
	}
	_, err = docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)

	iterator := NewDocumentIterator(docRepo, 3)

	var batchSizes []int
	total := 0
	err = iterator.ForEach(ctx, func(batch []*core.IndexedDocument) error {
		batchSizes = append(batchSizes, len(batch))
		total += len(batch)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 7, total)
	assert.Equal(t, []int{3, 3, 1}, batchSizes)
}

func TestDocumentIteratorStopsOnError(t *testing.T) {
	docRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = docRepo.AddDocuments(ctx,
		&core.IndexedDocument{Content: "one", Source: "s"},
		&core.IndexedDocument{Content: "two", Source: "s"},
	)
	require.NoError(t, err)

	iterator := NewDocumentIterator(docRepo, 1)

	boom := errors.New("stop here")
	calls := 0
	err = iterator.ForEach(ctx, func(_ []*core.IndexedDocument) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
