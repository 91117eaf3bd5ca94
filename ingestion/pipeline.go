package ingestion

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/inquiro/ai"
	"github.com/poiesic/inquiro/core"
	"github.com/poiesic/inquiro/storage"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// defaultChunkSize is the character budget per document chunk.
	defaultChunkSize = 250
	// defaultChunkOverlap is how many characters adjacent chunks share.
	defaultChunkOverlap = 0
)

// Pipeline orchestrates document ingestion into the local index.
// Files are split into chunks, stored immediately with content-derived IDs,
// and embedded asynchronously on a worker pool. Re-ingesting unchanged
// content overwrites the same entries, so ingestion is idempotent.
type Pipeline struct {
	documents    storage.DocumentRepository
	embedder     ai.Embedder
	pool         *ants.Pool
	splitter     textsplitter.TextSplitter
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger

	wg sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunkSize sets the character budget per chunk. Default is 250.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		return nil
	}
}

// WithChunkOverlap sets how many characters adjacent chunks share.
// Default is 0.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap >= 0 {
			p.chunkOverlap = overlap
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents:    documents,
		embedder:     embedder,
		pool:         pool,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
	)

	return p, nil
}

// IngestText splits text into chunks, stores them under the given source
// label, and submits the chunks for asynchronous embedding. Embedding errors
// are logged but do not fail the ingestion.
// Returns the number of chunks stored.
func (p *Pipeline) IngestText(ctx context.Context, text, source string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	chunks, err := p.splitter.SplitText(text)
	if err != nil {
		return 0, err
	}

	docs := make([]*core.IndexedDocument, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		docs = append(docs, &core.IndexedDocument{
			Content: chunk,
			Source:  source,
		})
	}

	if len(docs) == 0 {
		return 0, nil
	}

	added, err := p.documents.AddDocuments(ctx, docs...)
	if err != nil {
		return 0, err
	}

	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id
	}

	p.wg.Add(1)
	if err := p.pool.Submit(func() {
		defer p.wg.Done()
		if err := p.embedDocuments(context.Background(), ids...); err != nil {
			p.logger.Error("error embedding documents", "source", source, "err", err)
		}
	}); err != nil {
		p.wg.Done()
		return len(added), err
	}

	return len(added), nil
}

// IngestFile ingests a single .txt or .md file, using its path as the
// source label. Other extensions return ErrUnsupportedFile.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
	default:
		return 0, ErrUnsupportedFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return p.IngestText(ctx, string(data), path)
}

// IngestDir walks a directory tree and ingests every .txt and .md file.
// Returns the total number of chunks stored.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (int, error) {
	total := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
		default:
			return nil
		}

		count, err := p.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		p.logger.Info("ingested file", "path", path, "chunks", count)
		total += count
		return nil
	})
	return total, err
}

// Wait blocks until all submitted embedding work has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release releases the worker pool after draining in-flight work.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}
