package ingestion

import (
	"context"
	"fmt"

	"github.com/poiesic/inquiro/core"
)

// embedDocuments generates embeddings for the specified documents and writes
// them back to the index.
func (p *Pipeline) embedDocuments(ctx context.Context, ids ...core.ID) error {
	p.logger.Info("embedding documents", "documents", len(ids))

	docs, err := p.documents.GetDocuments(ctx, ids...)
	if err != nil {
		p.logger.Error("error retrieving documents", "err", err)
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	p.logger.Debug("generating embeddings for documents", "documents", len(texts))
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(docs), len(embeddings))
	}

	for i := range embeddings {
		docs[i].Vector = embeddings[i]
	}

	_, err = p.documents.UpdateDocuments(ctx, docs...)
	return err
}
