// Package ingestion provides pipeline orchestration for loading documents
// into the local index.
//
// The Pipeline type manages the ingestion workflow for text files, including:
//   - Splitting files into retrieval-sized chunks
//   - Storing chunks with content-derived IDs (idempotent re-ingestion)
//   - Generating embeddings asynchronously
//
// Embedding is performed concurrently using a worker pool to maximize
// throughput. Errors during async embedding are logged but do not fail the
// ingestion operation.
package ingestion
