// Package retrieval defines the document source ports consumed by the
// answer pipeline, and aggregates their implementations:
//
//   - retrieval/wikipedia: authoritative lookup backed by the Wikipedia API
//   - retrieval/index: authoritative lookup backed by the local vector index
//   - retrieval/tavily: broad-web fallback search backed by the Tavily API
//   - retrieval/mock: test doubles with call counters and behavior injection
//
// The pipeline treats these purely as capability interfaces: it never
// constructs a concrete source itself.
package retrieval
