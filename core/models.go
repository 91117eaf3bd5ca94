package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content using deterministic hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs, which makes
// document ingestion idempotent.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SenderType identifies the source of a conversation turn.
type SenderType int

const (
	// SenderUser represents the human asking questions.
	SenderUser SenderType = iota + 1
	// SenderBot represents the answering assistant.
	SenderBot
)

// String returns the label used when flattening chat history into prompts.
func (s SenderType) String() string {
	switch s {
	case SenderUser:
		return "User"
	case SenderBot:
		return "Bot"
	default:
		return "Unknown"
	}
}

// Document is a retrieved piece of evidence flowing through the answer
// pipeline. Source identifies where the content came from: a fixed label
// for the authoritative source, a URL for web results.
type Document struct {
	Content string
	Source  string
}

// IndexedDocument is the stored form of a document in the local vector index.
// It carries the embedding vector used for similarity search.
type IndexedDocument struct {
	Id         ID
	Content    string
	Source     string
	Vector     []float32 // Embedding vector (populated during ingestion)
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Turn represents a single entry in a session's chat history.
type Turn struct {
	Sender    SenderType
	Message   string
	Timestamp time.Time
}

// SearchResult represents an index match with its similarity score.
type SearchResult struct {
	Document *IndexedDocument
	Score    float32
}
