package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/inquiro/core"
)

// Key prefixes for different data types
const (
	docRecordPrefix   = "docrec"
	sessionTurnPrefix = "sesstrn"
	sessionTurnSeq    = "sesstrnseq"
)

// makeDocumentKey generates a key for an indexed document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docRecordPrefix, id))
}

// makeSessionTurnKey generates a composite key for a session turn.
// Format: prefix:sessionID:seq
func makeSessionTurnKey(sessionID string, seq uint64) []byte {
	prefix := sessionTurnPrefix + ":" + sessionID + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for the sequence number
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort preserves append order
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialSessionKey generates the key prefix covering all of a session's turns.
func makePartialSessionKey(sessionID string) []byte {
	return []byte(sessionTurnPrefix + ":" + sessionID + ":")
}
