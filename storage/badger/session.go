package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/inquiro/core"
	"github.com/poiesic/inquiro/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// Turns are keyed by session ID plus a monotonically increasing sequence
// number, so iterating a session's prefix yields turns in append order.
type SessionRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	seq, err := backend.GetSequence(sessionTurnSeq)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the turn sequence.
func (r *SessionRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendTurns appends turns to a session's history in order.
func (r *SessionRepository) AppendTurns(ctx context.Context, sessionID string, turns ...core.Turn) error {
	if sessionID == "" {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for i := range turns {
			if turns[i].Timestamp.IsZero() {
				turns[i].Timestamp = time.Now().UTC()
			}

			seq, err := r.seq.Next()
			if err != nil {
				return err
			}

			key := makeSessionTurnKey(sessionID, seq)
			value := storage.MarshalTurn(&turns[i])
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetHistory retrieves a session's turns in append order.
// An unknown session returns an empty history.
func (r *SessionRepository) GetHistory(ctx context.Context, sessionID string) ([]core.Turn, error) {
	if sessionID == "" {
		return nil, storage.ErrInvalidQuery
	}

	var turns []core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSessionKey(sessionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var turn *core.Turn
			err := iter.Item().Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			})
			if err != nil {
				return err
			}
			if turn != nil {
				turns = append(turns, *turn)
			}
		}
		return nil
	}, false)

	return turns, err
}

// DeleteSession removes a session's history. Unknown sessions are a no-op.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return storage.ErrInvalidQuery
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSessionKey(sessionID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
