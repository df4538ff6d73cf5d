package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
//
// Sessions live under their own prefix. Messages are keyed by session,
// timestamp and ID so a prefix scan returns them in conversation order, and
// a separate ID key enforces message ID uniqueness.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) *SessionRepository {
	return &SessionRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *SessionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// CreateSession inserts a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, session *core.Session) error {
	if session.Type == "" {
		session.Type = core.DocumentTypeSession
	}
	if err := core.ValidateSession(session); err != nil {
		return err
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	return r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeSessionKey(session.ID)
		found, err := exists(tx, key)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: session %s", storage.ErrDuplicateKey, session.ID)
		}
		return putDocument(tx, key, session)
	})
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id core.ID) (*core.Session, error) {
	var result *core.Session
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = getDocument(tx, makeSessionKey(id), storage.UnmarshalSession)
		return err
	})
	return result, err
}

// ListSessions returns all sessions, most recently updated first.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]*core.Session, error) {
	var sessions []*core.Session
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var session *core.Session
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				session, err = storage.UnmarshalSession(val)
				return err
			}); err != nil {
				return err
			}
			sessions = append(sessions, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(sessions, func(a, b *core.Session) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return sessions, nil
}

// UpdateSession replaces an existing session.
func (r *SessionRepository) UpdateSession(ctx context.Context, session *core.Session) error {
	if err := core.ValidateSession(session); err != nil {
		return err
	}
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		return r.replaceSession(tx, session)
	})
}

// CreateMessage inserts a message.
func (r *SessionRepository) CreateMessage(ctx context.Context, message *core.Message) error {
	if message.Type == "" {
		message.Type = core.DocumentTypeMessage
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	if err := core.ValidateMessage(message); err != nil {
		return err
	}
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		return r.insertMessage(tx, message)
	})
}

// ListMessages returns a session's messages ordered by timestamp, then ID.
func (r *SessionRepository) ListMessages(ctx context.Context, sessionID core.ID) ([]*core.Message, error) {
	var messages []*core.Message
	err := r.backend.view(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSessionMessagePrefix(sessionID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var message *core.Message
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				message, err = storage.UnmarshalMessage(val)
				return err
			}); err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	return messages, err
}

// CommitTurn replaces the session and inserts both messages in one
// transaction. The session is replaced as given; callers that read it
// earlier must serialize their turns, since a commit landing in between is
// overwritten.
func (r *SessionRepository) CommitTurn(ctx context.Context, turn *core.Turn) error {
	if err := core.ValidateTurn(turn); err != nil {
		return fmt.Errorf("%w: %w", core.ErrTransactionAborted, err)
	}

	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		if err := r.replaceSession(tx, turn.Session); err != nil {
			return err
		}
		if err := r.insertMessage(tx, turn.Prompt); err != nil {
			return err
		}
		return r.insertMessage(tx, turn.Completion)
	})
	if err != nil {
		r.backend.logger.Warn("turn commit aborted", "session", turn.Session.ID, "err", err)
		return fmt.Errorf("%w: %w", core.ErrTransactionAborted, err)
	}
	return nil
}

// DeleteSessionAndMessages removes the session and all of its messages.
func (r *SessionRepository) DeleteSessionAndMessages(ctx context.Context, id core.ID) error {
	return r.backend.update(ctx, func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(id)); err != nil {
			return err
		}

		prefix := makeSessionMessagePrefix(id)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		var messageIDs []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			messageIDs = append(messageIDs, messageIDFromKey(id, iter.Item().KeyCopy(nil)))
		}
		iter.Close()

		for _, messageID := range messageIDs {
			if err := tx.Delete(makeMessageIDKey(messageID)); err != nil {
				return err
			}
		}
		_, err := deletePrefix(tx, prefix)
		return err
	})
}

// replaceSession overwrites an existing session. Must be called within a write txn.
func (r *SessionRepository) replaceSession(tx *badger.Txn, session *core.Session) error {
	key := makeSessionKey(session.ID)
	found, err := exists(tx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: session %s", storage.ErrNotFound, session.ID)
	}
	session.UpdatedAt = time.Now().UTC()
	return putDocument(tx, key, session)
}

// insertMessage writes a new message and its ID key. Must be called within a write txn.
func (r *SessionRepository) insertMessage(tx *badger.Txn, message *core.Message) error {
	idKey := makeMessageIDKey(message.ID)
	found, err := exists(tx, idKey)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: message %s", storage.ErrDuplicateKey, message.ID)
	}

	key := makeMessageKey(message.SessionID, message.Timestamp, message.ID)
	if err := putDocument(tx, key, message); err != nil {
		return err
	}
	return tx.Set(idKey, key)
}
