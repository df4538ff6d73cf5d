package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// SessionStore manages chat sessions and their messages.
type SessionStore struct {
	repo   storage.SessionRepository
	logger *slog.Logger
}

// NewSessionStore creates a session store over repo.
func NewSessionStore(repo storage.SessionRepository, logger *slog.Logger) (*SessionStore, error) {
	if repo == nil {
		return nil, ErrSessionRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		repo:   repo,
		logger: logger.With("component", "sessions"),
	}, nil
}

// NewSession creates an empty session with a fresh ID. A blank name
// becomes core.DefaultSessionName.
func (s *SessionStore) NewSession(ctx context.Context, name string) (*core.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = core.DefaultSessionName
	}
	now := time.Now().UTC()
	session := &core.Session{
		ID:        core.ID(uuid.NewString()),
		Type:      core.DocumentTypeSession,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session created", "session", session.ID)
	return session, nil
}

// CreateSession inserts session.
// Returns storage.ErrDuplicateKey if the ID is taken.
func (s *SessionStore) CreateSession(ctx context.Context, session *core.Session) error {
	if err := s.repo.CreateSession(ctx, session); err != nil {
		s.logger.Error("failed to create session", "session", sessionID(session), "err", err)
		return err
	}
	return nil
}

// GetSession returns the session with id.
// Returns storage.ErrNotFound if it doesn't exist.
func (s *SessionStore) GetSession(ctx context.Context, id core.ID) (*core.Session, error) {
	return s.repo.GetSession(ctx, id)
}

// ListSessions returns every session, most recently updated first.
func (s *SessionStore) ListSessions(ctx context.Context) ([]*core.Session, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		s.logger.Error("failed to list sessions", "err", err)
		return nil, err
	}
	return sessions, nil
}

// ListMessages returns the messages of a session in timestamp order.
func (s *SessionStore) ListMessages(ctx context.Context, id core.ID) ([]*core.Message, error) {
	if _, err := s.repo.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, id)
}

// CreateMessage inserts message.
// Returns storage.ErrDuplicateKey if the ID is taken.
func (s *SessionStore) CreateMessage(ctx context.Context, message *core.Message) error {
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		s.logger.Error("failed to create message", "err", err)
		return err
	}
	return nil
}

// UpdateSession replaces an existing session.
// Returns storage.ErrNotFound if it doesn't exist.
func (s *SessionStore) UpdateSession(ctx context.Context, session *core.Session) error {
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		s.logger.Error("failed to update session", "session", sessionID(session), "err", err)
		return err
	}
	return nil
}

// Rename changes a session's name.
func (s *SessionStore) Rename(ctx context.Context, id core.ID, name string) (*core.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: session name cannot be empty", core.ErrInvalidArgument)
	}
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Name = name
	if err := s.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CommitTurn writes the updated session and both messages atomically.
func (s *SessionStore) CommitTurn(ctx context.Context, turn *core.Turn) error {
	return s.repo.CommitTurn(ctx, turn)
}

// DeleteSession removes the session and all of its messages.
func (s *SessionStore) DeleteSession(ctx context.Context, id core.ID) error {
	if id == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrEmptyID)
	}
	if err := s.repo.DeleteSessionAndMessages(ctx, id); err != nil {
		s.logger.Error("failed to delete session", "session", id, "err", err)
		return err
	}
	s.logger.Info("session deleted", "session", id)
	return nil
}

func sessionID(session *core.Session) core.ID {
	if session == nil {
		return ""
	}
	return session.ID
}
