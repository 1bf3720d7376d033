package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
)

// ErrForbidden is returned when a caller touches a session owned by another
// identified user.
var ErrForbidden = errors.New("access denied to this session")

// Sessions manages conversation threads. A session owned by an identified
// user is reachable only by that user.
type Sessions struct {
	store store.Store
	now   func() time.Time
}

// NewSessions creates the session service.
func NewSessions(st store.Store) *Sessions {
	return &Sessions{store: st, now: time.Now}
}

// Create opens a new session for userID.
func (s *Sessions) Create(ctx context.Context, userID string) (models.Session, error) {
	return s.create(ctx, uuid.NewString(), userID)
}

func (s *Sessions) create(ctx context.Context, sessionID, userID string) (models.Session, error) {
	now := s.now()
	sess := models.Session{
		SessionID:    sessionID,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		Preferences:  map[string]any{},
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Ensure returns the session with sessionID, creating it for userID when it
// does not exist. An empty sessionID always creates a new session. An
// existing session owned by someone else yields ErrForbidden.
func (s *Sessions) Ensure(ctx context.Context, sessionID, userID string) (models.Session, error) {
	if sessionID == "" {
		return s.Create(ctx, userID)
	}
	existing, err := s.store.GetSession(ctx, sessionID)
	switch {
	case err == nil:
		if !existing.AccessibleBy(userID) {
			return models.Session{}, ErrForbidden
		}
		return *existing, nil
	case errors.Is(err, store.ErrNotFound):
		return s.create(ctx, sessionID, userID)
	default:
		return models.Session{}, fmt.Errorf("get session: %w", err)
	}
}

// Get returns the session, or store.ErrNotFound / ErrForbidden.
func (s *Sessions) Get(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.AccessibleBy(userID) {
		return nil, ErrForbidden
	}
	return sess, nil
}

// Delete removes the session and its turns.
func (s *Sessions) Delete(ctx context.Context, sessionID, userID string) error {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// History returns up to limit turns, oldest first. An identified user asking
// for a missing session gets ErrForbidden; an anonymous one gets no turns.
func (s *Sessions) History(ctx context.Context, sessionID, userID string, limit int) ([]models.HistoryEntry, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if !models.IsAnonymous(userID) {
			return nil, ErrForbidden
		}
	case err != nil:
		return nil, err
	case !sess.AccessibleBy(userID):
		return nil, ErrForbidden
	}

	msgs, err := s.store.GetHistory(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return models.ToHistory(msgs), nil
}
