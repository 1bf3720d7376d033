package store

import (
	"context"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/db"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// Surreal adapts a SurrealDB client to Store.
type Surreal struct {
	client *db.Client
}

// NewSurreal wraps an already-connected client whose schema is initialized.
func NewSurreal(client *db.Client) *Surreal {
	return &Surreal{client: client}
}

func (s *Surreal) CreateSession(ctx context.Context, sess models.Session) error {
	return s.client.QueryUpsertSession(ctx, sess)
}

func (s *Surreal) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := s.client.QueryGetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Surreal) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	ok, err := s.client.QueryTouchSession(ctx, sessionID, at)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Surreal) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.QueryDeleteSession(ctx, sessionID)
}

func (s *Surreal) AppendMessage(ctx context.Context, m models.ChatMessage) error {
	newest, err := s.client.QueryLatestMessageTime(ctx, m.SessionID)
	if err != nil {
		return err
	}
	m.Timestamp = nextTimestamp(newest, m.Timestamp)
	return s.client.QueryAppendMessage(ctx, m)
}

func (s *Surreal) GetHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		return []models.ChatMessage{}, nil
	}
	return s.client.QueryHistory(ctx, sessionID, limit)
}

func (s *Surreal) SaveProperty(ctx context.Context, sp models.SavedProperty) error {
	return s.client.QuerySaveProperty(ctx, sp)
}

func (s *Surreal) SavedPropertyIndex(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	return s.client.QuerySavedProperties(ctx, userID)
}

func (s *Surreal) GetPropertyRecord(ctx context.Context, propertyID string) (*models.PropertyRecord, error) {
	return s.client.QueryGetProperty(ctx, propertyID)
}

func (s *Surreal) PutPropertyRecord(ctx context.Context, rec models.PropertyRecord) error {
	return s.client.QueryPutProperty(ctx, rec)
}

func (s *Surreal) LogInteraction(ctx context.Context, it models.Interaction) error {
	return s.client.QueryLogInteraction(ctx, it)
}

func (s *Surreal) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Close(ctx)
}
