// Package store persists sessions, chat history, saved properties, property
// records and interaction logs behind a single interface with several
// backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/config"
	"github.com/rahul2317-NRK/chatbot9/internal/db"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence collaborator used by the tools and the pipeline.
// Implementations must be safe for concurrent use.
type Store interface {
	CreateSession(ctx context.Context, s models.Session) error
	// GetSession returns ErrNotFound for unknown ids.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	// TouchSession sets the session's last activity. Returns ErrNotFound for
	// unknown ids.
	TouchSession(ctx context.Context, sessionID string, at time.Time) error
	DeleteSession(ctx context.Context, sessionID string) error

	// AppendMessage stores a turn. A timestamp not after the session's newest
	// stored turn is moved to 1ns past it.
	AppendMessage(ctx context.Context, m models.ChatMessage) error
	// GetHistory returns up to limit of the newest turns, oldest first.
	GetHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)

	SaveProperty(ctx context.Context, sp models.SavedProperty) error
	SavedPropertyIndex(ctx context.Context, userID string) ([]models.SavedProperty, error)

	// GetPropertyRecord returns nil, nil when the record is absent.
	GetPropertyRecord(ctx context.Context, propertyID string) (*models.PropertyRecord, error)
	PutPropertyRecord(ctx context.Context, rec models.PropertyRecord) error

	LogInteraction(ctx context.Context, it models.Interaction) error

	Close() error
}

// Open constructs the backend selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, mc *metrics.Collector) (Store, error) {
	switch cfg.Store {
	case config.StoreBadger:
		return OpenBadger(cfg.BadgerDir, logger, mc)
	case config.StoreSQLite:
		return OpenSQLite(cfg.SQLiteDSN, mc)
	case config.StoreSurrealDB:
		client, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger, mc)
		if err != nil {
			return nil, fmt.Errorf("surrealdb: %w", err)
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		return NewSurreal(client), nil
	case config.StoreMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// nextTimestamp keeps timestamps strictly increasing within a session.
func nextTimestamp(latest, ts time.Time) time.Time {
	if !latest.IsZero() && !ts.After(latest) {
		return latest.Add(time.Nanosecond)
	}
	return ts
}
