package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// SQLite implements Store on an SQLite database. Times are stored as
// UnixNano integers.
type SQLite struct {
	db      *sql.DB
	metrics *metrics.Collector
}

// OpenSQLite opens dsn and runs migrations.
func OpenSQLite(dsn string, mc *metrics.Collector) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLite{db: db, metrics: mc}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_activity INTEGER NOT NULL,
			preferences TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			message_type TEXT NOT NULL,
			ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, ts)`,
		`CREATE TABLE IF NOT EXISTS saved_properties (
			user_id TEXT NOT NULL,
			property_id TEXT NOT NULL,
			notes TEXT,
			saved_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, property_id)
		)`,
		`CREATE TABLE IF NOT EXISTS property_details (
			property_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			interaction_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT,
			ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *SQLite) observe(start time.Time) {
	s.metrics.RecordTiming(metrics.OpStoreQuery, time.Since(start))
}

func nullJSON(v map[string]any) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func (s *SQLite) CreateSession(ctx context.Context, sess models.Session) error {
	defer s.observe(time.Now())
	prefs, err := nullJSON(sess.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, user_id, created_at, last_activity, preferences)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			user_id = excluded.user_id,
			last_activity = excluded.last_activity,
			preferences = excluded.preferences
	`, sess.SessionID, sess.UserID, sess.CreatedAt.UnixNano(), sess.LastActivity.UnixNano(), prefs)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLite) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	defer s.observe(time.Now())
	var (
		sess              models.Session
		created, activity int64
		prefs             sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, created_at, last_activity, preferences
		FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&sess.SessionID, &sess.UserID, &created, &activity, &prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess.CreatedAt = fromNanos(created)
	sess.LastActivity = fromNanos(activity)
	if prefs.Valid {
		if err := json.Unmarshal([]byte(prefs.String), &sess.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return &sess, nil
}

func (s *SQLite) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	defer s.observe(time.Now())
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET last_activity = ? WHERE session_id = ?`,
		at.UnixNano(), sessionID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteSession(ctx context.Context, sessionID string) error {
	defer s.observe(time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) AppendMessage(ctx context.Context, m models.ChatMessage) error {
	defer s.observe(time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var newest sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(ts) FROM messages WHERE session_id = ?`,
		m.SessionID).Scan(&newest); err != nil {
		return fmt.Errorf("latest message: %w", err)
	}
	if newest.Valid {
		m.Timestamp = nextTimestamp(fromNanos(newest.Int64), m.Timestamp)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (message_id, session_id, user_id, message, message_type, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.SessionID, m.UserID, m.Message, string(m.Role), m.Timestamp.UnixNano()); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) GetHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	defer s.observe(time.Now())
	msgs := []models.ChatMessage{}
	if limit <= 0 {
		return msgs, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, session_id, user_id, message, message_type, ts FROM (
			SELECT * FROM messages WHERE session_id = ? ORDER BY ts DESC LIMIT ?
		) ORDER BY ts ASC
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m    models.ChatMessage
			role string
			ts   int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Message, &role, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = models.Role(role)
		m.Timestamp = fromNanos(ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLite) SaveProperty(ctx context.Context, sp models.SavedProperty) error {
	defer s.observe(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_properties (user_id, property_id, notes, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, property_id) DO UPDATE SET notes = excluded.notes, saved_at = excluded.saved_at
	`, sp.UserID, sp.PropertyID, sp.Notes, sp.SavedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save property: %w", err)
	}
	return nil
}

func (s *SQLite) SavedPropertyIndex(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	defer s.observe(time.Now())
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, property_id, notes, saved_at FROM saved_properties
		WHERE user_id = ? ORDER BY saved_at ASC, property_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("saved properties: %w", err)
	}
	defer rows.Close()

	out := []models.SavedProperty{}
	for rows.Next() {
		var (
			sp      models.SavedProperty
			notes   sql.NullString
			savedAt int64
		)
		if err := rows.Scan(&sp.UserID, &sp.PropertyID, &notes, &savedAt); err != nil {
			return nil, fmt.Errorf("scan saved property: %w", err)
		}
		sp.Notes = notes.String
		sp.SavedAt = fromNanos(savedAt)
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *SQLite) GetPropertyRecord(ctx context.Context, propertyID string) (*models.PropertyRecord, error) {
	defer s.observe(time.Now())
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM property_details WHERE property_id = ?`,
		propertyID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	var rec models.PropertyRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decode property %s: %w", propertyID, err)
	}
	return &rec, nil
}

func (s *SQLite) PutPropertyRecord(ctx context.Context, rec models.PropertyRecord) error {
	defer s.observe(time.Now())
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode property: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO property_details (property_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, rec.PropertyID, string(payload), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("put property: %w", err)
	}
	return nil
}

func (s *SQLite) LogInteraction(ctx context.Context, it models.Interaction) error {
	defer s.observe(time.Now())
	payload, err := nullJSON(it.Payload)
	if err != nil {
		return fmt.Errorf("encode interaction: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interactions (interaction_id, user_id, kind, payload, ts) VALUES (?, ?, ?, ?, ?)
	`, it.ID, it.UserID, it.Kind, payload, it.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	return nil
}

// CountInteractions returns how many interactions of kind a user has logged.
func (s *SQLite) CountInteractions(ctx context.Context, userID, kind string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions WHERE user_id = ? AND kind = ?`,
		userID, kind).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
