package db

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

type sessionRow struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Preferences  *string   `json:"preferences"`
}

type messageRow struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"message_type"`
	Timestamp time.Time `json:"timestamp"`
}

type savedRow struct {
	UserID     string    `json:"user_id"`
	PropertyID string    `json:"property_id"`
	Notes      *string   `json:"notes"`
	SavedAt    time.Time `json:"saved_at"`
}

type propertyRow struct {
	Payload string `json:"payload"`
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// first returns the first row of the first statement result, or nil.
func first[T any](results *[]surrealdb.QueryResult[[]T]) *T {
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil
	}
	return &(*results)[0].Result[0]
}

// QueryUpsertSession creates or replaces a session record.
func (c *Client) QueryUpsertSession(ctx context.Context, s models.Session) error {
	defer c.observe(time.Now())

	var prefs *string
	if len(s.Preferences) > 0 {
		b, err := json.Marshal(s.Preferences)
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
		p := string(b)
		prefs = &p
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("session", $id) SET
			session_id = $id,
			user_id = $user_id,
			created_at = type::datetime($created_at),
			last_activity = type::datetime($last_activity),
			preferences = $preferences
	`, map[string]any{
		"id":            s.SessionID,
		"user_id":       s.UserID,
		"created_at":    stamp(s.CreatedAt),
		"last_activity": stamp(s.LastActivity),
		"preferences":   prefs,
	})
	return wrapQueryError("upsert session", err)
}

// QueryGetSession retrieves a session by ID.
// Returns nil if not found.
func (c *Client) QueryGetSession(ctx context.Context, id string) (*models.Session, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]sessionRow](ctx, c.db, `
		SELECT session_id, user_id, created_at, last_activity, preferences
		FROM type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, wrapQueryError("get session", err)
	}

	row := first(results)
	if row == nil {
		return nil, nil
	}

	s := &models.Session{
		SessionID:    row.SessionID,
		UserID:       row.UserID,
		CreatedAt:    row.CreatedAt,
		LastActivity: row.LastActivity,
	}
	if row.Preferences != nil {
		if err := json.Unmarshal([]byte(*row.Preferences), &s.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return s, nil
}

// QueryTouchSession sets last_activity. Returns false if the session is unknown.
func (c *Client) QueryTouchSession(ctx context.Context, id string, at time.Time) (bool, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]sessionRow](ctx, c.db, `
		UPDATE type::record("session", $id) SET last_activity = type::datetime($at)
		RETURN AFTER
	`, map[string]any{"id": id, "at": stamp(at)})
	if err != nil {
		return false, wrapQueryError("touch session", err)
	}
	return first(results) != nil, nil
}

// QueryDeleteSession removes a session and its messages.
func (c *Client) QueryDeleteSession(ctx context.Context, id string) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE chat_message WHERE session_id = $id;
		DELETE type::record("session", $id);
	`, map[string]any{"id": id})
	return wrapQueryError("delete session", err)
}

// QueryAppendMessage stores one chat turn.
func (c *Client) QueryAppendMessage(ctx context.Context, m models.ChatMessage) error {
	defer c.observe(time.Now())

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("chat_message", $id) SET
			message_id = $id,
			session_id = $session_id,
			user_id = $user_id,
			message = $message,
			message_type = $message_type,
			timestamp = type::datetime($timestamp)
	`, map[string]any{
		"id":           m.ID,
		"session_id":   m.SessionID,
		"user_id":      m.UserID,
		"message":      m.Message,
		"message_type": string(m.Role),
		"timestamp":    stamp(m.Timestamp),
	})
	return wrapQueryError("append message", err)
}

// QueryLatestMessageTime returns the newest message timestamp in a session,
// or the zero time when the session has none.
func (c *Client) QueryLatestMessageTime(ctx context.Context, sessionID string) (time.Time, error) {
	msgs, err := c.QueryHistory(ctx, sessionID, 1)
	if err != nil || len(msgs) == 0 {
		return time.Time{}, err
	}
	return msgs[0].Timestamp, nil
}

// QueryHistory returns up to limit of the newest messages in a session,
// oldest first.
func (c *Client) QueryHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]messageRow](ctx, c.db, `
		SELECT message_id, session_id, user_id, message, message_type, timestamp
		FROM chat_message
		WHERE session_id = $session_id
		ORDER BY timestamp DESC
		LIMIT $limit
	`, map[string]any{"session_id": sessionID, "limit": limit})
	if err != nil {
		return nil, wrapQueryError("history", err)
	}

	var rows []messageRow
	if results != nil && len(*results) > 0 {
		rows = (*results)[0].Result
	}
	slices.Reverse(rows)

	msgs := make([]models.ChatMessage, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, models.ChatMessage{
			ID:        r.MessageID,
			Message:   r.Message,
			SessionID: r.SessionID,
			UserID:    r.UserID,
			Timestamp: r.Timestamp,
			Role:      models.Role(r.Type),
		})
	}
	return msgs, nil
}

// QuerySaveProperty adds or updates an entry in the user's saved index.
func (c *Client) QuerySaveProperty(ctx context.Context, sp models.SavedProperty) error {
	defer c.observe(time.Now())

	var notes *string
	if sp.Notes != "" {
		notes = &sp.Notes
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("saved_property", $key) SET
			user_id = $user_id,
			property_id = $property_id,
			notes = $notes,
			saved_at = type::datetime($saved_at)
	`, map[string]any{
		"key":         sp.UserID + "#" + sp.PropertyID,
		"user_id":     sp.UserID,
		"property_id": sp.PropertyID,
		"notes":       notes,
		"saved_at":    stamp(sp.SavedAt),
	})
	return wrapQueryError("save property", err)
}

// QuerySavedProperties lists a user's saved properties, oldest first.
func (c *Client) QuerySavedProperties(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]savedRow](ctx, c.db, `
		SELECT user_id, property_id, notes, saved_at FROM saved_property
		WHERE user_id = $user_id
		ORDER BY saved_at ASC
	`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, wrapQueryError("saved properties", err)
	}

	out := []models.SavedProperty{}
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			sp := models.SavedProperty{UserID: r.UserID, PropertyID: r.PropertyID, SavedAt: r.SavedAt}
			if r.Notes != nil {
				sp.Notes = *r.Notes
			}
			out = append(out, sp)
		}
	}
	return out, nil
}

// QueryGetProperty retrieves a property detail record.
// Returns nil if not found.
func (c *Client) QueryGetProperty(ctx context.Context, id string) (*models.PropertyRecord, error) {
	defer c.observe(time.Now())

	results, err := surrealdb.Query[[]propertyRow](ctx, c.db, `
		SELECT payload FROM type::record("property_detail", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, wrapQueryError("get property", err)
	}

	row := first(results)
	if row == nil {
		return nil, nil
	}

	var rec models.PropertyRecord
	if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
		return nil, fmt.Errorf("decode property %s: %w", id, err)
	}
	return &rec, nil
}

// QueryPutProperty writes a property detail record.
func (c *Client) QueryPutProperty(ctx context.Context, rec models.PropertyRecord) error {
	defer c.observe(time.Now())

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode property: %w", err)
	}

	_, err = surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("property_detail", $id) SET
			property_id = $id,
			payload = $payload,
			updated_at = time::now()
	`, map[string]any{"id": rec.PropertyID, "payload": string(payload)})
	return wrapQueryError("put property", err)
}

// QueryLogInteraction appends an analytics record.
func (c *Client) QueryLogInteraction(ctx context.Context, it models.Interaction) error {
	defer c.observe(time.Now())

	var payload *string
	if len(it.Payload) > 0 {
		b, err := json.Marshal(it.Payload)
		if err != nil {
			return fmt.Errorf("encode interaction: %w", err)
		}
		p := string(b)
		payload = &p
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE interaction SET
			interaction_id = $id,
			user_id = $user_id,
			kind = $kind,
			payload = $payload,
			timestamp = type::datetime($timestamp)
	`, map[string]any{
		"id":        it.ID,
		"user_id":   it.UserID,
		"kind":      it.Kind,
		"payload":   payload,
		"timestamp": stamp(it.Timestamp),
	})
	return wrapQueryError("log interaction", err)
}

// QueryCountInteractions returns how many interactions a user has logged.
func (c *Client) QueryCountInteractions(ctx context.Context, userID string) (int, error) {
	defer c.observe(time.Now())

	type countRow struct {
		Count int `json:"count"`
	}
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM interaction WHERE user_id = $user_id GROUP ALL
	`, map[string]any{"user_id": userID})
	if err != nil {
		return 0, wrapQueryError("count interactions", err)
	}
	row := first(results)
	if row == nil {
		return 0, nil
	}
	return row.Count, nil
}
