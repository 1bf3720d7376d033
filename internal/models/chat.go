package models

import "time"

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ChatMessage is one persisted turn in a conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"message_type"`
}

// HistoryEntry is the shape of a chat turn handed to the context assembler.
type HistoryEntry struct {
	Message   string    `json:"message"`
	Type      Role      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a conversation thread owned by a user, possibly anonymous.
type Session struct {
	SessionID    string         `json:"session_id"`
	UserID       string         `json:"user_id"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
	Preferences  map[string]any `json:"preferences,omitempty"`
}

// Interaction records a user action for analytics.
type Interaction struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Kind      string         `json:"interaction_type"`
	Payload   map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
