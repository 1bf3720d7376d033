// Package models defines the data structures shared by the assistant's
// pipeline, stores and transports.
package models

import "strings"

// AnonymousPrefix marks user ids issued to callers without an identity.
const AnonymousPrefix = "anonymous_"

// IsAnonymous reports whether userID was issued to an unidentified caller.
func IsAnonymous(userID string) bool {
	return userID == "" || strings.HasPrefix(userID, AnonymousPrefix)
}

// ToHistory shapes persisted messages into history entries, keeping order.
func ToHistory(msgs []ChatMessage) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryEntry{
			Message:   m.Message,
			Type:      m.Role,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

// AccessibleBy reports whether userID may read or write the session. A
// session opened by an anonymous caller is reachable by anyone holding its
// id; an identified user's session only by that user.
func (s *Session) AccessibleBy(userID string) bool {
	if s == nil {
		return false
	}
	return s.OwnedBy(userID) || IsAnonymous(s.UserID)
}

// OwnedBy reports whether the session belongs to userID.
func (s *Session) OwnedBy(userID string) bool {
	return s != nil && s.UserID == userID
}
