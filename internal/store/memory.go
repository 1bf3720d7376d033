package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
)

// Memory is a process-local Store, used by tests and the "memory" backend.
type Memory struct {
	mu           sync.RWMutex
	sessions     map[string]models.Session
	messages     map[string][]models.ChatMessage
	saved        map[string]map[string]models.SavedProperty
	properties   map[string]models.PropertyRecord
	interactions []models.Interaction
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions:   make(map[string]models.Session),
		messages:   make(map[string][]models.ChatMessage),
		saved:      make(map[string]map[string]models.SavedProperty),
		properties: make(map[string]models.PropertyRecord),
	}
}

func (m *Memory) CreateSession(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s
	return nil
}

func (m *Memory) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) TouchSession(_ context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.LastActivity = at
	m.sessions[sessionID] = s
	return nil
}

func (m *Memory) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	delete(m.messages, sessionID)
	return nil
}

func (m *Memory) AppendMessage(_ context.Context, msg models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := m.messages[msg.SessionID]
	if n := len(turns); n > 0 {
		msg.Timestamp = nextTimestamp(turns[n-1].Timestamp, msg.Timestamp)
	}
	m.messages[msg.SessionID] = append(turns, msg)
	return nil
}

func (m *Memory) GetHistory(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		return []models.ChatMessage{}, nil
	}
	turns := m.messages[sessionID]
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]models.ChatMessage, len(turns))
	copy(out, turns)
	return out, nil
}

func (m *Memory) SaveProperty(_ context.Context, sp models.SavedProperty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved[sp.UserID] == nil {
		m.saved[sp.UserID] = make(map[string]models.SavedProperty)
	}
	m.saved[sp.UserID][sp.PropertyID] = sp
	return nil
}

func (m *Memory) SavedPropertyIndex(_ context.Context, userID string) ([]models.SavedProperty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SavedProperty, 0, len(m.saved[userID]))
	for _, sp := range m.saved[userID] {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].PropertyID < out[j].PropertyID
		}
		return out[i].SavedAt.Before(out[j].SavedAt)
	})
	return out, nil
}

func (m *Memory) GetPropertyRecord(_ context.Context, propertyID string) (*models.PropertyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.properties[propertyID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) PutPropertyRecord(_ context.Context, rec models.PropertyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[rec.PropertyID] = rec
	return nil
}

func (m *Memory) LogInteraction(_ context.Context, it models.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, it)
	return nil
}

// Interactions returns a copy of every logged interaction.
func (m *Memory) Interactions() []models.Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Interaction, len(m.interactions))
	copy(out, m.interactions)
	return out
}

func (m *Memory) Close() error { return nil }
