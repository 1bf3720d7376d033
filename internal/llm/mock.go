package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient is a deterministic Generator for offline runs and tests. It
// echoes the last user block and notes whether tool data was supplied.
type MockClient struct {
	mu    sync.Mutex
	calls [][]Message
	// Err, when set, is returned from every call.
	Err error
}

// NewMockClient creates a mock generator.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Complete(ctx context.Context, msgs []Message, _ Options) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]Message(nil), msgs...))
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}

	var last string
	withTools := false
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			last = msg.Content
		}
		if msg.Role == RoleSystem && strings.HasPrefix(msg.Content, "Available data from tools:") {
			withTools = true
		}
	}
	if withTools {
		return fmt.Sprintf("[MOCK] Based on the available data: %s", last), nil
	}
	return fmt.Sprintf("[MOCK] %s", last), nil
}

// Calls returns the conversations received so far.
func (m *MockClient) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]Message(nil), m.calls...)
}
