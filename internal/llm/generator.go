// Package llm provides the text-generation backend used to compose answers.
package llm

import "context"

// Role tags a message block for the backend.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged block of generation input.
type Message struct {
	Role    Role
	Content string
}

// Options bound a single completion.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Generator completes a conversation. Implementations return an error when
// the backend is unreachable, rate-limited or returns nothing usable.
type Generator interface {
	Complete(ctx context.Context, msgs []Message, opts Options) (string, error)
}
