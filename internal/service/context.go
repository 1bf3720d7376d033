// Package service runs the assistant's message pipeline and the session and
// property operations exposed by the transports.
package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul2317-NRK/chatbot9/internal/llm"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

// Persona is the fixed system block that opens every generation.
const Persona = `You are a Blue Pixel AI real estate assistant specializing in property investment and analysis.
You help users with:
- Property search and analysis
- Mortgage calculations and financial planning
- Investment ROI calculations
- Market analysis and trends
- Property details and comparisons

Always provide accurate, helpful information based on the available data and tools.
Be conversational but professional. Include specific numbers and calculations when available.
If you don't have specific data, acknowledge it and provide general guidance.`

const toolDataHeader = "Available data from tools:\n"

// Assembler shapes history and tool results into generation input.
type Assembler struct {
	turns int
}

// NewAssembler keeps at most turns history entries.
func NewAssembler(turns int) *Assembler {
	return &Assembler{turns: turns}
}

// Build returns, in order: the persona, the trailing history window, the
// current message and, when any tool succeeded, one block of tool data.
// Failed tool results are left out.
func (a *Assembler) Build(message string, history []models.HistoryEntry, results []tools.Result) ([]llm.Message, error) {
	if len(history) > a.turns {
		history = history[len(history)-a.turns:]
	}

	msgs := make([]llm.Message, 0, len(history)+3)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: Persona})
	for _, h := range history {
		role := llm.RoleAssistant
		if h.Type == models.RoleUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Message})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	var b strings.Builder
	for _, r := range results {
		if !r.OK() {
			continue
		}
		data, err := json.MarshalIndent(r.Data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", r.Tool, err)
		}
		if b.Len() == 0 {
			b.WriteString(toolDataHeader)
		}
		fmt.Fprintf(&b, "\n%s: %s\n", r.Tool, data)
	}
	if b.Len() > 0 {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: b.String()})
	}
	return msgs, nil
}
