package service

import (
	"strings"
	"testing"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/llm"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(n int) []models.HistoryEntry {
	out := make([]models.HistoryEntry, n)
	for i := range out {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		out[i] = models.HistoryEntry{Message: string(rune('a' + i)), Type: role}
	}
	return out
}

func TestAssemblerOrder(t *testing.T) {
	a := NewAssembler(10)
	msgs, err := a.Build("current", history(2), nil)
	require.NoError(t, err)

	require.Len(t, msgs, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: Persona}, msgs[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "a"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "b"}, msgs[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "current"}, msgs[3])
}

func TestAssemblerHistoryWindow(t *testing.T) {
	msgs, err := NewAssembler(3).Build("now", history(8), nil)
	require.NoError(t, err)

	// persona + 3 turns + current
	require.Len(t, msgs, 5)
	assert.Equal(t, "f", msgs[1].Content)
	assert.Equal(t, "h", msgs[3].Content)
}

func TestAssemblerSystemRoleBecomesAssistant(t *testing.T) {
	h := []models.HistoryEntry{{Message: "note", Type: models.RoleSystem}}
	msgs, err := NewAssembler(10).Build("q", h, nil)
	require.NoError(t, err)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
}

func TestAssemblerToolBlock(t *testing.T) {
	results := []tools.Result{
		{Tool: tools.GetInterestRates, Data: tools.InterestRates{Location: "Texas", CurrentRate: 7.1}, Elapsed: time.Millisecond},
		{Tool: tools.GetFinancialCalculator, Err: &tools.Error{Message: "Price per unit must be greater than variable cost per unit"}},
	}
	msgs, err := NewAssembler(10).Build("rates?", nil, results)
	require.NoError(t, err)

	require.Len(t, msgs, 3)
	block := msgs[2]
	assert.Equal(t, llm.RoleSystem, block.Role)
	assert.True(t, strings.HasPrefix(block.Content, "Available data from tools:\n"))
	assert.Contains(t, block.Content, "\ngetInterestRates: {")
	assert.Contains(t, block.Content, `"current_rate": 7.1`)
	assert.NotContains(t, block.Content, "getFinancialCalculator")
}

func TestAssemblerNoBlockWhenAllFailed(t *testing.T) {
	results := []tools.Result{{Tool: tools.GetPropertyDetails, Err: &tools.Error{Message: "boom"}}}
	msgs, err := NewAssembler(10).Build("q", nil, results)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

type unencodable struct {
	Ch chan int
}

func TestAssemblerEncodeError(t *testing.T) {
	results := []tools.Result{{Tool: tools.SearchPropertyInfo, Data: unencodable{Ch: make(chan int)}}}
	_, err := NewAssembler(10).Build("q", nil, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "searchPropertyInfo")
}
