package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}".
// Returns IsError=true so the calling model can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// hints suggest a fix for tools whose failures are usually bad arguments.
var hints = map[Name]string{
	GetFinancialCalculator:    "calculation_type is one of roi, cash_flow, cap_rate, break_even",
	CalculateMortgage:         "Check property_price, down_payment and loan_term_years",
	CalculateMortgageAdvanced: "Check property_price, down_payment and loan_term_years",
}
