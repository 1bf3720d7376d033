package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers every tool with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, exec *Executor) {
	addTool[RelevanceArgs](server, exec, ValidatePromptRelevance)
	addTool[SearchArgs](server, exec, SearchPropertyInfo)
	addTool[HistoryArgs](server, exec, GetUserChatHistory)
	addTool[PropertyDetailsArgs](server, exec, GetPropertyDetails)
	addTool[InterestRateArgs](server, exec, GetInterestRates)
	addTool[MortgageArgs](server, exec, CalculateMortgage)
	addTool[SavedPropertiesArgs](server, exec, GetUserSavedProperties)
	addTool[ServicedPropertiesArgs](server, exec, GetServicedProperties)
	addTool[AdvancedMortgageArgs](server, exec, CalculateMortgageAdvanced)
	addTool[FinancialArgs](server, exec, GetFinancialCalculator)
}

func addTool[A any](server *mcp.Server, exec *Executor, name Name) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        string(name),
		Description: name.Description(),
	}, newMCPHandler[A](exec, name))
}

func newMCPHandler[A any](exec *Executor, name Name) mcp.ToolHandlerFor[A, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input A) (
		*mcp.CallToolResult, any, error,
	) {
		res := exec.Execute(ctx, Call{Name: name, Args: input})
		if !res.OK() {
			return ErrorResult(res.Err.Message, hints[name]), nil, nil
		}

		jsonBytes, err := json.MarshalIndent(res.Data, "", "  ")
		if err != nil {
			return ErrorResult("Failed to encode result", ""), nil, nil
		}
		return TextResult(string(jsonBytes)), nil, nil
	}
}
