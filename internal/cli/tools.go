package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul2317-NRK/chatbot9/internal/client"
	"github.com/spf13/cobra"
)

var toolArgs string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the assistant's tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.Tools(cmd.Context())
		if err != nil {
			return fmt.Errorf("list tools: %w", err)
		}
		theme := defaultTheme
		for _, t := range list {
			fmt.Printf("%s\n  %s\n", theme.labelStyle().Render(t.Name), t.Description)
		}
		fmt.Printf("\n%d tools\n", len(list))
		return nil
	},
}

var toolCmd = &cobra.Command{
	Use:   "tool <name>",
	Short: "Run one tool directly",
	Example: `  chatbot tool calculateMortgage --args '{"property_price":500000,"down_payment":100000,"interest_rate":6.5}'
  chatbot tool getInterestRates --args '{"location":"Texas"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runTool,
}

func init() {
	toolCmd.Flags().StringVarP(&toolArgs, "args", "a", "{}", "tool arguments as a JSON object")
}

func runTool(cmd *cobra.Command, args []string) error {
	if !json.Valid([]byte(toolArgs)) {
		return fmt.Errorf("--args must be valid JSON")
	}

	var res *client.ToolResult
	err := withSpinner(cmd.Context(), "Running "+args[0]+"...", func(ctx context.Context) error {
		var err error
		res, err = apiClient.InvokeTool(ctx, args[0], json.RawMessage(toolArgs))
		return err
	})
	if err != nil {
		return err
	}

	theme := defaultTheme
	if msg, failed := res.Failed(); failed {
		return fmt.Errorf("%s: %s", res.ToolName, msg)
	}

	var pretty any
	if err := json.Unmarshal(res.Result, &pretty); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
	fmt.Println(theme.hintStyle().Render(fmt.Sprintf("%s in %.3fs", res.ToolName, res.ExecutionTime)))
	return nil
}
