package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant one question",
	Long: `Send one message to the assistant over HTTP and print the answer.

Without --session a new session is started; its id is printed so the
conversation can be continued.`,
	Example: `  chatbot ask "What are current interest rates in Texas?"
  chatbot ask "Calculate a mortgage for 500000" --session 7f3c...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue an existing session")
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	var env *models.ResponseEnvelope
	err := withSpinner(cmd.Context(), "Thinking...", func(ctx context.Context) error {
		var err error
		env, err = apiClient.Chat(ctx, message, askSession)
		return err
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	printEnvelope(env)
	return nil
}

// printEnvelope renders one assistant answer.
func printEnvelope(env *models.ResponseEnvelope) {
	theme := defaultTheme
	if interactive() {
		fmt.Println(theme.answerStyle().Render(env.Response))
	} else {
		fmt.Println(env.Response)
	}
	if len(env.ToolsUsed) > 0 {
		fmt.Println(theme.hintStyle().Render("tools: " + strings.Join(env.ToolsUsed, ", ")))
	}
	debugf("session: %s", env.SessionID)
	if askSession == "" && env.SessionID != "" {
		fmt.Println(theme.hintStyle().Render("session: " + env.SessionID))
	}
}
