package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Open a live WebSocket conversation with the assistant.

Type a message and press enter. Type "exit" or press ctrl+d to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "resume an existing session")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	theme := defaultTheme

	sessionID := chatSession
	if sessionID == "" {
		s, err := apiClient.CreateSession(ctx)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		sessionID = s.SessionID
	}

	conv, err := apiClient.Dial(ctx, sessionID)
	if err != nil {
		return err
	}
	defer conv.Close()

	fmt.Println(theme.hintStyle().Render("session " + sessionID + " (type exit to quit)"))

	prompt := theme.labelStyle().Render("you> ")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		var env *models.ResponseEnvelope
		err := withSpinner(ctx, "Thinking...", func(ctx context.Context) error {
			var err error
			env, err = conv.Ask(ctx, line)
			return err
		})
		if errors.Is(err, errInterrupted) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			fmt.Println(theme.errorStyle().Render(err.Error()))
			continue
		}

		fmt.Println(theme.statusStyle().Render("assistant>"), env.Response)
		if len(env.ToolsUsed) > 0 {
			fmt.Println(theme.hintStyle().Render("tools: " + strings.Join(env.ToolsUsed, ", ")))
		}
	}
	return scanner.Err()
}
