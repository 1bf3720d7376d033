package cli

import (
	"fmt"

	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <session_id>",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := apiClient.History(cmd.Context(), args[0], historyLimit)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}

		theme := defaultTheme
		if len(h.Messages) == 0 {
			fmt.Println(theme.hintStyle().Render("no messages"))
			return nil
		}
		for _, m := range h.Messages {
			label := theme.statusStyle().Render(string(m.Type))
			if m.Type == models.RoleUser {
				label = theme.labelStyle().Render(string(m.Type))
			}
			fmt.Printf("%s %s %s\n", theme.hintStyle().Render(m.Timestamp.Format("15:04:05")), label, m.Message)
		}
		fmt.Printf("\n%d messages\n", h.TotalMessages)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum number of messages")
}
