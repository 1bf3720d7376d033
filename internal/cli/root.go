// Package cli provides the command-line interface for the assistant.
package cli

import (
	"fmt"
	"os"

	"github.com/rahul2317-NRK/chatbot9/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	userID    string
	verbose   bool

	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Real-estate assistant client",
	Long: `chatbot talks to a running assistant server.

Ask property questions, hold a live chat over WebSocket, run the financial
tools directly and inspect server statistics.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if userID == "" {
			userID = os.Getenv("CHATBOT_USER_ID")
		}
		apiClient = client.New(serverURL, userID)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (default $CHATBOT_SERVER_URL or http://localhost:8000)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id sent as X-User-ID (default $CHATBOT_USER_ID)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(mortgageCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

func debugf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
