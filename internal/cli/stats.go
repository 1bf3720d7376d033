package cli

import (
	"fmt"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/client"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long:  `Show uptime, generation and tool timings, counters and socket connections.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := apiClient.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}
		printServerStats(stats)
		return nil
	},
}

// printServerStats displays the server statistics.
func printServerStats(stats *client.Stats) {
	uptime := time.Duration(stats.UptimeSeconds * float64(time.Second)).Truncate(time.Second)
	fmt.Printf("Server Statistics (uptime: %s)\n", uptime)
	fmt.Printf("Sockets: %d connections across %d sessions\n", stats.SocketConnections, stats.SocketSessions)

	ops := []struct {
		label string
		op    *metrics.OperationSnapshot
	}{
		{"Generation", stats.Generation},
		{"Pipeline", stats.Pipeline},
		{"Store Query", stats.StoreQuery},
		{"Web Search", stats.WebSearch},
	}
	for _, o := range ops {
		if o.op == nil {
			continue
		}
		fmt.Printf("\n%s:\n", o.label)
		printOpStats(o.op)
		printTokenStats(o.op)
	}

	for _, name := range stats.ToolNames() {
		fmt.Printf("\nTool %s:\n", name)
		printOpStats(stats.Tools[name])
	}

	if len(stats.Counters) > 0 {
		fmt.Printf("\nCounters:\n")
		for k, v := range stats.Counters {
			fmt.Printf("  %s: %d\n", k, v)
		}
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(op *metrics.OperationSnapshot) {
	fmt.Printf("  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token totals when the operation tracks them.
func printTokenStats(op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Printf("  Tokens: %d in, %d out\n", *op.TotalInputTokens, *op.TotalOutputTokens)
}
