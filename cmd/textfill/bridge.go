package main

import (
	"context"
	"fmt"

	"github.com/aretw0/textfill/internal/cli"
	"github.com/spf13/cobra"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <document>",
	Short: "Serve UI commands for one document",
	Long: `Starts a long-running bridge between a UI and one document file.

Modes:
- stdio (default): NDJSON commands on stdin, status events on stdout.
- --text: plain descriptions typed on stdin, coloured status lines.
- --http <addr>: POST /commands, GET /events (SSE), /health and /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		text, _ := cmd.Flags().GetBool("text")
		addr, _ := cmd.Flags().GetString("http")
		if text && addr != "" {
			return fmt.Errorf("--text and --http cannot be used together")
		}

		return withSignals(func(ctx context.Context) error {
			return cli.RunBridge(ctx, env, cli.BridgeOptions{
				Path:     args[0],
				Text:     text,
				HTTPAddr: addr,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().Bool("text", false, "Interactive text mode")
	bridgeCmd.Flags().String("http", "", "Serve the bridge over HTTP on this address (e.g. :7070)")
}
