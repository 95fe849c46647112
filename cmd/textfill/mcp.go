package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/textfill"
	"github.com/aretw0/textfill/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes textfill to AI agents as MCP tools: generate_texts and fill_document.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		return withSignals(func(ctx context.Context) error {
			filler, cleanup, err := env.NewFiller(ctx, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := mcp.NewServer(filler.Generator(), textfill.Version,
				mcp.WithOrchestrator(filler.Orchestrator()),
				mcp.WithLogger(env.Logger),
			)

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				env.Logger.Info("Starting textfill MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				env.Logger.Info("Starting textfill MCP server (SSE)", "port", port)
				if err := srv.ServeSSE(ctx, port); err != nil {
					return err
				}
				env.Logger.Info("MCP server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
