package main

import (
	"context"

	"github.com/aretw0/textfill/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the generation service",
	Long: `Starts the HTTP generation service the plugin calls. It answers
POST /api/generate (and the legacy /api/qwen-proxy) with {success, texts},
backed by the upstream model selected in service.backend (qwen, openai, gemini).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")

		return withSignals(func(ctx context.Context) error {
			return cli.RunServe(ctx, env, addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default: service.addr)")
}
