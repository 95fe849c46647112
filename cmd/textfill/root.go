package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/textfill/internal/cli"
	"github.com/aretw0/textfill/internal/config"
	"github.com/aretw0/textfill/pkg/runner"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "textfill",
	Short: "Fill selected text layers with AI-generated content",
	Long: `textfill resolves the selected text layers of a design document, asks a
generation service for one distinct text per layer and writes them back.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the textfill config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Shorthand for --log-level=debug")
}

// setup loads configuration and logging from the persistent flags.
func setup(cmd *cobra.Command) (*cli.Env, error) {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Setup(cli.Options{ConfigPath: path, LogLevel: level, Debug: debug})
}

// withSignals runs fn with a context canceled on SIGINT or SIGTERM.
func withSignals(fn func(ctx context.Context) error) error {
	sm := runner.NewSignalManager(context.Background())
	defer sm.Stop()
	return fn(sm.Context())
}
