package main

import (
	"context"
	"os"

	"github.com/aretw0/textfill/internal/cli"
	"github.com/aretw0/textfill/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var fillCmd = &cobra.Command{
	Use:   "fill <document> <description>",
	Short: "Fill the selected text layers of a document file once",
	Long: `Loads a document file (YAML or JSON), resolves its selected text layers,
requests one generated text per layer and saves the document. A report of the
written layers is printed to stdout; progress goes to stderr.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetString("page")
		local, _ := cmd.Flags().GetBool("local")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		return withSignals(func(ctx context.Context) error {
			return cli.RunFill(ctx, env, cli.FillOptions{
				Path:        args[0],
				Description: args[1],
				Page:        page,
				Local:       local,
				DryRun:      dryRun,
				Rich:        tui.IsTerminal(os.Stdout),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().String("page", "", "Page to read the selection from (default: the document's current page)")
	fillCmd.Flags().Bool("local", false, "Generate in process with the configured upstream model instead of the remote endpoint")
	fillCmd.Flags().Bool("dry-run", false, "Do not save the document")
}
