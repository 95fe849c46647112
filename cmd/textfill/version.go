package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/textfill"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of textfill",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "textfill version %s\n", strings.TrimSpace(textfill.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
