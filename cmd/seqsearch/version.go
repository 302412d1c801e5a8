package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/seqsearch/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seqsearch %s\n", version.String())
	},
}
