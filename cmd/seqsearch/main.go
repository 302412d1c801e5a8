// Command seqsearch serves and runs sequence similarity searches.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/seqsearch/internal/config"
)

var (
	flagEnv    string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "seqsearch",
	Short: "Sequence similarity search service",
	Long: `seqsearch wraps the BLAST+ command line tools:
  - serve   run the HTTP API
  - search  run one search and print the parsed report
  - corpora list the searchable corpora`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", config.GetEnv(), "environment (selects config/<env>.yaml and the log format)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "explicit config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(corporaCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
