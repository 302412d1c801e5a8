package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var corporaCmd = &cobra.Command{
	Use:   "corpora",
	Short: "List the searchable corpora and algorithms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tKIND\tPATH\tTITLE")
		for _, e := range a.catalog.Corpora.Entries() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID(), e.Kind(), e.StorageName(), e.Title())
		}
		if err := w.Flush(); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		for _, name := range a.catalog.Algorithms.Names() {
			p, _ := a.catalog.Algorithms.Lookup(name)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", name, p)
		}
		return nil
	},
}
