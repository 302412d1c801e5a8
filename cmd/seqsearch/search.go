package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/seqsearch/internal/usecase/search"
)

var (
	searchAlgorithm string
	searchCorpora   []string
	searchOptions   string
	searchQuery     string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the parsed report as JSON",
	Example: `  seqsearch search --corpus nt --query query.fa
  cat query.fa | seqsearch search --algorithm blastn --corpus nt --options "-evalue 1e-5"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runSearch(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchAlgorithm, "algorithm", "a", "", "algorithm (inferred from query and corpora when empty)")
	searchCmd.Flags().StringSliceVarP(&searchCorpora, "corpus", "c", nil, "corpus id (repeatable)")
	searchCmd.Flags().StringVarP(&searchOptions, "options", "o", "", "extra algorithm options")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "-", "FASTA query file, - for stdin")
	_ = searchCmd.MarkFlagRequired("corpus")
}

// searchOutput is the JSON printed by the search command.
type searchOutput struct {
	ID          string         `json:"id"`
	Algorithm   string         `json:"algorithm"`
	Corpora     []string       `json:"corpora"`
	CommandLine string         `json:"command_line"`
	Report      *report.Report `json:"report"`
	Hits        []hitLine      `json:"hits"`
}

type hitLine struct {
	Query    string `json:"query"`
	Hit      string `json:"hit"`
	Fragment string `json:"fragment"`
}

func runSearch(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	seq, err := readQuery(stdin, searchQuery)
	if err != nil {
		return err
	}

	algo := searchAlgorithm
	if algo == "" {
		selected, err := a.catalog.Corpora.Select(searchCorpora)
		if err != nil {
			return err
		}
		suggested, err := searchuc.SuggestAlgorithm(seq, selected)
		if err != nil {
			return err
		}
		algo = string(suggested)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Blast.TimeoutSec)*time.Second)
	defer cancel()

	res, err := a.search.Submit(ctx, request.New(algo, seq, searchCorpora, searchOptions))
	if err != nil {
		return err
	}

	out := searchOutput{
		ID:          res.ID,
		Algorithm:   res.Algorithm,
		Corpora:     res.CorpusIDs,
		CommandLine: res.Report.CommandLine,
		Report:      res.Report,
	}
	for _, q := range a.search.Render(res).Queries {
		for _, h := range q.Hits {
			out.Hits = append(out.Hits, hitLine{Query: q.ID, Hit: h.ID, Fragment: h.Fragment})
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readQuery(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, request.MaxSequenceLength+1))
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // operator-supplied path
	}
	if err != nil {
		return "", fmt.Errorf("read query: %w", err)
	}
	return string(data), nil
}
