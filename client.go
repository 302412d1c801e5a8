package seqsearch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/blast/command"
	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/domain/algorithm"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
	cataloguc "github.com/kailas-cloud/seqsearch/internal/usecase/catalog"
	entryuc "github.com/kailas-cloud/seqsearch/internal/usecase/entry"
	searchuc "github.com/kailas-cloud/seqsearch/internal/usecase/search"
)

// Client is the seqsearch SDK entry point. Safe for concurrent use when the
// injected builders are.
type Client struct {
	catalog   *cataloguc.Catalog
	searchSvc *searchuc.Service
	entrySvc  *entryuc.Service
	obs       *observer
}

// New locates the executables, resolves the corpora and wires a Client.
// Discovery runs blastdbcmd when WithDatabaseDir is set.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	runner := process.NewRunner(process.WithTempDir(cfg.tempDir))
	cat, err := cataloguc.New(runner, nil).Discover(ctx, cataloguc.Config{
		BinDir:      cfg.binDir,
		Binaries:    cfg.binaries,
		DatabaseDir: cfg.databaseDir,
		Static:      cfg.corpora,
	})
	if err != nil {
		return nil, fmt.Errorf("seqsearch: %w", err)
	}

	return wireClient(cfg, cat, runner, obs), nil
}

func wireClient(cfg *clientConfig, cat *cataloguc.Catalog, exec *process.Runner, obs *observer) *Client {
	compiler := command.NewCompiler(cat.Algorithms, cat.Corpora,
		command.WithThreads(cfg.threads),
		command.WithTempDir(cfg.tempDir),
	)

	resolverOpts := []hyperlink.Option{hyperlink.WithBasePath(cfg.basePath)}
	if b := cfg.lineBuilder; b != nil {
		resolverOpts = append(resolverOpts, hyperlink.WithLineBuilder(hyperlink.LineBuilderFunc(
			func(c hyperlink.Context) (string, bool) { return b(toHitContext(c)) })))
	}
	if b := cfg.linkBuilder; b != nil {
		resolverOpts = append(resolverOpts, hyperlink.WithLinkBuilder(hyperlink.LinkBuilderFunc(
			func(c hyperlink.Context) (string, bool) { return b(toHitContext(c)) })))
	}
	resolver := hyperlink.New(resolverOpts...)

	// Internal services log through zap; the SDK reports through the slog observer.
	nop := zap.NewNop()
	return &Client{
		catalog:   cat,
		searchSvc: searchuc.New(compiler, exec, resolver, nil, nop),
		entrySvc:  entryuc.New(exec, cat.Corpora, cat.Retrieval, nop),
		obs:       obs,
	}
}

// Search runs one search to completion. Cancelling ctx stops the executable and
// removes its temporary files.
func (c *Client) Search(ctx context.Context, req SearchRequest) (_ *Result, err error) {
	start := time.Now()
	algo := req.Algorithm
	defer func() {
		c.obs.observe("search", start, err, "algorithm", algo, "corpora", req.Corpora)
	}()

	if algo == "" {
		algo, err = c.SuggestAlgorithm(req.Sequence, req.Corpora)
		if err != nil {
			return nil, err
		}
	}

	res, err := c.searchSvc.Submit(ctx, request.New(algo, req.Sequence, req.Corpora, req.Options))
	if err != nil {
		return nil, err
	}
	return toResult(res, c.searchSvc.Render(res)), nil
}

// SuggestAlgorithm picks an algorithm from the query's molecule type and the kind of
// the given corpora.
func (c *Client) SuggestAlgorithm(sequence string, corpora []string) (string, error) {
	entries, err := c.catalog.Corpora.Select(corpora)
	if err != nil {
		return "", err
	}
	a, err := searchuc.SuggestAlgorithm(sequence, entries)
	if err != nil {
		return "", err
	}
	return string(a), nil
}

// Entries fetches the FASTA records for ids (comma or whitespace separated) from
// the given corpora. Found is lower than len(Requested) when some ids are absent.
func (c *Client) Entries(ctx context.Context, ids string, corpora []string) (_ *Entries, err error) {
	start := time.Now()
	defer func() { c.obs.observe("entries", start, err, "corpora", corpora) }()

	r, err := c.entrySvc.Retrieve(ctx, ids, corpora)
	if err != nil {
		return nil, err
	}
	return &Entries{FASTA: r.FASTA, Requested: r.Requested, Found: r.Found}, nil
}

// Corpora lists the searchable corpora in discovery order.
func (c *Client) Corpora() []Corpus {
	entries := c.catalog.Corpora.Entries()
	out := make([]Corpus, 0, len(entries))
	for _, e := range entries {
		out = append(out, Corpus{ID: e.ID(), Title: e.Title(), Kind: Kind(e.Kind())})
	}
	return out
}

// Algorithms lists the algorithms whose executables were found, sorted.
func (c *Client) Algorithms() []string {
	return c.catalog.Algorithms.Names()
}

// TargetKind reports which corpus kind the named algorithm searches.
func TargetKind(algo string) (Kind, bool) {
	a := algorithm.Algorithm(algo)
	if !a.IsValid() {
		return "", false
	}
	return Kind(a.TargetKind()), true
}
