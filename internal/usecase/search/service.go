package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/blast/parser"
	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/algorithm"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/run"
	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
	"github.com/kailas-cloud/seqsearch/internal/logger"
	"github.com/kailas-cloud/seqsearch/internal/metrics"
)

// Search outcomes used as metric labels.
const (
	outcomeOK         = "ok"
	outcomeValidation = "validation"
	outcomeArgument   = "argument"
	outcomeInternal   = "internal"
	outcomeCancelled  = "cancelled"
)

// Result is a finished search.
type Result struct {
	ID        string
	Stored    bool
	Algorithm string
	CorpusIDs []string
	Options   string
	CreatedAt time.Time
	Report    *report.Report
}

// RenderedHit is a hit with its display fragment.
type RenderedHit struct {
	ID       string
	Fragment string
}

// RenderedQuery holds the rendered hits of one query, in report order.
type RenderedQuery struct {
	ID   string
	Hits []RenderedHit
}

// Rendering is the display form of a Result.
type Rendering struct {
	Queries     []RenderedQuery
	RetrieveAll *hyperlink.Link
}

// Service runs searches: compile, execute, classify, parse.
type Service struct {
	compiler Compiler
	runner   Runner
	linker   Linker
	store    RunStore
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates a search service. store can be nil, in which case results are not kept.
func New(compiler Compiler, runner Runner, linker Linker, store RunStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		compiler: compiler,
		runner:   runner,
		linker:   linker,
		store:    store,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Submit runs one search to completion and returns its parsed report.
// Errors are *domain.SearchError for validation, argument and exit-status faults;
// spawn failures wrap domain.ErrSearchFailed and cancellation wraps the context error.
func (s *Service) Submit(ctx context.Context, req request.Request) (*Result, error) {
	start := time.Now()
	log := s.requestLogger(ctx)

	inv, err := s.compiler.Compile(req)
	if err != nil {
		outcome := outcomeInternal
		fields := []zap.Field{
			zap.String("algorithm", req.Algorithm()),
			zap.Strings("corpora", req.CorpusIDs()),
			zap.String("options", req.Options()),
			zap.Error(err),
		}
		if errors.Is(err, domain.ErrInvalidRequest) {
			outcome = outcomeValidation
			log.Warn("Search rejected", fields...)
		} else {
			log.Error("Search compilation failed", fields...)
		}
		s.observe(req.Algorithm(), outcome, start)
		return nil, err
	}
	defer func() {
		if cerr := inv.Close(); cerr != nil {
			log.Warn("Failed to remove query file", zap.String("path", inv.QueryFile), zap.Error(cerr))
		}
	}()

	cmdline := inv.String()
	log.Debug("Running search",
		zap.String("algorithm", req.Algorithm()),
		zap.Strings("corpora", req.CorpusIDs()),
		zap.String("options", req.Options()),
		zap.Int("sequence_bytes", len(req.Sequence())),
		zap.String("command", cmdline),
	)

	out, err := s.runner.Run(ctx, inv.Binary, inv.Args)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("Search cancelled", zap.String("command", cmdline), zap.Error(err))
			s.observe(req.Algorithm(), outcomeCancelled, start)
			return nil, fmt.Errorf("run search: %w", err)
		}
		log.Error("Search could not be started", zap.String("command", cmdline), zap.Error(err))
		s.observe(req.Algorithm(), outcomeInternal, start)
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}

	switch out.Kind {
	case process.ArgumentFailure:
		log.Warn("Search arguments rejected",
			zap.String("command", cmdline),
			zap.String("message", out.Message),
		)
		s.observe(req.Algorithm(), outcomeArgument, start)
		return nil, domain.NewArgumentError(out.Message, cmdline)
	case process.InternalFailure:
		log.Error("Search failed",
			zap.String("command", cmdline),
			zap.Int("exit_status", out.Status),
			zap.String("stderr", out.Message),
		)
		s.observe(req.Algorithm(), outcomeInternal, start)
		return nil, domain.NewInternalError(out.Status, out.Message, cmdline)
	}

	rep := parser.Parse(out.Lines)
	rep.CommandLine = cmdline

	res := &Result{
		ID:        s.newID(),
		Algorithm: req.Algorithm(),
		CorpusIDs: req.CorpusIDs(),
		Options:   req.Options(),
		CreatedAt: s.now().UTC(),
		Report:    rep,
	}
	res.Stored = s.save(ctx, log, res, out.Lines)

	s.observe(req.Algorithm(), outcomeOK, start)
	metrics.HitsReturned.WithLabelValues(res.Algorithm).Observe(float64(rep.HitCount()))
	log.Info("Search finished",
		zap.String("search_id", res.ID),
		zap.String("algorithm", res.Algorithm),
		zap.Int("queries", len(rep.Queries)),
		zap.Int("hits", rep.HitCount()),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// Get re-parses a stored run. Returns domain.ErrNotFound for unknown ids or when
// no store is configured.
func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	if s.store == nil {
		return nil, fmt.Errorf("search %s: %w", id, domain.ErrNotFound)
	}
	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load search: %w", err)
	}
	rep := parser.Parse(rec.Lines)
	rep.CommandLine = rec.CommandLine
	return &Result{
		ID:        rec.ID,
		Stored:    true,
		Algorithm: rec.Algorithm,
		CorpusIDs: rec.CorpusIDs,
		Options:   rec.Options,
		CreatedAt: rec.CreatedAt,
		Report:    rep,
	}, nil
}

// Delete forgets a stored run. Returns domain.ErrNotFound when no store is configured.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return fmt.Errorf("search %s: %w", id, domain.ErrNotFound)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete search: %w", err)
	}
	return nil
}

// Render builds the display fragment of every hit and the aggregate retrieval link.
func (s *Service) Render(res *Result) Rendering {
	out := Rendering{Queries: make([]RenderedQuery, 0, len(res.Report.Queries))}
	for _, q := range res.Report.Queries {
		rq := RenderedQuery{ID: q.ID, Hits: make([]RenderedHit, 0, len(q.Hits))}
		for _, h := range q.Hits {
			rq.Hits = append(rq.Hits, RenderedHit{ID: h.ID, Fragment: s.linker.ResolveHit(h, res.CorpusIDs)})
		}
		out.Queries = append(out.Queries, rq)
	}
	if link, ok := s.linker.RetrieveAll(res.Report.SeqIDs(), res.CorpusIDs); ok {
		out.RetrieveAll = &link
	}
	return out
}

func (s *Service) save(ctx context.Context, log *zap.Logger, res *Result, lines []string) bool {
	if s.store == nil {
		return false
	}
	rec := &run.Run{
		ID:          res.ID,
		Algorithm:   res.Algorithm,
		CorpusIDs:   res.CorpusIDs,
		Options:     res.Options,
		CommandLine: res.Report.CommandLine,
		Lines:       lines,
		CreatedAt:   res.CreatedAt,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		log.Warn("Failed to store search result", zap.String("search_id", res.ID), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) requestLogger(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

func (s *Service) observe(algo, outcome string, start time.Time) {
	if !algorithm.Algorithm(algo).IsValid() {
		algo = "unknown"
	}
	metrics.SearchesTotal.WithLabelValues(algo, outcome).Inc()
	metrics.SearchDuration.WithLabelValues(algo, outcome).Observe(time.Since(start).Seconds())
}
