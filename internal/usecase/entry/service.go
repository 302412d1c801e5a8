// Package entry retrieves raw corpus entries by sequence id.
package entry

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/sequence"
	"github.com/kailas-cloud/seqsearch/internal/logger"
)

// Retrieval is the FASTA text found for a set of ids.
type Retrieval struct {
	FASTA     string
	Requested []string
	Found     int
}

// Complete reports whether every requested id produced a record.
func (r Retrieval) Complete() bool { return r.Found == len(r.Requested) }

// Service fetches entries with blastdbcmd.
type Service struct {
	exec    Executor
	corpora Corpora
	binary  string
	logger  *zap.Logger
}

// New creates an entry service. binary is the path of blastdbcmd.
func New(exec Executor, corpora Corpora, binary string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exec: exec, corpora: corpora, binary: binary, logger: logger}
}

// Retrieve returns the FASTA records for ids (whitespace or comma separated) from
// the given corpora. Fewer records than ids is logged and reported through
// Retrieval, not as an error.
func (s *Service) Retrieve(ctx context.Context, ids string, corpusIDs []string) (Retrieval, error) {
	log := logger.FromContextOr(ctx, s.logger)

	requested := sequence.ParseIDs(ids)
	if len(requested) == 0 {
		return Retrieval{}, domain.NewValidationError("no sequence id given")
	}
	if len(corpusIDs) == 0 {
		return Retrieval{}, domain.NewValidationError("no corpus selected, valid corpora: %s",
			strings.Join(s.corpora.IDs(), ", "))
	}
	storage := make([]string, 0, len(corpusIDs))
	for _, id := range corpusIDs {
		e, ok := s.corpora.Lookup(id)
		if !ok {
			return Retrieval{}, domain.NewValidationError("unknown corpus %q, valid corpora: %s",
				id, strings.Join(s.corpora.IDs(), ", "))
		}
		storage = append(storage, e.StorageName())
	}

	args := []string{"-db", strings.Join(storage, " "), "-entry", strings.Join(requested, ",")}
	res, err := s.exec.Exec(ctx, s.binary, args)
	if err != nil {
		return Retrieval{}, fmt.Errorf("%w: retrieve entries: %w", domain.ErrSearchFailed, err)
	}

	found := countRecords(res.Stdout)
	if res.Status != 0 && found == 0 {
		if res.Status == 1 {
			return Retrieval{}, fmt.Errorf("entries %s: %w", strings.Join(requested, ","), domain.ErrNotFound)
		}
		log.Error("Entry retrieval failed",
			zap.String("binary", s.binary),
			zap.Strings("args", args),
			zap.Int("exit_status", res.Status),
			zap.String("stderr", res.Stderr),
		)
		return Retrieval{}, domain.NewInternalError(res.Status, res.Stderr, "")
	}

	out := Retrieval{
		FASTA:     joinLines(res.Stdout),
		Requested: requested,
		Found:     found,
	}
	if !out.Complete() {
		log.Warn("Entry count mismatch",
			zap.Strings("ids", requested),
			zap.Strings("corpora", corpusIDs),
			zap.Int("found", found),
			zap.String("stderr", strings.TrimSpace(res.Stderr)),
		)
	}
	return out, nil
}

func countRecords(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, ">") {
			n++
		}
	}
	return n
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
