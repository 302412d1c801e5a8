package search

import (
	"context"

	"github.com/kailas-cloud/seqsearch/internal/blast/command"
	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/run"
	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
)

// Compiler validates a request and materializes its invocation.
type Compiler interface {
	Compile(req request.Request) (*command.Invocation, error)
}

// Runner executes an invocation and classifies its exit status.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (process.Outcome, error)
}

// RunStore persists finished runs for later retrieval.
type RunStore interface {
	Save(ctx context.Context, r *run.Run) error
	Load(ctx context.Context, id string) (run.Run, error)
	Delete(ctx context.Context, id string) error
}

// Linker builds display fragments for hits.
type Linker interface {
	ResolveHit(h *report.Hit, corpusIDs []string) string
	RetrieveAll(seqIDs, corpusIDs []string) (hyperlink.Link, bool)
}
