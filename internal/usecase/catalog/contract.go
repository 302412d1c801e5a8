package catalog

import (
	"context"

	"github.com/kailas-cloud/seqsearch/internal/blast/process"
)

// Executor runs a helper binary to completion.
type Executor interface {
	Exec(ctx context.Context, binary string, args []string) (*process.Result, error)
}
