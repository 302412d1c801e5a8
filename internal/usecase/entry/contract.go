package entry

import (
	"context"

	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/domain/corpus"
)

// Executor runs a helper binary to completion.
type Executor interface {
	Exec(ctx context.Context, binary string, args []string) (*process.Result, error)
}

// Corpora resolves corpus ids to entries.
type Corpora interface {
	Lookup(id string) (corpus.Entry, bool)
	IDs() []string
}
