package resultstore

import (
	"time"

	"github.com/kailas-cloud/seqsearch/internal/domain/search/run"
)

// runDTO is the JSON layout stored under each result key.
type runDTO struct {
	Version     int       `json:"v"`
	ID          string    `json:"id"`
	Algorithm   string    `json:"algorithm"`
	CorpusIDs   []string  `json:"corpus_ids"`
	Options     string    `json:"options,omitempty"`
	CommandLine string    `json:"command_line"`
	Lines       []string  `json:"lines"`
	CreatedAt   time.Time `json:"created_at"`
}

const dtoVersion = 1

func toDTO(r *run.Run) runDTO {
	return runDTO{
		Version:     dtoVersion,
		ID:          r.ID,
		Algorithm:   r.Algorithm,
		CorpusIDs:   r.CorpusIDs,
		Options:     r.Options,
		CommandLine: r.CommandLine,
		Lines:       r.Lines,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (d runDTO) toDomain() run.Run {
	return run.Run{
		ID:          d.ID,
		Algorithm:   d.Algorithm,
		CorpusIDs:   d.CorpusIDs,
		Options:     d.Options,
		CommandLine: d.CommandLine,
		Lines:       d.Lines,
		CreatedAt:   d.CreatedAt,
	}
}
