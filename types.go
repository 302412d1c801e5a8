package seqsearch

import (
	"time"

	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
	"github.com/kailas-cloud/seqsearch/internal/hyperlink"
	searchuc "github.com/kailas-cloud/seqsearch/internal/usecase/search"
)

// Kind is the molecule type of a corpus.
type Kind string

// Corpus kinds.
const (
	Nucleotide Kind = "nucleotide"
	Protein    Kind = "protein"
)

// SearchRequest describes one search. An empty Algorithm is inferred from the
// query and corpus kinds.
type SearchRequest struct {
	Algorithm string
	// Sequence is FASTA text or bare residues; several records may be given.
	Sequence string
	Corpora  []string
	// Options are extra command-line flags, e.g. "-evalue 1e-5 -word_size 11".
	Options string
}

// Span is a closed coordinate range on the subject sequence.
type Span struct {
	Start int
	End   int
}

// Hit is one matched corpus entry.
type Hit struct {
	ID string
	// SeqID is the retrievable id; empty when none could be recovered.
	SeqID       string
	Meta        string
	Alignment   []string
	Coordinates *Span
	// Fragment is the display line with the hit id linked.
	Fragment string
}

// Query holds the hits reported for one input sequence.
type Query struct {
	ID       string
	Preamble []string
	Hits     []Hit
}

// Link is a reference with its anchor text.
type Link struct {
	Href string
	Text string
}

// Result is a finished search.
type Result struct {
	ID          string
	Algorithm   string
	Corpora     []string
	CommandLine string
	Reference   string
	Queries     []Query
	Summary     string
	// RetrieveAll fetches every retrievable hit at once; nil when none are.
	RetrieveAll *Link
	CreatedAt   time.Time
}

// HitCount returns the number of hits over every query.
func (r *Result) HitCount() int {
	n := 0
	for _, q := range r.Queries {
		n += len(q.Hits)
	}
	return n
}

// Corpus is a searchable collection.
type Corpus struct {
	ID    string
	Title string
	Kind  Kind
}

// Entries holds FASTA records fetched by id.
type Entries struct {
	FASTA     string
	Requested []string
	Found     int
}

// HitContext describes the hit a builder is asked to cross-reference.
type HitContext struct {
	SeqID       string
	DisplayID   string
	Meta        string
	Header      string
	Corpora     []string
	Coordinates *Span
}

// LineBuilder produces the whole display fragment for a hit. Returning false
// falls back to the link builder, or to the standard retrieval link when none is set.
type LineBuilder func(HitContext) (string, bool)

// LinkBuilder produces the reference a hit links to. Returning false leaves the
// hit's original header line unlinked.
type LinkBuilder func(HitContext) (string, bool)

func toHitContext(c hyperlink.Context) HitContext {
	return HitContext{
		SeqID:       c.SeqID,
		DisplayID:   c.DisplayID,
		Meta:        c.Meta,
		Header:      c.Header,
		Corpora:     c.CorpusIDs,
		Coordinates: toSpan(c.Coordinates),
	}
}

func toSpan(s *report.Span) *Span {
	if s == nil {
		return nil
	}
	return &Span{Start: s.Start, End: s.End}
}

func toResult(res *searchuc.Result, r searchuc.Rendering) *Result {
	out := &Result{
		ID:          res.ID,
		Algorithm:   res.Algorithm,
		Corpora:     res.CorpusIDs,
		CommandLine: res.Report.CommandLine,
		Reference:   res.Report.Reference,
		Summary:     res.Report.Summary,
		CreatedAt:   res.CreatedAt,
		Queries:     make([]Query, 0, len(res.Report.Queries)),
	}
	for i, q := range res.Report.Queries {
		oq := Query{ID: q.ID, Preamble: q.Preamble, Hits: make([]Hit, 0, len(q.Hits))}
		for j, h := range q.Hits {
			oq.Hits = append(oq.Hits, Hit{
				ID:          h.ID,
				SeqID:       h.SeqID,
				Meta:        h.Meta,
				Alignment:   h.Alignment,
				Coordinates: toSpan(h.Coordinates),
				Fragment:    r.Queries[i].Hits[j].Fragment,
			})
		}
		out.Queries = append(out.Queries, oq)
	}
	if r.RetrieveAll != nil {
		out.RetrieveAll = &Link{Href: r.RetrieveAll.Href, Text: r.RetrieveAll.Text}
	}
	return out
}
