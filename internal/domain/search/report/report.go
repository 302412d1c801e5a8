// Package report is the structured model of one search run's output.
package report

// Span is a closed coordinate range on the subject sequence.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Hit is one matched corpus entry reported for a query.
type Hit struct {
	// ID is the display identifier taken from the hit header.
	ID string `json:"id"`
	// SeqID is the identifier usable for entry retrieval. Empty when the corpus was
	// indexed without parse-seqids and no id can be recovered.
	SeqID     string   `json:"seq_id,omitempty"`
	Meta      string   `json:"meta"`
	Header    string   `json:"-"`
	Alignment []string `json:"alignment"`
	// Coordinates holds the min/max over every positional row; nil when none were found.
	Coordinates *Span `json:"coordinates,omitempty"`
}

// Linkable reports whether the hit can be cross-referenced.
func (h *Hit) Linkable() bool { return h.SeqID != "" }

// Query groups the hits reported for one input sequence.
type Query struct {
	ID       string   `json:"id"`
	Preamble []string `json:"preamble"`
	Hits     []*Hit   `json:"hits"`
}

// Hit returns the hit with the given id.
func (q *Query) Hit(id string) (*Hit, bool) {
	for _, h := range q.Hits {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

// Report is the parsed output of a search run.
type Report struct {
	CommandLine string   `json:"command_line"`
	RawLines    []string `json:"-"`
	Reference   string   `json:"reference"`
	Queries     []*Query `json:"queries"`
	Summary     string   `json:"summary"`
}

// Query returns the query with the given id.
func (r *Report) Query(id string) (*Query, bool) {
	for _, q := range r.Queries {
		if q.ID == id {
			return q, true
		}
	}
	return nil, false
}

// SeqIDs returns the distinct retrievable hit ids across all queries, in order of appearance.
func (r *Report) SeqIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, q := range r.Queries {
		for _, h := range q.Hits {
			if h.SeqID == "" {
				continue
			}
			if _, ok := seen[h.SeqID]; ok {
				continue
			}
			seen[h.SeqID] = struct{}{}
			out = append(out, h.SeqID)
		}
	}
	return out
}

// HitCount returns the total number of hits across all queries.
func (r *Report) HitCount() int {
	n := 0
	for _, q := range r.Queries {
		n += len(q.Hits)
	}
	return n
}
