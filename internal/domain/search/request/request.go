package request

import "strings"

// MaxSequenceLength bounds the query text accepted from callers.
const MaxSequenceLength = 10 << 20

// Request is a search submission. Immutable once constructed; validation happens
// when it is compiled against the algorithm and corpus registries.
type Request struct {
	algorithm string
	sequence  string
	corpusIDs []string
	options   string
}

// New creates a Request. Corpus ids are copied and kept in caller order.
func New(algorithm, sequence string, corpusIDs []string, options string) Request {
	ids := make([]string, len(corpusIDs))
	copy(ids, corpusIDs)
	return Request{
		algorithm: strings.TrimSpace(algorithm),
		sequence:  sequence,
		corpusIDs: ids,
		options:   options,
	}
}

// Algorithm returns the requested algorithm name.
func (r Request) Algorithm() string { return r.algorithm }

// Sequence returns the raw query text.
func (r Request) Sequence() string { return r.sequence }

// CorpusIDs returns a copy of the selected corpus ids.
func (r Request) CorpusIDs() []string {
	out := make([]string, len(r.corpusIDs))
	copy(out, r.corpusIDs)
	return out
}

// Options returns the free-form option string.
func (r Request) Options() string { return r.options }
