// Package algorithm names the search modes of the alignment tool suite and maps them
// to executables.
package algorithm

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/seqsearch/internal/domain/sequence"
)

// Algorithm is a named external search mode.
type Algorithm string

// Supported algorithms.
const (
	// Blastn searches nucleotide queries against nucleotide corpora.
	Blastn Algorithm = "blastn"
	// Blastp searches protein queries against protein corpora.
	Blastp Algorithm = "blastp"
	// Blastx searches translated nucleotide queries against protein corpora.
	Blastx  Algorithm = "blastx"
	Tblastn Algorithm = "tblastn"
	Tblastx Algorithm = "tblastx"
)

var all = []Algorithm{Blastn, Blastp, Blastx, Tblastn, Tblastx}

// All returns every supported algorithm in canonical order.
func All() []Algorithm {
	out := make([]Algorithm, len(all))
	copy(out, all)
	return out
}

// IsValid checks if a is one of the supported algorithms.
func (a Algorithm) IsValid() bool {
	for _, v := range all {
		if a == v {
			return true
		}
	}
	return false
}

// QueryKind returns the molecule type the algorithm expects as query.
func (a Algorithm) QueryKind() sequence.Kind {
	switch a {
	case Blastn, Blastx, Tblastx:
		return sequence.Nucleotide
	case Blastp, Tblastn:
		return sequence.Protein
	default:
		return sequence.Unknown
	}
}

// TargetKind returns the molecule type of the corpora the algorithm searches.
func (a Algorithm) TargetKind() sequence.Kind {
	switch a {
	case Blastn, Tblastn, Tblastx:
		return sequence.Nucleotide
	case Blastp, Blastx:
		return sequence.Protein
	default:
		return sequence.Unknown
	}
}

// Suggest returns the algorithms applicable to a query/corpus kind pair.
// An Unknown query kind matches on corpus kind alone.
func Suggest(query, target sequence.Kind) []Algorithm {
	var out []Algorithm
	for _, a := range all {
		if query != sequence.Unknown && a.QueryKind() != query {
			continue
		}
		if target != sequence.Unknown && a.TargetKind() != target {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Registry maps algorithm names to executable paths. Immutable after construction.
type Registry struct {
	paths map[string]string
	names []string
}

// NewRegistry validates and copies the given name -> path table.
func NewRegistry(paths map[Algorithm]string) (*Registry, error) {
	r := &Registry{paths: make(map[string]string, len(paths))}
	for a, p := range paths {
		if !a.IsValid() {
			return nil, fmt.Errorf("unknown algorithm %q", a)
		}
		if p == "" {
			return nil, fmt.Errorf("empty executable path for %q", a)
		}
		r.paths[string(a)] = p
		r.names = append(r.names, string(a))
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the executable for the named algorithm.
func (r *Registry) Lookup(name string) (string, bool) {
	p, ok := r.paths[name]
	return p, ok
}

// Names returns the registered algorithm names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Missing returns the supported algorithms that have no executable registered.
func (r *Registry) Missing() []Algorithm {
	var out []Algorithm
	for _, a := range all {
		if _, ok := r.paths[string(a)]; !ok {
			out = append(out, a)
		}
	}
	return out
}
