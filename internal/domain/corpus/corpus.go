// Package corpus describes the pre-indexed sequence collections available for search.
package corpus

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/sequence"
)

// Entry is a searchable corpus.
type Entry struct {
	id          string
	storageName string
	title       string
	kind        sequence.Kind
}

// NewEntry validates a corpus description. Ids and storage names must not contain
// whitespace: both are space-joined on the wire and on the command line.
func NewEntry(id, storageName, title string, kind sequence.Kind) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("corpus id is required")
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return Entry{}, fmt.Errorf("corpus id %q contains whitespace", id)
	}
	if storageName == "" {
		return Entry{}, fmt.Errorf("corpus %q: storage name is required", id)
	}
	if strings.ContainsAny(storageName, " \t\r\n") {
		return Entry{}, fmt.Errorf("corpus %q: storage name %q contains whitespace", id, storageName)
	}
	if !kind.IsValid() {
		return Entry{}, fmt.Errorf("corpus %q: invalid kind %q", id, kind)
	}
	if title == "" {
		title = storageName
	}
	return Entry{id: id, storageName: storageName, title: title, kind: kind}, nil
}

// ID returns the public corpus identifier.
func (e Entry) ID() string { return e.id }

// StorageName returns the name passed to the search binary.
func (e Entry) StorageName() string { return e.storageName }

// Title returns the human-readable title.
func (e Entry) Title() string { return e.title }

// Kind returns the molecule type stored in the corpus.
func (e Entry) Kind() sequence.Kind { return e.kind }

// Registry is an ordered, immutable set of corpora keyed by id.
type Registry struct {
	entries []Entry
	byID    map[string]int
}

// NewRegistry builds a registry preserving the given order. Duplicate ids are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := r.byID[e.id]; dup {
			return nil, fmt.Errorf("duplicate corpus id %q", e.id)
		}
		r.byID[e.id] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Lookup returns the corpus with the given id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Select returns the corpora with the given ids, in the given order. An unknown id
// is a validation fault naming the valid ones.
func (r *Registry) Select(ids []string) ([]Entry, error) {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, ok := r.Lookup(id)
		if !ok {
			return nil, domain.NewValidationError("unknown corpus %q, valid corpora: %s",
				id, strings.Join(r.IDs(), ", "))
		}
		out = append(out, e)
	}
	return out, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns all corpus ids in registry order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.id
	}
	return out
}

// Entries returns a copy of all corpora in registry order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// OfKind returns the corpora holding the given molecule type.
func (r *Registry) OfKind(k sequence.Kind) []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of corpora.
func (r *Registry) Len() int { return len(r.entries) }
