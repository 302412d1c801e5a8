package runcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/db"
)

// memStore implements the consumer interface for tests.
type memStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

type mockRunner struct {
	out   process.Outcome
	err   error
	calls int
}

func (m *mockRunner) Run(_ context.Context, _ string, _ []string) (process.Outcome, error) {
	m.calls++
	return m.out, m.err
}

// queryArgs writes content to a fresh query file and returns the argv using it.
func queryArgs(t *testing.T, content string) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.fa")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return []string{"-db", "/db/nt", "-query", path, "-html"}
}
