package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/seqsearch/internal/blast/command"
	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/run"
)

// --- Mocks ---

type mockCompiler struct {
	inv    *command.Invocation
	err    error
	called bool
}

func (m *mockCompiler) Compile(_ request.Request) (*command.Invocation, error) {
	m.called = true
	return m.inv, m.err
}

type mockRunner struct {
	out      process.Outcome
	err      error
	called   bool
	lastArgs []string
}

func (m *mockRunner) Run(_ context.Context, _ string, args []string) (process.Outcome, error) {
	m.called = true
	m.lastArgs = args
	return m.out, m.err
}

type mockStore struct {
	runs    map[string]run.Run
	saveErr error
}

func newMockStore() *mockStore { return &mockStore{runs: map[string]run.Run{}} }

func (m *mockStore) Save(_ context.Context, r *run.Run) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs[r.ID] = *r
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	delete(m.runs, id)
	return nil
}

func (m *mockStore) Load(_ context.Context, id string) (run.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return run.Run{}, domain.ErrNotFound
	}
	return r, nil
}

// queryInvocation returns an invocation owning a real query file.
func queryInvocation(t *testing.T) *command.Invocation {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.fa")
	if err := os.WriteFile(path, []byte(">q1\nACGTACGTACGT\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return &command.Invocation{
		Binary:    "/opt/blast/bin/blastn",
		Args:      []string{"-db", "/db/nt", "-query", path, "-html", "-task", "blastn"},
		QueryFile: path,
	}
}

var fixtureLines = []string{
	"<HTML>",
	"<PRE>",
	"BLASTN 2.9.0+",
	"Reference: Altschul et al.",
	"<b>Query=</b> q1",
	"Length=12",
	"Sequences producing significant alignments:",
	">lcl|seq1 chromosome 4",
	"Score = 24.3 bits (12)",
	"Query  1   ACGTACGTACGT  12",
	"Sbjct  40  ACGTACGTACGT  51",
	"><a name=BL_ORD_ID:7></a> contig_7 unplaced",
	"Query  1   ACGTACGT  8",
	"Sbjct  9   ACGTACGT  2",
	"  Database: nt",
	"    Number of letters in database: 1,024",
	"</PRE>",
}
