package seqsearch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const reportScript = `#!/bin/sh
cat <<'REPORT'
<HTML>
<PRE>
BLASTN 2.9.0+
Reference: Altschul et al.
<b>Query=</b> q1
Length=12
Sequences producing significant alignments:
>lcl|seq1 chromosome 4
Score = 24.3 bits (12)
Query  1   ACGTACGTACGT  12
Sbjct  40  ACGTACGTACGT  51
  Database: nt
    Number of letters in database: 1,024
</PRE>
REPORT
`

const entryScript = `#!/bin/sh
printf '>%s\nACGT\n' "$4"
`

// script writes an executable shell script into dir.
func script(t *testing.T, dir, name, body string) string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o755); err != nil { //nolint:gosec // test fixture
		t.Fatal(err)
	}
	return p
}

func newTestClient(t *testing.T, blastn string, opts ...Option) (*Client, string) {
	t.Helper()
	bins := t.TempDir()
	work := t.TempDir()
	base := []Option{
		WithBinaries(map[string]string{
			"blastn":     script(t, bins, "blastn", blastn),
			"blastdbcmd": script(t, bins, "blastdbcmd", entryScript),
		}),
		WithCorpus("nt", "/data/nt", "Nucleotide collection", Nucleotide),
		WithTempDir(work),
	}
	c, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, work
}

// --- Tests ---

func TestNew_RequiresCorpus(t *testing.T) {
	_, err := New(context.Background(), WithBinaries(map[string]string{
		"blastn":     "/opt/blast/blastn",
		"blastdbcmd": "/opt/blast/blastdbcmd",
	}))
	if err == nil {
		t.Fatal("expected error without corpora")
	}
}

func TestNew_MissingBinaryDir(t *testing.T) {
	_, err := New(context.Background(),
		WithBinaryDir(t.TempDir()),
		WithCorpus("nt", "/data/nt", "", Nucleotide),
	)
	if err == nil {
		t.Fatal("expected error for empty binary directory")
	}
}

func TestSearch(t *testing.T) {
	c, work := newTestClient(t, reportScript)

	res, err := c.Search(context.Background(), SearchRequest{
		Algorithm: "blastn",
		Sequence:  ">q1\nACGTACGTACGT\n",
		Corpora:   []string{"nt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HitCount() != 1 {
		t.Fatalf("HitCount() = %d", res.HitCount())
	}
	hit := res.Queries[0].Hits[0]
	if hit.SeqID != "lcl|seq1" || hit.Meta != "chromosome 4" {
		t.Errorf("hit = %+v", hit)
	}
	want := "><a href='/entries?id=lcl|seq1&amp;corpus=nt'>lcl|seq1</a> chromosome 4"
	if hit.Fragment != want {
		t.Errorf("Fragment = %q, want %q", hit.Fragment, want)
	}
	if hit.Coordinates == nil || hit.Coordinates.Start != 1 || hit.Coordinates.End != 51 {
		t.Errorf("Coordinates = %+v", hit.Coordinates)
	}
	if res.RetrieveAll == nil || res.RetrieveAll.Href != "/entries?id=lcl|seq1&corpus=nt" {
		t.Errorf("RetrieveAll = %+v", res.RetrieveAll)
	}
	if !strings.Contains(res.CommandLine, "-task blastn") {
		t.Errorf("CommandLine = %q", res.CommandLine)
	}

	left, err := os.ReadDir(work)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("temporary files left behind: %v", left)
	}
}

func TestSearch_SuggestsAlgorithm(t *testing.T) {
	c, _ := newTestClient(t, reportScript)

	res, err := c.Search(context.Background(), SearchRequest{
		Sequence: ">q1\nACGTACGTACGTACGT\n",
		Corpora:  []string{"nt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Algorithm != "blastn" {
		t.Errorf("Algorithm = %q", res.Algorithm)
	}
}

func TestSearch_LinkBuilder(t *testing.T) {
	var seen HitContext
	c, _ := newTestClient(t, reportScript, WithLinkBuilder(func(h HitContext) (string, bool) {
		seen = h
		return "https://example.org/seq/" + h.SeqID, true
	}))

	res, err := c.Search(context.Background(), SearchRequest{
		Algorithm: "blastn",
		Sequence:  "ACGTACGTACGT",
		Corpora:   []string{"nt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "><a href='https://example.org/seq/lcl|seq1'>lcl|seq1</a> chromosome 4"
	if got := res.Queries[0].Hits[0].Fragment; got != want {
		t.Errorf("Fragment = %q, want %q", got, want)
	}
	if seen.DisplayID != "lcl|seq1" || len(seen.Corpora) != 1 || seen.Corpora[0] != "nt" {
		t.Errorf("builder context = %+v", seen)
	}
}

func TestSearch_LineBuilder(t *testing.T) {
	c, _ := newTestClient(t, reportScript, WithLineBuilder(func(h HitContext) (string, bool) {
		return "hit " + h.SeqID, true
	}))

	res, err := c.Search(context.Background(), SearchRequest{
		Algorithm: "blastn",
		Sequence:  "ACGTACGTACGT",
		Corpora:   []string{"nt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Queries[0].Hits[0].Fragment; got != "hit lcl|seq1" {
		t.Errorf("Fragment = %q", got)
	}
}

func TestSearch_Faults(t *testing.T) {
	tests := []struct {
		name   string
		script string
		req    SearchRequest
		want   error
		kind   FaultKind
	}{
		{
			name:   "unknown corpus",
			script: reportScript,
			req:    SearchRequest{Algorithm: "blastn", Sequence: "ACGTACGTACGT", Corpora: []string{"pdb"}},
			want:   ErrInvalidRequest,
			kind:   FaultValidation,
		},
		{
			name:   "argument rejected",
			script: "#!/bin/sh\necho 'BLAST query/args error: (CArgException::eInvalidArg) Argument \"evalue\". Illegal value' >&2\nexit 1\n",
			req:    SearchRequest{Algorithm: "blastn", Sequence: "ACGTACGTACGT", Corpora: []string{"nt"}, Options: "-evalue x"},
			want:   ErrInvalidArgument,
			kind:   FaultArgument,
		},
		{
			name:   "crash",
			script: "#!/bin/sh\necho 'BLAST Database error: No alias or index file found' >&2\nexit 2\n",
			req:    SearchRequest{Algorithm: "blastn", Sequence: "ACGTACGTACGT", Corpora: []string{"nt"}},
			want:   ErrSearchFailed,
			kind:   FaultInternal,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, tc.script)
			_, err := c.Search(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var se *SearchError
			if !errors.As(err, &se) || se.Kind != tc.kind {
				t.Errorf("SearchError = %+v", se)
			}
		})
	}
}

func TestEntries(t *testing.T) {
	c, _ := newTestClient(t, reportScript)

	got, err := c.Entries(context.Background(), "lcl|seq1", []string{"nt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FASTA != ">lcl|seq1\nACGT\n" || got.Found != 1 {
		t.Errorf("Entries = %+v", got)
	}
}

func TestCatalogAccessors(t *testing.T) {
	c, _ := newTestClient(t, reportScript)

	if got := c.Algorithms(); len(got) != 1 || got[0] != "blastn" {
		t.Errorf("Algorithms() = %v", got)
	}
	corpora := c.Corpora()
	if len(corpora) != 1 || corpora[0] != (Corpus{ID: "nt", Title: "Nucleotide collection", Kind: Nucleotide}) {
		t.Errorf("Corpora() = %+v", corpora)
	}
	if k, ok := TargetKind("tblastn"); !ok || k != Nucleotide {
		t.Errorf("TargetKind(tblastn) = %q, %v", k, ok)
	}
	if _, ok := TargetKind("megablast"); ok {
		t.Error("TargetKind should reject unknown algorithms")
	}
}

func TestObserver_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, _ := newTestClient(t, reportScript, WithPrometheus(reg), WithLogger(logger))

	_, _ = c.Search(context.Background(), SearchRequest{Algorithm: "blastn", Sequence: "ACGTACGTACGT", Corpora: []string{"nt"}})
	_, _ = c.Search(context.Background(), SearchRequest{Algorithm: "blastn", Sequence: "", Corpora: []string{"nt"}})

	ops := c.obs.metrics.operations
	if v := testutil.ToFloat64(ops.WithLabelValues("search", "ok")); v != 1 {
		t.Errorf("ok searches = %v", v)
	}
	if v := testutil.ToFloat64(ops.WithLabelValues("search", string(FaultValidation))); v != 1 {
		t.Errorf("rejected searches = %v", v)
	}
	out := buf.String()
	if !strings.Contains(out, "operation completed") || !strings.Contains(out, "operation rejected") {
		t.Errorf("log output = %q", out)
	}
}

func TestRegisterOrReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if first.operations != second.operations {
		t.Error("expected the registered collector to be reused")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("search", time.Now(), nil)
}
