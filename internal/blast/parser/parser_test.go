package parser

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
)

const twoQueries = `<HTML>
<TITLE>BLAST Search Results</TITLE>
<BODY BGCOLOR="#FFFFFF" LINK="#0000FF" VLINK="#660099" ALINK="#660099">
<PRE>
<b>BLASTN 2.2.25+</b>
<b><a href="http://www.ncbi.nlm.nih.gov/pubmed/9254694">Reference</a>:</b>
Stephen F. Altschul, Thomas L. Madden, Alejandro A. Schaffer.

<b>Database:</b> /db/nt
           12 sequences; 3,456 total letters

<b>Query=</b> query_1

Length=60
<script src="blastResult.js"></script>
Sequences producing significant alignments:                          (Bits)  Value

<a href="#Aech_17012">lcl|Aech_17012</a>  [mRNA]  locus=scaffold821   111    2e-25

>lcl|Aech_17012<a name=Aech_17012></a>  [mRNA]  locus=scaffold821:43240:43587:+
Length=115

 Score = 28.1 bits (61),  Expect = 5.9
 Identities = 19/41 (47%), Positives = 24/41 (59%), Gaps = 1/41 (2%)

Query  115  KFDEFIRQVALLDEGSCSIMYSLLATSSVTGVTVRSVLNPM  155
            KF++   Q ALLDE S  I+  L A  SVT +TV   L+ M
Sbjct  68   KFEDTELQ-ALLDENSAQILUELSAALSVTPMTVFKRLHTM  107


<b>Query=</b> query_2

Length=40

><a name=BL_ORD_ID:15102></a> ACEP_00008472-RA protein AED:1 QI:0|0|0|0|0|0|11|0|967
Length=300

Query  1    MKTAYIAKQR  10
Sbjct  250  MKTAYIAKQR  241
Query  11   QISFVKSHFS  20
Sbjct  240  QISFVKSHFS  231


  Database: /db/nt
    Posted date:  May 5, 2011
  Number of letters in database: 3,456
</PRE>
</BODY>
</HTML>`

func fixture() []string { return strings.Split(twoQueries, "\n") }

func TestParse_TwoQueriesInOrder(t *testing.T) {
	rep := Parse(fixture())

	if len(rep.Queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(rep.Queries))
	}
	if rep.Queries[0].ID != "query_1" || rep.Queries[1].ID != "query_2" {
		t.Errorf("query order = %q, %q", rep.Queries[0].ID, rep.Queries[1].ID)
	}
	for _, q := range rep.Queries {
		if len(q.Hits) != 1 {
			t.Errorf("query %s: expected 1 hit, got %d", q.ID, len(q.Hits))
		}
	}
}

func TestParse_ParseSeqidsHit(t *testing.T) {
	rep := Parse(fixture())
	h := rep.Queries[0].Hits[0]

	if h.ID != "lcl|Aech_17012" || h.SeqID != "lcl|Aech_17012" {
		t.Errorf("ID = %q, SeqID = %q", h.ID, h.SeqID)
	}
	if h.Meta != "[mRNA]  locus=scaffold821:43240:43587:+" {
		t.Errorf("Meta = %q", h.Meta)
	}
	if diff := cmp.Diff(&report.Span{Start: 68, End: 155}, h.Coordinates); diff != "" {
		t.Errorf("coordinates mismatch (-want +got):\n%s", diff)
	}
	if h.Alignment[0] != "Length=115" {
		t.Errorf("first alignment line = %q", h.Alignment[0])
	}
}

func TestParse_SansParseSeqidsHit(t *testing.T) {
	rep := Parse(fixture())
	h := rep.Queries[1].Hits[0]

	if h.ID != "ACEP_00008472-RA" {
		t.Errorf("ID = %q", h.ID)
	}
	if h.SeqID != "" || h.Linkable() {
		t.Errorf("hit without parse-seqids must not be linkable, SeqID = %q", h.SeqID)
	}
	if diff := cmp.Diff(&report.Span{Start: 1, End: 250}, h.Coordinates); diff != "" {
		t.Errorf("coordinates mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PreambleAndNoise(t *testing.T) {
	rep := Parse(fixture())
	pre := rep.Queries[0].Preamble

	want := []string{
		"",
		"Length=60",
		"Sequences producing significant alignments:                          (Bits)  Value",
		"",
		`<a href="#Aech_17012">lcl|Aech_17012</a>  [mRNA]  locus=scaffold821   111    2e-25`,
		"",
	}
	if diff := cmp.Diff(want, pre); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
	for _, q := range rep.Queries {
		for _, line := range append(q.Preamble, q.Hits[0].Alignment...) {
			if strings.Contains(line, "<script") || strings.HasPrefix(line, "</PRE") {
				t.Errorf("noise leaked into query %s: %q", q.ID, line)
			}
		}
	}
}

func TestParse_SummaryAndReference(t *testing.T) {
	rep := Parse(fixture())

	wantSummary := "  Database: /db/nt\n    Posted date:  May 5, 2011\n  Number of letters in database: 3,456"
	if rep.Summary != wantSummary {
		t.Errorf("Summary = %q", rep.Summary)
	}
	if !strings.HasPrefix(rep.Reference, "<TITLE>BLAST Search Results</TITLE>") {
		t.Errorf("Reference starts with %q", firstLine(rep.Reference))
	}
	if !strings.HasSuffix(rep.Reference, "12 sequences; 3,456 total letters") {
		t.Errorf("Reference = %q", rep.Reference)
	}
	if len(rep.RawLines) != len(fixture()) {
		t.Errorf("RawLines has %d lines, want %d", len(rep.RawLines), len(fixture()))
	}
}

func TestParse_NoQueryMarker(t *testing.T) {
	rep := Parse([]string{"<HTML>", "BLAST engine error page", "</HTML>"})
	if rep.Queries == nil || len(rep.Queries) != 0 {
		t.Errorf("expected empty, non-nil queries, got %#v", rep.Queries)
	}
	if rep.Reference != "BLAST engine error page" {
		t.Errorf("Reference = %q", rep.Reference)
	}
}

func TestParse_Idempotent(t *testing.T) {
	a := Parse(fixture())
	b := Parse(fixture())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("parsing twice differs (-first +second):\n%s", diff)
	}
}

func TestParse_SummaryWinsOverQueryMarker(t *testing.T) {
	rep := Parse([]string{
		"<b>Query=</b> q1",
		">hit1 desc",
		"Query  1  ACGT  4",
		"  Database: nt",
		"<b>Query=</b> q2",
		"Sbjct  900  ACGT  903",
	})
	if len(rep.Queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(rep.Queries))
	}
	h := rep.Queries[0].Hits[0]
	if diff := cmp.Diff(&report.Span{Start: 1, End: 4}, h.Coordinates); diff != "" {
		t.Errorf("summary lines leaked into hit (-want +got):\n%s", diff)
	}
	if rep.Summary != "  Database: nt\n<b>Query=</b> q2\nSbjct  900  ACGT  903" {
		t.Errorf("Summary = %q", rep.Summary)
	}
}

func TestParse_HitWithoutPositionalRows(t *testing.T) {
	rep := Parse([]string{"<b>Query=</b> q1", ">hit1 desc", "Length=10", ""})
	if h := rep.Queries[0].Hits[0]; h.Coordinates != nil {
		t.Errorf("expected nil coordinates, got %+v", h.Coordinates)
	}
}

func TestParse_DuplicateIDsReopenEntries(t *testing.T) {
	rep := Parse([]string{
		"<b>Query=</b> q1",
		">hit1 first",
		"Sbjct  10  AC  11",
		">hit1 again",
		"Sbjct  2  AC  3",
		"<b>Query=</b> q1",
		"late preamble",
	})
	if len(rep.Queries) != 1 || len(rep.Queries[0].Hits) != 1 {
		t.Fatalf("expected one query with one hit, got %+v", rep.Queries)
	}
	q := rep.Queries[0]
	if diff := cmp.Diff(&report.Span{Start: 2, End: 11}, q.Hits[0].Coordinates); diff != "" {
		t.Errorf("coordinates mismatch (-want +got):\n%s", diff)
	}
	if q.Preamble[len(q.Preamble)-1] != "late preamble" {
		t.Errorf("Preamble = %q", q.Preamble)
	}
}

func TestRuleOrder(t *testing.T) {
	var got []string
	for _, r := range rules {
		got = append(got, r.name)
	}
	want := []string{"summary", "summary-marker", "query-marker", "reference", "hit-marker", "preamble", "alignment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rule order = %v, want %v", got, want)
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line                string
		id, meta, seqID string
	}{
		{">lcl|Aech_17012<a name=Aech_17012></a>  [mRNA]  locus=x", "lcl|Aech_17012", "[mRNA]  locus=x", "lcl|Aech_17012"},
		{"><a name=BL_ORD_ID:15102></a> ACEP_00008472-RA protein", "ACEP_00008472-RA", "protein", ""},
		{">gi|123|ref|NM_1.1| plain header", "gi|123|ref|NM_1.1|", "plain header", "gi|123|ref|NM_1.1|"},
		{">", "", "", ""},
	}
	for _, tc := range tests {
		id, meta, seqID := ParseHeader(tc.line)
		if id != tc.id || meta != tc.meta || seqID != tc.seqID {
			t.Errorf("ParseHeader(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.line, id, meta, seqID, tc.id, tc.meta, tc.seqID)
		}
	}
}

func TestStripNoise(t *testing.T) {
	tests := []struct {
		in   string
		out  string
		keep bool
	}{
		{"</PRE>", "", false},
		{"<BODY BGCOLOR=\"#FFFFFF\">", "", false},
		{"<PRE><b>BLASTP 2.2.25+</b>", "<b>BLASTP 2.2.25+</b>", true},
		{`<script src="blastResult.js"></script>`, "", false},
		{"", "", true},
		{"Length=60", "Length=60", true},
	}
	for _, tc := range tests {
		out, keep := stripNoise(tc.in)
		if out != tc.out || keep != tc.keep {
			t.Errorf("stripNoise(%q) = (%q, %v), want (%q, %v)", tc.in, out, keep, tc.out, tc.keep)
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
