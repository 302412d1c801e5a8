package sequence

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/seqsearch/internal/domain"
)

func TestGuess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Kind
	}{
		{"dna", "ATGCGTACGTTAGCATGCAA", Nucleotide},
		{"rna lowercase", "augcguacguuagcaugcaa", Nucleotide},
		{"dna with ambiguity codes", "ATGNNNNNNNNNNNNNCGTACGTTAG", Nucleotide},
		{"protein", "MKTAYIAKQRQISFVKSHFSRQ", Protein},
		{"too short", "ATGCATG", Unknown},
		{"only ambiguity codes", "NNNNNNNNNNNNXXXXXXX", Unknown},
		{"digits and spaces ignored", "1 ATGCGTACGT 61 TAGCATGCAA", Nucleotide},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Guess(tc.in); got != tc.want {
				t.Errorf("Guess(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTypeOf_MultipleRecords(t *testing.T) {
	fasta := ">a\nATGCGTACGTTAGCATGCAA\n>b\nTTGACGTAGCTAGCTAGGCA\n"
	k, err := TypeOf(fasta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != Nucleotide {
		t.Errorf("got %q, want %q", k, Nucleotide)
	}
}

func TestTypeOf_Mixed(t *testing.T) {
	fasta := ">a\nATGCGTACGTTAGCATGCAA\n>b\nMKTAYIAKQRQISFVKSHFSRQ\n"
	if _, err := TypeOf(fasta); !errors.Is(err, domain.ErrMixedSequence) {
		t.Errorf("expected ErrMixedSequence, got %v", err)
	}
}

func TestTypeOf_BareResidues(t *testing.T) {
	k, err := TypeOf("MKTAYIAKQRQISFVKSHFSRQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != Protein {
		t.Errorf("got %q, want %q", k, Protein)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"Nucleotide": Nucleotide,
		"nucl":       Nucleotide,
		"Protein":    Protein,
		" prot ":     Protein,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("rna"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseIDs(t *testing.T) {
	got := ParseIDs("  sp|P1 lcl|a,lcl|b\n\tsp|P1 lcl|a ")
	want := []string{"sp|P1", "lcl|a", "lcl|b"}
	if len(got) != len(want) {
		t.Fatalf("ParseIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseIDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if ids := ParseIDs("   "); len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}
