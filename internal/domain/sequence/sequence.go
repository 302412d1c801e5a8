// Package sequence classifies raw residue text as nucleotide or protein.
package sequence

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/seqsearch/internal/domain"
)

// Kind is the molecule type of a sequence or corpus.
type Kind string

// Sequence kinds.
const (
	Unknown    Kind = ""
	Nucleotide Kind = "nucleotide"
	Protein    Kind = "protein"
)

// IsValid reports whether k names a concrete molecule type.
func (k Kind) IsValid() bool {
	return k == Nucleotide || k == Protein
}

// ParseKind accepts the long names plus the blastdbcmd short forms (Nucleotide/Protein, nucl/prot).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nucleotide", "nucl":
		return Nucleotide, nil
	case "protein", "prot":
		return Protein, nil
	default:
		return Unknown, fmt.Errorf("unknown sequence kind %q", s)
	}
}

const (
	minResidues       = 10
	nucleotideRatio   = 0.9
	ambiguousResidues = "NXnx"
	nucleicResidues   = "ACGTUacgtu"
)

// Guess infers the kind of a single record's residues.
// Non-letters and the ambiguity codes N and X are ignored; fewer than ten remaining
// residues yield Unknown.
func Guess(residues string) Kind {
	var total, nucleic int
	for _, r := range residues {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) || strings.ContainsRune(ambiguousResidues, r) {
			continue
		}
		total++
		if strings.ContainsRune(nucleicResidues, r) {
			nucleic++
		}
	}
	if total < minResidues {
		return Unknown
	}
	if float64(nucleic) > nucleotideRatio*float64(total) {
		return Nucleotide
	}
	return Protein
}

// TypeOf guesses the kind of every record in FASTA text (bare residues count as one record).
// Records too short to classify are ignored. Returns domain.ErrMixedSequence when
// records disagree.
func TypeOf(fasta string) (Kind, error) {
	seen := Unknown
	for _, body := range records(fasta) {
		k := Guess(body)
		if k == Unknown {
			continue
		}
		if seen != Unknown && seen != k {
			return Unknown, domain.ErrMixedSequence
		}
		seen = k
	}
	return seen, nil
}

func records(fasta string) []string {
	var (
		out  []string
		body strings.Builder
	)
	flush := func() {
		if body.Len() > 0 {
			out = append(out, body.String())
			body.Reset()
		}
	}
	for _, line := range strings.Split(fasta, "\n") {
		if strings.HasPrefix(line, ">") {
			flush()
			continue
		}
		body.WriteString(line)
	}
	flush()
	return out
}

// ParseIDs splits whitespace- or comma-separated sequence ids, dropping duplicates
// while keeping first-seen order.
func ParseIDs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
