package search

import (
	"fmt"

	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/algorithm"
	"github.com/kailas-cloud/seqsearch/internal/domain/corpus"
	"github.com/kailas-cloud/seqsearch/internal/domain/sequence"
)

// SuggestAlgorithm picks an algorithm for query text against the selected corpora.
// All corpora must share one kind and the query type must be recognizable.
func SuggestAlgorithm(sequenceText string, corpora []corpus.Entry) (algorithm.Algorithm, error) {
	if len(corpora) == 0 {
		return "", domain.NewValidationError("no corpus selected")
	}
	target := corpora[0].Kind()
	for _, c := range corpora[1:] {
		if c.Kind() != target {
			return "", domain.NewValidationError("selected corpora mix nucleotide and protein entries")
		}
	}

	query, err := sequence.TypeOf(sequenceText)
	if err != nil {
		return "", domain.NewValidationError("%v", err)
	}
	if query == sequence.Unknown {
		return "", domain.NewValidationError("cannot infer query sequence type, specify an algorithm")
	}

	candidates := algorithm.Suggest(query, target)
	if len(candidates) == 0 {
		return "", fmt.Errorf("no algorithm searches %s queries against %s corpora", query, target)
	}
	return candidates[0], nil
}
