package seqsearch

import "github.com/kailas-cloud/seqsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest  = domain.ErrInvalidRequest
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrSearchFailed    = domain.ErrSearchFailed
	ErrNotFound        = domain.ErrNotFound
	ErrMixedSequence   = domain.ErrMixedSequence
)

// SearchError is the classified failure returned by Search. Use errors.As() to inspect it.
type SearchError = domain.SearchError

// FaultKind classifies a SearchError.
type FaultKind = domain.FaultKind

// Fault kinds.
const (
	FaultValidation = domain.FaultValidation
	FaultArgument   = domain.FaultArgument
	FaultInternal   = domain.FaultInternal
)
