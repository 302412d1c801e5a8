package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals a search request rejected before any process is spawned.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidArgument signals that the search binary rejected the compiled command.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSearchFailed signals an infrastructure-level failure of the search binary.
	ErrSearchFailed = errors.New("search failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEntryMismatch signals that fewer entries were retrieved than requested.
	ErrEntryMismatch = errors.New("retrieved entries do not match requested ids")
	// ErrMixedSequence signals a query containing both nucleotide and protein records.
	ErrMixedSequence = errors.New("query mixes nucleotide and protein sequences")
)

// FaultKind classifies a search failure.
type FaultKind string

const (
	// FaultValidation is caller input rejected before spawning.
	FaultValidation FaultKind = "validation"
	// FaultArgument is a rejection by the search binary itself (exit status 1).
	FaultArgument FaultKind = "argument"
	// FaultInternal is a crash or infrastructure failure of the search binary.
	FaultInternal FaultKind = "internal"
)

// SearchError carries a classified search failure.
// CommandLine and Status are diagnostic and never shown to API callers for internal faults.
type SearchError struct {
	Kind        FaultKind
	Message     string
	Status      int
	CommandLine string
}

func (e *SearchError) Error() string {
	switch e.Kind {
	case FaultInternal:
		return fmt.Sprintf("%s: exit status %d: %s", ErrSearchFailed.Error(), e.Status, e.Message)
	case FaultArgument:
		return fmt.Sprintf("%s: %s", ErrInvalidArgument.Error(), e.Message)
	default:
		return fmt.Sprintf("%s: %s", ErrInvalidRequest.Error(), e.Message)
	}
}

func (e *SearchError) Unwrap() error {
	switch e.Kind {
	case FaultInternal:
		return ErrSearchFailed
	case FaultArgument:
		return ErrInvalidArgument
	default:
		return ErrInvalidRequest
	}
}

// NewValidationError creates a validation fault.
func NewValidationError(format string, args ...any) error {
	return &SearchError{Kind: FaultValidation, Message: fmt.Sprintf(format, args...)}
}

// NewArgumentError creates an argument fault for the given command line.
func NewArgumentError(message, commandLine string) error {
	return &SearchError{Kind: FaultArgument, Message: message, CommandLine: commandLine}
}

// NewInternalError creates an internal fault carrying the exit status and raw stderr.
func NewInternalError(status int, message, commandLine string) error {
	return &SearchError{Kind: FaultInternal, Message: message, Status: status, CommandLine: commandLine}
}
