package db

import "errors"

// ErrKeyNotFound is returned by Get for missing or expired keys.
var ErrKeyNotFound = errors.New("db: key not found")

// Op names used in Error for diagnostics.
const (
	OpPing = "PING"
	OpGet  = "GET"
	OpSet  = "SET"
	OpDel  = "DEL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
