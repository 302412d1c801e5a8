// Package run holds the durable record of a finished search.
package run

import "time"

// Run is the raw output of one successful search together with what produced it.
// Reports are always re-parsed from Lines, never stored.
type Run struct {
	ID          string
	Algorithm   string
	CorpusIDs   []string
	Options     string
	CommandLine string
	Lines       []string
	CreatedAt   time.Time
}
