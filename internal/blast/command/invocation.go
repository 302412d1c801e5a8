package command

import (
	"errors"
	"os"
	"regexp"
	"strings"
)

// Invocation is a compiled search: the executable, its argv and the query artifact it owns.
type Invocation struct {
	Binary    string
	Args      []string
	QueryFile string
}

// Close removes the query artifact. Safe to call more than once.
func (i *Invocation) Close() error {
	if i == nil || i.QueryFile == "" {
		return nil
	}
	err := os.Remove(i.QueryFile)
	i.QueryFile = ""
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// String renders the invocation as a shell-quoted line. Diagnostic only; the
// invocation is never passed through a shell.
func (i *Invocation) String() string {
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, quote(i.Binary))
	for _, a := range i.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

var safeWord = regexp.MustCompile(`^[A-Za-z0-9_\-./=:,+@%]+$`)

func quote(s string) string {
	if safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
