// Package command turns a search request into a validated argv for the search binary.
package command

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/algorithm"
	"github.com/kailas-cloud/seqsearch/internal/domain/corpus"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/request"
)

// optionCharset is the allow-list for caller option text.
var optionCharset = regexp.MustCompile(`^[a-zA-Z0-9\-_. ']*$`)

// disallowedFlags are controlled by the engine and never accepted from callers.
var disallowedFlags = []string{"out", "outfmt", "html", "db", "query"}

// Compiler validates requests against the registries and assembles invocations.
type Compiler struct {
	algorithms *algorithm.Registry
	corpora    *corpus.Registry
	threads    int
	tempDir    string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithThreads appends -num_threads to every invocation unless the caller sets it.
// Zero leaves the binary's default.
func WithThreads(n int) Option {
	return func(c *Compiler) { c.threads = n }
}

// WithTempDir sets the directory for query artifacts. Empty uses os.TempDir.
func WithTempDir(dir string) Option {
	return func(c *Compiler) { c.tempDir = dir }
}

// NewCompiler creates a Compiler over read-only registries.
func NewCompiler(algorithms *algorithm.Registry, corpora *corpus.Registry, opts ...Option) *Compiler {
	c := &Compiler{algorithms: algorithms, corpora: corpora}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile validates req and writes its sequence to a temporary query file.
// The first failing check wins; failures are domain validation faults and leave nothing
// on disk. The caller must Close the returned Invocation.
func (c *Compiler) Compile(req request.Request) (*Invocation, error) {
	binary, ok := c.algorithms.Lookup(req.Algorithm())
	if !ok {
		return nil, domain.NewValidationError("unknown algorithm %q, valid algorithms: %s",
			req.Algorithm(), strings.Join(c.algorithms.Names(), ", "))
	}

	if strings.TrimSpace(req.Sequence()) == "" {
		return nil, domain.NewValidationError("query sequence is empty")
	}
	if len(req.Sequence()) > request.MaxSequenceLength {
		return nil, domain.NewValidationError("query sequence too long (max %d bytes)", request.MaxSequenceLength)
	}

	storage, err := c.resolveCorpora(req.CorpusIDs())
	if err != nil {
		return nil, err
	}

	userArgs, err := parseOptions(req.Options())
	if err != nil {
		return nil, err
	}

	queryFile, err := c.writeQuery(req.Sequence())
	if err != nil {
		return nil, fmt.Errorf("write query: %w", err)
	}

	args := make([]string, 0, len(userArgs)+8)
	args = append(args, "-db", strings.Join(storage, " "), "-query", queryFile)
	args = append(args, userArgs...)
	args = append(args, "-html")
	if req.Algorithm() == string(algorithm.Blastn) && !hasFlag(userArgs, "task") {
		args = append(args, "-task", "blastn")
	}
	if c.threads > 0 && !hasFlag(userArgs, "num_threads") {
		args = append(args, "-num_threads", strconv.Itoa(c.threads))
	}

	return &Invocation{Binary: binary, Args: args, QueryFile: queryFile}, nil
}

func (c *Compiler) resolveCorpora(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("no corpus selected, valid corpora: %s",
			strings.Join(c.corpora.IDs(), ", "))
	}
	storage := make([]string, 0, len(ids))
	for _, id := range ids {
		e, ok := c.corpora.Lookup(id)
		if !ok {
			return nil, domain.NewValidationError("unknown corpus %q, valid corpora: %s",
				id, strings.Join(c.corpora.IDs(), ", "))
		}
		storage = append(storage, e.StorageName())
	}
	return storage, nil
}

// parseOptions checks the character allow-list, splits the text into argv and
// rejects engine-controlled flags.
func parseOptions(options string) ([]string, error) {
	if strings.TrimSpace(options) == "" {
		return nil, nil
	}
	if !optionCharset.MatchString(options) {
		return nil, domain.NewValidationError("invalid characters in options")
	}
	tokens, err := shlex.Split(options)
	if err != nil {
		return nil, domain.NewValidationError("malformed options: %v", err)
	}
	for _, tok := range tokens {
		name, ok := flagName(tok)
		if !ok {
			continue
		}
		for _, d := range disallowedFlags {
			if name == d {
				return nil, domain.NewValidationError("option -%s is not allowed", d)
			}
		}
	}
	return tokens, nil
}

// flagName returns the lower-cased name of a single- or double-dash flag token.
func flagName(tok string) (string, bool) {
	if !strings.HasPrefix(tok, "-") {
		return "", false
	}
	name := strings.TrimLeft(tok, "-")
	if name == "" {
		return "", false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), true
}

func hasFlag(tokens []string, flag string) bool {
	for _, tok := range tokens {
		if name, ok := flagName(tok); ok && name == flag {
			return true
		}
	}
	return false
}

func (c *Compiler) writeQuery(sequence string) (string, error) {
	f, err := os.CreateTemp(c.tempDir, "seqsearch-query-*.fa")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	if _, err := f.WriteString(sequence); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return name, nil
}
