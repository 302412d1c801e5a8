package seqsearch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	cataloguc "github.com/kailas-cloud/seqsearch/internal/usecase/catalog"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	binDir      string
	binaries    map[string]string
	databaseDir string
	corpora     []cataloguc.StaticCorpus

	threads  int
	tempDir  string
	basePath string

	lineBuilder LineBuilder
	linkBuilder LinkBuilder

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBinaries sets explicit executable paths keyed by name ("blastn", "blastp",
// ..., "blastdbcmd"). blastdbcmd is required; algorithms left out are not offered.
func WithBinaries(paths map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.binaries = make(map[string]string, len(paths))
		for k, v := range paths {
			c.binaries[k] = v
		}
	})
}

// WithBinaryDir looks the executables up in dir instead of PATH.
func WithBinaryDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.binDir = dir
	})
}

// WithCorpus declares a searchable corpus. path is the corpus base name as given to
// makeblastdb; title defaults to path.
func WithCorpus(id, path, title string, kind Kind) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpora = append(c.corpora, cataloguc.StaticCorpus{ID: id, Path: path, Title: title, Kind: string(kind)})
	})
}

// WithDatabaseDir discovers every corpus under dir. Corpora declared with
// WithCorpus take precedence on the same path.
func WithDatabaseDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.databaseDir = dir
	})
}

// WithThreads passes -num_threads to every search. Zero leaves the executable default.
func WithThreads(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.threads = n
	})
}

// WithTempDir sets where query files and captured output are written.
// Defaults to the OS temp directory.
func WithTempDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.tempDir = dir
	})
}

// WithLineBuilder overrides the whole display fragment of each hit.
func WithLineBuilder(b LineBuilder) Option {
	return optionFunc(func(c *clientConfig) {
		c.lineBuilder = b
	})
}

// WithLinkBuilder overrides the reference each hit links to.
func WithLinkBuilder(b LinkBuilder) Option {
	return optionFunc(func(c *clientConfig) {
		c.linkBuilder = b
	})
}

// WithBasePath prefixes the standard retrieval links, e.g. "/tools/blast".
func WithBasePath(p string) Option {
	return optionFunc(func(c *clientConfig) {
		c.basePath = p
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
