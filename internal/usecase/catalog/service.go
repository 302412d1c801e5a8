// Package catalog discovers the search binaries and corpora available at startup.
package catalog

import (
	"context"
	"errors"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/domain/algorithm"
	"github.com/kailas-cloud/seqsearch/internal/domain/corpus"
	"github.com/kailas-cloud/seqsearch/internal/domain/sequence"
)

// RetrievalTool is the helper used for corpus listing and entry retrieval.
const RetrievalTool = "blastdbcmd"

const (
	idLength    = 12
	dbErrorText = "BLAST Database error"
)

// multipartVolume matches the numbered volumes of a split corpus (nt.00, nt.01, ...).
var multipartVolume = regexp.MustCompile(`.+/\S+\.\d{2}$`)

// StaticCorpus is a corpus declared in configuration.
type StaticCorpus struct {
	ID    string
	Path  string
	Title string
	Kind  string
}

// Config controls discovery.
type Config struct {
	// BinDir holds the search binaries; empty means PATH.
	BinDir string
	// Binaries maps executable names (algorithm names and blastdbcmd) to explicit
	// paths. When set, BinDir is ignored and algorithms absent from it are not offered.
	Binaries map[string]string
	// DatabaseDir is scanned recursively for corpora; empty disables scanning.
	DatabaseDir string
	Static      []StaticCorpus
}

// Catalog is the immutable result of discovery.
type Catalog struct {
	Algorithms *algorithm.Registry
	Corpora    *corpus.Registry
	// Retrieval is the path of blastdbcmd.
	Retrieval string
}

// Service performs startup discovery.
type Service struct {
	exec   Executor
	logger *zap.Logger
}

// New creates a catalog service.
func New(exec Executor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exec: exec, logger: logger}
}

// Discover locates every algorithm binary plus blastdbcmd and builds the corpus
// registry. A missing binary or an empty corpus set is an error.
func (s *Service) Discover(ctx context.Context, cfg Config) (*Catalog, error) {
	var (
		paths     map[algorithm.Algorithm]string
		retrieval string
		err       error
	)
	if len(cfg.Binaries) > 0 {
		paths, retrieval, err = explicitBinaries(cfg.Binaries)
	} else {
		paths, retrieval, err = s.Binaries(cfg.BinDir)
	}
	if err != nil {
		return nil, err
	}
	algos, err := algorithm.NewRegistry(paths)
	if err != nil {
		return nil, fmt.Errorf("algorithm registry: %w", err)
	}

	entries, err := staticEntries(cfg.Static)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseDir != "" {
		found, err := s.Scan(ctx, retrieval, cfg.DatabaseDir)
		if err != nil {
			return nil, err
		}
		entries = merge(entries, found)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no corpora configured or found in %q", cfg.DatabaseDir)
	}

	reg, err := corpus.NewRegistry(entries...)
	if err != nil {
		return nil, fmt.Errorf("corpus registry: %w", err)
	}

	s.logger.Info("Catalog ready",
		zap.Strings("algorithms", algos.Names()),
		zap.Int("corpora", reg.Len()),
		zap.String("retrieval", retrieval),
	)
	return &Catalog{Algorithms: algos, Corpora: reg, Retrieval: retrieval}, nil
}

// Binaries resolves the algorithm executables and blastdbcmd in binDir, or PATH when
// binDir is empty.
func (s *Service) Binaries(binDir string) (map[algorithm.Algorithm]string, string, error) {
	paths := make(map[algorithm.Algorithm]string)
	var missing []string
	for _, a := range algorithm.All() {
		p, err := locate(binDir, string(a))
		if err != nil {
			missing = append(missing, string(a))
			continue
		}
		paths[a] = p
	}
	retrieval, err := locate(binDir, RetrievalTool)
	if err != nil {
		missing = append(missing, RetrievalTool)
	}
	if len(missing) > 0 {
		where := "PATH"
		if binDir != "" {
			where = binDir
		}
		return nil, "", fmt.Errorf("search binaries not found in %s: %s", where, strings.Join(missing, ", "))
	}
	return paths, retrieval, nil
}

func explicitBinaries(named map[string]string) (map[algorithm.Algorithm]string, string, error) {
	paths := make(map[algorithm.Algorithm]string)
	var retrieval string
	for name, p := range named {
		if name == RetrievalTool {
			retrieval = p
			continue
		}
		a := algorithm.Algorithm(name)
		if !a.IsValid() {
			return nil, "", fmt.Errorf("unknown search binary %q", name)
		}
		paths[a] = p
	}
	if retrieval == "" {
		return nil, "", fmt.Errorf("%s path is required", RetrievalTool)
	}
	if len(paths) == 0 {
		return nil, "", errors.New("at least one algorithm binary is required")
	}
	return paths, retrieval, nil
}

// Scan lists the corpora under dir. Volumes of multi-part corpora and entries whose
// path contains whitespace are skipped.
func (s *Service) Scan(ctx context.Context, retrieval, dir string) ([]corpus.Entry, error) {
	args := []string{"-recursive", "-list", dir, "-list_outfmt", "%p %f %t"}
	res, err := s.exec.Exec(ctx, retrieval, args)
	if err != nil {
		return nil, fmt.Errorf("list corpora: %w", err)
	}
	if strings.Contains(res.Stderr, dbErrorText) {
		return nil, fmt.Errorf("list corpora in %s: %s", dir, strings.TrimSpace(res.Stderr))
	}
	if res.Status != 0 {
		return nil, fmt.Errorf("list corpora in %s: exit status %d: %s", dir, res.Status, strings.TrimSpace(res.Stderr))
	}

	var out []corpus.Entry
	for _, line := range res.Stdout {
		e, ok, err := parseListing(line)
		if err != nil {
			s.logger.Warn("Skipping corpus", zap.String("line", line), zap.Error(err))
			continue
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// parseListing reads one "%p %f %t" line. ok is false for lines to ignore.
func parseListing(line string) (corpus.Entry, bool, error) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 {
		return corpus.Entry{}, false, nil
	}
	kindText, path := parts[0], parts[1]
	title := ""
	if len(parts) == 3 {
		title = strings.TrimSpace(parts[2])
	}
	if multipartVolume.MatchString(path) {
		return corpus.Entry{}, false, nil
	}
	kind, err := sequence.ParseKind(kindText)
	if err != nil {
		return corpus.Entry{}, false, err
	}
	e, err := corpus.NewEntry(CorpusID(path), path, title, kind)
	if err != nil {
		return corpus.Entry{}, false, err
	}
	return e, true, nil
}

// CorpusID derives a stable public id from a corpus path.
func CorpusID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:idLength]
}

func staticEntries(static []StaticCorpus) ([]corpus.Entry, error) {
	out := make([]corpus.Entry, 0, len(static))
	for _, c := range static {
		kind, err := sequence.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("corpus %q: %w", c.ID, err)
		}
		id := c.ID
		if id == "" {
			id = CorpusID(c.Path)
		}
		e, err := corpus.NewEntry(id, c.Path, c.Title, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// merge appends discovered corpora not already declared statically (by path).
func merge(static, found []corpus.Entry) []corpus.Entry {
	seen := make(map[string]struct{}, len(static))
	for _, e := range static {
		seen[e.StorageName()] = struct{}{}
	}
	for _, e := range found {
		if _, ok := seen[e.StorageName()]; ok {
			continue
		}
		seen[e.StorageName()] = struct{}{}
		static = append(static, e)
	}
	return static
}

func locate(binDir, name string) (string, error) {
	if binDir == "" {
		return exec.LookPath(name)
	}
	p := filepath.Join(binDir, name)
	fi, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if fi.IsDir() || fi.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s is not executable", p)
	}
	return p, nil
}
