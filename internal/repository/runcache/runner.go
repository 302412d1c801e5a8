// Package runcache reuses the output of identical search runs.
package runcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/blast/process"
	"github.com/kailas-cloud/seqsearch/internal/db"
)

const (
	keyPrefix     = "seqsearch:run_cache:"
	entryVersion  = 1
	queryFlag     = "-query"
	keySeparator  = "\x00"
	resultHit     = "hit"
	resultMiss    = "miss"
	resultError   = "error"
	resultSkipped = "skipped"
)

// store is the consumer interface for the run cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// runner is the wrapped search runner.
type runner interface {
	Run(ctx context.Context, binary string, args []string) (process.Outcome, error)
}

type entry struct {
	V     int      `json:"v"`
	Lines []string `json:"lines"`
}

// CachedRunner serves successful runs of an identical command and query from the
// store. Failures are never cached.
type CachedRunner struct {
	inner      runner
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"/"skipped"), passed explicitly.
func New(
	inner runner,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRunner{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Run returns a cached successful outcome or runs the command.
func (c *CachedRunner) Run(ctx context.Context, binary string, args []string) (process.Outcome, error) {
	key, err := cacheKey(binary, args)
	if err != nil {
		c.inc(resultSkipped)
		c.logger.Debug("Run not cacheable", zap.Error(err))
		return c.inner.Run(ctx, binary, args)
	}

	if lines, ok := c.get(ctx, key); ok {
		c.inc(resultHit)
		return process.Outcome{Kind: process.Success, Lines: lines}, nil
	}
	c.inc(resultMiss)

	out, err := c.inner.Run(ctx, binary, args)
	if err != nil {
		return out, err
	}
	if out.Kind == process.Success {
		c.put(ctx, key, out.Lines)
	}
	return out, nil
}

func (c *CachedRunner) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedRunner) get(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.inc(resultError)
			c.logger.Warn("Failed to get cached run", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.V != entryVersion {
		c.logger.Warn("Ignoring unreadable cached run", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return e.Lines, true
}

func (c *CachedRunner) put(ctx context.Context, key string, lines []string) {
	data, err := json.Marshal(entry{V: entryVersion, Lines: lines})
	if err != nil {
		c.logger.Warn("Failed to encode run for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.inc(resultError)
		c.logger.Warn("Failed to cache run", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey hashes the binary and argv. The query file path is unique per run, so
// the file's content is hashed in its place.
func cacheKey(binary string, args []string) (string, error) {
	h := sha256.New()
	h.Write([]byte(binary))
	for i := 0; i < len(args); i++ {
		h.Write([]byte(keySeparator))
		h.Write([]byte(args[i]))
		if args[i] != queryFlag {
			continue
		}
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s without a value", queryFlag)
		}
		i++
		content, err := os.ReadFile(args[i])
		if err != nil {
			return "", fmt.Errorf("read query: %w", err)
		}
		sum := sha256.Sum256(content)
		h.Write([]byte(keySeparator))
		h.Write(sum[:])
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
