// Package resultstore persists finished search runs in a key-value store.
package resultstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/db"
	"github.com/kailas-cloud/seqsearch/internal/domain"
	"github.com/kailas-cloud/seqsearch/internal/domain/search/run"
)

const keyPrefix = "seqsearch:result:"

// store is the consumer interface for the result repository (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo saves and loads search runs.
type Repo struct {
	store  store
	ttl    time.Duration
	ops    *prometheus.CounterVec
	logger *zap.Logger
}

// New creates a Repo. ops is a counter vec with labels "op" and "result"; may be nil.
func New(s store, ttl time.Duration, ops *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, ttl: ttl, ops: ops, logger: logger}
}

// Save stores r under its id.
func (r *Repo) Save(ctx context.Context, rec *run.Run) error {
	if rec.ID == "" {
		return fmt.Errorf("run id is required")
	}
	data, err := json.Marshal(toDTO(rec))
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, keyPrefix+rec.ID, data, r.ttl); err != nil {
		r.count("save", "error")
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	r.count("save", "ok")
	r.logger.Debug("Saved search run", zap.String("search_id", rec.ID), zap.Int("bytes", len(data)))
	return nil
}

// Load returns the run with the given id, or domain.ErrNotFound.
func (r *Repo) Load(ctx context.Context, id string) (run.Run, error) {
	data, err := r.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.count("load", "miss")
			return run.Run{}, fmt.Errorf("search %s: %w", id, domain.ErrNotFound)
		}
		r.count("load", "error")
		return run.Run{}, fmt.Errorf("load run %s: %w", id, err)
	}

	var dto runDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		r.count("load", "error")
		r.logger.Warn("Corrupt search run", zap.String("search_id", id), zap.Error(err))
		return run.Run{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	r.count("load", "ok")
	return dto.toDomain(), nil
}

// Delete removes the run with the given id. Missing ids are not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		r.count("delete", "error")
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	r.count("delete", "ok")
	return nil
}

func (r *Repo) count(op, result string) {
	if r.ops != nil {
		r.ops.WithLabelValues(op, result).Inc()
	}
}
