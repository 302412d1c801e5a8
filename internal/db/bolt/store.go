// Package bolt implements db.Store on a local bbolt file, for single-node deployments
// without Redis.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/seqsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

var resultsBucket = []byte("results")

// headerLen is the size of the expiry prefix stored before every value.
const headerLen = 8

// Config holds bbolt settings.
type Config struct {
	Path        string
	OpenTimeout time.Duration
}

// Store implements db.Store. Values carry their expiry; expired keys read as missing
// until Sweep removes them.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the database file.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", cfg.Path, err)
	}

	bdb, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt at %s: %w", cfg.Path, err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	})
	if err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: bdb, now: time.Now}, nil
}

// Ping checks that the bucket is readable.
func (s *Store) Ping(_ context.Context) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(resultsBucket) == nil {
			return errors.New("results bucket missing")
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady returns immediately for a local file store.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close closes the database file.
func (s *Store) Close() {
	_ = s.db.Close()
}

// Get retrieves a value by key. Expired values are reported as db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(resultsBucket).Get([]byte(key))
		if raw == nil {
			return db.ErrKeyNotFound
		}
		value, expired, err := s.decode(raw)
		if err != nil {
			return err
		}
		if expired {
			return db.ErrKeyNotFound
		}
		out = append([]byte(nil), value...)
		return nil
	})
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// SetWithTTL stores a value. A non-positive ttl stores without expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, headerLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(expiresAt)) //nolint:gosec // unix nanos are non-negative
	copy(buf[headerLen:], value)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(resultsBucket).Put([]byte(key), buf)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Missing keys are not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(resultsBucket).Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Sweep deletes expired entries and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, expired, err := s.decode(v); err == nil && expired {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpDel, Err: err}
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(int, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if onSweep != nil {
				onSweep(n, err)
			}
		}
	}
}

func (s *Store) decode(raw []byte) (value []byte, expired bool, err error) {
	if len(raw) < headerLen {
		return nil, false, fmt.Errorf("corrupt value: %d bytes", len(raw))
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw[:headerLen])) //nolint:gosec // written by SetWithTTL
	if expiresAt != 0 && s.now().UnixNano() >= expiresAt {
		return nil, true, nil
	}
	return raw[headerLen:], false, nil
}
