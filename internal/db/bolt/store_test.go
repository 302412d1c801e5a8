package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/seqsearch/internal/db"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	s, err := NewStore(Config{Path: filepath.Join(t.TempDir(), "nested", "results.db")})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_SetGetDel(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.SetWithTTL(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "value" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after Del, got %v", err)
	}
	if err := s.Del(ctx, "never-set"); err != nil {
		t.Errorf("Del of missing key: %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	s, now := newTestStore(t)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "short", []byte("a"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if err := s.SetWithTTL(ctx, "forever", []byte("b"), 0); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	if _, err := s.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "short"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected expired key to be missing, got %v", err)
	}

	n, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if _, err := s.Get(ctx, "forever"); err != nil {
		t.Errorf("unexpiring key lost: %v", err)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := NewStore(Config{Path: path})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	s.Close()

	s2, err := NewStore(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if got, err := s2.Get(context.Background(), "k"); err != nil || string(got) != "v" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestNewStore_RequiresPath(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}
