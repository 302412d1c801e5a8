package runcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/seqsearch/internal/blast/process"
)

const blastn = "/opt/blast/bin/blastn"

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_run_cache_total"}, []string{"result"})
}

func successRunner() *mockRunner {
	return &mockRunner{out: process.Outcome{Kind: process.Success, Lines: []string{"<PRE>", "<b>Query=</b> q1", "</PRE>"}}}
}

func TestRun_MissThenHit(t *testing.T) {
	inner := successRunner()
	store := newMemStore()
	counter := newCounter()
	c := New(inner, store, time.Hour, counter, nil)
	ctx := context.Background()

	first, err := c.Run(ctx, blastn, queryArgs(t, ">q1\nACGT\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same query content in a different temporary file.
	second, err := c.Run(ctx, blastn, queryArgs(t, ">q1\nACGT\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached outcome mismatch (-first +second):\n%s", diff)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues(resultHit)); v != 1 {
		t.Errorf("hits = %v", v)
	}
	for _, ttl := range store.ttls {
		if ttl != time.Hour {
			t.Errorf("ttl = %v", ttl)
		}
	}
}

func TestRun_DifferentInputsMiss(t *testing.T) {
	inner := successRunner()
	c := New(inner, newMemStore(), time.Hour, nil, nil)
	ctx := context.Background()

	_, _ = c.Run(ctx, blastn, queryArgs(t, ">q1\nACGT\n"))
	_, _ = c.Run(ctx, blastn, queryArgs(t, ">q1\nTTTT\n"))
	_, _ = c.Run(ctx, "/opt/blast/bin/tblastx", queryArgs(t, ">q1\nACGT\n"))
	args := queryArgs(t, ">q1\nACGT\n")
	_, _ = c.Run(ctx, blastn, append(args, "-evalue", "1e-5"))

	if inner.calls != 4 {
		t.Errorf("inner calls = %d, want 4", inner.calls)
	}
}

func TestRun_FailuresNotCached(t *testing.T) {
	tests := []struct {
		name  string
		inner *mockRunner
	}{
		{"argument failure", &mockRunner{out: process.Outcome{Kind: process.ArgumentFailure, Status: 1}}},
		{"internal failure", &mockRunner{out: process.Outcome{Kind: process.InternalFailure, Status: 2}}},
		{"run error", &mockRunner{err: context.Canceled}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			c := New(tc.inner, store, time.Hour, nil, nil)
			args := queryArgs(t, ">q1\nACGT\n")

			_, _ = c.Run(context.Background(), blastn, args)
			_, _ = c.Run(context.Background(), blastn, args)

			if tc.inner.calls != 2 {
				t.Errorf("inner calls = %d, want 2", tc.inner.calls)
			}
			if len(store.data) != 0 {
				t.Errorf("store holds %d entries", len(store.data))
			}
		})
	}
}

func TestRun_RunErrorPropagates(t *testing.T) {
	inner := &mockRunner{err: context.DeadlineExceeded}
	c := New(inner, newMemStore(), time.Hour, nil, nil)

	_, err := c.Run(context.Background(), blastn, queryArgs(t, "ACGT"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRun_StoreErrorsFallThrough(t *testing.T) {
	inner := successRunner()
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	counter := newCounter()
	c := New(inner, store, time.Hour, counter, nil)

	out, err := c.Run(context.Background(), blastn, queryArgs(t, "ACGT"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != process.Success || inner.calls != 1 {
		t.Errorf("outcome = %+v, calls = %d", out, inner.calls)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues(resultError)); v != 2 {
		t.Errorf("errors = %v, want 2", v)
	}
}

func TestRun_UnreadableEntryIgnored(t *testing.T) {
	inner := successRunner()
	store := newMemStore()
	c := New(inner, store, time.Hour, nil, nil)
	args := queryArgs(t, "ACGT")

	key, err := cacheKey(blastn, args)
	if err != nil {
		t.Fatal(err)
	}
	store.data[key] = []byte("{not json")

	if _, err := c.Run(context.Background(), blastn, args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestRun_MissingQueryFileSkipsCache(t *testing.T) {
	inner := successRunner()
	store := newMemStore()
	counter := newCounter()
	c := New(inner, store, time.Hour, counter, nil)

	if _, err := c.Run(context.Background(), blastn, []string{"-query", "/nonexistent/query.fa"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(store.data) != 0 {
		t.Errorf("calls = %d, entries = %d", inner.calls, len(store.data))
	}
	if v := testutil.ToFloat64(counter.WithLabelValues(resultSkipped)); v != 1 {
		t.Errorf("skipped = %v", v)
	}
}
