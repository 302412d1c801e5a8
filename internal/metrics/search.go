package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "seqsearch"

// Search engine Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, from compilation to parsed report",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"algorithm", "outcome"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total searches by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"}, // outcome: ok, validation, argument, internal, cancelled
	)

	ProcessExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_exits_total",
			Help:      "Search tool exits by binary and exit status",
		},
		[]string{"binary", "status"},
	)

	HitsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Number of hits per successful search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"algorithm"},
	)

	ResultStoreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_store_total",
			Help:      "Result store operations by op and result",
		},
		[]string{"op", "result"}, // op: save, load, delete; result: ok, miss, error
	)

	RunCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_cache_total",
			Help:      "Search run cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error, skipped
	)
)

var registerOnce sync.Once

// Register registers all seqsearch metrics on the default registerer. Call once from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			SearchDuration,
			SearchesTotal,
			ProcessExitsTotal,
			HitsReturned,
			ResultStoreTotal,
			RunCacheTotal,
		)
	})
}
