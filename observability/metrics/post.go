package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PostMetrics tracks the engine's executed operations.
type PostMetrics struct {
	ops      *prometheus.CounterVec
	failures *prometheus.CounterVec
	pageSize prometheus.Histogram
}

var (
	postOnce     sync.Once
	postRegistry *PostMetrics
)

// Post returns the process-wide post metrics registry.
func Post() *PostMetrics {
	postOnce.Do(func() {
		postRegistry = &PostMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "post_ops_total",
				Help: "Count of executed post operations by type.",
			}, []string{"op"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "post_op_failures_total",
				Help: "Count of failed post operations by type.",
			}, []string{"op"}),
			pageSize: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "post_query_page_size",
				Help:    "Distribution of page sizes returned by node queries.",
				Buckets: prometheus.LinearBuckets(0, 10, 6),
			}),
		}
		prometheus.MustRegister(
			postRegistry.ops,
			postRegistry.failures,
			postRegistry.pageSize,
		)
	})
	return postRegistry
}

// ObserveOp records one executed operation and whether it failed.
func (m *PostMetrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op).Inc()
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}

// ObservePageSize records the node count of one query page.
func (m *PostMetrics) ObservePageSize(n int) {
	if m == nil {
		return
	}
	m.pageSize.Observe(float64(n))
}
