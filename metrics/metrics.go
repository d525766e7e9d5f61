// Package metrics exposes the Prometheus counters and histograms poked by
// the search and reconstruction engines, behind a narrow Sink interface so
// callers that don't want metrics (tests, one-off CLI runs) can pass a
// no-op.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the narrow surface the core packages depend on, kept separate
// from *Registry so a caller can supply a stub in tests.
type Sink interface {
	NodesExpanded(n int)
	TraceDuration(d time.Duration)
	SearchFinished(reason string)
}

// Registry is the default Sink, backed by a dedicated prometheus.Registry
// so embedding applications can mount it under their own HTTP path without
// colliding with the default global registry.
type Registry struct {
	registry        *prometheus.Registry
	nodesExpanded   prometheus.Counter
	traceDuration   prometheus.Histogram
	searchOutcomes  *prometheus.CounterVec
}

// NewRegistry builds a Registry with its own prometheus.Registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		registry: reg,
		nodesExpanded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "neurotrace_search_nodes_expanded_total",
			Help: "Total voxels popped from an open heap across all searches.",
		}),
		traceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "neurotrace_trace_duration_seconds",
			Help:    "Wall-clock duration of a full automatic reconstruction.",
			Buckets: prometheus.DefBuckets,
		}),
		searchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neurotrace_search_outcomes_total",
			Help: "Search completions by exit reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(r.nodesExpanded, r.traceDuration, r.searchOutcomes)

	return r
}

// Gatherer exposes the underlying prometheus.Registry for an HTTP handler.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

func (r *Registry) NodesExpanded(n int) { r.nodesExpanded.Add(float64(n)) }

func (r *Registry) TraceDuration(d time.Duration) { r.traceDuration.Observe(d.Seconds()) }

func (r *Registry) SearchFinished(reason string) { r.searchOutcomes.WithLabelValues(reason).Inc() }

// Noop discards every observation; the zero value is ready to use.
type Noop struct{}

func (Noop) NodesExpanded(int)             {}
func (Noop) TraceDuration(time.Duration)   {}
func (Noop) SearchFinished(string)         {}
