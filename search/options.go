package search

import (
	"time"

	"github.com/arborist/neurotrace/costfn"
	"github.com/arborist/neurotrace/metrics"
	"github.com/arborist/neurotrace/tracelog"
)

// pollEvery is the iteration cadence for cancellation/timeout checks and
// progress-callback dispatch, per §4.4 and §5.
const pollEvery = 10000

// Options configures one Run call. Build it with DefaultOptions (unbounded
// timeout, no progress callback, discard logger, no-op metrics, Dijkstra via
// ZeroHeuristic) plus the With* options. Run calls Cost, Heuristic,
// Progress and Metrics without nil checks, so a zero Options is not usable.
type Options struct {
	Cost      costfn.Cost
	Heuristic costfn.Heuristic

	// Timeout is the wall-clock budget for the search; zero means
	// unbounded (§6).
	Timeout time.Duration

	// ProgressInterval is the minimum wall-clock gap between
	// Progress.PointsInSearch calls.
	ProgressInterval time.Duration
	Progress         Progress

	// Cancel, when non-nil, is polled every pollEvery iterations; a closed
	// channel cancels the search at the next poll point (§5).
	Cancel <-chan struct{}

	Logger *tracelog.Logger

	// Metrics receives per-search node-expansion counts and the exit
	// reason; defaults to a no-op so callers that don't care about
	// Prometheus don't have to supply one.
	Metrics metrics.Sink
}

// Option configures an Options value.
type Option func(*Options)

// DefaultOptions returns Dijkstra-mode options (zero heuristic) with the
// given Cost and no timeout, progress, or cancellation.
func DefaultOptions(cost costfn.Cost) Options {
	return Options{
		Cost:      cost,
		Heuristic: costfn.ZeroHeuristic{},
		Progress:  NoopProgress{},
		Logger:    tracelog.Discard(),
		Metrics:   metrics.Noop{},
	}
}

func WithHeuristic(h costfn.Heuristic) Option {
	return func(o *Options) { o.Heuristic = h }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func WithProgress(interval time.Duration, p Progress) Option {
	return func(o *Options) {
		o.ProgressInterval = interval
		o.Progress = p
	}
}

func WithCancel(c <-chan struct{}) Option {
	return func(o *Options) { o.Cancel = c }
}

func WithLogger(l *tracelog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithMetrics(m metrics.Sink) Option {
	return func(o *Options) { o.Metrics = m }
}
