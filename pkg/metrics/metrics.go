// Package metrics declares the nil-safe metrics interface a Channel
// reports through. A Channel holds a ChannelMetrics and calls its
// methods unconditionally; when metrics are disabled the interface
// value is nil and every helper here becomes a no-op, so call sites
// never need to branch on whether metrics are enabled.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and installs reg as the
// registry new collectors are registered against. Passing nil creates a
// fresh registry.
func InitRegistry(reg *prometheus.Registry) *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	registry = reg
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// ChannelMetrics is the set of observations a Channel reports during
// Process. Implementations must tolerate concurrent calls from a single
// goroutine only — a Channel is not itself concurrent, but metrics may
// be shared/read from elsewhere (e.g. an HTTP exporter).
type ChannelMetrics interface {
	// ObserveCallLatency records the round-trip time of a completed
	// call, keyed by whether it succeeded or timed out.
	ObserveCallLatency(outcome string, d time.Duration)

	// RecordDispatch counts one routed envelope, keyed by its routing
	// outcome (request, response, event, dropped).
	RecordDispatch(outcome string)

	// RecordDecodeError counts one receive-path failure, keyed by the
	// stage at which it failed (framing, envelope, overflow, transport).
	RecordDecodeError(stage string)

	// RecordBytes records bytes moved through Send/Recv, keyed by
	// direction ("send" or "recv").
	RecordBytes(direction string, n int)

	// RecordPendingCalls records the current number of outstanding
	// calls awaiting a response.
	RecordPendingCalls(count int)
}

// ObserveCallLatency is a nil-safe helper for ChannelMetrics.ObserveCallLatency.
func ObserveCallLatency(m ChannelMetrics, outcome string, d time.Duration) {
	if m != nil {
		m.ObserveCallLatency(outcome, d)
	}
}

// RecordDispatch is a nil-safe helper for ChannelMetrics.RecordDispatch.
func RecordDispatch(m ChannelMetrics, outcome string) {
	if m != nil {
		m.RecordDispatch(outcome)
	}
}

// RecordDecodeError is a nil-safe helper for ChannelMetrics.RecordDecodeError.
func RecordDecodeError(m ChannelMetrics, stage string) {
	if m != nil {
		m.RecordDecodeError(stage)
	}
}

// RecordBytes is a nil-safe helper for ChannelMetrics.RecordBytes.
func RecordBytes(m ChannelMetrics, direction string, n int) {
	if m != nil {
		m.RecordBytes(direction, n)
	}
}

// RecordPendingCalls is a nil-safe helper for ChannelMetrics.RecordPendingCalls.
func RecordPendingCalls(m ChannelMetrics, count int) {
	if m != nil {
		m.RecordPendingCalls(count)
	}
}

// newPrometheusChannelMetrics is registered by pkg/metrics/prometheus to
// avoid an import cycle between the interface package and its
// Prometheus-backed implementation.
var newPrometheusChannelMetrics func() ChannelMetrics

// RegisterChannelMetricsConstructor is called by
// pkg/metrics/prometheus's package init to install the concrete
// constructor NewChannelMetrics delegates to.
func RegisterChannelMetricsConstructor(constructor func() ChannelMetrics) {
	newPrometheusChannelMetrics = constructor
}

// NewChannelMetrics returns a Prometheus-backed ChannelMetrics, or nil
// if metrics are disabled.
func NewChannelMetrics() ChannelMetrics {
	if !IsEnabled() || newPrometheusChannelMetrics == nil {
		return nil
	}
	return newPrometheusChannelMetrics()
}
