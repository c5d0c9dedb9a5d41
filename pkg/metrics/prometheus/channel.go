// Package prometheus provides the Prometheus-backed implementation of
// pkg/metrics.ChannelMetrics.
package prometheus

import (
	"time"

	"github.com/jethome-iot/litepb-go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterChannelMetricsConstructor(NewChannelMetrics)
}

type channelMetrics struct {
	callLatency   *prometheus.HistogramVec
	dispatches    *prometheus.CounterVec
	decodeErrors  *prometheus.CounterVec
	bytesTotal    *prometheus.CounterVec
	pendingCalls  prometheus.Gauge
}

// NewChannelMetrics creates a Prometheus-backed ChannelMetrics. Returns
// nil when metrics are not enabled, matching the nil-safe contract
// pkg/metrics.ChannelMetrics helpers rely on.
func NewChannelMetrics() metrics.ChannelMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &channelMetrics{
		callLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "litepb_call_latency_milliseconds",
				Help: "Round-trip latency of completed RPC calls in milliseconds",
				Buckets: []float64{
					1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000,
				},
			},
			[]string{"outcome"}, // "ok", "timeout"
		),
		dispatches: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "litepb_dispatches_total",
				Help: "Total number of routed envelopes by outcome",
			},
			[]string{"outcome"}, // "request", "response", "event", "dropped"
		),
		decodeErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "litepb_decode_errors_total",
				Help: "Total number of frames that failed to decode, by stage",
			},
			[]string{"stage"}, // "framing", "envelope", "overflow", "transport"
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "litepb_bytes_total",
				Help: "Total bytes moved through the transport, by direction",
			},
			[]string{"direction"}, // "send", "recv"
		),
		pendingCalls: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "litepb_pending_calls",
				Help: "Current number of outstanding calls awaiting a response",
			},
		),
	}
}

func (m *channelMetrics) ObserveCallLatency(outcome string, d time.Duration) {
	m.callLatency.WithLabelValues(outcome).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *channelMetrics) RecordDispatch(outcome string) {
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *channelMetrics) RecordDecodeError(stage string) {
	m.decodeErrors.WithLabelValues(stage).Inc()
}

func (m *channelMetrics) RecordBytes(direction string, n int) {
	m.bytesTotal.WithLabelValues(direction).Add(float64(n))
}

func (m *channelMetrics) RecordPendingCalls(count int) {
	m.pendingCalls.Set(float64(count))
}
