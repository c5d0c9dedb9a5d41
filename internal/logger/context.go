package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging fields for a single inbound or
// outbound RPC message, mirroring the per-request fields a handler
// dispatch knows about.
type LogContext struct {
	TraceID     string
	SpanID      string
	PeerAddress uint64
	ServiceID   uint16
	MethodID    uint32
	MessageID   uint16
	StartTime   time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if absent.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a message from peer.
func NewLogContext(peer uint64) *LogContext {
	return &LogContext{PeerAddress: peer, StartTime: time.Now()}
}

func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

func (lc *LogContext) WithRoute(service uint16, method uint32, messageID uint16) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ServiceID = service
		clone.MethodID = method
		clone.MessageID = messageID
	}
	return clone
}

func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
