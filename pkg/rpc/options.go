package rpc

import "github.com/jethome-iot/litepb-go/pkg/metrics"

// Option configures optional Channel behavior at construction time.
type Option func(*Channel)

// WithMetrics attaches m as the Channel's metrics sink. A nil m is
// accepted and behaves as if the option were never passed.
func WithMetrics(m metrics.ChannelMetrics) Option {
	return func(c *Channel) {
		c.metrics = m
	}
}

// WithClock overrides the Channel's time source. Intended for tests that
// need deterministic deadline sweeps.
func WithClock(clock Clock) Option {
	return func(c *Channel) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithInitialBufferSize overrides the receive buffer's starting capacity.
func WithInitialBufferSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.initialBufferSize = n
		}
	}
}

// WithMaxBufferSize overrides the ceiling the receive buffer is allowed to
// grow to before an unresolvable frame is treated as desynchronized.
func WithMaxBufferSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.maxBufferSize = n
		}
	}
}

// WithMaxPendingCalls bounds the number of outstanding calls a Channel will
// track at once. Zero (the default) means unbounded.
func WithMaxPendingCalls(n int) Option {
	return func(c *Channel) {
		c.maxPendingCalls = n
	}
}
