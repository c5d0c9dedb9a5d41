// Package rpc implements the single-threaded, event-driven RPC channel:
// the component that ties the wire codec, envelope codec, frame codec,
// and message-id generator together into request/response and event
// dispatch over a pluggable transport.
package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jethome-iot/litepb-go/internal/errors"
	"github.com/jethome-iot/litepb-go/internal/logger"
	"github.com/jethome-iot/litepb-go/internal/telemetry"
	"github.com/jethome-iot/litepb-go/pkg/bufpool"
	"github.com/jethome-iot/litepb-go/pkg/envelope"
	"github.com/jethome-iot/litepb-go/pkg/framing"
	"github.com/jethome-iot/litepb-go/pkg/metrics"
	"github.com/jethome-iot/litepb-go/pkg/msgid"
	"github.com/jethome-iot/litepb-go/pkg/transport"
)

const (
	defaultInitialBufferSize = 256
	defaultMaxBufferSize     = 64 * 1024
)

// Handler processes one inbound request or event. payload is the
// envelope's opaque body; messageID is zero for an event, non-zero for a
// request awaiting a reply via Channel.Reply; source is the sender's
// address.
type Handler func(payload []byte, messageID uint16, source envelope.Address)

// CallResult is the outcome handed to a Call's continuation: either the
// response Payload (nil when the response body is empty) and a nil Err,
// or a nil Payload and a non-nil Err (Timeout or TransportError). It mirrors the Result<T>/RpcError pairing
// the reference implementation returns from a completed call, expressed
// as a plain Go value rather than an exception.
type CallResult struct {
	Payload []byte
	Err     *errors.RPCError
}

// Ok reports whether the call completed successfully.
func (r CallResult) Ok() bool { return r.Err.Ok() }

// ResponseFunc receives the outcome of an outbound Call, invoked exactly
// once.
type ResponseFunc func(result CallResult)

type handlerKey struct {
	service uint16
	method  uint32
}

type pendingKey struct {
	destination envelope.Address
	service     uint16
	id          uint16
}

type pendingCall struct {
	destination envelope.Address
	deadline    time.Time
	armedAt     time.Time
	callback    ResponseFunc
}

// Channel is the RPC core: it pumps bytes through a transport, decodes
// frames and envelopes, routes them to registered handlers or pending
// calls, and sweeps expired calls on every Process call. A Channel is
// single-threaded and cooperative — Process must be called repeatedly
// from the owning goroutine; it never spawns goroutines or blocks
// waiting for I/O.
type Channel struct {
	id uuid.UUID

	transport     transport.Transport
	framingKind   framing.Kind
	localAddress  envelope.Address
	defaultTimeout time.Duration

	clock   Clock
	metrics metrics.ChannelMetrics

	idGen msgid.Generator

	handlers map[handlerKey]Handler
	pending  map[pendingKey]*pendingCall

	rxBuf             []byte
	rxPos             int
	initialBufferSize int
	maxBufferSize     int
	maxPendingCalls   int
}

// NewChannel constructs a Channel bound to transport, identified on the
// bus as localAddress, with defaultTimeout applied to calls that don't
// specify their own.
func NewChannel(t transport.Transport, localAddress envelope.Address, defaultTimeout time.Duration, opts ...Option) *Channel {
	c := &Channel{
		id:                uuid.New(),
		transport:         t,
		framingKind:       mapTransportKind(t.Kind()),
		localAddress:      localAddress,
		defaultTimeout:    defaultTimeout,
		clock:             systemClock{},
		handlers:          make(map[handlerKey]Handler),
		pending:           make(map[pendingKey]*pendingCall),
		initialBufferSize: defaultInitialBufferSize,
		maxBufferSize:     defaultMaxBufferSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.rxBuf = make([]byte, c.initialBufferSize)
	return c
}

// mapTransportKind translates the transport package's capability enum
// into the framing package's, which a Channel keeps distinct so each
// package can evolve its own vocabulary independently.
func mapTransportKind(k transport.Kind) framing.Kind {
	if k == transport.Stream {
		return framing.Stream
	}
	return framing.Packet
}

// ID returns the Channel's unique instance identifier, useful for
// correlating log lines from multiple channels in one process.
func (c *Channel) ID() uuid.UUID { return c.id }

// PendingCalls reports how many calls are currently awaiting a response.
func (c *Channel) PendingCalls() int { return len(c.pending) }

// RegisterHandler installs h to handle requests and events addressed to
// (service, method). A later call with the same key replaces h.
func (c *Channel) RegisterHandler(service uint16, method uint32, h Handler) {
	c.handlers[handlerKey{service, method}] = h
}

// Process performs one iteration of the channel's cooperative loop: it
// first sweeps pending calls whose deadline has elapsed, invoking their
// callback with a Timeout error, then drains whatever the transport
// currently has available, routing each decoded envelope in turn.
func (c *Channel) Process(ctx context.Context) {
	c.sweepDeadlines(ctx)
	c.ingest(ctx)
}

// sweepDeadlines erases every pending call whose deadline has passed and
// invokes its callback with a Timeout error. Iteration order over the
// map is unspecified — timeouts are independent events with no relative
// ordering guarantee between them.
func (c *Channel) sweepDeadlines(ctx context.Context) {
	if len(c.pending) == 0 {
		return
	}

	now := c.clock.Now()
	for key, pc := range c.pending {
		if now.Before(pc.deadline) {
			continue
		}
		delete(c.pending, key)
		metrics.RecordPendingCalls(c.metrics, len(c.pending))
		metrics.ObserveCallLatency(c.metrics, "timeout", now.Sub(pc.armedAt))
		logger.WarnCtx(ctx, "rpc call timed out",
			logger.ServiceID(key.service), logger.MessageID(key.id), logger.PeerAddress(uint64(key.destination)))
		pc.callback(CallResult{Err: errors.NewTimeout()})
	}
}

// ingest drains complete frames from the transport, decoding at most one
// frame per outer-loop pass before rechecking Available. A transport
// that reports Available after a single Recv call returned
// multiple concatenated frames therefore still makes forward progress
// one frame at a time, rather than eagerly draining everything already
// buffered.
func (c *Channel) ingest(ctx context.Context) {
	for c.transport.Available() {
		if c.rxPos >= len(c.rxBuf) {
			if !c.growBuffer() {
				logger.ErrorCtx(ctx, "receive buffer exceeded ceiling, resetting")
				metrics.RecordDecodeError(c.metrics, "overflow")
				c.rxPos = 0
				return
			}
		}

		n, err := c.transport.Recv(c.rxBuf[c.rxPos:])
		if err != nil {
			logger.ErrorCtx(ctx, "transport recv failed", "error", err)
			metrics.RecordDecodeError(c.metrics, "transport")
			return
		}
		if n == 0 {
			return
		}
		c.rxPos += n
		metrics.RecordBytes(c.metrics, "recv", n)

		payload, consumed, outcome := framing.Decode(c.rxBuf[:c.rxPos], c.framingKind)
		switch outcome {
		case framing.Complete:
			// The decoded payload aliases rxBuf, which route()'s caller is
			// about to compact; copy it out through the pool so a handler
			// or pending-call callback sees stable bytes for the duration
			// of the dispatch.
			body := bufpool.Get(len(payload))
			copy(body, payload)
			c.route(ctx, body)
			bufpool.Put(body)

			remaining := c.rxPos - consumed
			copy(c.rxBuf, c.rxBuf[consumed:c.rxPos])
			c.rxPos = remaining
		case framing.Incomplete:
			return
		default: // framing.Malformed
			// Break without touching rxBuf/rxPos: the reference behavior
			// leaves the buffer for higher layers to reset (a transport
			// reset, a reconnect) rather than having the channel itself
			// guess at a resync point.
			logger.ErrorCtx(ctx, "malformed frame, leaving buffer for higher layers")
			metrics.RecordDecodeError(c.metrics, "framing")
			return
		}
	}
}

// growBuffer doubles the receive buffer's capacity, saturating at
// maxBufferSize. It reports false when the buffer is already at the
// ceiling and cannot grow further.
func (c *Channel) growBuffer() bool {
	if len(c.rxBuf) >= c.maxBufferSize {
		return false
	}

	newSize := len(c.rxBuf) * 2
	if newSize <= len(c.rxBuf) || newSize > c.maxBufferSize {
		newSize = c.maxBufferSize
	}

	grown := make([]byte, newSize)
	copy(grown, c.rxBuf[:c.rxPos])
	c.rxBuf = grown
	return true
}

// route decodes one envelope from body and dispatches it: to a pending
// call on a response match, to a registered handler on a request or
// event, or silently drops it if neither matches or the destination
// doesn't belong to this peer.
func (c *Channel) route(ctx context.Context, body []byte) {
	env, err := envelope.Decode(body)
	if err != nil {
		logger.ErrorCtx(ctx, "envelope decode failed", "error", err)
		metrics.RecordDecodeError(c.metrics, "envelope")
		return
	}

	if !c.accepts(env.Destination) {
		metrics.RecordDispatch(c.metrics, "dropped")
		return
	}

	ctx, span := telemetry.StartDispatchSpan(ctx, uint64(env.Source), env.ServiceID, env.MethodID, env.MessageID)
	defer span.End()

	if env.MessageID == 0 {
		c.dispatchEvent(ctx, env)
		return
	}
	c.dispatchCorrelated(ctx, env)
}

// accepts reports whether dst is an address this Channel should process
// envelopes for: its own address, the wildcard, or the broadcast
// address. Any other destination belongs to a different peer on a
// shared bus and is silently dropped.
func (c *Channel) accepts(dst envelope.Address) bool {
	return dst == c.localAddress || dst == envelope.Wildcard || dst == envelope.Broadcast
}

func (c *Channel) dispatchEvent(ctx context.Context, env envelope.Envelope) {
	h, ok := c.handlers[handlerKey{env.ServiceID, env.MethodID}]
	if !ok {
		metrics.RecordDispatch(c.metrics, "dropped")
		return
	}
	metrics.RecordDispatch(c.metrics, "event")
	h(env.Payload, 0, env.Source)
}

// dispatchCorrelated handles a non-zero message id: first it tries to
// match a pending call keyed by the envelope's exact source, then falls
// back to a pending call keyed by the wildcard (for calls made to any
// peer). If neither matches, the envelope is treated as a request and
// routed to a registered handler; if no handler is registered it is
// dropped silently, matching the reference implementation's behavior
// for unhandled requests.
func (c *Channel) dispatchCorrelated(ctx context.Context, env envelope.Envelope) {
	key := pendingKey{destination: env.Source, service: env.ServiceID, id: env.MessageID}
	if pc, ok := c.pending[key]; ok && pc.destination == env.Source {
		c.resolvePending(ctx, key, pc, env.Payload)
		return
	}

	wkey := pendingKey{destination: envelope.Wildcard, service: env.ServiceID, id: env.MessageID}
	if pc, ok := c.pending[wkey]; ok && pc.destination == envelope.Wildcard {
		c.resolvePending(ctx, wkey, pc, env.Payload)
		return
	}

	h, ok := c.handlers[handlerKey{env.ServiceID, env.MethodID}]
	if !ok {
		metrics.RecordDispatch(c.metrics, "dropped")
		return
	}
	metrics.RecordDispatch(c.metrics, "request")
	h(env.Payload, env.MessageID, env.Source)
}

func (c *Channel) resolvePending(ctx context.Context, key pendingKey, pc *pendingCall, payload []byte) {
	delete(c.pending, key)
	metrics.RecordDispatch(c.metrics, "response")
	metrics.RecordPendingCalls(c.metrics, len(c.pending))
	metrics.ObserveCallLatency(c.metrics, "ok", c.clock.Now().Sub(pc.armedAt))
	pc.callback(CallResult{Payload: payload})
}

// Call sends a request to destination and arms a pending entry awaiting
// its response. timeout of zero uses the Channel's default. cb is
// invoked exactly once, either with the matching response payload or
// with a Timeout/TransportError.
func (c *Channel) Call(ctx context.Context, destination envelope.Address, service uint16, method uint32, payload []byte, timeout time.Duration, cb ResponseFunc) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	if c.maxPendingCalls > 0 && len(c.pending) >= c.maxPendingCalls {
		cb(CallResult{Err: errors.NewTransportError("max pending calls reached")})
		return
	}

	id := c.idGen.GenerateFor(c.localAddress, destination)
	env := envelope.Envelope{
		Source:      c.localAddress,
		Destination: destination,
		MessageID:   id,
		ServiceID:   service,
		MethodID:    method,
		Payload:     payload,
	}

	ctx, span := telemetry.StartCallSpan(ctx, uint64(destination), service, method, id)
	defer span.End()

	if err := c.send(env); err != nil {
		logger.ErrorCtx(ctx, "call send failed", "error", err)
		cb(CallResult{Err: errors.NewTransportError(err.Error())})
		return
	}

	now := c.clock.Now()
	c.pending[pendingKey{destination: destination, service: service, id: id}] = &pendingCall{
		destination: destination,
		deadline:    now.Add(timeout),
		armedAt:     now,
		callback:    cb,
	}
	metrics.RecordPendingCalls(c.metrics, len(c.pending))
}

// Notify sends a fire-and-forget event (message id zero) to destination.
// No pending call is armed and no response is ever expected.
func (c *Channel) Notify(ctx context.Context, destination envelope.Address, service uint16, method uint32, payload []byte) error {
	env := envelope.Envelope{
		Source:      c.localAddress,
		Destination: destination,
		MessageID:   0,
		ServiceID:   service,
		MethodID:    method,
		Payload:     payload,
	}
	return c.send(env)
}

// Reply sends a response to a previously received request, reusing its
// messageID so the original caller's pending-call match succeeds.
func (c *Channel) Reply(destination envelope.Address, service uint16, method uint32, messageID uint16, payload []byte) error {
	env := envelope.Envelope{
		Source:      c.localAddress,
		Destination: destination,
		MessageID:   messageID,
		ServiceID:   service,
		MethodID:    method,
		Payload:     payload,
	}
	return c.send(env)
}

func (c *Channel) send(env envelope.Envelope) error {
	encoded := env.Encode()
	framed := framing.Encode(encoded, c.framingKind)
	if err := c.transport.Send(framed); err != nil {
		return err
	}
	metrics.RecordBytes(c.metrics, "send", len(framed))
	return nil
}
