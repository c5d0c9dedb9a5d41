package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for RPC call and dispatch spans.
const (
	AttrPeerAddress = "rpc.peer"
	AttrServiceID   = "rpc.service_id"
	AttrMethodID    = "rpc.method_id"
	AttrMessageID   = "rpc.message_id"
	AttrKind        = "rpc.message_kind" // request, response, event
	AttrOutcome     = "rpc.outcome"
	AttrErrorCode   = "rpc.error_code"
	AttrPayloadSize = "rpc.payload_size"
)

// Span names for the channel's operations.
const (
	SpanCall     = "rpc.call"
	SpanDispatch = "rpc.dispatch"
	SpanProcess  = "rpc.process"
	SpanTimeout  = "rpc.timeout"
)

func PeerAddress(addr uint64) attribute.KeyValue {
	return attribute.Int64(AttrPeerAddress, int64(addr))
}

func ServiceID(id uint16) attribute.KeyValue {
	return attribute.Int64(AttrServiceID, int64(id))
}

func MethodID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrMethodID, int64(id))
}

func MessageID(id uint16) attribute.KeyValue {
	return attribute.Int64(AttrMessageID, int64(id))
}

func Kind(kind string) attribute.KeyValue {
	return attribute.String(AttrKind, kind)
}

func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

func PayloadSize(n int) attribute.KeyValue {
	return attribute.Int(AttrPayloadSize, n)
}

// StartCallSpan starts a span for an outbound request awaiting a response.
func StartCallSpan(ctx context.Context, dest uint64, service uint16, method uint32, messageID uint16) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanCall, trace.WithAttributes(
		PeerAddress(dest), ServiceID(service), MethodID(method), MessageID(messageID),
	))
}

// StartDispatchSpan starts a span for routing one decoded envelope.
func StartDispatchSpan(ctx context.Context, src uint64, service uint16, method uint32, messageID uint16) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanDispatch, trace.WithAttributes(
		PeerAddress(src), ServiceID(service), MethodID(method), MessageID(messageID),
	))
}
