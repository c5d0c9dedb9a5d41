package logger

import "log/slog"

// Structured field keys used across the RPC core's log lines.
const (
	KeyTraceID     = "trace_id"
	KeySpanID      = "span_id"
	KeyPeerAddress = "peer"
	KeyServiceID   = "service_id"
	KeyMethodID    = "method_id"
	KeyMessageID   = "message_id"
	KeyOutcome     = "outcome"
	KeyErrorCode   = "error_code"
	KeyBytes       = "bytes"
)

func PeerAddress(addr uint64) slog.Attr {
	return slog.Uint64(KeyPeerAddress, addr)
}

func ServiceID(id uint16) slog.Attr {
	return slog.Uint64(KeyServiceID, uint64(id))
}

func MethodID(id uint32) slog.Attr {
	return slog.Uint64(KeyMethodID, uint64(id))
}

func MessageID(id uint16) slog.Attr {
	return slog.Uint64(KeyMessageID, uint64(id))
}

func Outcome(outcome string) slog.Attr {
	return slog.String(KeyOutcome, outcome)
}

func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}
