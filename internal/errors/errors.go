// Package errors provides the RPC core's protocol-level error taxonomy.
// These codes describe failures in the transport and framing machinery
// itself, never application-level failures — those travel inside the
// payload by convention and are outside this package's concern.
package errors

import "fmt"

// Code identifies the kind of protocol-level failure.
type Code int

const (
	// OK means the call completed successfully.
	OK Code = iota

	// Timeout means a pending call's deadline elapsed before a response
	// arrived.
	Timeout

	// ParseError means an envelope could not be decoded from an
	// otherwise-complete frame.
	ParseError

	// TransportError means Send failed or the transport reported an
	// unrecoverable condition.
	TransportError

	// HandlerNotFound is reserved for higher layers that want to report a
	// missing server-side handler on the wire. The core itself never
	// produces this code — it drops unhandled requests silently.
	HandlerNotFound

	// Unknown is a reserved fallback.
	Unknown
)

// String returns the taxonomy name for the code.
func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case Timeout:
		return "Timeout"
	case ParseError:
		return "ParseError"
	case TransportError:
		return "TransportError"
	case HandlerNotFound:
		return "HandlerNotFound"
	case Unknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Message returns a human-readable description, mirroring the
// original rpc_error_to_string table.
func (c Code) Message() string {
	switch c {
	case OK:
		return "OK"
	case Timeout:
		return "RPC timeout"
	case ParseError:
		return "Parse error"
	case TransportError:
		return "Transport error"
	case HandlerNotFound:
		return "Handler not found"
	default:
		return "Unknown error"
	}
}

// RPCError carries a protocol-level code plus optional context. It is
// distinct from application errors, which travel inside the payload.
type RPCError struct {
	Code    Code
	Context string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e == nil {
		return Code(OK).Message()
	}
	if e.Context == "" {
		return e.Code.Message()
	}
	return fmt.Sprintf("%s: %s", e.Code.Message(), e.Context)
}

// Ok reports whether the error represents success.
func (e *RPCError) Ok() bool {
	return e == nil || e.Code == OK
}

// New builds an RPCError with the given code and context.
func New(code Code, context string) *RPCError {
	return &RPCError{Code: code, Context: context}
}

// NewTimeout builds a Timeout error.
func NewTimeout() *RPCError {
	return &RPCError{Code: Timeout}
}

// NewTransportError builds a TransportError with the given reason.
func NewTransportError(reason string) *RPCError {
	return &RPCError{Code: TransportError, Context: reason}
}

// IsTimeout reports whether err is an RPCError with code Timeout.
func IsTimeout(err error) bool {
	rpcErr, ok := err.(*RPCError)
	return ok && rpcErr.Code == Timeout
}

// IsTransportError reports whether err is an RPCError with code
// TransportError.
func IsTransportError(err error) bool {
	rpcErr, ok := err.(*RPCError)
	return ok && rpcErr.Code == TransportError
}
