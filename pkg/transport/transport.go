// Package transport declares the contract an RPC channel consumes. It
// does not implement a concrete transport — UART, TCP, UDP, and CAN
// bindings are external collaborators that satisfy this interface.
package transport

// Kind distinguishes the two capability variants the channel frames
// differently.
type Kind int

const (
	// Packet transports deliver atomic datagrams: one Recv returns one
	// whole envelope.
	Packet Kind = iota

	// Stream transports are ordered, reliable byte pipes that require a
	// length prefix to recover message boundaries.
	Stream
)

// Transport is the non-blocking byte transport a Channel pumps bytes
// through. Available, Recv, and Send must never block for long: Recv
// returns 0 immediately when nothing is ready, and Send is expected to be
// non-blocking or short-blocking at the implementation's discretion.
type Transport interface {
	// Kind reports whether this transport needs stream framing.
	Kind() Kind

	// Available reports whether a Recv call would currently return data.
	Available() bool

	// Recv reads into buf, returning the number of bytes read. Zero
	// means nothing is available right now; it is not an error.
	Recv(buf []byte) (int, error)

	// Send writes data to the peer. A non-nil error means the write is
	// considered to have failed outright — the channel does not retry.
	Send(data []byte) error
}
