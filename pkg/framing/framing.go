// Package framing wraps an encoded envelope for transmission over a
// pluggable byte transport. Stream transports need a length prefix to
// recover message boundaries; packet transports already deliver one
// complete envelope per receive, so framing is pass-through.
package framing

import "github.com/jethome-iot/litepb-go/pkg/wire"

// Kind selects which framing discipline applies, inferred from the
// transport's declared capability at channel construction.
type Kind int

const (
	// Packet transports deliver one whole envelope per Recv call.
	Packet Kind = iota

	// Stream transports are ordered byte pipes; frames need a length
	// prefix to recover message boundaries.
	Stream
)

// Outcome reports what Decode observed.
type Outcome int

const (
	// Incomplete means the buffer doesn't yet hold a whole frame; retain
	// the bytes and wait for more.
	Incomplete Outcome = iota

	// Complete means a whole frame was decoded; Consumed bytes may be
	// dropped from the front of the buffer.
	Complete

	// Malformed means the buffer can never yield a valid frame starting
	// at this offset; more data will not help. rpc.Channel stops ingesting
	// and leaves the bytes buffered for a higher layer to discard.
	Malformed
)

// Encode wraps envelopeBytes for transmission. On a Stream transport this
// prepends a varint byte length; on a Packet transport the bytes pass
// through unchanged.
func Encode(envelopeBytes []byte, kind Kind) []byte {
	if kind == Packet {
		return envelopeBytes
	}
	out := wire.AppendVarint(make([]byte, 0, len(envelopeBytes)+wire.MaxVarintLen), uint64(len(envelopeBytes)))
	return append(out, envelopeBytes...)
}

// Decode attempts to pull one frame out of the front of buf.
//
// On a Packet transport the entire buffer is one frame (the transport
// itself preserved datagram boundaries). On a Stream transport, Decode
// reads the leading varint length L and requires L further bytes; a
// truncated length varint or a buffer shorter than L is Incomplete, never
// Malformed — only an invalid varint encoding is Malformed.
//
// Consumed is only meaningful when Outcome == Complete; it is the number
// of bytes the caller should drop from the front of its receive buffer.
// Payload aliases buf and must be copied by the caller if it must outlive
// the next mutation of buf.
func Decode(buf []byte, kind Kind) (payload []byte, consumed int, outcome Outcome) {
	if kind == Packet {
		if len(buf) == 0 {
			return nil, 0, Incomplete
		}
		return buf, len(buf), Complete
	}

	length, n, err := wire.PeekVarint(buf)
	switch err {
	case nil:
		// fall through
	case wire.ErrShortBuffer:
		return nil, 0, Incomplete
	default:
		return nil, 0, Malformed
	}

	total := n + int(length)
	if len(buf) < total {
		return nil, 0, Incomplete
	}
	return buf[n:total], total, Complete
}
