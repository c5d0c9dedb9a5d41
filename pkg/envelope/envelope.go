// Package envelope serializes the RPC envelope — the six-field header and
// opaque payload every litepb message carries — as a tag-length-value
// record built on pkg/wire.
package envelope

import (
	"io"

	"github.com/jethome-iot/litepb-go/pkg/wire"
)

// Address identifies a peer on the bus. Two values are reserved.
type Address uint64

const (
	// Wildcard means "unspecified peer" in filters and pending-call keys.
	Wildcard Address = 0x0000000000000000

	// Broadcast means "any local destination accepts this envelope".
	Broadcast Address = 0xFFFFFFFFFFFFFFFF
)

// Field numbers are fixed by the schema; any peer speaking this protocol
// MUST agree on these values. Field order on the wire is not significant.
const (
	fieldSource      = 1
	fieldDestination = 2
	fieldMessageID   = 3
	fieldServiceID   = 4
	fieldMethodID    = 5
	fieldPayload     = 6
)

// Envelope is the RPC header plus opaque payload. MessageID == 0 marks an
// event (fire-and-forget); any other value correlates a request with its
// response.
type Envelope struct {
	Source      Address
	Destination Address
	MessageID   uint16
	ServiceID   uint16
	MethodID    uint32
	Payload     []byte
}

// Encode serializes e. Every field is always emitted, even when it equals
// its default: proving bit-level equivalence with a peer's encoder for the
// omit-on-default optimization is not attempted here, so all six fields
// round-trip unconditionally.
func (e Envelope) Encode() []byte {
	w := wire.NewWriter()

	w.WriteTag(fieldSource, wire.Varint)
	w.WriteVarint(uint64(e.Source))

	w.WriteTag(fieldDestination, wire.Varint)
	w.WriteVarint(uint64(e.Destination))

	w.WriteTag(fieldMessageID, wire.Varint)
	w.WriteVarint(uint64(e.MessageID))

	w.WriteTag(fieldServiceID, wire.Varint)
	w.WriteVarint(uint64(e.ServiceID))

	w.WriteTag(fieldMethodID, wire.Varint)
	w.WriteVarint(uint64(e.MethodID))

	w.WriteTag(fieldPayload, wire.LengthDelimited)
	w.WriteBytes(e.Payload)

	return w.Bytes()
}

// Decode parses buf into an Envelope. Missing fields take their defaults
// (addresses default to Wildcard, ids default to zero, payload to empty);
// unknown field numbers are skipped per the wire type carried in their tag.
// Any malformed tag, truncated field, or group wire type yields a non-nil
// error — the caller discards the whole frame.
func Decode(buf []byte) (Envelope, error) {
	e := Envelope{Source: Wildcard, Destination: Wildcard}
	r := wire.NewReader(buf)

	for {
		fieldNumber, wt, err := r.ReadTag()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Envelope{}, err
		}

		switch fieldNumber {
		case fieldSource:
			v, err := readVarintField(r, wt)
			if err != nil {
				return Envelope{}, err
			}
			if v != nil {
				e.Source = Address(*v)
			}
		case fieldDestination:
			v, err := readVarintField(r, wt)
			if err != nil {
				return Envelope{}, err
			}
			if v != nil {
				e.Destination = Address(*v)
			}
		case fieldMessageID:
			v, err := readVarintField(r, wt)
			if err != nil {
				return Envelope{}, err
			}
			if v != nil {
				e.MessageID = uint16(*v)
			}
		case fieldServiceID:
			v, err := readVarintField(r, wt)
			if err != nil {
				return Envelope{}, err
			}
			if v != nil {
				e.ServiceID = uint16(*v)
			}
		case fieldMethodID:
			v, err := readVarintField(r, wt)
			if err != nil {
				return Envelope{}, err
			}
			if v != nil {
				e.MethodID = uint32(*v)
			}
		case fieldPayload:
			if wt != wire.LengthDelimited {
				if err := r.SkipField(wt); err != nil {
					return Envelope{}, err
				}
				continue
			}
			b, err := r.ReadBytes()
			if err != nil {
				return Envelope{}, err
			}
			if len(b) > 0 {
				e.Payload = append([]byte(nil), b...)
			}
		default:
			if err := r.SkipField(wt); err != nil {
				return Envelope{}, err
			}
		}
	}

	return e, nil
}

// readVarintField reads a varint-encoded scalar field, skipping it instead
// if the wire doesn't actually carry a varint for this field number (the
// value returned is nil in that case, leaving the caller's default intact).
func readVarintField(r *wire.Reader, wt wire.WireType) (*uint64, error) {
	if wt != wire.Varint {
		if err := r.SkipField(wt); err != nil {
			return nil, err
		}
		return nil, nil
	}
	v, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
