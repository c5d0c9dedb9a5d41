package envelope

import (
	"testing"

	"github.com/jethome-iot/litepb-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	e := Envelope{
		Source:      0x01,
		Destination: 0x02,
		MessageID:   1,
		ServiceID:   7,
		MethodID:    3,
		Payload:     []byte{0xAA},
	}

	decoded, err := Decode(e.Encode())
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
}

func TestEnvelopeDefaults(t *testing.T) {
	decoded, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Wildcard, decoded.Source)
	assert.Equal(t, Wildcard, decoded.Destination)
	assert.Equal(t, uint16(0), decoded.MessageID)
	assert.Equal(t, uint16(0), decoded.ServiceID)
	assert.Equal(t, uint32(0), decoded.MethodID)
	assert.Empty(t, decoded.Payload)
}

func TestEnvelopeFieldOrderInsignificant(t *testing.T) {
	// Hand-build a record with fields in reverse order; the decoder must
	// not care.
	type field struct {
		num int
		val uint64
	}
	order := []field{
		{6, 0}, // payload: skipped below, so the record has no payload field
		{5, 3},
		{4, 7},
		{3, 9},
		{2, 2},
		{1, 1},
	}
	var buf []byte
	for _, f := range order {
		if f.num == 6 {
			continue // payload handled separately to keep this simple
		}
		w := encodeVarintField(f.num, f.val)
		buf = append(buf, w...)
	}
	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, Address(1), decoded.Source)
	assert.Equal(t, Address(2), decoded.Destination)
	assert.Equal(t, uint16(9), decoded.MessageID)
	assert.Equal(t, uint16(7), decoded.ServiceID)
	assert.Equal(t, uint32(3), decoded.MethodID)
}

func TestEnvelopeUnknownFieldSkipped(t *testing.T) {
	e := Envelope{Source: 1, Destination: 2, MessageID: 5, ServiceID: 9, MethodID: 1, Payload: []byte("hi")}
	buf := e.Encode()
	// Append an unknown varint field (field number 99).
	buf = append(buf, encodeVarintField(99, 12345)...)

	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
}

func TestEnvelopeMalformedTruncated(t *testing.T) {
	e := Envelope{Source: 1, Destination: 2, MessageID: 5, ServiceID: 9, MethodID: 1, Payload: []byte("hello")}
	buf := e.Encode()
	_, err := Decode(buf[:len(buf)-1])
	assert.Error(t, err)
}

// encodeVarintField is a test helper building a single varint-wire-type
// field for order/skip tests without going through Envelope.Encode.
func encodeVarintField(fieldNumber int, value uint64) []byte {
	w := wire.NewWriter()
	w.WriteTag(uint32(fieldNumber), wire.Varint)
	w.WriteVarint(value)
	return w.Bytes()
}
