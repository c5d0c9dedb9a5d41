package framing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamRoundTripSingleFrame(t *testing.T) {
	envelope := []byte{1, 2, 3, 4, 5}
	framed := Encode(envelope, Stream)

	payload, consumed, outcome := Decode(framed, Stream)
	require.Equal(t, Complete, outcome)
	assert.Equal(t, len(framed), consumed)
	assert.Equal(t, envelope, payload)
}

func TestStreamConcatenatedFrames(t *testing.T) {
	e1 := []byte("hello")
	e2 := []byte("world!!")
	e3 := []byte{9}

	var buf []byte
	buf = append(buf, Encode(e1, Stream)...)
	buf = append(buf, Encode(e2, Stream)...)
	buf = append(buf, Encode(e3, Stream)...)

	var got [][]byte
	for len(buf) > 0 {
		payload, consumed, outcome := Decode(buf, Stream)
		require.Equal(t, Complete, outcome)
		got = append(got, append([]byte(nil), payload...))
		buf = buf[consumed:]
	}

	require.Len(t, got, 3)
	assert.Equal(t, e1, got[0])
	assert.Equal(t, e2, got[1])
	assert.Equal(t, e3, got[2])
}

func TestStreamTruncationIsIncompleteNeverMalformed(t *testing.T) {
	envelope := make([]byte, 20)
	for i := range envelope {
		envelope[i] = byte(i)
	}
	framed := Encode(envelope, Stream)

	for cut := 0; cut < len(framed); cut++ {
		_, _, outcome := Decode(framed[:cut], Stream)
		assert.Equal(t, Incomplete, outcome, "cut at %d should be incomplete", cut)
	}
}

func TestStreamPartialReadsAccumulate(t *testing.T) {
	envelope := make([]byte, 20)
	framed := Encode(envelope, Stream)

	buf := append([]byte(nil), framed[:3]...)
	_, _, outcome := Decode(buf, Stream)
	assert.Equal(t, Incomplete, outcome)

	buf = append(buf, framed[3:5]...)
	_, _, outcome = Decode(buf, Stream)
	assert.Equal(t, Incomplete, outcome)

	buf = append(buf, framed[5:]...)
	payload, consumed, outcome := Decode(buf, Stream)
	require.Equal(t, Complete, outcome)
	assert.Equal(t, len(framed), consumed)
	assert.Equal(t, envelope, payload)
}

func TestPacketModeConsumesWholeBuffer(t *testing.T) {
	envelope := []byte{1, 2, 3}
	framed := Encode(envelope, Packet)
	assert.Equal(t, envelope, framed)

	payload, consumed, outcome := Decode(framed, Packet)
	require.Equal(t, Complete, outcome)
	assert.Equal(t, len(framed), consumed)
	assert.Equal(t, envelope, payload)
}

func TestPacketModeEmptyBufferIsIncomplete(t *testing.T) {
	_, _, outcome := Decode(nil, Packet)
	assert.Equal(t, Incomplete, outcome)
}

func TestStreamMalformedVarint(t *testing.T) {
	buf := make([]byte, 10)
	for i := range buf {
		buf[i] = 0xFF
	}
	buf[9] = 0x02 // 10th byte must be <= 1
	_, _, outcome := Decode(buf, Stream)
	assert.Equal(t, Malformed, outcome)
}
