package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsExactLength(t *testing.T) {
	buf := Get(32)
	assert.Len(t, buf, 32)
	Put(buf)
}

func TestGetPutRoundTripReusesCapacity(t *testing.T) {
	p := NewPool(&Config{SmallSize: 16, MediumSize: 64, LargeSize: 256})

	buf := p.Get(10)
	assert.Equal(t, 16, cap(buf))
	p.Put(buf)

	buf2 := p.Get(10)
	assert.Equal(t, 16, cap(buf2))
}

func TestOversizedRequestBypassesPool(t *testing.T) {
	p := NewPool(&Config{SmallSize: 16, MediumSize: 64, LargeSize: 256})
	buf := p.Get(1000)
	assert.Len(t, buf, 1000)
	p.Put(buf) // should be silently dropped, not pooled
}

func TestPutNilIsNoop(t *testing.T) {
	Put(nil)
}
