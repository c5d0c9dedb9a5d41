package rpc

import (
	"bytes"
	"errors"

	"github.com/jethome-iot/litepb-go/pkg/transport"
)

var (
	errSendFailed    = errors.New("send failed")
	errMismatch      = errors.New("echoed payload did not match")
	errLeakedPending = errors.New("pending call table not empty after exchange")
)

// pipeTransport is an in-memory test transport with independent inbound
// and outbound buffers: deliver() stages bytes as if received from a
// peer, and sent() inspects whatever a Channel wrote via Send. Keeping
// them separate lets a single test exercise both directions of one
// Channel without the Channel overhearing its own traffic.
type pipeTransport struct {
	kind transport.Kind
	rx   *bytes.Buffer
	tx   *bytes.Buffer

	// chunkSizes, when non-empty, forces Recv to hand back at most the
	// next listed number of bytes per call (simulating a stream peer
	// that delivers a frame split across several reads). Exhausted
	// entries fall back to unlimited.
	chunkSizes []int
	chunkAt    int
}

func newPipeTransport(kind transport.Kind) *pipeTransport {
	return &pipeTransport{kind: kind, rx: &bytes.Buffer{}, tx: &bytes.Buffer{}}
}

func (p *pipeTransport) Kind() transport.Kind { return p.kind }

func (p *pipeTransport) Available() bool { return p.rx.Len() > 0 }

func (p *pipeTransport) Recv(buf []byte) (int, error) {
	if p.rx.Len() == 0 {
		return 0, nil
	}

	max := len(buf)
	if p.chunkAt < len(p.chunkSizes) {
		if cs := p.chunkSizes[p.chunkAt]; cs < max {
			max = cs
		}
		p.chunkAt++
	}

	return p.rx.Read(buf[:max])
}

func (p *pipeTransport) Send(data []byte) error {
	p.tx.Write(data)
	return nil
}

// deliver stages data for a subsequent Recv, as if it arrived from a peer.
func (p *pipeTransport) deliver(data []byte) {
	p.rx.Write(data)
}

// sent returns and clears everything written via Send so far.
func (p *pipeTransport) sent() []byte {
	out := append([]byte(nil), p.tx.Bytes()...)
	p.tx.Reset()
	return out
}

// failingTransport always rejects Send, for exercising Call's immediate
// transport-error path.
type failingTransport struct {
	kind transport.Kind
}

func (f *failingTransport) Kind() transport.Kind       { return f.kind }
func (f *failingTransport) Available() bool            { return false }
func (f *failingTransport) Recv(buf []byte) (int, error) { return 0, nil }
func (f *failingTransport) Send(data []byte) error     { return errSendFailed }
