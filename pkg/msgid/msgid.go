// Package msgid generates the 16-bit correlation identifiers an RPC
// channel stamps on outbound requests.
package msgid

import "github.com/jethome-iot/litepb-go/pkg/envelope"

// Generator produces non-zero, wrap-around message ids. A Generator is not
// safe for concurrent use: each Channel owns exactly one, matching the
// single-threaded cooperative model the channel runs under.
type Generator struct {
	counter uint16
}

// GenerateFor returns the next id. src and dst are accepted for forward
// compatibility with future id-generation schemes that mix peer bits into
// the counter, but do not influence the output today.
func (g *Generator) GenerateFor(src, dst envelope.Address) uint16 {
	g.counter++
	if g.counter == 0 {
		g.counter++
	}
	return g.counter
}
