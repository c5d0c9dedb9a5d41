package rpc

import (
	"github.com/jethome-iot/litepb-go/pkg/config"
	"github.com/jethome-iot/litepb-go/pkg/envelope"
	"github.com/jethome-iot/litepb-go/pkg/transport"
)

// NewChannelFromConfig builds a Channel bound to t, taking its address,
// timeout, and buffer-size parameters from cfg. opts are applied after
// cfg's settings and can override them.
func NewChannelFromConfig(t transport.Transport, cfg config.ChannelConfig, opts ...Option) *Channel {
	base := []Option{
		WithInitialBufferSize(int(cfg.InitialBufferSize.Uint64())),
		WithMaxBufferSize(int(cfg.MaxBufferSize.Uint64())),
		WithMaxPendingCalls(cfg.MaxPendingCalls),
	}
	return NewChannel(t, envelope.Address(cfg.LocalAddress), cfg.DefaultTimeout, append(base, opts...)...)
}
