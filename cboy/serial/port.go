package serial

import (
	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/bit"
)

// Sink receives every byte the emulated program hands to the serial port.
type Sink interface {
	Print(b byte)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(b byte)

func (f SinkFunc) Print(b byte) { f(b) }

// Port implements the SB/SC register pair. There is never a link partner:
// every byte written out is handed to the sink and the received byte is
// always 0xFF.
type Port struct {
	irqHandler     func()
	sink           Sink
	sb, sc         byte
	transferActive bool
	countdown      int

	// settings
	immediate bool
	defaultRX byte // shifted into SB when a transfer completes
}

type PortOption func(*Port)

// WithFixedTiming sets the port to complete transfers after a fixed countdown
// (~4096 CPU cycles per byte on DMG) instead of immediately.
func WithFixedTiming() PortOption { return func(p *Port) { p.immediate = false } }

// WithSink sets the sink for outgoing bytes. A nil sink discards them.
func WithSink(s Sink) PortOption { return func(p *Port) { p.sink = s } }

// NewPort creates a new serial port.
// The passed function is called when a transfer is completed, should be wired
// to request the Serial interrupt.
func NewPort(irq func(), opts ...PortOption) *Port {
	p := &Port{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

func (p *Port) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value | 0x7E
		if p.sink != nil {
			p.sink.Print(p.sb)
		}
		p.maybeStartTransfer()
	}
}

func (p *Port) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc
	default:
		return 0xFF
	}
}

func (p *Port) Tick(cycles int) {
	if p.immediate || !p.transferActive {
		return
	}
	p.countdown -= cycles
	if p.countdown <= 0 {
		p.completeTransfer()
		p.countdown = 0
	}
}

func (p *Port) Reset() {
	p.sb = 0x00
	p.sc = 0x7E
	p.transferActive = false
	p.countdown = 0
}

// Restore sets SB and SC verbatim without emitting anything, used when
// loading a save state.
func (p *Port) Restore(sb, sc byte) {
	p.sb = sb
	p.sc = sc
	p.transferActive = false
	p.countdown = 0
}

func (p *Port) maybeStartTransfer() {
	if p.transferActive || !bit.IsSet(7, p.sc) {
		return
	}

	if p.immediate {
		p.completeTransfer()
		return
	}

	// fixed timing: DMG ~4096 CPU cycles per byte
	p.transferActive = true
	p.countdown = 4096
}

func (p *Port) completeTransfer() {
	p.sb = p.defaultRX
	p.sc = bit.Reset(7, p.sc)
	p.transferActive = false
	if p.irqHandler != nil {
		p.irqHandler()
	}
}
