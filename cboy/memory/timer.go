package memory

import (
	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/bit"
)

const divPeriod = 256

// tacPeriods maps TAC input clock select (bits 1-0) to the number of cycles
// between TIMA increments.
//
//	00 -> 1024 (4096 Hz)
//	01 -> 16   (262144 Hz)
//	10 -> 64   (65536 Hz)
//	11 -> 256  (16384 Hz)
var tacPeriods = [4]int{1024, 16, 64, 256}

// Timer encapsulates the Game Boy timer/DIV/TIMA/TMA/TAC behavior. It keeps
// two cycle accumulators, one per counter, that are drained by Tick.
type Timer struct {
	divCycles  int
	timaCycles int

	div  byte
	tima byte
	tma  byte
	tac  byte

	// IRQ requester callback
	TimerInterruptHandler func()
}

// Tick advances the timer by the given number of cycles.
func (t *Timer) Tick(cycles int) {
	t.divCycles += cycles
	for t.divCycles >= divPeriod {
		t.divCycles -= divPeriod
		t.div++
	}

	if !bit.IsSet(2, t.tac) {
		return
	}

	period := tacPeriods[t.tac&0x03]
	t.timaCycles += cycles
	for t.timaCycles >= period {
		t.timaCycles -= period
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		if t.TimerInterruptHandler != nil {
			t.TimerInterruptHandler()
		}
		return
	}
	t.tima++
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// DIV writes reset the counter
		t.div = 0
		t.divCycles = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		if value&0x07 != t.tac&0x07 {
			t.timaCycles = 0
		}
		t.tac = value & 0x07
	}
}

// restore sets the registers verbatim, bypassing the DIV reset. Used when
// loading save states.
func (t *Timer) restore(div, tima, tma, tac byte) {
	t.div = div
	t.tima = tima
	t.tma = tma
	t.tac = tac & 0x07
	t.divCycles = 0
	t.timaCycles = 0
}
