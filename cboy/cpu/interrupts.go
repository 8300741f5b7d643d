package cpu

import (
	"github.com/valerio/go-cboy/cboy/addr"
)

// joypadLatcher is implemented by buses that buffer key press edges until
// asked to turn them into the joypad interrupt flag.
type joypadLatcher interface {
	LatchJoypad()
}

// InterruptController checks IE/IF in priority order at instruction
// boundaries and dispatches the CPU to the vector of the first serviceable
// source. It keeps a count of what it dispatched for the frame stats.
type InterruptController struct {
	serviced [addr.InterruptCount]uint64
}

// PollAndService must be called before each CPU.Step. Any enabled and
// flagged interrupt wakes a halted CPU; if IME is set the highest priority
// one is also serviced: its flag is cleared, IME is disabled, PC is pushed
// and replaced by the vector. Servicing does not consume cycles here, the
// handler's own instructions do.
func (ic *InterruptController) PollAndService(c *CPU) bool {
	if l, ok := c.bus.(joypadLatcher); ok {
		l.LatchJoypad()
	}

	enabled := c.bus.Read(addr.IE)
	flagged := c.bus.Read(addr.IF)
	pending := enabled & flagged & 0x1F
	if pending == 0 {
		return false
	}

	for i := addr.Interrupt(0); i < addr.InterruptCount; i++ {
		if pending&i.Mask() == 0 {
			continue
		}

		c.halted = false
		if !c.interruptsEnabled {
			// stays pending until IME is set again
			return false
		}

		c.bus.Write(addr.IF, flagged&^i.Mask())
		c.interruptsEnabled = false
		c.eiDelay = 0
		c.pushStack(c.pc)
		c.pc = i.Vector()
		ic.serviced[i]++
		return true
	}

	return false
}

// Serviced returns how many times each source was dispatched, indexed by
// addr.Interrupt.
func (ic *InterruptController) Serviced() [addr.InterruptCount]uint64 {
	return ic.serviced
}
