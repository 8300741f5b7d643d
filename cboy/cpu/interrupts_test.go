package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-cboy/cboy/addr"
)

func TestInterruptController_service(t *testing.T) {
	cpu, mmu := newTestCPU()
	ic := &InterruptController{}

	cpu.pc = 0x1234
	cpu.interruptsEnabled = true
	mmu.Write(addr.IE, 0x04)
	mmu.Write(addr.IF, 0x04)

	assert.True(t, ic.PollAndService(cpu))

	assert.False(t, cpu.InterruptsEnabled())
	assert.Equal(t, uint16(0x0050), cpu.PC())
	assert.Equal(t, byte(0x12), mmu.Read(0xDFFD), "PC high at SP-1")
	assert.Equal(t, byte(0x34), mmu.Read(0xDFFC), "PC low at SP-2")
	assert.Equal(t, uint16(0xDFFC), cpu.sp)
	assert.Equal(t, byte(0xE0), mmu.Read(addr.IF))
	assert.Equal(t, uint64(1), ic.Serviced()[addr.TimerInterrupt])
}

func TestInterruptController_priority(t *testing.T) {
	vectors := []struct {
		flags  uint8
		vector uint16
	}{
		{0x1F, 0x40},
		{0x1E, 0x48},
		{0x1C, 0x50},
		{0x18, 0x58},
		{0x10, 0x60},
	}

	for _, v := range vectors {
		cpu, mmu := newTestCPU()
		ic := &InterruptController{}
		cpu.interruptsEnabled = true
		mmu.Write(addr.IE, 0x1F)
		mmu.Write(addr.IF, v.flags)

		assert.True(t, ic.PollAndService(cpu))
		assert.Equal(t, v.vector, cpu.PC())
		// only the serviced source is cleared
		lowest := v.flags & -v.flags
		assert.Equal(t, 0xE0|v.flags&^lowest, mmu.Read(addr.IF))
	}
}

func TestInterruptController_disabledSourceIgnored(t *testing.T) {
	cpu, mmu := newTestCPU()
	ic := &InterruptController{}
	cpu.interruptsEnabled = true
	mmu.Write(addr.IE, 0x01)
	mmu.Write(addr.IF, 0x02)

	assert.False(t, ic.PollAndService(cpu))
	assert.Equal(t, uint16(programStart), cpu.PC())
}

func TestInterruptController_wakesWithoutIME(t *testing.T) {
	cpu, mmu := newTestCPU()
	ic := &InterruptController{}
	cpu.halted = true
	cpu.interruptsEnabled = false
	mmu.Write(addr.IE, 0x01)
	mmu.Write(addr.IF, 0x01)

	assert.False(t, ic.PollAndService(cpu))
	assert.False(t, cpu.Halted())
	assert.Equal(t, uint16(programStart), cpu.PC())
	assert.Equal(t, byte(0xE1), mmu.Read(addr.IF), "flag stays pending")
}

func TestInterruptController_eiThenService(t *testing.T) {
	// EI ; NOP ; the interrupt is taken after the NOP
	cpu, mmu := newTestCPU(0xFB, 0x00, 0x00)
	ic := &InterruptController{}
	mmu.Write(addr.IE, 0x01)
	mmu.Write(addr.IF, 0x01)

	assert.False(t, ic.PollAndService(cpu))
	cpu.Step()
	assert.False(t, ic.PollAndService(cpu))
	cpu.Step()
	assert.True(t, ic.PollAndService(cpu))
	assert.Equal(t, uint16(0x40), cpu.PC())
}

func TestInterruptController_latchesJoypad(t *testing.T) {
	cpu, mmu := newTestCPU()
	ic := &InterruptController{}
	cpu.interruptsEnabled = true
	mmu.Write(addr.IE, 0x10)
	mmu.Write(addr.IF, 0x00)

	assert.False(t, ic.PollAndService(cpu))
	mmu.Joypad().Press(0)
	assert.True(t, ic.PollAndService(cpu))
	assert.Equal(t, uint16(0x60), cpu.PC())
}
