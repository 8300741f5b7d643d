package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-cboy/cboy/addr"
)

func TestTimerDivider(t *testing.T) {
	timer := Timer{}

	timer.Tick(255)
	assert.Equal(t, byte(0), timer.Read(addr.DIV))
	timer.Tick(1)
	assert.Equal(t, byte(1), timer.Read(addr.DIV))
	timer.Tick(256 * 10)
	assert.Equal(t, byte(11), timer.Read(addr.DIV))

	timer.Write(addr.DIV, 0x55)
	assert.Equal(t, byte(0), timer.Read(addr.DIV), "any write resets DIV")
	timer.Tick(255)
	assert.Equal(t, byte(0), timer.Read(addr.DIV), "write also resets the accumulator")
}

func TestTimerRates(t *testing.T) {
	tests := []struct {
		tac    byte
		period int
	}{
		{0x04, 1024},
		{0x05, 16},
		{0x06, 64},
		{0x07, 256},
	}

	for _, tt := range tests {
		timer := Timer{}
		timer.Write(addr.TAC, tt.tac)

		timer.Tick(tt.period - 1)
		assert.Equal(t, byte(0), timer.Read(addr.TIMA), "TAC %02X", tt.tac)
		timer.Tick(1)
		assert.Equal(t, byte(1), timer.Read(addr.TIMA), "TAC %02X", tt.tac)
	}
}

func TestTimerDisabled(t *testing.T) {
	timer := Timer{}
	timer.Write(addr.TAC, 0x01)
	timer.Tick(10000)
	assert.Equal(t, byte(0), timer.Read(addr.TIMA))
}

func TestTimerOverflow(t *testing.T) {
	requested := 0
	timer := Timer{TimerInterruptHandler: func() { requested++ }}

	timer.Write(addr.TMA, 0xAB)
	timer.Write(addr.TIMA, 0xFF)
	timer.Write(addr.TAC, 0x05)

	timer.Tick(16)

	assert.Equal(t, 1, requested)
	assert.Equal(t, byte(0xAB), timer.Read(addr.TIMA))
}

func TestTimerOverflowThroughMMU(t *testing.T) {
	mmu := New()
	mmu.Write(addr.IF, 0x00)
	mmu.Write(addr.TMA, 0x10)
	mmu.Write(addr.TIMA, 0xFF)
	mmu.Write(addr.TAC, 0x05)

	mmu.Tick(16)

	assert.True(t, mmu.ReadBit(uint8(addr.TimerInterrupt), addr.IF))
	assert.Equal(t, byte(0x10), mmu.Read(addr.TIMA))
}
