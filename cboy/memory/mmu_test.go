package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/serial"
)

func TestEchoRAMMirrorsWRAM(t *testing.T) {
	mmu := New()

	mmu.Write(0xC123, 0x42)
	assert.Equal(t, byte(0x42), mmu.Read(0xE123))

	mmu.Write(0xF000, 0x99)
	assert.Equal(t, byte(0x99), mmu.Read(0xD000))
}

func TestInterruptFlagUpperBits(t *testing.T) {
	mmu := New()
	mmu.Write(addr.IF, 0x00)
	assert.Equal(t, byte(0xE0), mmu.Read(addr.IF))

	mmu.RequestInterrupt(addr.SerialInterrupt)
	assert.Equal(t, byte(0xE8), mmu.Read(addr.IF))
}

func TestLowWritesDoNotTouchROM(t *testing.T) {
	rom := bankedROM(2)
	rom[0x0100] = 0x3C
	cart, err := NewCartridgeWithData(rom)
	require.NoError(t, err)
	mmu := NewWithCartridge(cart)

	mmu.Write(0x0100, 0x00)
	assert.Equal(t, byte(0x3C), mmu.Read(0x0100))
}

func TestBankSwitchThroughMMU(t *testing.T) {
	rom := bankedROM(8)
	rom[5*0x4000] = 0x5A
	cart, err := NewCartridgeWithData(rom)
	require.NoError(t, err)
	mmu := NewWithCartridge(cart)

	mmu.Write(0x2100, 0x05)
	assert.Equal(t, byte(0x5A), mmu.Read(0x4000))
}

func TestDMATransfer(t *testing.T) {
	mmu := New()
	for i := range uint16(160) {
		mmu.Write(0xC000+i, byte(i))
	}

	mmu.Write(addr.DMA, 0xC0)

	for i := range uint16(160) {
		assert.Equal(t, byte(i), mmu.Read(addr.OAMStart+i))
	}
}

func TestUnusedOAMArea(t *testing.T) {
	mmu := New()
	mmu.Write(0xFEA0, 0x12)
	assert.Equal(t, byte(0xFF), mmu.Read(0xFEA0))
}

func TestSerialWritesReachSink(t *testing.T) {
	sink := &serial.ResultSink{}
	mmu := New(WithSerialSink(sink))
	mmu.Write(addr.IF, 0)

	mmu.Write(addr.SB, 'P')
	mmu.Write(addr.SC, 0x81)

	assert.Equal(t, serial.Passed, sink.Result())
	assert.True(t, mmu.ReadBit(uint8(addr.SerialInterrupt), addr.IF))
}

func TestSTATWritePreservesPPUBits(t *testing.T) {
	mmu := New()
	mmu.SetMode(3)
	mmu.Write(addr.LYC, 7)
	assert.True(t, mmu.SetLY(7))

	mmu.Write(addr.STAT, 0xFF)
	stat := mmu.Read(addr.STAT)
	assert.Equal(t, byte(0x07), stat&0x07, "mode + coincidence are read only")
	assert.Equal(t, byte(0x78), stat&0x78)

	assert.False(t, mmu.SetLY(8))
	assert.Equal(t, byte(0), mmu.Read(addr.STAT)&0x04)

	mmu.Write(addr.LY, 99)
	assert.Equal(t, byte(8), mmu.Read(addr.LY), "LY is read only for programs")
}

func TestColorBanks(t *testing.T) {
	t.Run("VRAM bank 1", func(t *testing.T) {
		mmu := New(WithColor(true))
		mmu.Write(0x8000, 0x11)
		mmu.Write(addr.VBK, 1)
		mmu.Write(0x8000, 0x22)
		assert.Equal(t, byte(0x22), mmu.Read(0x8000))
		assert.Equal(t, byte(0xFF), mmu.Read(addr.VBK))

		mmu.Write(addr.VBK, 0)
		assert.Equal(t, byte(0x11), mmu.Read(0x8000))
		assert.Equal(t, byte(0x11), mmu.VRAM(0, 0x8000))
		assert.Equal(t, byte(0x22), mmu.VRAM(1, 0x8000))
	})

	t.Run("WRAM banks", func(t *testing.T) {
		mmu := New(WithColor(true))
		for bank := byte(1); bank <= 7; bank++ {
			mmu.Write(addr.SVBK, bank)
			mmu.Write(0xD010, bank*0x10)
		}
		for bank := byte(1); bank <= 7; bank++ {
			mmu.Write(addr.SVBK, bank)
			assert.Equal(t, bank*0x10, mmu.Read(0xD010), "bank %d", bank)
		}
		mmu.Write(addr.SVBK, 0)
		assert.Equal(t, byte(0x10), mmu.Read(0xD010), "bank 0 selects bank 1")
	})

	t.Run("DMG ignores bank registers", func(t *testing.T) {
		mmu := New()
		mmu.Write(0x8000, 0x11)
		mmu.Write(addr.VBK, 1)
		assert.Equal(t, byte(0x11), mmu.Read(0x8000))
	})
}

func TestPaletteAutoIncrement(t *testing.T) {
	mmu := New(WithColor(true))

	mmu.Write(addr.BCPS, 0x80|0x08)
	mmu.Write(addr.BCPD, 0x1F)
	mmu.Write(addr.BCPD, 0x00)
	assert.Equal(t, byte(0x80|0x0A), mmu.Read(addr.BCPS)&0xBF)
	assert.Equal(t, uint16(0x001F), mmu.BGColor(1, 0))

	mmu.Write(addr.OCPS, 0x3E)
	mmu.Write(addr.OCPD, 0x7C)
	mmu.Write(addr.OCPD, 0x7F)
	assert.Equal(t, byte(0x7F), mmu.Read(addr.OCPD), "no auto increment without bit 7")

	mmu.Write(addr.OCPS, 0xBF)
	mmu.Write(addr.OCPD, 0x01)
	assert.Equal(t, byte(0x80), mmu.Read(addr.OCPS)&0xBF, "index wraps")
}

func TestHDMA(t *testing.T) {
	mmu := New(WithColor(true))
	for i := range uint16(0x20) {
		mmu.Write(0xC000+i, byte(i+1))
	}
	mmu.Write(addr.HDMA1, 0xC0)
	mmu.Write(addr.HDMA2, 0x00)
	mmu.Write(addr.HDMA3, 0x01)
	mmu.Write(addr.HDMA4, 0x00)
	mmu.Write(addr.HDMA5, 0x01)

	for i := range uint16(0x20) {
		assert.Equal(t, byte(i+1), mmu.Read(0x8100+i))
	}
	assert.Equal(t, byte(0xFF), mmu.Read(addr.HDMA5))
}

func TestSwitchSpeed(t *testing.T) {
	mmu := New(WithColor(true))
	assert.False(t, mmu.SwitchSpeed(), "not armed")

	mmu.Write(addr.KEY1, 0x01)
	assert.True(t, mmu.SwitchSpeed())
	assert.Equal(t, byte(0xFE), mmu.Read(addr.KEY1))

	dmg := New()
	dmg.Write(addr.KEY1, 0x01)
	assert.False(t, dmg.SwitchSpeed())
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := New(WithColor(true))
	src.Write(0xC000, 0xAA)
	src.Write(addr.SVBK, 3)
	src.Write(0xD000, 0xBB)
	src.Write(addr.BCPS, 0x80)
	src.Write(addr.BCPD, 0x12)
	src.Write(addr.TMA, 0x44)
	src.Write(addr.TAC, 0x05)
	src.Write(0x2000, 1)
	src.Tick(1000)

	image := src.Snapshot()
	require.Len(t, image, StateSize)

	dst := New(WithColor(true))
	require.NoError(t, dst.Restore(image))

	assert.Equal(t, image, dst.Snapshot())
	assert.Equal(t, byte(0xBB), dst.Read(0xD000))
	assert.Equal(t, src.Read(addr.DIV), dst.Read(addr.DIV))
	assert.Equal(t, src.Read(addr.TIMA), dst.Read(addr.TIMA))
}

func TestRestoreRejectsBadSize(t *testing.T) {
	mmu := New()
	mmu.Write(0xC000, 0x01)

	err := mmu.Restore(make([]byte, 10))
	assert.ErrorIs(t, err, ErrStateSize)
	assert.Equal(t, byte(0x01), mmu.Read(0xC000))
}
