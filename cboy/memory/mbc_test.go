package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bankedROM returns a ROM where every byte holds its bank number.
func bankedROM(banks int) []uint8 {
	rom := make([]uint8, banks*0x4000)
	for i := range rom {
		rom[i] = uint8(i / 0x4000)
	}
	return rom
}

func TestBankController(t *testing.T) {
	t.Run("ROM Bank 0 (Fixed)", func(t *testing.T) {
		rom := make([]uint8, 0x8000)
		for i := range rom {
			rom[i] = uint8(i & 0xFF)
		}

		mbc := NewBankController(rom)

		for addr := uint16(0x0000); addr < 0x4000; addr++ {
			got := mbc.Read(addr)
			want := uint8(addr & 0xFF)
			if got != want {
				t.Fatalf("Read(0x%04X) = 0x%02X; want 0x%02X", addr, got, want)
			}
		}
	})

	t.Run("ROM Bank Switching", func(t *testing.T) {
		mbc := NewBankController(bankedROM(8))

		tests := []struct {
			name     string
			write    uint8
			wantByte uint8
		}{
			{"Switch to Bank 2", 2, 2},
			{"Switch to Bank 7", 7, 7},
			{"Bank 0 selects 1", 0, 1},
			{"Switch to Bank 5", 5, 5},
		}

		assert.Equal(t, uint8(1), mbc.Read(0x4000), "default bank is 1")
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mbc.Write(0x2000, tt.write)
				assert.Equal(t, tt.wantByte, mbc.Read(0x4000))
				assert.Equal(t, tt.wantByte, mbc.Read(0x7FFF))
				assert.Equal(t, uint8(0), mbc.Read(0x3FFF), "bank 0 stays fixed")
			})
		}
	})

	t.Run("bank select window scenario", func(t *testing.T) {
		rom := bankedROM(8)
		rom[5*0x4000] = 0xA5
		mbc := NewBankController(rom)

		mbc.Write(0x2100, 0x05)
		assert.Equal(t, uint8(0xA5), mbc.Read(0x4000))
	})

	t.Run("out of range bank reads open bus", func(t *testing.T) {
		mbc := NewBankController(bankedROM(2))
		mbc.Write(0x2000, 9)
		assert.Equal(t, uint8(0xFF), mbc.Read(0x4000))
	})

	t.Run("low writes are ignored", func(t *testing.T) {
		mbc := NewBankController(bankedROM(4))
		mbc.Write(0x0000, 3)
		mbc.Write(0x1FFF, 3)
		assert.Equal(t, uint8(1), mbc.ROMBank())
	})

	t.Run("ram bank and mode registers", func(t *testing.T) {
		mbc := NewBankController(bankedROM(4))
		mbc.Write(0x4000, 2)
		mbc.Write(0x6000, 1)
		mbc.Write(0x2000, 3)
		assert.Equal(t, [3]uint8{3, 2, 1}, mbc.registers())

		other := NewBankController(bankedROM(4))
		other.restore(mbc.registers())
		assert.Equal(t, uint8(3), other.Read(0x4000))
	})
}
