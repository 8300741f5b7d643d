package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerROM(title string, cgb byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[titleAddress:], title)
	rom[cgbFlagAddress] = cgb
	rom[romSizeAddress] = 0x00

	var sum uint8
	for _, b := range rom[titleAddress:headerChecksumAddress] {
		sum = sum - b - 1
	}
	rom[headerChecksumAddress] = sum
	return rom
}

func TestNewCartridgeWithData(t *testing.T) {
	cart, err := NewCartridgeWithData(headerROM("TETRIS", 0x00))
	require.NoError(t, err)

	assert.Equal(t, "TETRIS", cart.Title())
	assert.False(t, cart.SupportsColor())
	assert.True(t, cart.HeaderChecksumValid())
	assert.Equal(t, 2, cart.ROMBanks())
}

func TestCartridgeColorFlag(t *testing.T) {
	for _, flag := range []byte{0x80, 0xC0} {
		cart, err := NewCartridgeWithData(headerROM("POKEMON GOLD", flag))
		require.NoError(t, err)
		assert.True(t, cart.SupportsColor())
		assert.Equal(t, "POKEMON GOL", cart.Title(), "title truncated to 11 bytes")
	}
}

func TestCartridgeTooSmall(t *testing.T) {
	_, err := NewCartridgeWithData(make([]byte, 0x100))
	assert.ErrorIs(t, err, ErrInvalidROM)
}

func TestBadHeaderChecksum(t *testing.T) {
	rom := headerROM("X", 0)
	rom[headerChecksumAddress]++
	cart, err := NewCartridgeWithData(rom)
	require.NoError(t, err)
	assert.False(t, cart.HeaderChecksumValid())
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		raw  []byte
		want string
	}{
		{[]byte("ZELDA\x00\x00\x00"), "ZELDA"},
		{[]byte{0, 0, 0}, "(Untitled)"},
		{[]byte{'A', 0x01, 'B'}, "A?B"},
		{[]byte{'A', 0xFF}, "A?"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanTitle(tt.raw))
	}
}
