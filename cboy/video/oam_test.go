package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/memory"
)

func TestOAMSprite(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	// sprite 0: Y=50(+16), X=80(+8), tile=0x42, flags=0xE0
	mmu.Write(addr.OAMStart, 50+16)
	mmu.Write(addr.OAMStart+1, 80+8)
	mmu.Write(addr.OAMStart+2, 0x42)
	mmu.Write(addr.OAMStart+3, 0xE0) // flip X, flip Y, behind BG

	// sprite 1 is partially off screen on both axes, with CGB attributes
	mmu.Write(addr.OAMStart+4, 4)
	mmu.Write(addr.OAMStart+5, 2)
	mmu.Write(addr.OAMStart+6, 0x10)
	mmu.Write(addr.OAMStart+7, 0x1D) // OBP1, bank 1, palette 5

	s0, ok := oam.Sprite(0, 8)
	require.True(t, ok)
	assert.Equal(t, 50, s0.Y)
	assert.Equal(t, 80, s0.X)
	assert.Equal(t, uint8(0x42), s0.TileIndex)
	assert.True(t, s0.FlipX)
	assert.True(t, s0.FlipY)
	assert.True(t, s0.BehindBG)
	assert.False(t, s0.PaletteOBP1)

	s1, ok := oam.Sprite(1, 8)
	require.True(t, ok)
	assert.Equal(t, -12, s1.Y)
	assert.Equal(t, -6, s1.X)
	assert.True(t, s1.PaletteOBP1)
	assert.Equal(t, uint8(1), s1.VRAMBank)
	assert.Equal(t, uint8(5), s1.Palette)

	_, ok = oam.Sprite(40, 8)
	assert.False(t, ok)
}

func TestSpritesForLine(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	mmu.Write(addr.OAMStart, 10+16)
	mmu.Write(addr.OAMStart+4, 20+16)
	mmu.Write(addr.OAMStart+8, 20+16)
	mmu.Write(addr.OAMStart+12, 50+16)

	t.Run("8x8 sprites", func(t *testing.T) {
		sprites := oam.SpritesForLine(10, 8)
		require.Len(t, sprites, 1)
		assert.Equal(t, 0, sprites[0].OAMIndex)

		sprites = oam.SpritesForLine(27, 8)
		require.Len(t, sprites, 2)
		assert.Equal(t, 1, sprites[0].OAMIndex)
		assert.Equal(t, 2, sprites[1].OAMIndex)

		assert.Empty(t, oam.SpritesForLine(28, 8))
	})

	t.Run("8x16 sprites", func(t *testing.T) {
		sprites := oam.SpritesForLine(25, 16)
		require.Len(t, sprites, 3)
		assert.Equal(t, 16, sprites[0].Height)
	})
}

func TestSpritesForLineLimit(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)

	for i := range 15 {
		mmu.Write(addr.OAMStart+uint16(i*4), 30+16)
		mmu.Write(addr.OAMStart+uint16(i*4)+1, uint8(i*8+8))
	}

	sprites := oam.SpritesForLine(30, 8)
	require.Len(t, sprites, 10)
	for i, s := range sprites {
		assert.Equal(t, i, s.OAMIndex, "OAM order")
	}
}

func TestSpriteRowAddress(t *testing.T) {
	tests := []struct {
		name     string
		sprite   Sprite
		ly       int
		wantAddr uint16
		wantRow  int
	}{
		{"first row", Sprite{Y: 10, TileIndex: 2, Height: 8}, 10, 0x8020, 0},
		{"flip Y", Sprite{Y: 10, TileIndex: 2, Height: 8, FlipY: true}, 10, 0x8020, 7},
		{"tall top", Sprite{Y: 0, TileIndex: 5, Height: 16}, 3, 0x8040, 3},
		{"tall bottom", Sprite{Y: 0, TileIndex: 5, Height: 16}, 12, 0x8040, 12},
		{"tall flipped", Sprite{Y: 0, TileIndex: 4, Height: 16, FlipY: true}, 0, 0x8040, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, row := tt.sprite.rowAddress(tt.ly)
			assert.Equal(t, tt.wantAddr, address)
			assert.Equal(t, tt.wantRow, row)
		})
	}
}

func TestBGTileAddress(t *testing.T) {
	assert.Equal(t, uint16(0x8000), bgTileAddress(0, true))
	assert.Equal(t, uint16(0x8FF0), bgTileAddress(0xFF, true))
	assert.Equal(t, uint16(0x9000), bgTileAddress(0, false))
	assert.Equal(t, uint16(0x97F0), bgTileAddress(0x7F, false))
	assert.Equal(t, uint16(0x8800), bgTileAddress(0x80, false))
}
