package video

import (
	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/bit"
)

const (
	spriteCount      = 40
	maxLineSprites   = 10
	spriteYOffset    = 16
	spriteXOffset    = 8
	spriteAttrLength = 4
)

// Sprite represents a single sprite/object in OAM memory.
// The Game Boy has 40 sprites stored in OAM (Object Attribute Memory) from 0xFE00-0xFE9F.
type Sprite struct {
	Y         int   // screen Y of the top row (raw - 16), may be negative
	X         int   // screen X of the left column (raw - 8), may be negative
	TileIndex uint8 // Tile/pattern number (0-255)
	Flags     uint8 // Attribute flags byte
	OAMIndex  int   // OAM index (0-39)
	Height    int   // Sprite height (8 or 16 pixels, from LCDC bit 2)

	// parsed attribute flags for convenience
	PaletteOBP1 bool  // DMG: false = OBP0, true = OBP1
	FlipX       bool  // horizontally flip the sprite
	FlipY       bool  // vertically flip the sprite
	BehindBG    bool  // true = sprite is behind background colors 1-3
	VRAMBank    uint8 // CGB: tile data bank
	Palette     uint8 // CGB: object palette 0-7
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
	s.VRAMBank = bit.Value(3, s.Flags)
	s.Palette = s.Flags & 0x07
}

// rowAddress returns the tile data address of the sprite line drawn at
// screen line ly.
func (s *Sprite) rowAddress(ly int) (uint16, int) {
	row := ly - s.Y
	if s.FlipY {
		row = s.Height - 1 - row
	}
	tile := s.TileIndex
	if s.Height == 16 {
		// tall sprites ignore bit 0, the row offset walks into the next tile
		tile &= 0xFE
	}
	return addr.TileData0 + uint16(tile)*16, row
}

// OAMBus is the interface OAM needs for memory access
type OAMBus interface {
	Read(address uint16) byte
}

// OAM scans Object Attribute Memory for the sprites of a scanline.
type OAM struct {
	bus          OAMBus
	spriteBuffer [maxLineSprites]Sprite
}

func NewOAM(bus OAMBus) *OAM {
	return &OAM{
		bus: bus,
	}
}

// SpritesForLine returns the sprites that overlap scanline, in OAM order,
// stopping at the hardware limit of 10. The returned slice is reused by the
// next call.
func (o *OAM) SpritesForLine(scanline, height int) []Sprite {
	sprites := o.spriteBuffer[:0]

	for i := range spriteCount {
		baseAddr := addr.OAMStart + uint16(i*spriteAttrLength)

		spriteY := int(o.bus.Read(baseAddr)) - spriteYOffset
		if scanline < spriteY || scanline >= spriteY+height {
			continue
		}

		sprite := Sprite{
			Y:         spriteY,
			X:         int(o.bus.Read(baseAddr+1)) - spriteXOffset,
			TileIndex: o.bus.Read(baseAddr + 2),
			Flags:     o.bus.Read(baseAddr + 3),
			OAMIndex:  i,
			Height:    height,
		}
		sprite.parseFlags()
		sprites = append(sprites, sprite)

		// hardware limit: maximum 10 sprites per scanline
		if len(sprites) == maxLineSprites {
			break
		}
	}

	return sprites
}

// Sprite reads the sprite at index (0-39), for debug tooling.
func (o *OAM) Sprite(index, height int) (Sprite, bool) {
	if index < 0 || index >= spriteCount {
		return Sprite{}, false
	}
	baseAddr := addr.OAMStart + uint16(index*spriteAttrLength)
	sprite := Sprite{
		Y:         int(o.bus.Read(baseAddr)) - spriteYOffset,
		X:         int(o.bus.Read(baseAddr+1)) - spriteXOffset,
		TileIndex: o.bus.Read(baseAddr + 2),
		Flags:     o.bus.Read(baseAddr + 3),
		OAMIndex:  index,
		Height:    height,
	}
	sprite.parseFlags()
	return sprite, true
}
