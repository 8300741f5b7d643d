package video

import "github.com/valerio/go-cboy/cboy/bit"

// TileRow represents one row of a tile pattern (8 pixels).
//
// Each row uses 2 bytes in a bit-plane format: the low byte provides bit 0
// of each pixel's color index, the high byte bit 1. Bit 7 is the leftmost
// pixel:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// A complete 8x8 tile occupies 16 bytes in VRAM.
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel extracts a pixel color (0-3) from the tile row.
// pixelX should be 0-7, where 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	// bit 7 is leftmost pixel, bit 0 is rightmost
	return t.pixelAt(uint8(7 - pixelX))
}

// GetPixelFlipped extracts a pixel color with horizontal flip.
func (t TileRow) GetPixelFlipped(pixelX int) uint8 {
	return t.pixelAt(uint8(pixelX))
}

func (t TileRow) pixelAt(bitIndex uint8) uint8 {
	return bit.Value(bitIndex, t.High)<<1 | bit.Value(bitIndex, t.Low)
}

// VRAMReader gives access to video RAM banks independently of VBK.
type VRAMReader interface {
	VRAM(bank uint8, address uint16) byte
}

// FetchTileRow reads row (0-7, or 0-15 for tall sprites) of the tile whose
// data starts at tileAddr.
func FetchTileRow(vram VRAMReader, bank uint8, tileAddr uint16, row int) TileRow {
	rowAddr := tileAddr + uint16(row*2)
	return TileRow{
		Low:  vram.VRAM(bank, rowAddr),
		High: vram.VRAM(bank, rowAddr+1),
	}
}

// bgTileAddress resolves a tile index from a BG/window map to the address of
// its data: unsigned from 0x8000, or signed around 0x9000.
func bgTileAddress(index uint8, unsignedData bool) uint16 {
	if unsignedData {
		return 0x8000 + uint16(index)*16
	}
	return uint16(int32(0x9000) + int32(int8(index))*16)
}
