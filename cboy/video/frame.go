package video

import (
	"image"
	"image/color"
)

const (
	// FramebufferWidth is the width of the LCD in pixels.
	FramebufferWidth = 160
	// FramebufferHeight is the height of the LCD in pixels.
	FramebufferHeight = 144
)

// GBColor is a 0xAARRGGBB color used to present monochrome shades.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// shadeColors maps a DMG shade (0 lightest, 3 darkest) to its color.
var shadeColors = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// Frame is one complete LCD image.
//
// Pix is indexed [y][x]. When Color is false each value is a shade 0-3 after
// palette mapping (0 white, 3 black). When Color is true each value is a
// BGR555 color: bits 0-4 red, 5-9 green, 10-14 blue.
//
// A Frame handed out by the core is a copy, presenters own it.
type Frame struct {
	Color bool
	Pix   [FramebufferHeight][FramebufferWidth]uint16
}

// RGBA decodes the pixel at (x, y) to 8 bit per channel color.
func (f *Frame) RGBA(x, y int) color.RGBA {
	v := f.Pix[y][x]
	if !f.Color {
		c := shadeColors[v&0x03]
		return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
	}
	return color.RGBA{
		R: expand5(v & 0x1F),
		G: expand5((v >> 5) & 0x1F),
		B: expand5((v >> 10) & 0x1F),
		A: 0xFF,
	}
}

// Image converts the frame to an RGBA image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FramebufferWidth, FramebufferHeight))
	for y := range FramebufferHeight {
		for x := range FramebufferWidth {
			img.SetRGBA(x, y, f.RGBA(x, y))
		}
	}
	return img
}

// ARGB returns the frame as packed 0xAARRGGBB pixels, row major.
func (f *Frame) ARGB() []uint32 {
	out := make([]uint32, FramebufferWidth*FramebufferHeight)
	for y := range FramebufferHeight {
		for x := range FramebufferWidth {
			c := f.RGBA(x, y)
			out[y*FramebufferWidth+x] = uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	return out
}

func expand5(v uint16) uint8 {
	return uint8(v<<3 | v>>2)
}
