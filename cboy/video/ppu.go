package video

import (
	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/bit"
)

// Mode is the PPU state reported in the low two bits of STAT.
type Mode uint8

const (
	HBlankMode Mode = iota
	VBlankMode
	OAMScanMode
	TransferMode
)

// Per mode cycle budgets of a scanline.
const (
	OAMScanCycles  = 80
	TransferCycles = 172
	HBlankCycles   = 204
	LineCycles     = OAMScanCycles + TransferCycles + HBlankCycles

	VisibleLines = FramebufferHeight
	VBlankLines  = 10
	TotalLines   = VisibleLines + VBlankLines
	FrameCycles  = TotalLines * LineCycles
)

// LCDC (LCD Control) Register bit values
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On), on CGB: BG/window master priority
const (
	lcdDisplayEnable       = 7
	windowTileMapSelect    = 6
	windowDisplayEnable    = 5
	bgWindowTileDataSelect = 4
	bgTileMapDisplaySelect = 3
	spriteSize             = 2
	spriteDisplayEnable    = 1
	bgDisplay              = 0
)

// STAT interrupt source bits.
const (
	statHBlankIRQ = 3
	statVBlankIRQ = 4
	statOAMIRQ    = 5
	statLYCIRQ    = 6
)

// Bus is everything the PPU needs from the memory unit.
type Bus interface {
	VRAMReader
	Read(address uint16) byte
	BGColor(palette, index uint8) uint16
	OBJColor(palette, index uint8) uint16
	SetLY(line uint8) bool
	SetMode(mode uint8)
	RequestInterrupt(interrupt addr.Interrupt)
	ColorMode() bool
}

// LineParams are the scroll and window registers latched when a line enters
// pixel transfer. Writes made later in the line only affect following lines.
type LineParams struct {
	SCX, SCY uint8
	WX, WY   uint8
}

// spritePixel is the winning sprite pixel of a column.
type spritePixel struct {
	color    uint8
	sprite   *Sprite
	behindBG bool
}

// PPU composes scanlines into a Frame. It is driven mode by mode by the frame
// driver, which owns cycle accounting: BeginLine, EnterTransfer, EnterHBlank
// for each visible line, then EnterVBlank and VBlankLine.
type PPU struct {
	bus Bus
	oam *OAM

	frame  Frame
	line   int
	mode   Mode
	params LineParams

	// windowLine is the internal window row counter, it only advances on
	// lines where the window was actually drawn
	windowLine int

	bgIndex    [FramebufferWidth]uint8
	bgPriority [FramebufferWidth]bool
	sprites    [FramebufferWidth]spritePixel
	priority   SpritePriorityBuffer
}

// New creates a PPU drawing from bus.
func New(bus Bus) *PPU {
	return &PPU{
		bus: bus,
		oam: NewOAM(bus),
	}
}

// Enabled reports LCDC bit 7.
func (p *PPU) Enabled() bool {
	return bit.IsSet(lcdDisplayEnable, p.bus.Read(addr.LCDC))
}

// Mode returns the current mode.
func (p *PPU) Mode() Mode { return p.mode }

// Params returns the registers latched for the current line.
func (p *PPU) Params() LineParams { return p.params }

// Frame returns a copy of the frame assembled so far.
func (p *PPU) Frame() Frame { return p.frame }

// BeginFrame resets per frame state.
func (p *PPU) BeginFrame() {
	p.windowLine = 0
	p.frame.Color = p.bus.ColorMode()
}

// BeginLine sets LY and enters OAM scan for a visible line.
func (p *PPU) BeginLine(line int) {
	p.line = line
	p.setLine(line)
	p.setMode(OAMScanMode)
}

// EnterTransfer enters pixel transfer and latches the line parameters.
func (p *PPU) EnterTransfer() {
	p.params = LineParams{
		SCX: p.bus.Read(addr.SCX),
		SCY: p.bus.Read(addr.SCY),
		WX:  p.bus.Read(addr.WX),
		WY:  p.bus.Read(addr.WY),
	}
	p.setMode(TransferMode)
}

// EnterHBlank renders the current line with the latched parameters and
// enters H-blank.
func (p *PPU) EnterHBlank() {
	p.renderLine()
	p.setMode(HBlankMode)
}

// EnterVBlank raises the V-blank interrupt, sets LY to the first blank line
// and returns a copy of the frame assembled so far.
func (p *PPU) EnterVBlank() Frame {
	p.line = VisibleLines
	p.setLine(VisibleLines)
	p.setMode(VBlankMode)
	p.bus.RequestInterrupt(addr.VBlankInterrupt)
	return p.frame
}

// VBlankLine advances LY during V-blank. Line is 144-153.
func (p *PPU) VBlankLine(line int) {
	p.line = line
	p.setLine(line)
}

// Idle is the LCD-off state: mode 0 and LY 0, nothing is drawn.
func (p *PPU) Idle() {
	p.line = 0
	p.bus.SetLY(0)
	p.mode = HBlankMode
	p.bus.SetMode(uint8(HBlankMode))
}

// BlankLine clears a visible line, used when the LCD is switched off in the
// middle of a frame.
func (p *PPU) BlankLine(line int) {
	if line < 0 || line >= VisibleLines {
		return
	}
	var blank uint16
	if p.frame.Color {
		blank = 0x7FFF
	}
	for x := range FramebufferWidth {
		p.frame.Pix[line][x] = blank
	}
}

func (p *PPU) setLine(line int) {
	stat := p.bus.Read(addr.STAT)
	if p.bus.SetLY(uint8(line)) && bit.IsSet(statLYCIRQ, stat) {
		p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	p.bus.SetMode(uint8(mode))

	stat := p.bus.Read(addr.STAT)
	var source uint8
	switch mode {
	case HBlankMode:
		source = statHBlankIRQ
	case VBlankMode:
		source = statVBlankIRQ
	case OAMScanMode:
		source = statOAMIRQ
	default:
		return
	}
	if bit.IsSet(source, stat) {
		p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

func (p *PPU) renderLine() {
	if p.line < 0 || p.line >= VisibleLines {
		return
	}

	lcdc := p.bus.Read(addr.LCDC)
	color := p.frame.Color

	p.renderBackground(lcdc, color)
	p.renderWindow(lcdc, color)
	spritesOn := bit.IsSet(spriteDisplayEnable, lcdc)
	if spritesOn {
		p.collectSprites(lcdc, color)
	}

	row := &p.frame.Pix[p.line]
	bgp := p.bus.Read(addr.BGP)
	obp0 := p.bus.Read(addr.OBP0)
	obp1 := p.bus.Read(addr.OBP1)
	// on DMG a clear LCDC bit 0 blanks BG and window, on CGB it drops all
	// BG priority instead
	bgMaster := bit.IsSet(bgDisplay, lcdc)

	for x := range FramebufferWidth {
		idx := p.bgIndex[x]

		var pixel uint16
		switch {
		case color:
			pixel = p.bus.BGColor(uint8(row[x]), idx)
		case bgMaster:
			pixel = uint16(paletteShade(bgp, idx))
		}

		if spritesOn {
			sp := p.sprites[x]
			if sp.sprite != nil {
				hidden := idx != 0 && (sp.behindBG || (color && p.bgPriority[x]))
				if color && !bgMaster {
					hidden = false
				}
				if !hidden {
					if color {
						pixel = p.bus.OBJColor(sp.sprite.Palette, sp.color)
					} else {
						obp := obp0
						if sp.sprite.PaletteOBP1 {
							obp = obp1
						}
						pixel = uint16(paletteShade(obp, sp.color))
					}
				}
			}
		}

		row[x] = pixel
	}
}

func paletteShade(palette, index uint8) uint8 {
	return (palette >> (index * 2)) & 0x03
}

// renderBackground fills bgIndex, bgPriority and, in color mode, stashes the
// attribute palette number in the frame row for the compose pass.
func (p *PPU) renderBackground(lcdc uint8, color bool) {
	row := &p.frame.Pix[p.line]

	if !color && !bit.IsSet(bgDisplay, lcdc) {
		for x := range FramebufferWidth {
			p.bgIndex[x] = 0
			p.bgPriority[x] = false
			row[x] = 0
		}
		return
	}

	mapBase := addr.TileMap0
	if bit.IsSet(bgTileMapDisplaySelect, lcdc) {
		mapBase = addr.TileMap1
	}
	unsigned := bit.IsSet(bgWindowTileDataSelect, lcdc)

	y := uint8(p.line) + p.params.SCY
	for x := range FramebufferWidth {
		px := uint8(x) + p.params.SCX
		p.drawMapPixel(x, mapBase, unsigned, px, y, color)
	}
}

func (p *PPU) renderWindow(lcdc uint8, color bool) {
	if !bit.IsSet(windowDisplayEnable, lcdc) {
		return
	}
	if !color && !bit.IsSet(bgDisplay, lcdc) {
		return
	}
	wy, wx := int(p.params.WY), int(p.params.WX)-7
	if p.line < wy || wx >= FramebufferWidth || int(p.params.WX) > 166 {
		return
	}

	mapBase := addr.TileMap0
	if bit.IsSet(windowTileMapSelect, lcdc) {
		mapBase = addr.TileMap1
	}
	unsigned := bit.IsSet(bgWindowTileDataSelect, lcdc)

	y := uint8(p.windowLine)
	for x := max(wx, 0); x < FramebufferWidth; x++ {
		p.drawMapPixel(x, mapBase, unsigned, uint8(x-wx), y, color)
	}
	p.windowLine++
}

// drawMapPixel resolves the map pixel at (mx, my) for screen column x.
func (p *PPU) drawMapPixel(x int, mapBase uint16, unsigned bool, mx, my uint8, color bool) {
	mapAddr := mapBase + uint16(my/8)*32 + uint16(mx/8)
	tileIndex := p.bus.VRAM(0, mapAddr)

	var attr uint8
	if color {
		attr = p.bus.VRAM(1, mapAddr)
	}

	row := int(my % 8)
	if bit.IsSet(6, attr) {
		row = 7 - row
	}
	tile := FetchTileRow(p.bus, bit.Value(3, attr), bgTileAddress(tileIndex, unsigned), row)

	col := int(mx % 8)
	var idx uint8
	if bit.IsSet(5, attr) {
		idx = tile.GetPixelFlipped(col)
	} else {
		idx = tile.GetPixel(col)
	}

	p.bgIndex[x] = idx
	p.bgPriority[x] = bit.IsSet(7, attr)
	if color {
		// palette number, replaced by the final color in renderLine
		p.frame.Pix[p.line][x] = uint16(attr & 0x07)
	}
}

// collectSprites decodes this line's sprites and resolves, per column, which
// opaque sprite pixel wins.
func (p *PPU) collectSprites(lcdc uint8, color bool) {
	for x := range FramebufferWidth {
		p.sprites[x] = spritePixel{}
	}
	p.priority.Clear()

	height := 8
	if bit.IsSet(spriteSize, lcdc) {
		height = 16
	}

	sprites := p.oam.SpritesForLine(p.line, height)
	for i := range sprites {
		s := &sprites[i]
		tileAddr, row := s.rowAddress(p.line)
		var bank uint8
		if color {
			bank = s.VRAMBank
		}
		tile := FetchTileRow(p.bus, bank, tileAddr, row)

		claimX := s.X
		if color {
			claimX = 0
		}

		for px := range 8 {
			screenX := s.X + px
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}
			var idx uint8
			if s.FlipX {
				idx = tile.GetPixelFlipped(px)
			} else {
				idx = tile.GetPixel(px)
			}
			if idx == 0 {
				// color 0 is transparent for sprites
				continue
			}
			if p.priority.TryClaimPixel(screenX, s.OAMIndex, claimX) {
				p.sprites[screenX] = spritePixel{color: idx, sprite: s, behindBG: s.BehindBG}
			}
		}
	}
}
