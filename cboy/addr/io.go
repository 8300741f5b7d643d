package addr

// memory regions
const (
	// ROMBank0 is the fixed cartridge bank.
	ROMBank0 uint16 = 0x0000
	// ROMBankN is the switchable cartridge bank window.
	ROMBankN uint16 = 0x4000
	// VRAM is the start of video RAM (banked on CGB through VBK).
	VRAM uint16 = 0x8000
	// ExtRAM is the start of cartridge RAM.
	ExtRAM uint16 = 0xA000
	// WRAM0 is the fixed work RAM bank.
	WRAM0 uint16 = 0xC000
	// WRAMX is the switchable work RAM bank (CGB, through SVBK).
	WRAMX uint16 = 0xD000
	// Echo mirrors WRAM0/WRAMX up to 0xFDFF.
	Echo uint16 = 0xE000
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// OAMEnd is the last byte of OAM memory
	OAMEnd uint16 = 0xFE9F
	// HRAM is the start of high RAM.
	HRAM uint16 = 0xFF80
)

// lcd registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// color-console registers
const (
	// KEY1 prepares a speed switch, bit 7 reports the current speed.
	KEY1 uint16 = 0xFF4D
	// VBK selects the VRAM bank (bit 0).
	VBK uint16 = 0xFF4F
	// HDMA1 and HDMA2 hold the VRAM DMA source (high, low).
	HDMA1 uint16 = 0xFF51
	HDMA2 uint16 = 0xFF52
	// HDMA3 and HDMA4 hold the VRAM DMA destination (high, low).
	HDMA3 uint16 = 0xFF53
	HDMA4 uint16 = 0xFF54
	// HDMA5 starts a VRAM DMA transfer, low 7 bits are the length.
	HDMA5 uint16 = 0xFF55
	// BCPS is the background palette index, bit 7 enables auto-increment.
	BCPS uint16 = 0xFF68
	// BCPD is the background palette data port.
	BCPD uint16 = 0xFF69
	// OCPS is the object palette index.
	OCPS uint16 = 0xFF6A
	// OCPD is the object palette data port.
	OCPD uint16 = 0xFF6B
	// SVBK selects the WRAM bank mapped at 0xD000 (bits 0-2, 0 selects 1).
	SVBK uint16 = 0xFF70
)

// tile data and tile maps
const (
	// TileData0 is the start of unsigned tile data (tiles 0-255)
	TileData0 uint16 = 0x8000
	// TileData2 is the base of signed tile data (tile 0 at 0x9000)
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB (Serial transfer data, 0xFF01)
	SB uint16 = 0xFF01
	// SC (Serial transfer control, 0xFF02). Any write here hands SB to the
	// serial sink, bit 7 starts (and here immediately completes) a transfer.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// Interrupt identifies one of the five interrupt sources by its bit index in
// IE/IF. Lower values have higher priority.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the PPU has completed a frame.
	VBlankInterrupt Interrupt = iota
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt
	// TimerInterrupt is fired when the timer register (TIMA) overflows (i.e. goes from 0xFF to 0x00).
	TimerInterrupt
	// SerialInterrupt is fired when a serial transfer has completed on the game link port.
	SerialInterrupt
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt
)

// InterruptCount is the number of interrupt sources.
const InterruptCount = 5

// Mask returns the IE/IF bit for the interrupt.
func (i Interrupt) Mask() uint8 {
	return 1 << i
}

// Vector returns the handler address: 0x40, 0x48, 0x50, 0x58, 0x60.
func (i Interrupt) Vector() uint16 {
	return 0x40 + uint16(i)*8
}

func (i Interrupt) String() string {
	switch i {
	case VBlankInterrupt:
		return "vblank"
	case LCDSTATInterrupt:
		return "stat"
	case TimerInterrupt:
		return "timer"
	case SerialInterrupt:
		return "serial"
	case JoypadInterrupt:
		return "joypad"
	}
	return "unknown"
}
