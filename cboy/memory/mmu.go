package memory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/bit"
	"github.com/valerio/go-cboy/cboy/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM0
	regionWRAMX
	regionEcho
	regionOAM
	regionIO
)

const (
	vramBankSize = 0x2000
	wramBankSize = 0x1000
	paletteSize  = 64

	// banks 2-7, bank 1 lives in the flat image
	extraWRAMBanks = 6
)

// StateSize is the length of the image produced by Snapshot.
const StateSize = 0x8000 + vramBankSize + extraWRAMBanks*wramBankSize + 2*paletteSize + 3

// ErrStateSize is returned by Restore when the image has the wrong length.
var ErrStateSize = errors.New("memory image has the wrong size")

// MMU allows access to all memory mapped I/O and data/registers
type MMU struct {
	cart      *Cartridge
	mbc       *BankController
	regionMap [256]memRegion

	// ram is the flat image for 0x8000-0xFFFF. It always holds VRAM bank 0
	// and WRAM bank 1; the CGB extra banks live in vram1 and wramx.
	ram    [0x8000]byte
	vram1  [vramBankSize]byte
	wramx  [extraWRAMBanks][wramBankSize]byte
	bgPal  [paletteSize]byte
	objPal [paletteSize]byte

	color  bool
	joypad *Joypad
	serial *serial.Port
	timer  Timer
}

// Option configures an MMU at construction.
type Option func(*MMU)

// WithColor enables the color-console registers and banks.
func WithColor(enabled bool) Option { return func(m *MMU) { m.color = enabled } }

// WithJoypad shares a joypad owned by the caller.
func WithJoypad(j *Joypad) Option { return func(m *MMU) { m.joypad = j } }

// WithSerialSink sets where bytes written through the serial port go.
func WithSerialSink(s serial.Sink) Option {
	return func(m *MMU) {
		m.serial = serial.NewPort(func() { m.RequestInterrupt(addr.SerialInterrupt) }, serial.WithSink(s))
	}
}

// New creates a new memory unity with default data, i.e. nothing cartridge loaded.
// Equivalent to turning on a Gameboy without a cartridge in.
func New(opts ...Option) *MMU {
	return NewWithCartridge(NewCartridge(), opts...)
}

// NewWithCartridge creates a new memory unit with the provided cartridge data loaded.
// Equivalent to turning on a Gameboy with a cartridge in.
func NewWithCartridge(cart *Cartridge, opts ...Option) *MMU {
	m := &MMU{
		cart: cart,
		mbc:  NewBankController(cart.data),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.joypad == nil {
		m.joypad = NewJoypad()
	}
	if m.serial == nil {
		m.serial = serial.NewPort(func() { m.RequestInterrupt(addr.SerialInterrupt) })
	}
	m.timer.TimerInterruptHandler = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	initRegionMap(m)
	m.ram[addr.IF-0x8000] = 0xE1
	m.ram[addr.HDMA5-0x8000] = 0xFF
	return m
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xCF; i++ {
		m.regionMap[i] = regionWRAM0
	}
	for i := 0xD0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAMX
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, Unused: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// Cartridge returns the inserted cartridge.
func (m *MMU) Cartridge() *Cartridge { return m.cart }

// ColorMode reports whether the color-console extensions are active.
func (m *MMU) ColorMode() bool { return m.color }

// Joypad returns the controls state read by P1.
func (m *MMU) Joypad() *Joypad { return m.joypad }

// Tick advances any i/o that needs it, if any.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	m.serial.Tick(cycles)
}

// LatchJoypad folds key presses registered since the last call into the
// joypad interrupt flag.
func (m *MMU) LatchJoypad() {
	if m.joypad.TakeEdges() != 0 {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.ram[addr.IF-0x8000] |= interrupt.Mask()
}

func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	m.Write(address, bit.SetTo(index, m.Read(address), set))
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		return m.mbc.Read(address)
	case regionVRAM:
		if m.vramBank() == 1 {
			return m.vram1[address-addr.VRAM]
		}
		return m.ram[address-0x8000]
	case regionExtRAM, regionWRAM0:
		return m.ram[address-0x8000]
	case regionWRAMX:
		return m.readWRAMX(address)
	case regionEcho:
		return m.Read(address - 0x2000)
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.ram[address-0x8000]
		}
		// Unused area 0xFEA0-0xFEFF
		return 0xFF
	default:
		return m.readIO(address)
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return m.joypad.Read(m.ram[addr.P1-0x8000])
	case addr.SB, addr.SC:
		return m.serial.Read(address)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.IF:
		// upper 3 bits of IF are unused and always read as 1
		return m.ram[address-0x8000] | 0xE0
	case addr.STAT:
		return m.ram[address-0x8000] | 0x80
	}

	if m.color {
		switch address {
		case addr.KEY1:
			return m.ram[address-0x8000] | 0x7E
		case addr.VBK:
			return m.vramBank() | 0xFE
		case addr.SVBK:
			return m.ram[address-0x8000] | 0xF8
		case addr.BCPS, addr.OCPS:
			return m.ram[address-0x8000] | 0x40
		case addr.BCPD:
			return m.bgPal[m.ram[addr.BCPS-0x8000]&0x3F]
		case addr.OCPD:
			return m.objPal[m.ram[addr.OCPS-0x8000]&0x3F]
		}
	}

	return m.ram[address-0x8000]
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		m.mbc.Write(address, value)
	case regionVRAM:
		if m.vramBank() == 1 {
			m.vram1[address-addr.VRAM] = value
			return
		}
		m.ram[address-0x8000] = value
	case regionExtRAM, regionWRAM0:
		m.ram[address-0x8000] = value
	case regionWRAMX:
		m.writeWRAMX(address, value)
	case regionEcho:
		m.Write(address-0x2000, value)
	case regionOAM:
		if address <= addr.OAMEnd {
			m.ram[address-0x8000] = value
		}
	default:
		m.writeIO(address, value)
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		// Only bits 4-5 are writable (selection bits)
		m.ram[address-0x8000] = value & 0x30
		return
	case addr.SB, addr.SC:
		m.serial.Write(address, value)
		return
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
		return
	case addr.IF:
		m.ram[address-0x8000] = value | 0xE0
		return
	case addr.STAT:
		// mode and coincidence bits are owned by the PPU
		current := m.ram[address-0x8000]
		m.ram[address-0x8000] = current&0x07 | value&0x78
		return
	case addr.LY:
		return
	case addr.DMA:
		sourceAddr := uint16(value) << 8
		// DMA transfer copies 160 bytes from source to OAM
		for i := range uint16(160) {
			m.ram[addr.OAMStart-0x8000+i] = m.Read(sourceAddr + i)
		}
		m.ram[address-0x8000] = value
		return
	}

	if m.color {
		switch address {
		case addr.KEY1:
			m.ram[address-0x8000] = m.ram[address-0x8000]&0x80 | value&0x01
			return
		case addr.VBK:
			m.ram[address-0x8000] = value & 0x01
			return
		case addr.SVBK:
			m.ram[address-0x8000] = value & 0x07
			return
		case addr.BCPS, addr.OCPS:
			m.ram[address-0x8000] = value & 0xBF
			return
		case addr.BCPD:
			writePalette(&m.bgPal, &m.ram[addr.BCPS-0x8000], value)
			return
		case addr.OCPD:
			writePalette(&m.objPal, &m.ram[addr.OCPS-0x8000], value)
			return
		case addr.HDMA5:
			m.runHDMA(value)
			return
		}
	}

	m.ram[address-0x8000] = value
}

// writePalette stores value at the index held by selector and bumps the index
// when its auto-increment bit is set.
func writePalette(pal *[paletteSize]byte, selector *byte, value byte) {
	index := *selector & 0x3F
	pal[index] = value
	if bit.IsSet(7, *selector) {
		*selector = 0x80 | (index+1)&0x3F
	}
}

// runHDMA copies the requested block into VRAM right away. HBlank mode
// transfers are performed in one go as well.
func (m *MMU) runHDMA(value byte) {
	src := bit.Combine(m.ram[addr.HDMA1-0x8000], m.ram[addr.HDMA2-0x8000]) & 0xFFF0
	dst := addr.VRAM | bit.Combine(m.ram[addr.HDMA3-0x8000], m.ram[addr.HDMA4-0x8000])&0x1FF0
	length := (uint16(value&0x7F) + 1) * 16

	for i := range length {
		target := dst + i
		if target > 0x9FFF {
			break
		}
		m.Write(target, m.Read(src+i))
	}
	m.ram[addr.HDMA5-0x8000] = 0xFF
}

func (m *MMU) vramBank() uint8 {
	if !m.color {
		return 0
	}
	return m.ram[addr.VBK-0x8000] & 0x01
}

func (m *MMU) wramBank() uint8 {
	if !m.color {
		return 1
	}
	bank := m.ram[addr.SVBK-0x8000] & 0x07
	if bank == 0 {
		bank = 1
	}
	return bank
}

func (m *MMU) readWRAMX(address uint16) byte {
	bank := m.wramBank()
	if bank == 1 {
		return m.ram[address-0x8000]
	}
	return m.wramx[bank-2][address-addr.WRAMX]
}

func (m *MMU) writeWRAMX(address uint16, value byte) {
	bank := m.wramBank()
	if bank == 1 {
		m.ram[address-0x8000] = value
		return
	}
	m.wramx[bank-2][address-addr.WRAMX] = value
}

// VRAM reads video RAM from a specific bank regardless of VBK. The PPU uses
// this to fetch CGB tile attributes from bank 1.
func (m *MMU) VRAM(bank uint8, address uint16) byte {
	if bank == 1 && m.color {
		return m.vram1[address-addr.VRAM]
	}
	return m.ram[address-0x8000]
}

// BGColor returns the 15-bit color at index (0-3) of background palette pal (0-7).
func (m *MMU) BGColor(pal, index uint8) uint16 {
	return paletteColor(&m.bgPal, pal, index)
}

// OBJColor returns the 15-bit color at index (0-3) of object palette pal (0-7).
func (m *MMU) OBJColor(pal, index uint8) uint16 {
	return paletteColor(&m.objPal, pal, index)
}

func paletteColor(table *[paletteSize]byte, pal, index uint8) uint16 {
	offset := (pal&0x07)*8 + (index&0x03)*2
	return bit.Combine(table[offset+1], table[offset]) & 0x7FFF
}

// SetLY stores the current line and refreshes the STAT coincidence flag.
// It returns whether LY matches LYC.
func (m *MMU) SetLY(line uint8) bool {
	m.ram[addr.LY-0x8000] = line
	match := line == m.ram[addr.LYC-0x8000]
	stat := m.ram[addr.STAT-0x8000]
	m.ram[addr.STAT-0x8000] = bit.SetTo(2, stat, match)
	return match
}

// SetMode stores the PPU mode in the low two bits of STAT.
func (m *MMU) SetMode(mode uint8) {
	stat := m.ram[addr.STAT-0x8000]
	m.ram[addr.STAT-0x8000] = stat&^0x03 | mode&0x03
}

// SwitchSpeed services a STOP instruction: if a speed switch was armed
// through KEY1 the reported speed flips. Only the flag changes, timing does
// not. It returns whether a switch happened.
func (m *MMU) SwitchSpeed() bool {
	key1 := m.ram[addr.KEY1-0x8000]
	if !m.color || key1&0x01 == 0 {
		return false
	}
	m.ram[addr.KEY1-0x8000] = (key1 ^ 0x80) &^ 0x01
	slog.Debug("speed switch", "double", key1&0x80 == 0)
	return true
}

// Snapshot produces the full memory image: the 0x8000-0xFFFF window with
// live register values, the CGB banks and palettes, then the bank controller
// registers.
func (m *MMU) Snapshot() []byte {
	out := make([]byte, 0, StateSize)

	flat := m.ram
	for _, a := range []uint16{addr.DIV, addr.TIMA, addr.TMA, addr.TAC} {
		flat[a-0x8000] = m.timer.Read(a)
	}
	flat[addr.SB-0x8000] = m.serial.Read(addr.SB)
	flat[addr.SC-0x8000] = m.serial.Read(addr.SC)

	out = append(out, flat[:]...)
	out = append(out, m.vram1[:]...)
	for i := range m.wramx {
		out = append(out, m.wramx[i][:]...)
	}
	out = append(out, m.bgPal[:]...)
	out = append(out, m.objPal[:]...)
	regs := m.mbc.registers()
	out = append(out, regs[:]...)
	return out
}

// Restore loads an image produced by Snapshot. Nothing is modified when the
// image has the wrong size.
func (m *MMU) Restore(image []byte) error {
	if len(image) != StateSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrStateSize, len(image), StateSize)
	}

	n := copy(m.ram[:], image)
	n += copy(m.vram1[:], image[n:])
	for i := range m.wramx {
		n += copy(m.wramx[i][:], image[n:])
	}
	n += copy(m.bgPal[:], image[n:])
	n += copy(m.objPal[:], image[n:])
	m.mbc.restore([3]uint8{image[n], image[n+1], image[n+2]})

	m.timer.restore(
		m.ram[addr.DIV-0x8000],
		m.ram[addr.TIMA-0x8000],
		m.ram[addr.TMA-0x8000],
		m.ram[addr.TAC-0x8000],
	)
	m.serial.Restore(m.ram[addr.SB-0x8000], m.ram[addr.SC-0x8000])
	return nil
}
