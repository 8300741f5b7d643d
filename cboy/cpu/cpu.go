package cpu

import (
	"log/slog"

	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/bit"
)

// Bus provides the interface for component communication
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// speedSwitcher is implemented by buses that expose the CGB KEY1 speed switch.
type speedSwitcher interface {
	SwitchSpeed() bool
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// haltedCycles is what a Step costs while the CPU waits for an interrupt.
const haltedCycles = 4

// State is the programmer visible register file plus the IME and halt flags.
type State struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME, Halted            bool
}

// CPU is the main struct holding LR35902 state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	// eiDelay counts down the instructions left before a pending EI takes effect
	eiDelay       uint8
	halted        bool
	currentOpcode uint16
	branched      bool

	// haltBug indicates the next opcode fetch must not advance PC, so the
	// byte after HALT is read twice. Set by HALT, cleared by the next fetch.
	haltBug bool

	reservedSeen [256]bool

	bus Bus
}

// Option tweaks the power-on state of a CPU.
type Option func(*CPU)

// WithColorBoot sets the registers the color console boot ROM leaves behind
// (A=0x11 is how games detect it).
func WithColorBoot() Option {
	return func(c *CPU) {
		c.setAF(0x1180)
		c.setBC(0x0000)
		c.setDE(0xFF56)
		c.setHL(0x000D)
	}
}

func initializeMemory(bus Bus) {
	bus.Write(addr.P1, 0xCF)
	bus.Write(addr.TIMA, 0x00)
	bus.Write(addr.TMA, 0x00)
	bus.Write(addr.TAC, 0x00)
	bus.Write(addr.LCDC, 0x91)
	bus.Write(addr.SCY, 0x00)
	bus.Write(addr.SCX, 0x00)
	bus.Write(addr.LYC, 0x00)
	bus.Write(addr.BGP, 0xFC)
	bus.Write(addr.OBP0, 0xFF)
	bus.Write(addr.OBP1, 0xFF)
	bus.Write(addr.WY, 0x00)
	bus.Write(addr.WX, 0x00)
	bus.Write(addr.IF, 0xE1)
	bus.Write(addr.IE, 0x00)

	// sound registers are plain memory here, but games read them back
	bus.Write(0xFF10, 0x80) // NR10
	bus.Write(0xFF11, 0xBF) // NR11
	bus.Write(0xFF12, 0xF3) // NR12
	bus.Write(0xFF14, 0xBF) // NR14
	bus.Write(0xFF16, 0x3F) // NR21
	bus.Write(0xFF17, 0x00) // NR22
	bus.Write(0xFF19, 0xBF) // NR24
	bus.Write(0xFF1A, 0x7F) // NR30
	bus.Write(0xFF1B, 0xFF) // NR31
	bus.Write(0xFF1C, 0x9F) // NR32
	bus.Write(0xFF1E, 0xBF) // NR34
	bus.Write(0xFF20, 0xFF) // NR41
	bus.Write(0xFF21, 0x00) // NR42
	bus.Write(0xFF22, 0x00) // NR43
	bus.Write(0xFF23, 0xBF) // NR44
	bus.Write(0xFF24, 0x77) // NR50
	bus.Write(0xFF25, 0xF3) // NR51
	bus.Write(0xFF26, 0xF1) // NR52
}

// New returns a CPU in the state the boot ROM leaves it in, and writes the
// matching post-boot I/O register values to the bus.
func New(bus Bus, opts ...Option) *CPU {
	initializeMemory(bus)

	cpu := &CPU{
		bus: bus,
	}

	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100

	for _, opt := range opts {
		opt(cpu)
	}

	return cpu
}

// Step executes a single instruction and returns the cycles it took.
// A halted CPU does nothing and reports 4 cycles.
func (c *CPU) Step() int {
	if c.halted {
		return haltedCycles
	}

	opcode := c.fetchOpcode()

	var cycles int
	if opcode == 0xCB {
		cb := c.readImmediate()
		c.currentOpcode = bit.Combine(0xCB, cb)
		cycles = c.execCB(cb)
	} else {
		c.currentOpcode = uint16(opcode)
		cycles = c.exec(opcode)
	}

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.interruptsEnabled = true
		}
	}

	return cycles
}

func (c *CPU) exec(opcode uint8) int {
	in := &instructions[opcode]

	var operand uint16
	switch in.length {
	case 1:
		operand = uint16(c.readImmediate())
	case 2:
		operand = c.readImmediateWord()
	}

	if in.exec == nil {
		if !c.reservedSeen[opcode] {
			c.reservedSeen[opcode] = true
			slog.Debug("reserved opcode executed as NOP", "opcode", opcode, "pc", c.pc-1)
		}
		return in.cycles
	}

	c.branched = false
	in.exec(c, operand)
	if c.branched {
		return in.taken
	}
	return in.cycles
}

// fetchOpcode reads the byte at PC and advances PC, unless the halt bug is
// pending in which case PC stays put for this one fetch.
func (c *CPU) fetchOpcode() uint8 {
	opcode := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
		return opcode
	}
	c.pc++
	return opcode
}

// readImmediate returns the byte at PC ('n' in mnemonics) and increments PC.
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord returns the little endian word at PC ('nn' in mnemonics)
// and increments PC twice.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

// State returns a copy of the register file.
func (c *CPU) State() State {
	return State{
		A: c.a, F: c.f, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		IME:    c.interruptsEnabled,
		Halted: c.halted,
	}
}

// SetState overwrites the register file. Pending EI and halt bug effects are
// dropped.
func (c *CPU) SetState(s State) {
	c.a, c.f = s.A, s.F&0xF0
	c.b, c.c = s.B, s.C
	c.d, c.e = s.D, s.E
	c.h, c.l = s.H, s.L
	c.sp, c.pc = s.SP, s.PC
	c.interruptsEnabled = s.IME
	c.halted = s.Halted
	c.eiDelay = 0
	c.haltBug = false
}

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// InterruptsEnabled reports the IME flag.
func (c *CPU) InterruptsEnabled() bool { return c.interruptsEnabled }

// CurrentOpcode is the last executed opcode, 0xCBxx for prefixed ones.
func (c *CPU) CurrentOpcode() uint16 { return c.currentOpcode }

func (c *CPU) halt() {
	pending := c.bus.Read(addr.IE) & c.bus.Read(addr.IF) & 0x1F
	if !c.interruptsEnabled && pending != 0 {
		c.haltBug = true
		return
	}
	c.halted = true
}

func (c *CPU) stop() {
	if s, ok := c.bus.(speedSwitcher); ok {
		s.SwitchSpeed()
	}
}

func (c *CPU) enableInterrupts() {
	if c.interruptsEnabled || c.eiDelay > 0 {
		return
	}
	c.eiDelay = 2
}

func (c *CPU) disableInterrupts() {
	c.interruptsEnabled = false
	c.eiDelay = 0
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit returns 1 if the flag is set, 0 otherwise.
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) getBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) getDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) getHL() uint16 { return bit.Combine(c.h, c.l) }

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// low nibble of F does not exist in hardware
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

// reg returns the 8 bit operand encoded by index in the opcode:
// B C D E H L (HL) A.
func (c *CPU) reg(index uint8) uint8 {
	switch index & 0x07 {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setReg(index, value uint8) {
	switch index & 0x07 {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// pair returns the 16 bit register encoded by index for LD/INC/DEC/ADD:
// BC DE HL SP.
func (c *CPU) pair(index uint8) uint16 {
	switch index & 0x03 {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setPair(index uint8, value uint16) {
	switch index & 0x03 {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// stackPair is like pair but index 3 is AF, as used by PUSH/POP.
func (c *CPU) stackPair(index uint8) uint16 {
	if index&0x03 == 3 {
		return c.getAF()
	}
	return c.pair(index)
}

func (c *CPU) setStackPair(index uint8, value uint16) {
	if index&0x03 == 3 {
		c.setAF(value)
		return
	}
	c.setPair(index, value)
}

// condition evaluates the branch condition encoded by index: NZ Z NC C.
func (c *CPU) condition(index uint8) bool {
	switch index & 0x03 {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}
