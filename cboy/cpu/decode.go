package cpu

import (
	"fmt"
	"strings"

	"github.com/valerio/go-cboy/cboy/bit"
)

// instruction describes one primary opcode. Operand bytes are fetched by the
// dispatcher according to length before exec runs; exec receives them as a
// little endian word. taken is the cost when a conditional branch is taken.
type instruction struct {
	mnemonic string
	length   uint8
	cycles   int
	taken    int
	exec     func(c *CPU, operand uint16)
}

var instructions [256]instruction

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var pairNames = [4]string{"BC", "DE", "HL", "SP"}
var stackPairNames = [4]string{"BC", "DE", "HL", "AF"}
var conditionNames = [4]string{"NZ", "Z", "NC", "C"}
var aluNames = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}

func init() {
	for i := range instructions {
		instructions[i] = instruction{mnemonic: "-", cycles: 4}
	}
	decodeRegularBlocks()
	decodeMisc()
}

func def(opcode uint8, mnemonic string, length uint8, cycles, taken int, exec func(c *CPU, operand uint16)) {
	instructions[opcode] = instruction{
		mnemonic: mnemonic,
		length:   length,
		cycles:   cycles,
		taken:    taken,
		exec:     exec,
	}
}

// decodeRegularBlocks fills the opcodes whose operands are encoded in bit
// fields: LD r,r' / ALU A,r / INC, DEC, LD r,d8 / the 16 bit pair group /
// conditional branches / PUSH, POP / RST.
func decodeRegularBlocks() {
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | dst<<3 | src
			if opcode == 0x76 {
				continue // HALT
			}
			cycles := 4
			if dst == 6 || src == 6 {
				cycles = 8
			}
			d, s := dst, src
			def(opcode, fmt.Sprintf("LD %s, %s", regNames[d], regNames[s]), 0, cycles, 0, func(c *CPU, _ uint16) {
				c.setReg(d, c.reg(s))
			})
		}
	}

	for op := uint8(0); op < 8; op++ {
		for src := uint8(0); src < 8; src++ {
			cycles := 4
			if src == 6 {
				cycles = 8
			}
			o, s := op, src
			def(0x80|op<<3|src, fmt.Sprintf("%s %s", aluNames[o], regNames[s]), 0, cycles, 0, func(c *CPU, _ uint16) {
				c.alu(o, c.reg(s))
			})
		}
		o := op
		def(0xC6|op<<3, aluNames[o]+" d8", 1, 8, 0, func(c *CPU, n uint16) {
			c.alu(o, uint8(n))
		})
	}

	for r := uint8(0); r < 8; r++ {
		rmw, load := 4, 8
		if r == 6 {
			rmw, load = 12, 12
		}
		reg := r
		def(0x04|r<<3, "INC "+regNames[r], 0, rmw, 0, func(c *CPU, _ uint16) {
			v := c.reg(reg)
			c.inc(&v)
			c.setReg(reg, v)
		})
		def(0x05|r<<3, "DEC "+regNames[r], 0, rmw, 0, func(c *CPU, _ uint16) {
			v := c.reg(reg)
			c.dec(&v)
			c.setReg(reg, v)
		})
		def(0x06|r<<3, fmt.Sprintf("LD %s, d8", regNames[r]), 1, load, 0, func(c *CPU, n uint16) {
			c.setReg(reg, uint8(n))
		})
	}

	for p := uint8(0); p < 4; p++ {
		pr := p
		def(0x01|p<<4, fmt.Sprintf("LD %s, d16", pairNames[p]), 2, 12, 0, func(c *CPU, nn uint16) {
			c.setPair(pr, nn)
		})
		def(0x03|p<<4, "INC "+pairNames[p], 0, 8, 0, func(c *CPU, _ uint16) {
			c.setPair(pr, c.pair(pr)+1)
		})
		def(0x09|p<<4, "ADD HL, "+pairNames[p], 0, 8, 0, func(c *CPU, _ uint16) {
			c.addToHL(c.pair(pr))
		})
		def(0x0B|p<<4, "DEC "+pairNames[p], 0, 8, 0, func(c *CPU, _ uint16) {
			c.setPair(pr, c.pair(pr)-1)
		})
		def(0xC1|p<<4, "POP "+stackPairNames[p], 0, 12, 0, func(c *CPU, _ uint16) {
			c.setStackPair(pr, c.popStack())
		})
		def(0xC5|p<<4, "PUSH "+stackPairNames[p], 0, 16, 0, func(c *CPU, _ uint16) {
			c.pushStack(c.stackPair(pr))
		})
	}

	for cc := uint8(0); cc < 4; cc++ {
		cond := cc
		def(0x20|cc<<3, fmt.Sprintf("JR %s, r8", conditionNames[cc]), 1, 8, 12, func(c *CPU, n uint16) {
			if c.condition(cond) {
				c.jr(uint8(n))
			}
		})
		def(0xC0|cc<<3, "RET "+conditionNames[cc], 0, 8, 20, func(c *CPU, _ uint16) {
			if c.condition(cond) {
				c.ret()
			}
		})
		def(0xC2|cc<<3, fmt.Sprintf("JP %s, a16", conditionNames[cc]), 2, 12, 16, func(c *CPU, nn uint16) {
			if c.condition(cond) {
				c.jp(nn)
			}
		})
		def(0xC4|cc<<3, fmt.Sprintf("CALL %s, a16", conditionNames[cc]), 2, 12, 24, func(c *CPU, nn uint16) {
			if c.condition(cond) {
				c.call(nn)
			}
		})
	}

	for n := uint8(0); n < 8; n++ {
		vector := uint16(n) * 8
		def(0xC7|n<<3, fmt.Sprintf("RST %02XH", vector), 0, 16, 0, func(c *CPU, _ uint16) {
			c.rst(vector)
		})
	}
}

func decodeMisc() {
	//NOP
	def(0x00, "NOP", 0, 4, 0, func(_ *CPU, _ uint16) {})
	def(0x02, "LD (BC), A", 0, 8, 0, func(c *CPU, _ uint16) { c.bus.Write(c.getBC(), c.a) })
	def(0x12, "LD (DE), A", 0, 8, 0, func(c *CPU, _ uint16) { c.bus.Write(c.getDE(), c.a) })
	def(0x0A, "LD A, (BC)", 0, 8, 0, func(c *CPU, _ uint16) { c.a = c.bus.Read(c.getBC()) })
	def(0x1A, "LD A, (DE)", 0, 8, 0, func(c *CPU, _ uint16) { c.a = c.bus.Read(c.getDE()) })

	//LD (HL+), A
	def(0x22, "LD (HL+), A", 0, 8, 0, func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl + 1)
	})
	def(0x2A, "LD A, (HL+)", 0, 8, 0, func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl + 1)
	})
	def(0x32, "LD (HL-), A", 0, 8, 0, func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl - 1)
	})
	def(0x3A, "LD A, (HL-)", 0, 8, 0, func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl - 1)
	})

	//LD (nn), SP
	def(0x08, "LD (a16), SP", 2, 20, 0, func(c *CPU, nn uint16) {
		c.bus.Write(nn, bit.Low(c.sp))
		c.bus.Write(nn+1, bit.High(c.sp))
	})

	// accumulator rotates always clear Z
	def(0x07, "RLCA", 0, 4, 0, func(c *CPU, _ uint16) { c.a = c.rlc(c.a); c.resetFlag(zeroFlag) })
	def(0x0F, "RRCA", 0, 4, 0, func(c *CPU, _ uint16) { c.a = c.rrc(c.a); c.resetFlag(zeroFlag) })
	def(0x17, "RLA", 0, 4, 0, func(c *CPU, _ uint16) { c.a = c.rl(c.a); c.resetFlag(zeroFlag) })
	def(0x1F, "RRA", 0, 4, 0, func(c *CPU, _ uint16) { c.a = c.rr(c.a); c.resetFlag(zeroFlag) })

	def(0x10, "STOP", 1, 4, 0, func(c *CPU, _ uint16) { c.stop() })
	def(0x18, "JR r8", 1, 12, 12, func(c *CPU, n uint16) { c.jr(uint8(n)) })
	def(0x27, "DAA", 0, 4, 0, func(c *CPU, _ uint16) { c.daa() })
	def(0x2F, "CPL", 0, 4, 0, func(c *CPU, _ uint16) { c.cpl() })
	def(0x37, "SCF", 0, 4, 0, func(c *CPU, _ uint16) { c.scf() })
	def(0x3F, "CCF", 0, 4, 0, func(c *CPU, _ uint16) { c.ccf() })
	def(0x76, "HALT", 0, 4, 0, func(c *CPU, _ uint16) { c.halt() })

	def(0xC3, "JP a16", 2, 16, 16, func(c *CPU, nn uint16) { c.jp(nn) })
	def(0xC9, "RET", 0, 16, 16, func(c *CPU, _ uint16) { c.ret() })
	def(0xCD, "CALL a16", 2, 24, 24, func(c *CPU, nn uint16) { c.call(nn) })
	def(0xD9, "RETI", 0, 16, 16, func(c *CPU, _ uint16) {
		c.ret()
		c.interruptsEnabled = true
		c.eiDelay = 0
	})
	def(0xE9, "JP (HL)", 0, 4, 4, func(c *CPU, _ uint16) { c.jp(c.getHL()) })

	// high page loads
	def(0xE0, "LDH (a8), A", 1, 12, 0, func(c *CPU, n uint16) { c.bus.Write(0xFF00|n, c.a) })
	def(0xF0, "LDH A, (a8)", 1, 12, 0, func(c *CPU, n uint16) { c.a = c.bus.Read(0xFF00 | n) })
	def(0xE2, "LD (C), A", 0, 8, 0, func(c *CPU, _ uint16) { c.bus.Write(0xFF00|uint16(c.c), c.a) })
	def(0xF2, "LD A, (C)", 0, 8, 0, func(c *CPU, _ uint16) { c.a = c.bus.Read(0xFF00 | uint16(c.c)) })
	def(0xEA, "LD (a16), A", 2, 16, 0, func(c *CPU, nn uint16) { c.bus.Write(nn, c.a) })
	def(0xFA, "LD A, (a16)", 2, 16, 0, func(c *CPU, nn uint16) { c.a = c.bus.Read(nn) })

	def(0xE8, "ADD SP, r8", 1, 16, 0, func(c *CPU, n uint16) { c.sp = c.spPlusSigned(uint8(n)) })
	def(0xF8, "LD HL, SP+r8", 1, 12, 0, func(c *CPU, n uint16) { c.setHL(c.spPlusSigned(uint8(n))) })
	def(0xF9, "LD SP, HL", 0, 8, 0, func(c *CPU, _ uint16) { c.sp = c.getHL() })

	def(0xF3, "DI", 0, 4, 0, func(c *CPU, _ uint16) { c.disableInterrupts() })
	def(0xFB, "EI", 0, 4, 0, func(c *CPU, _ uint16) { c.enableInterrupts() })

	// 0xCB is dispatched by Step, the entry only serves Disassemble
	instructions[0xCB] = instruction{mnemonic: "PREFIX CB", length: 1, cycles: 4}
}

// Disassemble renders the instruction at pc and returns it with its total
// length in bytes.
func Disassemble(bus Bus, pc uint16) (string, int) {
	opcode := bus.Read(pc)
	if opcode == 0xCB {
		return cbMnemonic(bus.Read(pc + 1)), 2
	}

	in := instructions[opcode]
	text := in.mnemonic
	switch in.length {
	case 1:
		n := bus.Read(pc + 1)
		switch {
		case strings.Contains(text, "r8"):
			text = strings.Replace(text, "r8", fmt.Sprintf("%+d", int8(n)), 1)
		case strings.Contains(text, "a8"):
			text = strings.Replace(text, "a8", fmt.Sprintf("$FF%02X", n), 1)
		case strings.Contains(text, "d8"):
			text = strings.Replace(text, "d8", fmt.Sprintf("$%02X", n), 1)
		default:
			text = fmt.Sprintf("%s $%02X", text, n)
		}
	case 2:
		nn := bit.Combine(bus.Read(pc+2), bus.Read(pc+1))
		value := fmt.Sprintf("$%04X", nn)
		text = strings.Replace(strings.Replace(text, "a16", value, 1), "d16", value, 1)
	}
	if in.exec == nil {
		text = fmt.Sprintf("DB $%02X", opcode)
	}
	return text, 1 + int(in.length)
}
