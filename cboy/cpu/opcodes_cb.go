package cpu

import "fmt"

var cbShiftNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

// execCB runs a 0xCB prefixed opcode. The layout is regular: bits 0-2 pick
// the operand (B C D E H L (HL) A), bits 3-5 the shift kind or bit index and
// bits 6-7 the group (shift, BIT, RES, SET).
//
// Cycle costs include the prefix fetch: 8 on registers, 16 for a
// read-modify-write on (HL) and 12 for BIT n, (HL).
func (c *CPU) execCB(opcode uint8) int {
	r := opcode & 0x07
	y := (opcode >> 3) & 0x07

	value := c.reg(r)

	switch opcode >> 6 {
	case 0:
		var result uint8
		switch y {
		case 0:
			result = c.rlc(value)
		case 1:
			result = c.rrc(value)
		case 2:
			result = c.rl(value)
		case 3:
			result = c.rr(value)
		case 4:
			result = c.sla(value)
		case 5:
			result = c.sra(value)
		case 6:
			result = c.swap(value)
		default:
			result = c.srl(value)
		}
		c.setReg(r, result)
	case 1:
		c.bitTest(y, value)
		if r == 6 {
			return 12
		}
		return 8
	case 2:
		c.setReg(r, value&^(1<<y))
	default:
		c.setReg(r, value|(1<<y))
	}

	if r == 6 {
		return 16
	}
	return 8
}

func cbMnemonic(opcode uint8) string {
	r := regNames[opcode&0x07]
	y := (opcode >> 3) & 0x07

	switch opcode >> 6 {
	case 0:
		return fmt.Sprintf("%s %s", cbShiftNames[y], r)
	case 1:
		return fmt.Sprintf("BIT %d, %s", y, r)
	case 2:
		return fmt.Sprintf("RES %d, %s", y, r)
	default:
		return fmt.Sprintf("SET %d, %s", y, r)
	}
}
