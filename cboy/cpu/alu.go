package cpu

import "github.com/valerio/go-cboy/cboy/bit"

// inc increments r, carry is left untouched.
func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0)
	c.resetFlag(subFlag)
}

// dec decrements r, carry is left untouched.
func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0xF)
	c.setFlag(subFlag)
}

// addToA sets the result of adding value (and the carry, when withCarry) to A.
func (c *CPU) addToA(value uint8, withCarry bool) {
	var carryIn uint8
	if withCarry {
		carryIn = c.flagToBit(carryFlag)
	}

	a := c.a
	sum := uint16(a) + uint16(value) + uint16(carryIn)
	result := uint8(sum)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF)+carryIn > 0xF)
	c.setFlagToCondition(carryFlag, sum > 0xFF)

	c.a = result
}

// subtract computes A - value (- carry, when withCarry) and sets all flags.
// The result is returned rather than stored so CP can share it.
func (c *CPU) subtract(value uint8, withCarry bool) uint8 {
	var carryIn uint8
	if withCarry {
		carryIn = c.flagToBit(carryFlag)
	}

	a := c.a
	result := a - value - carryIn

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, uint16(a&0xF) < uint16(value&0xF)+uint16(carryIn))
	c.setFlagToCondition(carryFlag, uint16(a) < uint16(value)+uint16(carryIn))

	return result
}

func (c *CPU) sub(value uint8) { c.a = c.subtract(value, false) }
func (c *CPU) sbc(value uint8) { c.a = c.subtract(value, true) }

// cp compares A with value, only flags are affected.
func (c *CPU) cp(value uint8) { c.subtract(value, false) }

func (c *CPU) and(value uint8) {
	c.a &= value
	c.f = uint8(halfCarryFlag)
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.f = 0
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.f = 0
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

// alu dispatches the eight accumulator operations in opcode order:
// ADD ADC SUB SBC AND XOR OR CP.
func (c *CPU) alu(op, value uint8) {
	switch op & 0x07 {
	case 0:
		c.addToA(value, false)
	case 1:
		c.addToA(value, true)
	case 2:
		c.sub(value)
	case 3:
		c.sbc(value)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.cp(value)
	}
}

// addToHL sets the result of adding a 16 bit value to HL, zero is not affected.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, result > 0xFFFF)

	c.setHL(uint16(result))
}

// spPlusSigned returns SP + the sign extended displacement. H and C come from
// the unsigned addition of the low byte of SP and the raw operand byte.
func (c *CPU) spPlusSigned(displacement uint8) uint16 {
	sp := c.sp

	c.f = 0
	c.setFlagToCondition(halfCarryFlag, (sp&0xF)+uint16(displacement&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, (sp&0xFF)+uint16(displacement) > 0xFF)

	return bit.AddSigned(sp, displacement)
}

// daa adjusts A into packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSetFlag(carryFlag)

	if !c.isSetFlag(subFlag) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// The rotate/shift helpers return the new value and set Z from it. The
// accumulator forms (RLCA, RLA, RRCA, RRA) clear Z afterwards.

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.shiftFlags(result, value&0x80 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.shiftFlags(result, value&0x80 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.shiftFlags(result, value&0x80 != 0)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.shiftFlags(result, value&0x01 != 0)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := bit.Swap(value)
	c.shiftFlags(result, false)
	return result
}

func (c *CPU) shiftFlags(result uint8, carry bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(carryFlag, carry)
}

// bitTest sets Z if the bit at index is 0. Carry is preserved.
func (c *CPU) bitTest(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// jr adds the sign extended displacement to PC.
func (c *CPU) jr(displacement uint8) {
	c.pc = bit.AddSigned(c.pc, displacement)
	c.branched = true
}

func (c *CPU) jp(address uint16) {
	c.pc = address
	c.branched = true
}

func (c *CPU) call(address uint16) {
	c.pushStack(c.pc)
	c.pc = address
	c.branched = true
}

func (c *CPU) ret() {
	c.pc = c.popStack()
	c.branched = true
}

func (c *CPU) rst(vector uint16) {
	c.pushStack(c.pc)
	c.pc = vector
}
