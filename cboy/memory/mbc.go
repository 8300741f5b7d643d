package memory

// BankController implements simple ROM banking: bank 0 is fixed at
// 0x0000-0x3FFF and the bank selected through 0x2000-0x3FFF is visible at
// 0x4000-0x7FFF. The RAM bank and mode registers are tracked so programs can
// read back what they wrote, but cartridge RAM itself is a single flat bank
// owned by the MMU.
type BankController struct {
	rom         []uint8
	romBank     uint8
	ramBank     uint8
	bankingMode uint8
}

// NewBankController creates a controller with bank 1 selected.
func NewBankController(rom []uint8) *BankController {
	return &BankController{
		rom:     rom,
		romBank: 1,
	}
}

func (m *BankController) Read(addr uint16) uint8 {
	var offset uint32
	if addr < 0x4000 {
		offset = uint32(addr)
	} else {
		offset = uint32(m.romBank)*0x4000 + uint32(addr-0x4000)
	}
	// banks past the end of the image read as open bus
	if offset >= uint32(len(m.rom)) {
		return 0xFF
	}
	return m.rom[offset]
}

// Write handles register writes to the cartridge window. Anything outside the
// three register windows (i.e. 0x0000-0x1FFF) is ignored.
func (m *BankController) Write(addr uint16, value uint8) {
	switch {
	case addr >= 0x2000 && addr <= 0x3FFF:
		if value == 0 {
			value = 1
		}
		m.romBank = value
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value
	case addr >= 0x6000 && addr <= 0x7FFF:
		m.bankingMode = value
	}
}

// ROMBank returns the bank currently mapped at 0x4000.
func (m *BankController) ROMBank() uint8 { return m.romBank }

// registers and restore are used by save states.
func (m *BankController) registers() [3]uint8 {
	return [3]uint8{m.romBank, m.ramBank, m.bankingMode}
}

func (m *BankController) restore(regs [3]uint8) {
	m.romBank = regs[0]
	if m.romBank == 0 {
		m.romBank = 1
	}
	m.ramBank = regs[1]
	m.bankingMode = regs[2]
}
