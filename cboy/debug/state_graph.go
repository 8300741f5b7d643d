package debug

import (
	"fmt"
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/cpu"
)

// Inspector is the read side of a machine.
type Inspector interface {
	Title() string
	ColorMode() bool
	Cycles() uint64
	CPUState() cpu.State
	Peek(address uint16) byte
}

var ioRegisters = []struct {
	name    string
	address uint16
}{
	{"P1", addr.P1}, {"DIV", addr.DIV}, {"TIMA", addr.TIMA}, {"TMA", addr.TMA}, {"TAC", addr.TAC},
	{"IF", addr.IF}, {"IE", addr.IE},
	{"LCDC", addr.LCDC}, {"STAT", addr.STAT}, {"LY", addr.LY}, {"LYC", addr.LYC},
	{"SCY", addr.SCY}, {"SCX", addr.SCX}, {"WY", addr.WY}, {"WX", addr.WX},
	{"BGP", addr.BGP}, {"OBP0", addr.OBP0}, {"OBP1", addr.OBP1},
}

// MachineView is the subset of machine state dumped by WriteStateGraph.
type MachineView struct {
	Title     string
	ColorMode bool
	Cycles    uint64
	CPU       Registers
	IO        map[string]string
}

// Registers is the register file formatted for reading.
type Registers struct {
	AF, BC, DE, HL, SP, PC string
	IME, Halted            bool
}

// NewRegisters formats a CPU state.
func NewRegisters(s cpu.State) Registers {
	return Registers{
		AF:     fmt.Sprintf("%02X%02X", s.A, s.F),
		BC:     fmt.Sprintf("%02X%02X", s.B, s.C),
		DE:     fmt.Sprintf("%02X%02X", s.D, s.E),
		HL:     fmt.Sprintf("%02X%02X", s.H, s.L),
		SP:     fmt.Sprintf("%04X", s.SP),
		PC:     fmt.Sprintf("%04X", s.PC),
		IME:    s.IME,
		Halted: s.Halted,
	}
}

// Inspect captures the current state of m.
func Inspect(m Inspector) *MachineView {
	view := &MachineView{
		Title:     m.Title(),
		ColorMode: m.ColorMode(),
		Cycles:    m.Cycles(),
		CPU:       NewRegisters(m.CPUState()),
		IO:        make(map[string]string, len(ioRegisters)),
	}
	for _, r := range ioRegisters {
		view.IO[r.name] = fmt.Sprintf("%02X", m.Peek(r.address))
	}
	return view
}

// WriteStateGraph writes a graphviz DOT description of view to w.
func WriteStateGraph(w io.Writer, view *MachineView) {
	memviz.Map(w, view)
}
