package cboy

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-cboy/cboy/addr"
	"github.com/valerio/go-cboy/cboy/cpu"
	"github.com/valerio/go-cboy/cboy/video"
)

// maxIdleFrames bounds how long NextFrame keeps running with the LCD off
// before handing a blank frame back to the host.
const maxIdleFrames = 60

// FrameStats describes the work done by the last NextFrame call.
type FrameStats struct {
	// Cycles is the number of cycles actually executed. It differs from
	// Charged by at most one instruction since overshoot is carried over.
	Cycles int
	// Charged is the cycle budget of the frame: video.FrameCycles per frame
	// run, idle ones included.
	Charged int
	// Instructions counts CPU steps, halted ones included.
	Instructions int
	// IdleFrames is the number of LCD-off frames that ran before the
	// returned one.
	IdleFrames int
	// Interrupts counts serviced interrupts, indexed by addr.Interrupt.
	Interrupts [addr.InterruptCount]uint64
}

// LastFrameStats returns the stats of the last completed NextFrame call.
func (m *Machine) LastFrameStats() FrameStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Cycles is the total number of cycles executed since power on.
func (m *Machine) Cycles() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

// NextFrame runs the machine until the PPU has produced a full frame and
// returns it. While the LCD is off, whole frames are idled through, up to
// maxIdleFrames, after which a blank frame is returned.
func (m *Machine) NextFrame() video.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats = FrameStats{}
	serviced := m.irq.Serviced()
	startCycles := m.cycles
	defer func() {
		m.stats.Cycles = int(m.cycles - startCycles)
		after := m.irq.Serviced()
		for i := range after {
			m.stats.Interrupts[i] = after[i] - serviced[i]
		}
	}()

	for !m.ppu.Enabled() {
		if m.stats.IdleFrames == maxIdleFrames {
			return m.blankFrame()
		}
		m.idleFrame()
		m.stats.IdleFrames++
	}

	m.stats.Charged += video.FrameCycles
	m.ppu.BeginFrame()

	for ly := range video.VisibleLines {
		if !m.ppu.Enabled() {
			return m.finishDisabled(ly)
		}
		m.ppu.BeginLine(ly)
		m.run(video.OAMScanCycles)
		m.ppu.EnterTransfer()
		m.run(video.TransferCycles)
		m.ppu.EnterHBlank()
		m.run(video.HBlankCycles)
	}

	frame := m.ppu.EnterVBlank()
	m.run(video.LineCycles)
	for ly := video.VisibleLines + 1; ly < video.TotalLines; ly++ {
		m.ppu.VBlankLine(ly)
		m.run(video.LineCycles)
	}
	return frame
}

// idleFrame burns one frame worth of lines with the LCD off.
func (m *Machine) idleFrame() {
	m.stats.Charged += video.FrameCycles
	for range video.TotalLines {
		m.ppu.Idle()
		m.run(video.LineCycles)
	}
}

// finishDisabled completes a frame whose LCD was switched off before line
// from: the rest of the picture is blank and the remaining lines idle.
func (m *Machine) finishDisabled(from int) video.Frame {
	slog.Debug("LCD switched off mid frame", "line", from)
	for ly := from; ly < video.TotalLines; ly++ {
		m.ppu.BlankLine(ly)
		m.ppu.Idle()
		m.run(video.LineCycles)
	}
	return m.ppu.Frame()
}

func (m *Machine) blankFrame() video.Frame {
	var f video.Frame
	f.Color = m.mmu.ColorMode()
	if f.Color {
		for y := range f.Pix {
			for x := range f.Pix[y] {
				f.Pix[y][x] = 0x7FFF
			}
		}
	}
	return f
}

// run steps the machine until budget cycles (plus the debt of the previous
// run) have elapsed.
func (m *Machine) run(budget int) {
	m.budget += budget
	for m.budget > 0 {
		cycles := m.step()
		m.budget -= cycles
	}
}

// step runs one instruction boundary: interrupt dispatch, one instruction
// and the matching timer and serial ticks.
func (m *Machine) step() int {
	m.irq.PollAndService(m.cpu)

	if m.trace && !m.cpu.Halted() {
		pc := m.cpu.PC()
		text, _ := cpu.Disassemble(m.mmu, pc)
		slog.Debug("trace", "pc", fmt.Sprintf("%04X", pc), "op", text)
	}

	cycles := m.cpu.Step()
	m.mmu.Tick(cycles)

	m.cycles += uint64(cycles)
	m.stats.Instructions++
	return cycles
}
