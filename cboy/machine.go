// Package cboy ties the CPU, memory, timer and PPU into a Machine that is
// stepped one frame at a time by a host loop.
package cboy

import (
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"sync"

	"github.com/valerio/go-cboy/cboy/cpu"
	"github.com/valerio/go-cboy/cboy/memory"
	"github.com/valerio/go-cboy/cboy/serial"
	"github.com/valerio/go-cboy/cboy/video"
)

// Config holds the knobs a host can set when creating a Machine.
type Config struct {
	// ForceDMG runs color-aware cartridges in monochrome mode.
	ForceDMG bool
	// Trace logs every executed instruction at debug level.
	Trace bool
	// SerialSink receives every byte the program sends through the serial
	// port. Nil discards them.
	SerialSink serial.Sink
	// StatePath overrides where SaveState/LoadState keep the state,
	// "<rom>.sav" by default.
	StatePath string
}

// Machine is the whole emulated console. Its methods are safe to call from
// a host goroutine while another presents frames: NextFrame, SaveState and
// LoadState serialize on an internal lock, key presses are lock free.
type Machine struct {
	mu sync.Mutex

	cart   *memory.Cartridge
	mmu    *memory.MMU
	cpu    *cpu.CPU
	ppu    *video.PPU
	irq    cpu.InterruptController
	joypad *memory.Joypad

	romCRC    uint32
	statePath string
	trace     bool

	// budget is the number of cycles still owed to the current mode. It
	// goes negative when an instruction overshoots, and the next mode starts
	// that much shorter.
	budget int
	cycles uint64
	stats  FrameStats
}

// LoadROM reads a cartridge image from path and powers on a Machine with it.
func LoadROM(path string, cfg Config) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	slog.Info("Loaded ROM", "path", path, "bytes", len(data), "title", cart.Title(),
		"type", fmt.Sprintf("0x%02X", cart.Type()), "banks", cart.ROMBanks())

	if cfg.StatePath == "" {
		cfg.StatePath = path + ".sav"
	}
	return New(cart, cfg), nil
}

// New powers on a Machine with cart inserted, in the state the boot ROM
// leaves behind.
func New(cart *memory.Cartridge, cfg Config) *Machine {
	if !cart.HeaderChecksumValid() {
		slog.Warn("Cartridge header checksum mismatch, real hardware would not boot it", "title", cart.Title())
	}

	color := cart.SupportsColor() && !cfg.ForceDMG
	joypad := memory.NewJoypad()

	opts := []memory.Option{memory.WithColor(color), memory.WithJoypad(joypad)}
	if cfg.SerialSink != nil {
		opts = append(opts, memory.WithSerialSink(cfg.SerialSink))
	}
	mmu := memory.NewWithCartridge(cart, opts...)

	var cpuOpts []cpu.Option
	if color {
		cpuOpts = append(cpuOpts, cpu.WithColorBoot())
	}

	m := &Machine{
		cart:      cart,
		mmu:       mmu,
		cpu:       cpu.New(mmu, cpuOpts...),
		ppu:       video.New(mmu),
		joypad:    joypad,
		romCRC:    crc32.ChecksumIEEE(cart.Data()),
		statePath: cfg.StatePath,
		trace:     cfg.Trace,
	}
	slog.Debug("Machine powered on", "color", color, "state", m.statePath)
	return m
}

// Title returns the cartridge title.
func (m *Machine) Title() string { return m.cart.Title() }

// ColorMode reports whether the machine runs with the color-console
// extensions enabled.
func (m *Machine) ColorMode() bool { return m.mmu.ColorMode() }

// StatePath is the file used by SaveState and LoadState.
func (m *Machine) StatePath() string { return m.statePath }

// Press marks a key as held down.
func (m *Machine) Press(key memory.JoypadKey) { m.joypad.Press(key) }

// Release marks a key as released.
func (m *Machine) Release(key memory.JoypadKey) { m.joypad.Release(key) }

// ReleaseAll releases every key.
func (m *Machine) ReleaseAll() { m.joypad.ReleaseAll() }

// CPUState returns a copy of the register file.
func (m *Machine) CPUState() cpu.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.State()
}

// Peek reads a byte of the address space as the program would see it.
func (m *Machine) Peek(address uint16) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mmu.Read(address)
}
