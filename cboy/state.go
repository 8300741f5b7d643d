package cboy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/valerio/go-cboy/cboy/cpu"
	"github.com/valerio/go-cboy/cboy/memory"
)

var (
	// ErrNoSaveState is returned by LoadState when no state file exists.
	ErrNoSaveState = errors.New("no save state")
	// ErrStateMismatch is returned when the state was saved for another ROM.
	ErrStateMismatch = errors.New("save state belongs to a different ROM")
	// ErrCorruptState is returned when the state file cannot be decoded.
	ErrCorruptState = errors.New("save state is corrupt")
)

// cpuStateSize is A F B C D E H L, SP, PC, IME and HALT.
const cpuStateSize = 8 + 2 + 2 + 1 + 1

// stateSize is the memory image, the CPU block and the ROM checksum.
const stateSize = memory.StateSize + cpuStateSize + 4

// SaveState writes the machine state to StatePath.
func (m *Machine) SaveState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.WriteFile(m.statePath, m.encodeState(), 0o644); err != nil {
		return fmt.Errorf("writing save state: %w", err)
	}
	slog.Info("State saved", "path", m.statePath)
	return nil
}

// LoadState restores the machine state from StatePath. On any error the
// machine keeps running from its current state.
func (m *Machine) LoadState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.statePath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoSaveState, m.statePath)
	}
	if err != nil {
		return fmt.Errorf("reading save state: %w", err)
	}

	if err := m.decodeState(data); err != nil {
		return err
	}
	slog.Info("State loaded", "path", m.statePath)
	return nil
}

func (m *Machine) encodeState() []byte {
	out := make([]byte, 0, stateSize)
	out = append(out, m.mmu.Snapshot()...)

	s := m.cpu.State()
	out = append(out, s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L)
	out = binary.LittleEndian.AppendUint16(out, s.SP)
	out = binary.LittleEndian.AppendUint16(out, s.PC)
	out = append(out, boolByte(s.IME), boolByte(s.Halted))

	return binary.LittleEndian.AppendUint32(out, m.romCRC)
}

// decodeState validates the whole blob before touching any state.
func (m *Machine) decodeState(data []byte) error {
	if len(data) != stateSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrCorruptState, len(data), stateSize)
	}

	image := data[:memory.StateSize]
	block := data[memory.StateSize : memory.StateSize+cpuStateSize]
	crc := binary.LittleEndian.Uint32(data[memory.StateSize+cpuStateSize:])
	if crc != m.romCRC {
		return fmt.Errorf("%w: checksum %08X, loaded ROM is %08X", ErrStateMismatch, crc, m.romCRC)
	}
	if block[12] > 1 || block[13] > 1 {
		return fmt.Errorf("%w: bad flag bytes %02X %02X", ErrCorruptState, block[12], block[13])
	}

	if err := m.mmu.Restore(image); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	m.cpu.SetState(cpu.State{
		A: block[0], F: block[1], B: block[2], C: block[3],
		D: block[4], E: block[5], H: block[6], L: block[7],
		SP:     binary.LittleEndian.Uint16(block[8:]),
		PC:     binary.LittleEndian.Uint16(block[10:]),
		IME:    block[12] == 1,
		Halted: block[13] == 1,
	})
	m.budget = 0
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
