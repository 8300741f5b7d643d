package memory

import "sync/atomic"

// JoypadKey represents a key on the Gameboy joypad. The value is the bit
// index inside the packed controls byte: directions in the low nibble,
// buttons in the high one.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// JoypadKeyCount is the number of physical keys.
const JoypadKeyCount = 8

func (k JoypadKey) String() string {
	switch k {
	case JoypadRight:
		return "right"
	case JoypadLeft:
		return "left"
	case JoypadUp:
		return "up"
	case JoypadDown:
		return "down"
	case JoypadA:
		return "a"
	case JoypadB:
		return "b"
	case JoypadSelect:
		return "select"
	case JoypadStart:
		return "start"
	}
	return "unknown"
}

// Joypad holds the pressed state of the eight keys. It is written by the
// host input thread and read by the emulation thread, so all state lives in
// atomics: a bit set to 1 means the key is pressed.
type Joypad struct {
	pressed atomic.Uint32
	edges   atomic.Uint32
}

// NewJoypad creates a Joypad with every key released.
func NewJoypad() *Joypad {
	return &Joypad{}
}

// Press marks the key as pressed. A released to pressed transition is
// remembered until the next TakeEdges call so it can raise the joypad
// interrupt.
func (j *Joypad) Press(key JoypadKey) {
	if key >= JoypadKeyCount {
		return
	}
	mask := uint32(1) << key
	old := j.pressed.Or(mask)
	if old&mask == 0 {
		j.edges.Or(mask)
	}
}

// Release marks the key as released.
func (j *Joypad) Release(key JoypadKey) {
	if key >= JoypadKeyCount {
		return
	}
	j.pressed.And(^(uint32(1) << key))
}

// ReleaseAll sets every key to released.
func (j *Joypad) ReleaseAll() {
	j.pressed.Store(0)
}

// Pressed returns the packed pressed state, 1 = pressed.
func (j *Joypad) Pressed() uint8 {
	return uint8(j.pressed.Load())
}

// TakeEdges returns and clears the keys that were pressed since the last call.
func (j *Joypad) TakeEdges() uint8 {
	return uint8(j.edges.Swap(0))
}

// Read synthesizes the P1 register from the selection bits last written by
// the program and the current key state.
//
// The mapping (0 means selected / pressed):
//   - bit 4 clear: bits 0-3 report the d-pad (Right, Left, Up, Down)
//   - bit 5 clear: bits 0-3 report the buttons (A, B, Select, Start)
//   - both clear: hw does an AND of both groups
//   - neither clear: 0x0F
//
// Bits 6-7 always read as 1.
func (j *Joypad) Read(selection uint8) uint8 {
	state := ^j.Pressed()
	dpad := state & 0x0F
	buttons := state >> 4

	selectDpad := selection&0x10 == 0
	selectButtons := selection&0x20 == 0

	result := uint8(0xC0) | selection&0x30
	switch {
	case selectDpad && selectButtons:
		result |= dpad & buttons
	case selectDpad:
		result |= dpad
	case selectButtons:
		result |= buttons
	default:
		result |= 0x0F
	}
	return result
}
