package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// console controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorSnapshot
	EmulatorSaveState
	EmulatorLoadState
	EmulatorQuit
)

// Category groups actions by who consumes them.
type Category int

const (
	// CategoryGameInput actions are forwarded to the emulated joypad.
	CategoryGameInput Category = iota
	// CategoryEmulator actions drive the host loop.
	CategoryEmulator
)

// Info describes an action for logs and help text.
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	GBButtonA:      {"A", CategoryGameInput},
	GBButtonB:      {"B", CategoryGameInput},
	GBButtonStart:  {"Start", CategoryGameInput},
	GBButtonSelect: {"Select", CategoryGameInput},
	GBDPadUp:       {"Up", CategoryGameInput},
	GBDPadDown:     {"Down", CategoryGameInput},
	GBDPadLeft:     {"Left", CategoryGameInput},
	GBDPadRight:    {"Right", CategoryGameInput},

	EmulatorPauseToggle: {"Pause/Resume", CategoryEmulator},
	EmulatorStepFrame:   {"Step frame", CategoryEmulator},
	EmulatorSnapshot:    {"Snapshot", CategoryEmulator},
	EmulatorSaveState:   {"Save state", CategoryEmulator},
	EmulatorLoadState:   {"Load state", CategoryEmulator},
	EmulatorQuit:        {"Quit", CategoryEmulator},
}

// GetInfo returns the description and category of act.
func GetInfo(act Action) Info {
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Description: "Unknown", Category: CategoryEmulator}
}

func (a Action) String() string { return GetInfo(a).Description }
