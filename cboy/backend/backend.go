// Package backend defines how host frontends plug into the emulator and the
// loop that drives them.
package backend

import (
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/memory"
	"github.com/valerio/go-cboy/cboy/video"
)

// InputEvent represents an input event with action and type
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Config contains configuration options for backends
type Config struct {
	Title      string // Window title
	Scale      int    // Display scale factor
	VSync      bool   // Enable vertical sync
	Fullscreen bool   // Start in fullscreen mode
}

// Presenter receives every completed frame.
type Presenter interface {
	Present(frame *video.Frame) error
}

// InputSource reports host input gathered since the last call.
type InputSource interface {
	PollInput() ([]InputEvent, error)
}

// Backend is a complete host frontend.
type Backend interface {
	// Init initializes the backend with the given configuration
	Init(config Config) error

	Presenter
	InputSource

	// Cleanup releases all backend resources
	Cleanup() error
}

// MainLooper is implemented by backends whose toolkit has to own the main
// loop. RunMain calls frame once per display refresh until it returns an
// error; ErrQuit ends the loop cleanly.
type MainLooper interface {
	RunMain(frame func() error) error
}

// Emulator is what the loop drives, satisfied by *cboy.Machine.
type Emulator interface {
	NextFrame() video.Frame
	SaveState() error
	LoadState() error
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
	ReleaseAll()
}
