//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/input"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/video"
)

const bytesPerPixel = 4

// Backend implements backend.Backend using SDL2 bindings.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stub, see build tags (sdl2).
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pending  []backend.InputEvent
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.Config) error {
	scale := int32(config.Scale)
	if scale <= 0 {
		scale = 4
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	var windowFlags uint32 = sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE
	if config.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*scale,
		video.FramebufferHeight*scale,
		windowFlags,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	var rendererFlags uint32 = sdl.RENDERER_ACCELERATED
	if config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer
	renderer.SetLogicalSize(video.FramebufferWidth, video.FramebufferHeight)

	// ABGR8888 on little endian is R, G, B, A in memory, the image.RGBA layout
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		s.Cleanup()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	slog.Info("SDL2 backend initialized", "scale", scale, "vsync", config.VSync)
	return nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	if s.renderer != nil {
		s.renderer.Destroy()
		s.renderer = nil
	}
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	sdl.Quit()
	return nil
}

// PollInput drains the SDL event queue.
func (s *Backend) PollInput() ([]backend.InputEvent, error) {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		s.handleEvent(e)
	}
	events := s.pending
	s.pending = nil
	return events, nil
}

// Present uploads the frame to the texture and draws it scaled up.
func (s *Backend) Present(frame *video.Frame) error {
	img := frame.Image()
	if err := s.texture.Update(nil, unsafe.Pointer(&img.Pix[0]), video.FramebufferWidth*bytesPerPixel); err != nil {
		return fmt.Errorf("updating texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return fmt.Errorf("copying texture: %w", err)
	}
	s.renderer.Present()
	return nil
}

func (s *Backend) handleEvent(e sdl.Event) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.pending = append(s.pending, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_F11 {
			s.toggleFullscreen()
			return
		}
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat == 0:
			s.pending = append(s.pending, backend.InputEvent{Action: act, Type: event.Press})
		case e.Type == sdl.KEYUP:
			s.pending = append(s.pending, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
}

func (s *Backend) toggleFullscreen() {
	var flags uint32
	if s.window.GetFlags()&sdl.WINDOW_FULLSCREEN_DESKTOP == 0 {
		flags = sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if err := s.window.SetFullscreen(flags); err != nil {
		slog.Warn("Failed to toggle fullscreen", "error", err)
	}
}

// sdlKeyNameMap converts SDL keycodes to key names used in default mappings
var sdlKeyNameMap = map[sdl.Keycode]string{
	sdl.K_RETURN:    "Enter",
	sdl.K_LSHIFT:    "Shift",
	sdl.K_RSHIFT:    "Shift",
	sdl.K_BACKSPACE: "Backspace",
	sdl.K_UP:        "Up",
	sdl.K_DOWN:      "Down",
	sdl.K_LEFT:      "Left",
	sdl.K_RIGHT:     "Right",
	sdl.K_SPACE:     "Space",
	sdl.K_ESCAPE:    "Escape",
	sdl.K_F5:        "F5",
	sdl.K_F6:        "F6",
	sdl.K_F12:       "F12",
	sdl.K_z:         "z",
	sdl.K_x:         "x",
	sdl.K_w:         "w",
	sdl.K_a:         "a",
	sdl.K_s:         "s",
	sdl.K_d:         "d",
	sdl.K_p:         "p",
	sdl.K_f:         "f",
	sdl.K_q:         "q",
}

func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action)
	for key, keyName := range sdlKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	return mapping
}

// keyMapping maps SDL2 keys to actions
var keyMapping = buildKeyMapping()
