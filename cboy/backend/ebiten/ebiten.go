//go:build ebiten

package ebiten

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/input"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/video"
)

// Backend implements backend.Backend and backend.MainLooper with ebiten,
// which paces the loop on its own tick.
type Backend struct {
	tex     *ebiten.Image
	frame   func() error
	err     error
	showFPS bool
}

// New creates a new ebiten backend
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.Config) error {
	scale := config.Scale
	if scale <= 0 {
		scale = 3
	}
	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowSize(video.FramebufferWidth*scale, video.FramebufferHeight*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(config.Fullscreen)
	ebiten.SetVsyncEnabled(config.VSync)
	ebiten.SetWindowClosingHandled(true)
	b.tex = ebiten.NewImage(video.FramebufferWidth, video.FramebufferHeight)

	slog.Info("Ebiten backend initialized", "scale", scale)
	return nil
}

func (b *Backend) Cleanup() error {
	if b.tex != nil {
		b.tex.Deallocate()
	}
	return nil
}

// RunMain hands the main loop to ebiten, frame runs once per tick.
func (b *Backend) RunMain(frame func() error) error {
	b.frame = frame
	if err := ebiten.RunGame(b); err != nil {
		return fmt.Errorf("running ebiten: %w", err)
	}
	return b.err
}

// Update is called by ebiten every tick.
func (b *Backend) Update() error {
	if err := b.frame(); err != nil {
		b.err = err
		return ebiten.Termination
	}
	return nil
}

// Draw is called by ebiten whenever the screen needs repainting.
func (b *Backend) Draw(screen *ebiten.Image) {
	screen.DrawImage(b.tex, nil)
	if b.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS %.1f", ebiten.ActualFPS()))
	}
}

func (b *Backend) Layout(outsideWidth, outsideHeight int) (int, int) {
	return video.FramebufferWidth, video.FramebufferHeight
}

// Present copies the frame into the texture drawn by the next Draw.
func (b *Backend) Present(frame *video.Frame) error {
	b.tex.WritePixels(frame.Image().Pix)
	return nil
}

// PollInput reports keys that changed state during the current tick.
func (b *Backend) PollInput() ([]backend.InputEvent, error) {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		b.showFPS = !b.showFPS
	}
	if ebiten.IsWindowBeingClosed() {
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	}

	var events []backend.InputEvent
	for key, act := range keyMapping {
		switch {
		case inpututil.IsKeyJustPressed(key):
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		case inpututil.IsKeyJustReleased(key):
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	return events, nil
}

// ebitenKeyNameMap converts ebiten keys to key names used in default mappings
var ebitenKeyNameMap = map[ebiten.Key]string{
	ebiten.KeyEnter:      "Enter",
	ebiten.KeyShiftLeft:  "Shift",
	ebiten.KeyShiftRight: "Shift",
	ebiten.KeyBackspace:  "Backspace",
	ebiten.KeyArrowUp:    "Up",
	ebiten.KeyArrowDown:  "Down",
	ebiten.KeyArrowLeft:  "Left",
	ebiten.KeyArrowRight: "Right",
	ebiten.KeySpace:      "Space",
	ebiten.KeyEscape:     "Escape",
	ebiten.KeyF5:         "F5",
	ebiten.KeyF6:         "F6",
	ebiten.KeyF12:        "F12",
	ebiten.KeyZ:          "z",
	ebiten.KeyX:          "x",
	ebiten.KeyW:          "w",
	ebiten.KeyA:          "a",
	ebiten.KeyS:          "s",
	ebiten.KeyD:          "d",
	ebiten.KeyP:          "p",
	ebiten.KeyF:          "f",
	ebiten.KeyQ:          "q",
}

func buildKeyMapping() map[ebiten.Key]action.Action {
	mapping := make(map[ebiten.Key]action.Action)
	for key, keyName := range ebitenKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	return mapping
}

var keyMapping = buildKeyMapping()
