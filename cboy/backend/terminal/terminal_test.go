package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/cpu"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/video"
)

type fakeInspector struct{}

func (fakeInspector) Title() string { return "TEST" }
func (fakeInspector) ColorMode() bool { return false }
func (fakeInspector) Cycles() uint64 { return 1234 }
func (fakeInspector) CPUState() cpu.State { return cpu.State{PC: 0x0150} }
func (fakeInspector) Peek(address uint16) byte { return 0 }

func newTestBackend(t *testing.T) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(minTermWidth, minTermHeight)

	b := New(slog.LevelInfo)
	b.SetInspector(fakeInspector{})
	clock := time.Unix(100, 0)
	b.now = func() time.Time { return clock }
	b.init(screen, backend.Config{Title: "TEST"})
	t.Cleanup(func() { b.Cleanup() })
	return b, screen, &clock
}

func poll(t *testing.T, b *Backend) []backend.InputEvent {
	t.Helper()
	events, err := b.PollInput()
	require.NoError(t, err)
	return events
}

func TestPollInput_KeyLifecycle(t *testing.T) {
	b, screen, clock := newTestBackend(t)

	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Press}}, poll(t, b))

	// key repeat keeps it held
	*clock = clock.Add(50 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Hold}}, poll(t, b))

	*clock = clock.Add(200 * time.Millisecond)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Release}}, poll(t, b))

	assert.Empty(t, poll(t, b))
}

func TestPollInput_ExclusiveDirections(t *testing.T) {
	b, screen, _ := newTestBackend(t)

	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	poll(t, b)

	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	events := poll(t, b)
	assert.ElementsMatch(t, []backend.InputEvent{
		{Action: action.GBDPadLeft, Type: event.Press},
		{Action: action.GBDPadUp, Type: event.Release},
	}, events)
}

func TestPollInput_EmulatorKeys(t *testing.T) {
	tests := []struct {
		key      tcell.Key
		r        rune
		expected action.Action
	}{
		{tcell.KeyF5, 0, action.EmulatorLoadState},
		{tcell.KeyF6, 0, action.EmulatorSaveState},
		{tcell.KeyF12, 0, action.EmulatorSnapshot},
		{tcell.KeyEscape, 0, action.EmulatorQuit},
		{tcell.KeyCtrlC, 0, action.EmulatorQuit},
		{tcell.KeyRune, ' ', action.EmulatorPauseToggle},
		{tcell.KeyRune, 'f', action.EmulatorStepFrame},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			b, screen, _ := newTestBackend(t)
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			assert.Equal(t, []backend.InputEvent{{Action: tt.expected, Type: event.Press}}, poll(t, b))
		})
	}
}

func TestPollInput_LogLevelKeys(t *testing.T) {
	b, screen, _ := newTestBackend(t)

	screen.InjectKey(tcell.KeyRune, '+', tcell.ModNone)
	assert.Empty(t, poll(t, b))
	assert.Equal(t, slog.LevelDebug, b.logLevel.Level())

	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '-', tcell.ModNone)
	poll(t, b)
	assert.Equal(t, slog.LevelWarn, b.logLevel.Level())

	screen.InjectKey(tcell.KeyF10, 0, tcell.ModNone)
	poll(t, b)
	assert.True(t, b.showDebug)
}

func TestPresent_RegisterPanel(t *testing.T) {
	b, screen, _ := newTestBackend(t)
	b.showDebug = true

	var frame video.Frame
	require.NoError(t, b.Present(&frame))

	contents, w, _ := screen.GetContents()
	row := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		row = append(row, contents[3*w+x].Runes...)
	}
	assert.Contains(t, string(row), "SP: 0000  PC: 0150")
}

func TestPresent_DrawsHalfBlocks(t *testing.T) {
	b, screen, _ := newTestBackend(t)

	var frame video.Frame
	frame.Pix[0][0] = 3 // black over white
	frame.Pix[3][5] = 2 // white over dark grey
	require.NoError(t, b.Present(&frame))

	ch, _, style, _ := screen.GetContent(0, 1)
	assert.Equal(t, '▀', ch)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0xFF, 0xFF, 0xFF), bg)

	_, _, style, _ = screen.GetContent(5, 2)
	fg, bg, _ = style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xFF, 0xFF, 0xFF), fg)
	assert.Equal(t, tcell.NewRGBColor(0x4C, 0x4C, 0x4C), bg)
}

func TestPresent_TooSmall(t *testing.T) {
	b, screen, _ := newTestBackend(t)
	screen.SetSize(80, 24)

	var frame video.Frame
	require.NoError(t, b.Present(&frame))

	ch, _, _, _ := screen.GetContent(0, 12)
	assert.Equal(t, 'T', ch)
}
