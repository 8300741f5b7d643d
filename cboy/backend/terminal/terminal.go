// Package terminal draws frames in a terminal with tcell, two pixel rows per
// character cell.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/debug"
	"github.com/valerio/go-cboy/cboy/input"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	registerHeight = 9
	minTermWidth   = width + 40
	minTermHeight  = height/2 + 2

	// Terminals only report key presses, a key counts as held until no
	// repeat arrived for this long.
	keyTimeout = 100 * time.Millisecond
)

// Backend implements backend.Backend using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	logBuffer *LogBuffer
	logLevel  *slog.LevelVar
	config    backend.Config
	inspector debug.Inspector
	showDebug bool
	signals   chan os.Signal

	eventQueue []backend.InputEvent        // non-game events since last poll
	keyStates  map[action.Action]time.Time // last time each key was seen
	activeKeys map[action.Action]bool      // keys active at the previous poll

	now func() time.Time
}

// New creates a new terminal backend showing logs at level and above.
func New(level slog.Level) *Backend {
	logLevel := new(slog.LevelVar)
	logLevel.Set(level)
	return &Backend{
		logLevel:   logLevel,
		keyStates:  make(map[action.Action]time.Time),
		activeKeys: make(map[action.Action]bool),
		now:        time.Now,
	}
}

// SetInspector sets the machine shown in the register panel (F10). Without
// one the panel stays hidden.
func (t *Backend) SetInspector(inspector debug.Inspector) {
	t.inspector = inspector
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.init(screen, config)

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	return nil
}

func (t *Backend) init(screen tcell.Screen, config backend.Config) {
	t.screen = screen
	t.config = config

	// logs would corrupt the screen, render them in a panel instead
	t.logBuffer = NewLogBuffer(100)
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()
	slog.Info("Terminal backend initialized", "title", config.Title)
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

// PollInput drains pending terminal events and turns key repeats into
// press, hold and release events.
func (t *Backend) PollInput() ([]backend.InputEvent, error) {
	now := t.now()

	select {
	case <-t.signals:
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	var events []backend.InputEvent
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		currentlyActive[act] = true
		if !t.activeKeys[act] {
			slog.Debug("Key press", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}

	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	events = append(events, t.eventQueue...)
	t.eventQueue = nil
	return events, nil
}

// Present renders a frame.
func (t *Backend) Present(frame *video.Frame) error {
	t.render(frame)
	t.screen.Show()
	return nil
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyBS:     "Backspace",
	tcell.KeyDEL:    "Backspace",
	tcell.KeyF5:     "F5",
	tcell.KeyF6:     "F6",
	tcell.KeyF12:    "F12",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

// buildRuneMapping takes every single character key name of the defaults.
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for keyName, act := range input.DefaultKeyMap {
		if runes := []rune(keyName); len(runes) == 1 {
			mapping[runes[0]] = act
		}
	}
	mapping[' '] = action.EmulatorPauseToggle
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	switch ev.Key() {
	case tcell.KeyF10:
		t.showDebug = !t.showDebug
		return
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case '+', '=':
			t.changeLogLevel(1)
		case '-', '_':
			t.changeLogLevel(-1)
		default:
			if act, ok := runeMapping[r]; ok {
				t.handleAction(act, now)
			}
		}
		return
	}

	if act, ok := keyMapping[ev.Key()]; ok {
		t.handleAction(act, now)
	}
}

func (t *Backend) handleAction(act action.Action, now time.Time) {
	if action.GetInfo(act).Category != action.CategoryGameInput {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		return
	}

	switch act {
	case action.GBDPadUp, action.GBDPadDown, action.GBDPadLeft, action.GBDPadRight:
		// terminals repeat one key at a time, keep directions exclusive
		delete(t.keyStates, action.GBDPadUp)
		delete(t.keyStates, action.GBDPadDown)
		delete(t.keyStates, action.GBDPadLeft)
		delete(t.keyStates, action.GBDPadRight)
	}
	t.keyStates[act] = now
}

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel.Level()
	newLevel := oldLevel
	switch {
	case direction > 0 && oldLevel > slog.LevelDebug:
		newLevel = oldLevel - 4
	case direction < 0 && oldLevel < slog.LevelError:
		newLevel = oldLevel + 4
	}
	if newLevel != oldLevel {
		t.logLevel.Set(newLevel)
		slog.Warn("Log filter changed", "from", oldLevel, "to", newLevel)
	}
}

func (t *Backend) render(frame *video.Frame) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		t.drawText(0, termHeight/2, termWidth, fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight), style)
		return
	}

	dividerX := width + 1
	panelX := dividerX + 2
	panelWidth := termWidth - panelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawFrame(frame)

	logsY := 1
	if t.showDebug && t.inspector != nil {
		t.drawRegisters(panelX, 1, panelWidth)
		logsY = registerHeight + 2
	}
	t.drawLogs(panelX, logsY, panelWidth, termHeight)
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	t.drawText(1, 0, dividerX-1, " "+t.config.Title+" ", titleStyle)
	t.drawText(dividerX+2, 0, termWidth, fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level()), titleStyle)

	help := " z/x=A/B Enter=start Bksp=select SPACE=pause F=frame F5=load F6=save F10=registers F12=snapshot ESC=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

// drawFrame packs two pixel rows in each cell: the upper half block takes
// the top pixel as foreground and the bottom one as background.
func (t *Backend) drawFrame(frame *video.Frame) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := frame.RGBA(x, y)
			bottom := frame.RGBA(x, y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(x, y/2+1, '▀', nil, style)
		}
	}
}

func (t *Backend) drawRegisters(startX, startY, maxWidth int) {
	view := debug.Inspect(t.inspector)
	cpu := view.CPU

	lines := []string{
		fmt.Sprintf("AF: %s  BC: %s", cpu.AF, cpu.BC),
		fmt.Sprintf("DE: %s  HL: %s", cpu.DE, cpu.HL),
		fmt.Sprintf("SP: %s  PC: %s", cpu.SP, cpu.PC),
		fmt.Sprintf("IME: %t  HALT: %t", cpu.IME, cpu.Halted),
		fmt.Sprintf("IE: %s  IF: %s", view.IO["IE"], view.IO["IF"]),
		fmt.Sprintf("LCDC: %s  STAT: %s  LY: %s", view.IO["LCDC"], view.IO["STAT"], view.IO["LY"]),
		fmt.Sprintf("DIV: %s  TIMA: %s  TAC: %s", view.IO["DIV"], view.IO["TIMA"], view.IO["TAC"]),
		fmt.Sprintf("Cycles: %d", view.Cycles),
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		t.drawText(startX, startY+i, maxWidth, line, style)
	}
}

func (t *Backend) drawLogs(startX, startY, maxWidth, termHeight int) {
	availableHeight := termHeight - startY - 1
	if maxWidth <= 0 || availableHeight <= 0 {
		return
	}

	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}

	for i, entry := range t.logBuffer.GetRecent(availableHeight) {
		text := FormatLogEntry(entry)
		if len(text) > maxWidth && maxWidth > 3 {
			text = text[:maxWidth-3] + "..."
		}
		t.drawText(startX, startY+i, maxWidth, text, styles[entry.Level])
	}
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
