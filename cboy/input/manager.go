package input

import (
	"log/slog"
	"sync"
	"time"

	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/memory"
)

const (
	// debounceDuration is the minimum time between two presses of the same
	// emulator action. Console buttons are never debounced.
	debounceDuration = 300 * time.Millisecond
)

// Controls receives console button changes.
type Controls interface {
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

// Manager routes actions: console buttons go to the controls, everything
// else to callbacks registered with On.
type Manager struct {
	mu            sync.Mutex
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]time.Time
	controls      Controls
	now           func() time.Time
}

func NewManager(controls Controls) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		controls:      controls,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if key, ok := JoypadKey(act); ok {
		if m.controls == nil {
			return
		}
		switch evt {
		case event.Press:
			m.controls.Press(key)
		case event.Release:
			m.controls.Release(key)
		}
		return
	}

	m.mu.Lock()
	if evt == event.Press {
		now := m.now()
		if now.Sub(m.lastTriggered[act]) < debounceDuration {
			m.mu.Unlock()
			slog.Debug("Debounced action", "action", act)
			return
		}
		m.lastTriggered[act] = now
	}
	callbacks := append([]func(){}, m.handlers[act][evt]...)
	m.mu.Unlock()

	// callbacks run unlocked so they may register more handlers
	for _, callback := range callbacks {
		callback()
	}
}

// JoypadKey maps console actions to joypad keys.
func JoypadKey(act action.Action) (memory.JoypadKey, bool) {
	switch act {
	case action.GBButtonA:
		return memory.JoypadA, true
	case action.GBButtonB:
		return memory.JoypadB, true
	case action.GBButtonStart:
		return memory.JoypadStart, true
	case action.GBButtonSelect:
		return memory.JoypadSelect, true
	case action.GBDPadUp:
		return memory.JoypadUp, true
	case action.GBDPadDown:
		return memory.JoypadDown, true
	case action.GBDPadLeft:
		return memory.JoypadLeft, true
	case action.GBDPadRight:
		return memory.JoypadRight, true
	default:
		return 0, false
	}
}
