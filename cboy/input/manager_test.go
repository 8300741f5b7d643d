package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/memory"
)

func newTestManager() (*Manager, *memory.Joypad, *time.Time) {
	joypad := memory.NewJoypad()
	m := NewManager(joypad)
	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }
	return m, joypad, &clock
}

func TestManager_GameInput(t *testing.T) {
	tests := []struct {
		act action.Action
		key memory.JoypadKey
	}{
		{action.GBDPadRight, memory.JoypadRight},
		{action.GBDPadLeft, memory.JoypadLeft},
		{action.GBDPadUp, memory.JoypadUp},
		{action.GBDPadDown, memory.JoypadDown},
		{action.GBButtonA, memory.JoypadA},
		{action.GBButtonB, memory.JoypadB},
		{action.GBButtonSelect, memory.JoypadSelect},
		{action.GBButtonStart, memory.JoypadStart},
	}

	for _, tt := range tests {
		t.Run(tt.act.String(), func(t *testing.T) {
			m, joypad, _ := newTestManager()

			m.Trigger(tt.act, event.Press)
			assert.Equal(t, uint8(1)<<tt.key, joypad.Pressed())

			// rapid presses are never debounced for console buttons
			m.Trigger(tt.act, event.Release)
			m.Trigger(tt.act, event.Press)
			assert.Equal(t, uint8(1)<<tt.key, joypad.Pressed())

			m.Trigger(tt.act, event.Release)
			assert.Zero(t, joypad.Pressed())
		})
	}
}

func TestManager_EmulatorActionsDebounced(t *testing.T) {
	m, _, clock := newTestManager()

	saves := 0
	m.On(action.EmulatorSaveState, event.Press, func() { saves++ })

	m.Trigger(action.EmulatorSaveState, event.Press)
	assert.Equal(t, 1, saves)

	*clock = clock.Add(100 * time.Millisecond)
	m.Trigger(action.EmulatorSaveState, event.Press)
	assert.Equal(t, 1, saves, "debounced")

	*clock = clock.Add(400 * time.Millisecond)
	m.Trigger(action.EmulatorSaveState, event.Press)
	assert.Equal(t, 2, saves)
}

func TestManager_MultipleCallbacks(t *testing.T) {
	m, _, _ := newTestManager()

	var calls []string
	m.On(action.EmulatorQuit, event.Press, func() { calls = append(calls, "first") })
	m.On(action.EmulatorQuit, event.Press, func() { calls = append(calls, "second") })
	m.On(action.EmulatorQuit, event.Release, func() { calls = append(calls, "release") })

	m.Trigger(action.EmulatorQuit, event.Press)
	assert.Equal(t, []string{"first", "second"}, calls)

	m.Trigger(action.EmulatorPauseToggle, event.Press) // nothing registered
	assert.Len(t, calls, 2)
}

func TestManager_NilControls(t *testing.T) {
	m := NewManager(nil)
	assert.NotPanics(t, func() { m.Trigger(action.GBButtonA, event.Press) })
}

func TestDefaultKeyMap(t *testing.T) {
	act, ok := GetDefaultMapping("F6")
	assert.True(t, ok)
	assert.Equal(t, action.EmulatorSaveState, act)

	act, ok = GetDefaultMapping("F5")
	assert.True(t, ok)
	assert.Equal(t, action.EmulatorLoadState, act)

	_, ok = GetDefaultMapping("F7")
	assert.False(t, ok)

	for key, act := range DefaultKeyMap {
		assert.NotEqual(t, "Unknown", act.String(), "key %q", key)
	}
}
