package headless_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/backend/headless"
	"github.com/valerio/go-cboy/cboy/debug"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/memory"
	"github.com/valerio/go-cboy/cboy/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.Config{Title: "Test"}))

		var frame video.Frame
		for i := 0; i < 3; i++ {
			require.NoError(t, h.Present(&frame))

			events, err := h.PollInput()
			require.NoError(t, err)
			if i < 2 {
				assert.Empty(t, events)
			} else {
				require.Len(t, events, 1)
				assert.Equal(t, action.EmulatorQuit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
		}

		assert.Equal(t, 3, h.Frames())
		assert.Equal(t, debug.FrameCRC(&frame), h.LastCRC())

		// the quit request is delivered once
		events, err := h.PollInput()
		require.NoError(t, err)
		assert.Empty(t, events)

		assert.NoError(t, h.Cleanup())
	})

	t.Run("unlimited", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		var frame video.Frame
		for range 20 {
			require.NoError(t, h.Present(&frame))
			events, _ := h.PollInput()
			assert.Empty(t, events)
		}
		assert.Zero(t, h.LastCRC())
	})
}

func TestHeadlessSnapshots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	cfg, err := headless.CreateSnapshotConfig(2, dir, "/roms/tetris.gb")
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "tetris", cfg.ROMName)

	h := headless.New(5, cfg)
	var frame video.Frame
	for range 5 {
		require.NoError(t, h.Present(&frame))
	}

	// frames 2 and 4, plus the final frame 5
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCreateSnapshotConfig(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "rom.gb")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Directory)

	cfg, err = headless.CreateSnapshotConfig(10, "", "rom.gb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(cfg.Directory) })
	assert.DirExists(t, cfg.Directory)
}

type countingEmulator struct{ frames int }

func (c *countingEmulator) NextFrame() video.Frame {
	c.frames++
	return video.Frame{}
}
func (c *countingEmulator) SaveState() error { return nil }
func (c *countingEmulator) LoadState() error { return nil }
func (c *countingEmulator) Press(memory.JoypadKey) {}
func (c *countingEmulator) Release(memory.JoypadKey) {}
func (c *countingEmulator) ReleaseAll() {}

func TestHeadlessLoop(t *testing.T) {
	emu := &countingEmulator{}
	h := headless.New(7, headless.SnapshotConfig{})

	require.NoError(t, backend.NewLoop(emu, h, nil).Run(context.Background()))
	assert.Equal(t, 7, emu.frames)
	assert.Equal(t, 7, h.Frames())
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
