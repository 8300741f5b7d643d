// Package headless runs the emulator without any display, for automated
// testing and batch processing.
package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/debug"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/video"
)

// Backend presents frames to nothing. It saves periodic PNG snapshots and
// asks the loop to quit after maxFrames.
type Backend struct {
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	lastCRC        uint32
	pending        []backend.InputEvent
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

// New creates a headless backend. maxFrames <= 0 runs until the loop is
// stopped some other way.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.Config) error {
	slog.Info("Running headless mode",
		"title", config.Title,
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

// Present counts the frame and handles snapshots.
func (h *Backend) Present(frame *video.Frame) error {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%10 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames > 0 && h.frameCount == h.maxFrames {
		// final snapshot, unless one was just saved
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}

		h.lastCRC = debug.FrameCRC(frame)
		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.frameCount, "crc32", fmt.Sprintf("%08x", h.lastCRC), "png_snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.frameCount, "crc32", fmt.Sprintf("%08x", h.lastCRC))
		}

		h.pending = append(h.pending, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	}
	return nil
}

// PollInput returns the quit request once the frame budget is spent.
func (h *Backend) PollInput() ([]backend.InputEvent, error) {
	events := h.pending
	h.pending = nil
	return events, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of frames presented so far.
func (h *Backend) Frames() int { return h.frameCount }

// LastCRC is the CRC32 of the final frame, zero until maxFrames is reached.
func (h *Backend) LastCRC() uint32 { return h.lastCRC }

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "cboy-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.ROMName = strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))

	return config, nil
}

// saveSnapshot saves a PNG snapshot for the current frame
func (h *Backend) saveSnapshot(frame *video.Frame) {
	pngBaseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)

	if _, err := debug.SaveFramePNGToDir(frame, pngBaseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}
