package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-cboy/cboy/debug"
	"github.com/valerio/go-cboy/cboy/input"
	"github.com/valerio/go-cboy/cboy/input/action"
	"github.com/valerio/go-cboy/cboy/input/event"
	"github.com/valerio/go-cboy/cboy/timing"
	"github.com/valerio/go-cboy/cboy/video"
)

// ErrQuit is returned by Loop.Frame once the user asked to quit.
var ErrQuit = errors.New("quit requested")

// Loop runs an Emulator against a Backend: it polls input, steps one frame,
// presents it and waits on the limiter.
type Loop struct {
	emu     Emulator
	backend Backend
	limiter timing.Limiter
	input   *input.Manager

	// SnapshotDir is where the snapshot action writes PNGs, the current
	// directory when empty.
	SnapshotDir string

	frame  video.Frame
	frames int
	paused bool
	step   bool
	quit   bool
}

// NewLoop wires emu, b and limiter together. A nil limiter runs unthrottled.
func NewLoop(emu Emulator, b Backend, limiter timing.Limiter) *Loop {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	l := &Loop{
		emu:     emu,
		backend: b,
		limiter: limiter,
		input:   input.NewManager(emu),
	}
	l.registerHandlers()
	return l
}

func (l *Loop) registerHandlers() {
	l.input.On(action.EmulatorQuit, event.Press, func() {
		l.quit = true
	})
	l.input.On(action.EmulatorPauseToggle, event.Press, func() {
		l.paused = !l.paused
		if l.paused {
			l.emu.ReleaseAll()
			slog.Info("Emulation paused", "frame", l.frames)
		} else {
			l.limiter.Reset()
			slog.Info("Emulation resumed", "frame", l.frames)
		}
	})
	l.input.On(action.EmulatorStepFrame, event.Press, func() {
		if l.paused {
			l.step = true
		}
	})
	l.input.On(action.EmulatorSaveState, event.Press, func() {
		if err := l.emu.SaveState(); err != nil {
			slog.Error("Failed to save state", "error", err)
		}
	})
	l.input.On(action.EmulatorLoadState, event.Press, func() {
		if err := l.emu.LoadState(); err != nil {
			slog.Warn("Failed to load state", "error", err)
		}
	})
	l.input.On(action.EmulatorSnapshot, event.Press, func() {
		if _, err := debug.SaveFramePNGToDir(&l.frame, "cboy_snapshot", l.SnapshotDir); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
	})
}

// Input exposes the manager so callers can register extra handlers.
func (l *Loop) Input() *input.Manager { return l.input }

// Frames returns how many frames were emulated.
func (l *Loop) Frames() int { return l.frames }

// Paused reports whether emulation is paused.
func (l *Loop) Paused() bool { return l.paused }

// Frame runs one iteration of the loop.
func (l *Loop) Frame() error {
	events, err := l.backend.PollInput()
	if err != nil {
		return fmt.Errorf("polling input: %w", err)
	}
	for _, evt := range events {
		l.input.Trigger(evt.Action, evt.Type)
	}
	if l.quit {
		return ErrQuit
	}

	if !l.paused || l.step {
		l.frame = l.emu.NextFrame()
		l.frames++
		l.step = false
	}

	if err := l.backend.Present(&l.frame); err != nil {
		return fmt.Errorf("presenting frame %d: %w", l.frames, err)
	}
	l.limiter.WaitForNextFrame()
	return nil
}

// Run calls Frame until the user quits, ctx is done or an error occurs. A
// quit request is not an error.
func (l *Loop) Run(ctx context.Context) error {
	l.limiter.Reset()

	frame := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return l.Frame()
	}

	var err error
	if looper, ok := l.backend.(MainLooper); ok {
		err = looper.RunMain(frame)
	} else {
		for err == nil {
			err = frame()
		}
	}

	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		slog.Info("Emulation stopped", "frames", l.frames)
		return nil
	}
	return err
}
