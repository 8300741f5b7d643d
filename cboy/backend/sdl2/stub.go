//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/video"
)

// ErrUnavailable is returned by every method of the stub backend.
var ErrUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Backend stub for when SDL2 is not available
type Backend struct{}

// New creates a stub SDL2 backend that returns an error
func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error { return ErrUnavailable }

func (s *Backend) PollInput() ([]backend.InputEvent, error) { return nil, ErrUnavailable }

func (s *Backend) Present(frame *video.Frame) error { return ErrUnavailable }

func (s *Backend) Cleanup() error { return nil }
