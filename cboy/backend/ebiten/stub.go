//go:build !ebiten

package ebiten

import (
	"errors"

	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/video"
)

// ErrUnavailable is returned by every method of the stub backend.
var ErrUnavailable = errors.New("ebiten backend not available - build with -tags ebiten to enable")

// Backend stub for when ebiten is not compiled in
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.Config) error { return ErrUnavailable }

func (b *Backend) PollInput() ([]backend.InputEvent, error) { return nil, ErrUnavailable }

func (b *Backend) Present(frame *video.Frame) error { return ErrUnavailable }

func (b *Backend) Cleanup() error { return nil }

func (b *Backend) RunMain(frame func() error) error { return ErrUnavailable }
