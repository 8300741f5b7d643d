package timing

import (
	"fmt"
	"time"

	"github.com/valerio/go-cboy/cboy/video"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// CPUFrequency is the DMG machine clock in cycles per second.
const CPUFrequency = 4194304

// TargetFPS calculates the exact frame rate, ~59.73.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(video.FrameCycles)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// New returns the limiter registered under name: "adaptive" or "none".
func New(name string) (Limiter, error) {
	switch name {
	case "", "adaptive":
		return NewAdaptiveLimiter(), nil
	case "none", "off":
		return NewNoOpLimiter(), nil
	}
	return nil, fmt.Errorf("unknown limiter %q", name)
}
