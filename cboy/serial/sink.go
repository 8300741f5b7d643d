package serial

import (
	"log/slog"
	"sync"
)

// LogSink logs outgoing bytes as text, one slog record per line.
// Handy for debugging test roms that output to serial.
type LogSink struct {
	logger *slog.Logger
	line   []byte
}

// NewLogSink creates a sink logging through the given logger, or the default
// one when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Print(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		s.Flush()
		return
	}
	s.line = append(s.line, b)
}

// Flush logs any partially buffered line.
func (s *LogSink) Flush() {
	if len(s.line) > 0 {
		s.logger.Info("serial", "line", string(s.line))
		s.line = s.line[:0]
	}
}

// Result is the verdict reported by a test ROM.
type Result uint8

const (
	// Pending means the ROM has not reported anything yet.
	Pending Result = iota
	Passed
	Failed
)

func (r Result) String() string {
	switch r {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	}
	return "pending"
}

// ResultSink watches the serial stream of a test ROM. The first 'P' or 'F'
// byte decides the outcome; everything is also kept as output text.
// It is safe to query from another goroutine.
type ResultSink struct {
	mu     sync.Mutex
	result Result
	output []byte
}

func (s *ResultSink) Print(b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.output = append(s.output, b)
	if s.result != Pending {
		return
	}
	switch b {
	case 'P':
		s.result = Passed
	case 'F':
		s.result = Failed
	}
}

// Result returns the verdict seen so far.
func (s *ResultSink) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Output returns everything printed so far.
func (s *ResultSink) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.output)
}

// Tee fans a byte out to several sinks, skipping nil ones.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(b byte) {
		for _, s := range sinks {
			if s != nil {
				s.Print(b)
			}
		}
	})
}
