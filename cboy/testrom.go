package cboy

import (
	"log/slog"

	"github.com/valerio/go-cboy/cboy/serial"
)

// DefaultTestFrames is how long RunTestROM waits for a verdict, about 33
// seconds of emulated time.
const DefaultTestFrames = 2000

// TestReport is the outcome of a RunTestROM call.
type TestReport struct {
	Result serial.Result
	Output string
	Frames int
}

// RunTestROM runs the ROM at path until it reports a verdict through the
// serial port ('P' or 'F' as the first significant byte) or maxFrames frames
// have run. Serial output is also copied to echo when it is not nil.
func RunTestROM(path string, maxFrames int, echo serial.Sink) (TestReport, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultTestFrames
	}

	results := &serial.ResultSink{}
	m, err := LoadROM(path, Config{SerialSink: serial.Tee(results, echo)})
	if err != nil {
		return TestReport{}, err
	}

	var report TestReport
	for report.Frames < maxFrames && results.Result() == serial.Pending {
		m.NextFrame()
		report.Frames++
	}

	report.Result = results.Result()
	report.Output = results.Output()
	slog.Info("Test ROM finished", "title", m.Title(), "result", report.Result, "frames", report.Frames)
	return report, nil
}
