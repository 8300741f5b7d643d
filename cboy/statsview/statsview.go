//go:build statsview

package statsview

import (
	"log/slog"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is where the server listens when Launch gets "".
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine and returns a function
// that stops it.
func Launch(address string) (stop func()) {
	if address == "" {
		address = DefaultAddress
	}

	viewer.SetConfiguration(viewer.WithAddr(address))
	mgr := statsview.New()
	go mgr.Start()

	slog.Info("Stats server available", "url", "http://"+address+url)
	return mgr.Stop
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
