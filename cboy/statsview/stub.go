//go:build !statsview

package statsview

import "log/slog"

// DefaultAddress is where the server listens when Launch gets "".
const DefaultAddress = "localhost:12600"

// Launch logs that the binary was built without the stats server.
func Launch(address string) (stop func()) {
	slog.Warn("Stats server not available - build with -tags statsview to enable")
	return func() {}
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
