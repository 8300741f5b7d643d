// Package statsview serves live runtime statistics over HTTP when built with
// the statsview tag, using github.com/go-echarts/statsview.
//
// After launch the graphs are at
//
//	localhost:12600/debug/statsview
//
// and the standard pprof endpoints at
//
//	localhost:12600/debug/pprof/
//
// Without the tag Launch only logs that the server is unavailable.
package statsview
