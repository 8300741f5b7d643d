package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/valerio/go-cboy/cboy"
	"github.com/valerio/go-cboy/cboy/backend"
	"github.com/valerio/go-cboy/cboy/backend/ebiten"
	"github.com/valerio/go-cboy/cboy/backend/headless"
	"github.com/valerio/go-cboy/cboy/backend/sdl2"
	"github.com/valerio/go-cboy/cboy/backend/terminal"
	"github.com/valerio/go-cboy/cboy/debug"
	"github.com/valerio/go-cboy/cboy/serial"
	"github.com/valerio/go-cboy/cboy/statsview"
	"github.com/valerio/go-cboy/cboy/timing"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cboy"
	app.Description = "A gameboy and gameboy color emulator"
	app.Usage = "cboy [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "rom",
			Usage:  "Path to the ROM file",
			EnvVar: "CBOY_ROM",
		},
		cli.StringFlag{
			Name:   "backend",
			Usage:  "Frontend to use: terminal, headless, sdl2 or ebiten",
			Value:  "terminal",
			EnvVar: "CBOY_BACKEND",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory in headless mode, current directory otherwise)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale factor for the sdl2 and ebiten backends",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "fullscreen",
			Usage: "Start windowed backends in fullscreen",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive or none",
			Value: "adaptive",
		},
		cli.BoolFlag{
			Name:  "dmg",
			Usage: "Run color cartridges in monochrome mode",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction (needs --log-level debug)",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Minimum log level: debug, info, warn or error",
			Value:  "info",
			EnvVar: "CBOY_LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:  "serial-log",
			Usage: "Log text the program sends through the serial port",
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics on " + statsview.DefaultAddress + " (needs -tags statsview)",
		},
		cli.StringFlag{
			Name:  "state-graph",
			Usage: "Write a graphviz description of the machine state to this file on exit",
		},
	}
	app.Before = setupLogging
	app.Action = runEmulator
	app.Commands = []cli.Command{
		{
			Name:      "test",
			Usage:     "Run a test ROM until it reports pass or fail on the serial port",
			ArgsUsage: "<ROM file>",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "frames",
					Usage: "Give up after this many frames",
					Value: cboy.DefaultTestFrames,
				},
				cli.BoolFlag{
					Name:  "quiet",
					Usage: "Don't echo serial output",
				},
			},
			Action: runTest,
		},
	}
	return app
}

func setupLogging(c *cli.Context) error {
	level, err := parseLevel(c.GlobalString("log-level"))
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func romPathArg(c *cli.Context) (string, error) {
	if romPath := c.String("rom"); romPath != "" {
		return romPath, nil
	}
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}
	cli.ShowAppHelp(c)
	return "", errors.New("no ROM path provided")
}

func runEmulator(c *cli.Context) error {
	romPath, err := romPathArg(c)
	if err != nil {
		return err
	}

	if c.Bool("statsview") {
		stop := statsview.Launch("")
		defer stop()
	}

	b, limiter, err := newBackend(c, romPath)
	if err != nil {
		return err
	}

	title := "cboy - " + filepath.Base(romPath)
	if err := b.Init(backend.Config{
		Title:      title,
		Scale:      c.Int("scale"),
		VSync:      true,
		Fullscreen: c.Bool("fullscreen"),
	}); err != nil {
		return fmt.Errorf("initializing %s backend: %w", c.String("backend"), err)
	}
	defer b.Cleanup()

	// some backends replace the default logger in Init, build everything that
	// logs after it
	cfg := cboy.Config{
		ForceDMG: c.Bool("dmg"),
		Trace:    c.Bool("trace"),
	}
	if c.Bool("serial-log") {
		sink := serial.NewLogSink(nil)
		defer sink.Flush()
		cfg.SerialSink = sink
	}

	m, err := cboy.LoadROM(romPath, cfg)
	if err != nil {
		return err
	}
	if t, ok := b.(*terminal.Backend); ok {
		t.SetInspector(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := backend.NewLoop(m, b, limiter)
	loop.SnapshotDir = c.String("snapshot-dir")
	runErr := loop.Run(ctx)

	if path := c.String("state-graph"); path != "" {
		if err := writeStateGraph(path, m); err != nil {
			slog.Error("Failed to write state graph", "path", path, "error", err)
		}
	}
	return runErr
}

func newBackend(c *cli.Context, romPath string) (backend.Backend, timing.Limiter, error) {
	name := strings.ToLower(c.String("backend"))
	limiter, err := timing.New(c.String("limiter"))
	if err != nil {
		return nil, nil, err
	}

	switch name {
	case "terminal":
		level, _ := parseLevel(c.String("log-level"))
		return terminal.New(level), limiter, nil
	case "headless":
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(frames, snapshots), timing.NewNoOpLimiter(), nil
	case "sdl2":
		return sdl2.New(), limiter, nil
	case "ebiten":
		// ebiten paces frames itself
		return ebiten.New(), timing.NewNoOpLimiter(), nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", name)
}

func writeStateGraph(path string, m *cboy.Machine) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	debug.WriteStateGraph(file, debug.Inspect(m))
	if err := file.Close(); err != nil {
		return err
	}
	slog.Info("State graph written", "path", path)
	return nil
}

func runTest(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "test")
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().First()

	var echo serial.Sink
	if !c.Bool("quiet") {
		echo = serial.SinkFunc(func(b byte) { os.Stdout.Write([]byte{b}) })
	}

	report, err := cboy.RunTestROM(romPath, c.Int("frames"), echo)
	if err != nil {
		return err
	}
	fmt.Println()

	switch report.Result {
	case serial.Passed:
		fmt.Printf("%s: passed after %d frames\n", filepath.Base(romPath), report.Frames)
		return nil
	case serial.Failed:
		return fmt.Errorf("%s: failed after %d frames", filepath.Base(romPath), report.Frames)
	default:
		return fmt.Errorf("%s: no verdict after %d frames", filepath.Base(romPath), report.Frames)
	}
}
