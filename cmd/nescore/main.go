// Package main implements the nescore NES emulator executable.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nescore/internal/app"
	"nescore/internal/version"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the command line and returns the process exit code. Cleanup
// always runs before it returns.
func run(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("nescore", flag.ContinueOnError)
	flags.SetOutput(stdout)

	var (
		romFile     = flags.String("rom", "", "Path to NES ROM file")
		configFile  = flags.String("config", "", "Path to configuration file")
		backend     = flags.String("backend", "", "Video backend: ebitengine, headless or terminal")
		frames      = flags.Int("frames", 0, "Stop after N frames (0 runs until closed)")
		trace       = flags.String("trace", "", "Write a CPU instruction trace to file")
		recordAudio = flags.String("record-audio", "", "Record audio to a WAV file")
		mute        = flags.Bool("mute", false, "Disable speaker output")
		dumpState   = flags.String("dump-state", "", "Write a Graphviz state graph to file on exit")
		stats       = flags.Bool("stats", false, "Serve runtime statistics (statsview builds only)")
		debug       = flags.Bool("debug", false, "Enable debug logging")
		help        = flags.Bool("help", false, "Show help message")
		showVersion = flags.Bool("version", false, "Show version information")
	)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *help {
		printUsage(stdout, flags)
		return exitOK
	}

	if *showVersion {
		version.PrintBuildInfo(stdout)
		return exitOK
	}

	if *romFile == "" && flags.NArg() > 0 {
		*romFile = flags.Arg(0)
	}
	if *romFile == "" {
		printUsage(stdout, flags)
		return exitUsage
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return exitError
	}

	// Flags override the file
	if *backend != "" {
		config.Video.Backend = *backend
	}
	if *frames > 0 {
		config.Emulation.FrameLimit = *frames
	}
	if *trace != "" {
		config.Debug.CPUTracing = true
		config.Debug.TraceFile = *trace
	}
	if *recordAudio != "" {
		config.Audio.RecordPath = *recordAudio
	}
	if *mute {
		config.Audio.Enabled = false
	}
	if *dumpState != "" {
		config.Debug.StateDump = *dumpState
	}
	if *stats {
		config.Debug.Stats = true
	}
	if *debug {
		config.Debug.EnableLogging = true
	}

	application, err := app.NewApplication(config)
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return exitError
	}

	code := play(application, *romFile, stdout)
	if err := application.Cleanup(); err != nil {
		log.Printf("Application cleanup error: %v", err)
		code = exitError
	}
	return code
}

// play loads the ROM and runs it until it stops.
func play(application *app.Application, romFile string, stdout io.Writer) int {
	stop := setupGracefulShutdown(application, stdout)
	defer stop()

	fmt.Fprintf(stdout, "Loading ROM: %s\n", romFile)
	if err := application.LoadROM(romFile); err != nil {
		log.Printf("Failed to load ROM: %v", err)
		return exitError
	}

	config := application.GetConfig()
	fmt.Fprintf(stdout, "Video: %s, Audio: %s (%d Hz)\n",
		config.Video.Backend, enabledString(config.Audio.Enabled), config.Audio.SampleRate)

	code := exitOK
	if err := application.Run(); err != nil {
		log.Printf("Emulation stopped: %v", err)
		code = exitError
	}

	fmt.Fprintf(stdout, "Frames: %d, Session time: %v\n", application.GetFrameCount(), application.GetUptime())
	return code
}

// setupGracefulShutdown stops the run loop on SIGINT or SIGTERM so cleanup
// still flushes recordings and traces. The returned func removes the handler.
func setupGracefulShutdown(application *app.Application, stdout io.Writer) func() {
	c := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			fmt.Fprintln(stdout, "\nInterrupt received, shutting down...")
			application.Stop()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(c)
		close(done)
	}
}

// enabledString returns "enabled" or "disabled" based on boolean value
func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "nescore - NES emulator core")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  nescore [options] -rom <file>")
	fmt.Fprintln(w, "  nescore [options] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	flags.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  nescore game.nes                                # Play in a window")
	fmt.Fprintln(w, "  nescore -backend terminal game.nes              # Play in the terminal")
	fmt.Fprintln(w, "  nescore -backend headless -frames 600 game.nes  # Run 600 frames as fast as possible")
	fmt.Fprintln(w, "  nescore -frames 60 -trace cpu.log game.nes      # Trace the first second")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONTROLS (Default):")
	fmt.Fprintln(w, "  Window:   Arrows - D-Pad, X - A, Z - B, Right Shift - Select, Enter - Start, Escape - Quit")
	fmt.Fprintln(w, "  Terminal: W/S/A/D - D-Pad, . - A, , - B, N - Select, M - Start, Ctrl-C - Quit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONFIGURATION:")
	fmt.Fprintf(w, "  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SUPPORTED FORMATS:")
	fmt.Fprintln(w, "  - iNES (.nes), NROM (Mapper 0)")
}
