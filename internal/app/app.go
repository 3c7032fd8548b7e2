package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/term"

	"nescore/internal/audio"
	"nescore/internal/bus"
	"nescore/internal/cartridge"
	"nescore/internal/debug"
	"nescore/internal/graphics"
	"nescore/internal/input"
	"nescore/internal/statsview"
)

// errStopped ends the window loop when Stop was called.
var errStopped = errors.New("application stopped")

// Application represents the emulator application
type Application struct {
	bus *bus.Bus

	graphicsBackend graphics.Backend
	window          graphics.Window

	config   *Config
	emulator *Emulator
	throttle *Throttle
	sink     audio.Sink

	terminalKeys *input.TerminalKeypad
	tracer       *debug.Tracer
	traceFile    *os.File
	stats        *statsview.Server

	stop        chan struct{}
	stopOnce    sync.Once
	initialized bool

	romPath   string
	cartridge *cartridge.Cartridge
	startTime time.Time
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates an application for config. The configuration is
// validated; invalid fields are reported as a ConfigError.
func NewApplication(config *Config) (*Application, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		config:    config,
		bus:       bus.New(config.Audio.SampleRate),
		stop:      make(chan struct{}),
		startTime: time.Now(),
	}
	app.bus.SetDebugLogging(config.Debug.EnableLogging)

	if err := app.initializeComponents(); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.initialized = true
	return app, nil
}

func (app *Application) initializeComponents() error {
	if err := app.initializeGraphicsBackend(); err != nil {
		return &ApplicationError{Component: "graphics", Operation: "backend setup", Err: err}
	}
	app.initializeInput()
	if err := app.initializeAudio(); err != nil {
		return &ApplicationError{Component: "audio", Operation: "sink setup", Err: err}
	}
	if err := app.initializeDebug(); err != nil {
		return &ApplicationError{Component: "debug", Operation: "trace setup", Err: err}
	}

	if app.config.Emulation.Throttle && !app.isUnlimitedHeadless() {
		app.throttle = NewThrottle(app.config.Emulation.FrameRate)
	}
	return nil
}

// isUnlimitedHeadless reports a headless run with a frame limit, which runs
// as fast as possible.
func (app *Application) isUnlimitedHeadless() bool {
	return app.config.Video.Backend == string(graphics.BackendHeadless) && app.config.Emulation.FrameLimit > 0
}

func (app *Application) initializeGraphicsBackend() error {
	backend, err := graphics.CreateBackend(graphics.BackendType(app.config.Video.Backend))
	if err != nil {
		return err
	}

	width, height := app.config.Window.Width, app.config.Window.Height

	graphicsConfig := graphics.Config{
		WindowTitle:     "nescore",
		WindowWidth:     width,
		WindowHeight:    height,
		Fullscreen:      app.config.Window.Fullscreen,
		VSync:           app.config.Video.VSync,
		Filter:          app.config.Video.Filter,
		Scale:           app.config.Video.CaptureScale,
		OutputDir:       app.config.Video.OutputDir,
		CaptureInterval: app.config.Video.CaptureInterval,
		Keys:            app.config.Input.WindowKeys.Names(),
		Debug:           app.config.Debug.EnableLogging,
	}
	if err := backend.Initialize(graphicsConfig); err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", backend.GetName(), err)
	}

	window, err := backend.CreateWindow(graphicsConfig.WindowTitle, width, height)
	if err != nil {
		backend.Cleanup()
		return fmt.Errorf("failed to create window: %w", err)
	}

	app.graphicsBackend = backend
	app.window = window

	if app.config.Debug.EnableLogging {
		log.Printf("[APP] Using %s backend (%dx%d)", backend.GetName(), width, height)
	}
	return nil
}

// initializeInput picks the player one key source for the backend.
func (app *Application) initializeInput() {
	if source, ok := app.window.(input.KeySource); ok {
		app.bus.SetKeySources(source, nil)
		return
	}

	if app.config.Video.Backend != string(graphics.BackendTerminal) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	keys, err := input.NewTerminalKeypad(os.Stdin, app.config.Input.TerminalKeys)
	if err != nil {
		log.Printf("[INPUT] Terminal keypad unavailable: %v", err)
		return
	}
	app.terminalKeys = keys
	app.bus.SetKeySources(keys, nil)
}

func (app *Application) initializeAudio() error {
	var sinks audio.MultiSink

	if app.config.Audio.Enabled {
		speaker, err := audio.NewSpeaker(app.config.Audio.SampleRate, app.config.Audio.Volume)
		if err != nil {
			log.Printf("[AUDIO] Speaker unavailable, continuing without sound: %v", err)
		} else {
			sinks = append(sinks, speaker)
		}
	}

	if path := app.config.Audio.RecordPath; path != "" {
		recorder, err := audio.NewWAVRecorder(path, app.config.Audio.SampleRate)
		if err != nil {
			sinks.Close()
			return err
		}
		sinks = append(sinks, recorder)
	}

	switch len(sinks) {
	case 0:
		app.sink = audio.Discard{}
	case 1:
		app.sink = sinks[0]
	default:
		app.sink = sinks
	}
	return nil
}

func (app *Application) initializeDebug() error {
	if app.config.Debug.Stats {
		server, err := statsview.Start(app.config.Debug.StatsAddress)
		if err != nil {
			log.Printf("[APP] Runtime stats unavailable: %v", err)
		} else {
			app.stats = server
			fmt.Printf("Runtime stats at %s\n", server.URL())
		}
	}

	if !app.config.Debug.CPUTracing {
		return nil
	}
	file, err := os.Create(app.config.Debug.TraceFile)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	app.traceFile = file
	app.tracer = debug.NewTracer(file)
	return nil
}

// LoadROM loads an iNES file into the machine
func (app *Application) LoadROM(romPath string) error {
	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}
	if err := app.LoadCartridge(cart); err != nil {
		return err
	}

	app.romPath = romPath
	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("nescore - %s", filepath.Base(romPath)))
	}
	return nil
}

// LoadCartridge inserts cart and resets the machine
func (app *Application) LoadCartridge(cart *cartridge.Cartridge) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	if err := app.bus.LoadCartridge(cart); err != nil {
		return &ApplicationError{Component: "bus", Operation: "load cartridge", Err: err}
	}
	app.cartridge = cart

	if app.tracer != nil {
		app.tracer.Attach(app.bus.CPU)
	}

	app.emulator = NewEmulator(app.bus, app.sink)
	app.emulator.SetDebugLogging(app.config.Debug.EnableLogging)
	app.emulator.Start()
	return nil
}

// Run runs frames until the window closes, the frame limit is reached, Stop
// is called or the machine faults.
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}
	if app.emulator == nil {
		return errors.New("no ROM loaded")
	}

	app.startTime = time.Now()

	if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
		ebitengineWindow.SetEmulatorUpdateFunc(app.runFrame)
		err := ebitengineWindow.Run()
		if errors.Is(err, errStopped) {
			return nil
		}
		return err
	}

	for {
		if err := app.runFrame(); err != nil {
			if errors.Is(err, errStopped) {
				return nil
			}
			return err
		}
		if app.throttle != nil {
			app.throttle.Wait()
		}
	}
}

// runFrame emulates and presents one frame.
func (app *Application) runFrame() error {
	if app.isStopped() {
		return errStopped
	}

	frame, err := app.emulator.Update()
	if err != nil {
		return err
	}
	if err := app.window.RenderFrame(frame); err != nil {
		return &ApplicationError{Component: "graphics", Operation: "render", Err: err}
	}

	if limit := app.config.Emulation.FrameLimit; limit > 0 && app.emulator.GetFrameCount() >= uint64(limit) {
		app.Stop()
	}
	if app.window.ShouldClose() {
		app.Stop()
	}
	if app.terminalKeys != nil {
		select {
		case <-app.terminalKeys.Interrupted():
			app.Stop()
		default:
		}
	}
	return nil
}

// Stop asks the run loop to return after the current frame. Safe to call
// from any goroutine.
func (app *Application) Stop() {
	app.stopOnce.Do(func() {
		close(app.stop)
	})
}

func (app *Application) isStopped() bool {
	select {
	case <-app.stop:
		return true
	default:
		return false
	}
}

// Reset resets the machine
func (app *Application) Reset() error {
	if app.emulator == nil {
		return errors.New("no ROM loaded")
	}
	if app.throttle != nil {
		app.throttle.Reset()
	}
	err := app.emulator.Reset()
	app.emulator.Start()
	return err
}

// WriteStateDump writes the machine state as a Graphviz graph
func (app *Application) WriteStateDump(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state dump: %w", err)
	}

	state := &debug.MachineState{
		Frames:    app.bus.FrameCount(),
		CPUCycles: app.bus.CPUCycles(),
	}
	if app.bus.CPU != nil {
		state.CPU = app.bus.CPU.State()
		state.Flags = state.CPU.P.String()
		state.PPULine = app.bus.PPU.Line()
		state.PPUDot = app.bus.PPU.Dot()
	}
	state.KeypadReads, state.KeypadWrites = app.bus.Input.Player1.Accesses()
	if cart := app.cartridge; cart != nil {
		state.Cartridge = fmt.Sprintf("mapper %d, %s mirroring", cart.MapperID(), cart.Mirroring())
	}
	if fault := app.bus.Fault(); fault != nil {
		state.Fault = fault.Error()
	}

	debug.WriteStateGraph(file, state)
	return file.Close()
}

// GetBus returns the machine
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetFrameCount returns the frames emulated since the ROM was loaded
func (app *Application) GetFrameCount() uint64 {
	if app.emulator == nil {
		return 0
	}
	return app.emulator.GetFrameCount()
}

// GetFPS returns the frames presented during the last whole second
func (app *Application) GetFPS() int {
	if app.emulator == nil {
		return 0
	}
	return app.emulator.GetFPS()
}

// GetUptime returns the time since Run started
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// Cleanup releases all resources. It is safe to call more than once.
func (app *Application) Cleanup() error {
	var errs []error

	if path := app.config.Debug.StateDump; path != "" && app.cartridge != nil {
		errs = append(errs, app.WriteStateDump(path))
		app.config.Debug.StateDump = ""
	}

	if app.tracer != nil {
		if app.bus.CPU != nil {
			app.bus.CPU.SetTraceHook(nil)
		}
		errs = append(errs, app.tracer.Flush())
		app.tracer = nil
	}
	if app.traceFile != nil {
		errs = append(errs, app.traceFile.Close())
		app.traceFile = nil
	}

	if app.stats != nil {
		errs = append(errs, app.stats.Stop())
		app.stats = nil
	}

	if app.sink != nil {
		errs = append(errs, app.sink.Close())
		app.sink = nil
	}

	if app.terminalKeys != nil {
		errs = append(errs, app.terminalKeys.Close())
		app.terminalKeys = nil
	}

	if app.window != nil {
		errs = append(errs, app.window.Cleanup())
		app.window = nil
	}
	if app.graphicsBackend != nil {
		errs = append(errs, app.graphicsBackend.Cleanup())
		app.graphicsBackend = nil
	}

	app.initialized = false
	if app.config.Debug.EnableLogging {
		log.Printf("[APP] Cleanup complete")
	}
	return errors.Join(errs...)
}
