package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nescore/internal/cartridge"
	"nescore/internal/cpu"
)

// headlessConfig runs frameLimit frames without a window, sound or pacing.
func headlessConfig(frameLimit int) *Config {
	config := NewConfig()
	config.Video.Backend = "headless"
	config.Audio.Enabled = false
	config.Emulation.FrameLimit = frameLimit
	return config
}

func loopCartridge(t *testing.T) *cartridge.Cartridge {
	t.Helper()
	cart, err := cartridge.NewROMBuilder().WithCode(0x8000,
		0xA9, 0x1E, // LDA #$1E
		0x8D, 0x01, 0x20, // STA $2001
		0xE8,             // loop: INX
		0x4C, 0x05, 0x80, // JMP loop
	).BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge failed: %v", err)
	}
	return cart
}

func newTestApplication(t *testing.T, config *Config) *Application {
	t.Helper()
	app, err := NewApplication(config)
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	t.Cleanup(func() { app.Cleanup() })
	return app
}

func TestApplication_RunStopsAtFrameLimit(t *testing.T) {
	app := newTestApplication(t, headlessConfig(3))
	if app.throttle != nil {
		t.Error("Headless runs with a frame limit must not be throttled")
	}
	if err := app.LoadCartridge(loopCartridge(t)); err != nil {
		t.Fatal(err)
	}

	if err := app.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := app.GetFrameCount(); got != 3 {
		t.Errorf("Expected 3 frames, got %d", got)
	}
	if cycles := app.GetBus().CPUCycles(); cycles < 3*29780 {
		t.Errorf("Expected three frames of CPU time, got %d cycles", cycles)
	}
}

func TestApplication_RunWithoutROM(t *testing.T) {
	app := newTestApplication(t, headlessConfig(1))
	if err := app.Run(); err == nil {
		t.Error("Expected error when no ROM is loaded")
	}
}

func TestApplication_StopBeforeRun(t *testing.T) {
	app := newTestApplication(t, headlessConfig(0))
	if err := app.LoadCartridge(loopCartridge(t)); err != nil {
		t.Fatal(err)
	}

	app.Stop()
	app.Stop()
	if err := app.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if app.GetFrameCount() != 0 {
		t.Errorf("Expected no frames after Stop, got %d", app.GetFrameCount())
	}
}

func TestApplication_DecodeFaultEndsRun(t *testing.T) {
	app := newTestApplication(t, headlessConfig(10))
	cart, err := cartridge.NewROMBuilder().WithCode(0x8000, 0xEA, 0x0B).BuildCartridge()
	if err != nil {
		t.Fatal(err)
	}
	if err := app.LoadCartridge(cart); err != nil {
		t.Fatal(err)
	}

	err = app.Run()
	var decodeErr *cpu.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %v", err)
	}

	if err := app.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if app.GetBus().Fault() != nil {
		t.Error("Reset did not clear the fault")
	}
}

func TestApplication_LoadROM(t *testing.T) {
	dir := t.TempDir()
	rom, err := cartridge.NewROMBuilder().WithCode(0x8000, 0x4C, 0x00, 0x80).Build()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "loop.nes")
	if err := os.WriteFile(path, rom, 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApplication(t, headlessConfig(1))
	if err := app.LoadROM(path); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}
	if app.GetROMPath() != path {
		t.Errorf("ROM path = %q", app.GetROMPath())
	}

	var appErr *ApplicationError
	if err := app.LoadROM(filepath.Join(dir, "missing.nes")); !errors.As(err, &appErr) || appErr.Component != "cartridge" {
		t.Errorf("Expected cartridge ApplicationError, got %v", err)
	}
}

func TestApplication_UnsupportedMapper(t *testing.T) {
	app := newTestApplication(t, headlessConfig(1))
	cart, err := cartridge.NewROMBuilder().WithMapper(4).BuildCartridge()
	if err != nil {
		t.Fatal(err)
	}

	err = app.LoadCartridge(cart)
	var unsupported *cartridge.UnsupportedMapperError
	if !errors.As(err, &unsupported) || unsupported.ID != 4 {
		t.Errorf("Expected UnsupportedMapperError, got %v", err)
	}
}

func TestApplication_InvalidConfig(t *testing.T) {
	config := headlessConfig(1)
	config.Video.Backend = "opengl"

	_, err := NewApplication(config)
	var configErr *ConfigError
	if !errors.As(err, &configErr) || configErr.Field != "video.backend" {
		t.Errorf("Expected ConfigError for backend, got %v", err)
	}
}

func TestApplication_CapturesFrames(t *testing.T) {
	dir := t.TempDir()
	config := headlessConfig(4)
	config.Video.OutputDir = dir
	config.Video.CaptureInterval = 2

	app := newTestApplication(t, config)
	if err := app.LoadCartridge(loopCartridge(t)); err != nil {
		t.Fatal(err)
	}
	if err := app.Run(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"00000002.png", "00000004.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "00000001.png")); err == nil {
		t.Error("Frame 1 should not be captured")
	}
}

func TestApplication_RecordsAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	config := headlessConfig(2)
	config.Audio.RecordPath = path

	app, err := NewApplication(config)
	if err != nil {
		t.Fatal(err)
	}
	if err := app.LoadCartridge(loopCartridge(t)); err != nil {
		t.Fatal(err)
	}
	if err := app.Run(); err != nil {
		t.Fatal(err)
	}
	if err := app.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Two frames of 16-bit mono at 44.1kHz plus the RIFF header.
	if info.Size() < 44+2*700*2 {
		t.Errorf("WAV file too small: %d bytes", info.Size())
	}
}

func TestApplication_TraceAndStateDump(t *testing.T) {
	dir := t.TempDir()
	config := headlessConfig(1)
	config.Debug.CPUTracing = true
	config.Debug.TraceFile = filepath.Join(dir, "trace.log")
	config.Debug.StateDump = filepath.Join(dir, "state.dot")

	app, err := NewApplication(config)
	if err != nil {
		t.Fatal(err)
	}
	if err := app.LoadCartridge(loopCartridge(t)); err != nil {
		t.Fatal(err)
	}
	if err := app.Run(); err != nil {
		t.Fatal(err)
	}
	if err := app.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	trace, err := os.ReadFile(config.Debug.TraceFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(trace), "8000  A9 1E") {
		t.Errorf("Unexpected first trace line: %.40q", trace)
	}
	if lines := strings.Count(string(trace), "\n"); lines < 1000 {
		t.Errorf("Expected a frame's worth of trace lines, got %d", lines)
	}

	dump, err := os.ReadFile(filepath.Join(dir, "state.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dump), "digraph") {
		t.Error("State dump is not a Graphviz graph")
	}
	if !strings.Contains(string(dump), "KeypadReads") {
		t.Error("State dump is missing the keypad counters")
	}
}

func TestApplication_StatsViewerStopsOnCleanup(t *testing.T) {
	config := headlessConfig(1)
	config.Debug.Stats = true
	config.Debug.StatsAddress = "127.0.0.1:0"

	app, err := NewApplication(config)
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	if err := app.Cleanup(); err != nil {
		t.Errorf("Cleanup failed: %v", err)
	}
	if app.stats != nil {
		t.Error("stats viewer still referenced after Cleanup")
	}
}

func TestApplication_CleanupTwice(t *testing.T) {
	app, err := NewApplication(headlessConfig(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Cleanup(); err != nil {
		t.Errorf("first Cleanup: %v", err)
	}
	if err := app.Cleanup(); err != nil {
		t.Errorf("second Cleanup: %v", err)
	}
}

func TestEmulator_UpdateWhileStopped(t *testing.T) {
	app := newTestApplication(t, headlessConfig(1))
	if err := app.LoadCartridge(loopCartridge(t)); err != nil {
		t.Fatal(err)
	}

	emulator := app.emulator
	emulator.Stop()
	frame, err := emulator.Update()
	if err != nil || frame == nil {
		t.Fatalf("Update while stopped = %v, %v", frame, err)
	}
	if emulator.GetFrameCount() != 0 {
		t.Error("Stopped emulator advanced")
	}

	emulator.Start()
	if _, err := emulator.Update(); err != nil {
		t.Fatal(err)
	}
	if emulator.GetFrameCount() != 1 || emulator.GetAverageFrameTime() <= 0 {
		t.Errorf("frames=%d average=%v", emulator.GetFrameCount(), emulator.GetAverageFrameTime())
	}
}
