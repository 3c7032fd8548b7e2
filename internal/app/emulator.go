package app

import (
	"fmt"
	"log"
	"time"

	"nescore/internal/audio"
	"nescore/internal/bus"
	"nescore/internal/graphics"
)

// Emulator runs the machine one frame at a time and hands each result to the
// renderer and the audio sink.
type Emulator struct {
	bus      *bus.Bus
	renderer *graphics.Renderer
	sink     audio.Sink

	frameCount       uint64
	actualFrameTime  time.Duration
	averageFrameTime time.Duration
	lastResetTime    time.Time

	isRunning bool
	debug     bool
}

// NewEmulator creates an emulator around a loaded machine. A nil sink
// discards audio.
func NewEmulator(b *bus.Bus, sink audio.Sink) *Emulator {
	if sink == nil {
		sink = audio.Discard{}
	}
	return &Emulator{
		bus:           b,
		renderer:      graphics.NewRenderer(),
		sink:          sink,
		lastResetTime: time.Now(),
	}
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// IsRunning returns whether Update advances the machine
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// Reset resets the machine and the counters
func (e *Emulator) Reset() error {
	e.frameCount = 0
	e.actualFrameTime = 0
	e.averageFrameTime = 0
	e.lastResetTime = time.Now()
	return e.bus.Reset()
}

// Update runs exactly one frame and returns the rendered image. It returns
// the current image unchanged while stopped.
func (e *Emulator) Update() (*graphics.Frame, error) {
	if !e.isRunning {
		return e.renderer.Frame(), nil
	}

	start := time.Now()

	snapshot, err := e.bus.Frame()
	if err != nil {
		e.isRunning = false
		return nil, fmt.Errorf("frame execution error: %w", err)
	}

	frame := e.renderer.Render(snapshot)
	if err := e.sink.Write(e.bus.AudioSamples()); err != nil {
		log.Printf("[AUDIO] Sink write failed: %v", err)
	}

	e.frameCount++
	e.actualFrameTime = time.Since(start)
	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.actualFrameTime
	} else {
		e.averageFrameTime = time.Duration(
			float64(e.averageFrameTime)*0.95 + float64(e.actualFrameTime)*0.05,
		)
	}
	if e.debug && e.frameCount%600 == 0 {
		log.Printf("[APP] Frame %d: average emulation time %v, %d FPS", e.frameCount, e.averageFrameTime, e.renderer.FPS())
	}

	return frame, nil
}

// SetDebugLogging enables periodic timing logs
func (e *Emulator) SetDebugLogging(enabled bool) {
	e.debug = enabled
}

// GetFrameCount returns the frames emulated since the last reset
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetActualFrameTime returns how long the last frame took to emulate
func (e *Emulator) GetActualFrameTime() time.Duration {
	return e.actualFrameTime
}

// GetAverageFrameTime returns the smoothed emulation time per frame
func (e *Emulator) GetAverageFrameTime() time.Duration {
	return e.averageFrameTime
}

// GetFPS returns the frames rendered during the last whole second
func (e *Emulator) GetFPS() int {
	return e.renderer.FPS()
}

// GetUptime returns the time since the last reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}
