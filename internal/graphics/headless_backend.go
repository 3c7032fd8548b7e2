package graphics

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// HeadlessBackend implements the Backend interface for headless operation.
// Frames are optionally written to disk as PNG files.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int

	outputDir string
	interval  int
	scale     int
	debug     bool

	image  *image.RGBA
	scaled *image.RGBA
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	scale := b.config.Scale
	if scale < 1 {
		scale = 1
	}
	if b.config.CaptureInterval > 0 && b.config.OutputDir != "" {
		if err := os.MkdirAll(b.config.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &HeadlessWindow{
		title:     title,
		width:     width,
		height:    height,
		running:   true,
		outputDir: b.config.OutputDir,
		interval:  b.config.CaptureInterval,
		scale:     scale,
		debug:     b.config.Debug,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// RenderFrame counts the frame and writes every Nth one as a PNG
func (w *HeadlessWindow) RenderFrame(frame *Frame) error {
	w.frameCount++
	if w.interval <= 0 || w.outputDir == "" || w.frameCount%w.interval != 0 {
		return nil
	}
	return w.savePNG(frame, filepath.Join(w.outputDir, fmt.Sprintf("%08d.png", w.frameCount)))
}

func (w *HeadlessWindow) savePNG(frame *Frame, filename string) error {
	w.image = frame.Image(w.image)
	out := w.image
	if w.scale > 1 {
		bounds := image.Rect(0, 0, FrameWidth*w.scale, VisibleHeight*w.scale)
		if w.scaled == nil || w.scaled.Bounds() != bounds {
			w.scaled = image.NewRGBA(bounds)
		}
		draw.NearestNeighbor.Scale(w.scaled, bounds, w.image, w.image.Bounds(), draw.Src, nil)
		out = w.scaled
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	if err := png.Encode(file, out); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	if w.debug {
		log.Printf("[GRAPHICS] Wrote %s", filename)
	}
	return file.Close()
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// FrameCount returns the number of frames presented
func (w *HeadlessWindow) FrameCount() int {
	return w.frameCount
}
