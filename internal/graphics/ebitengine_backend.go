//go:build !headless

package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nescore/internal/input"
)

// DefaultWindowKeys are the Ebitengine key names for A, B, Select, Start,
// Up, Down, Left and Right.
var DefaultWindowKeys = [8]string{"X", "Z", "ShiftRight", "Enter", "ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight"}

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine. It is
// also the keypad source for player one.
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	keys               [8]ebiten.Key
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the emulator
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	imageBuffer  *image.RGBA
	windowWidth  int
	windowHeight int
	drawCount    int
	filter       ebiten.Filter
	debug        bool
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	keys, err := parseKeys(b.config.Keys)
	if err != nil {
		return nil, err
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(FrameWidth, VisibleHeight),
		imageBuffer:  image.NewRGBA(image.Rect(0, 0, FrameWidth, VisibleHeight)),
		filter:       drawFilter(b.config.Filter),
		debug:        b.config.Debug,
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
		keys:    keys,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return window, nil
}

// drawFilter maps the configured scale filter name to an Ebitengine filter.
func drawFilter(name string) ebiten.Filter {
	if name == "linear" {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}

// parseKeys resolves configured key names, falling back to the defaults
// for empty entries.
func parseKeys(names [8]string) ([8]ebiten.Key, error) {
	var keys [8]ebiten.Key
	for i, name := range names {
		if name == "" {
			name = DefaultWindowKeys[i]
		}
		if err := keys[i].UnmarshalText([]byte(name)); err != nil {
			return keys, fmt.Errorf("key for %s: %w", input.Button(i), err)
		}
	}
	return keys, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false: Ebitengine opens a native window
func (b *EbitengineBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// Poll reports the mapped keys as keypad buttons
func (w *EbitengineWindow) Poll() input.Buttons {
	var buttons input.Buttons
	for i, key := range w.keys {
		buttons[i] = ebiten.IsKeyPressed(key)
	}
	return buttons
}

// RenderFrame uploads the visible area of a frame
func (w *EbitengineWindow) RenderFrame(frame *Frame) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	w.game.imageBuffer = frame.Image(w.game.imageBuffer)
	w.game.frameImage.WritePixels(w.game.imageBuffer.Pix)
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop. It blocks until the window closes.
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	err := ebiten.RunGame(w.game)
	w.running = false
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// SetEmulatorUpdateFunc sets the function called once per tick
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || !g.window.running {
		return ebiten.Termination
	}

	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			return err
		}
	}

	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	op := &ebiten.DrawImageOptions{}
	op.Filter = g.filter

	// Fit the window while keeping the aspect ratio
	scaleX := float64(g.windowWidth) / float64(FrameWidth)
	scaleY := float64(g.windowHeight) / float64(VisibleHeight)
	scale := min(scaleX, scaleY)

	offsetX := (float64(g.windowWidth) - float64(FrameWidth)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(VisibleHeight)*scale) / 2

	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(g.frameImage, op)

	g.drawCount++
	if g.debug && g.drawCount%1800 == 0 {
		log.Printf("[GRAPHICS] Drawing frame %d scaled %.2fx at offset (%.1f,%.1f)",
			g.drawCount, scale, offsetX, offsetY)
	}
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}
