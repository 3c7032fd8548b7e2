package graphics

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	brailleBase   = 0x2800
	cellWidth     = 2
	cellHeight    = 4
	terminalCols  = FrameWidth / cellWidth
	terminalRows  = VisibleHeight / cellHeight
	litLuminance  = 127
	ansiClearHome = "\033[H"

	// The keypad puts the shared tty in raw mode, which turns off output
	// newline translation.
	lineBreak = "\r\n"
)

// brailleDots maps a pixel offset inside a 2x4 cell to its dot bit.
var brailleDots = [cellHeight][cellWidth]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
	out         io.Writer
}

// TerminalWindow renders frames as braille characters. Output happens on a
// separate goroutine; frames arriving while it is busy are dropped.
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool

	out     io.Writer
	pending chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	last    string
	fps     int
	frames  int
	second  int64
	skipped int
	mu      sync.Mutex
	now     func() time.Time
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{out: os.Stdout}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow starts the output goroutine
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if fd := int(os.Stdout.Fd()); b.out == os.Stdout && term.IsTerminal(fd) {
		if cols, rows, err := term.GetSize(fd); err == nil && (cols < terminalCols || rows < terminalRows+1) {
			log.Printf("[GRAPHICS] Terminal is %dx%d, %dx%d needed", cols, rows, terminalCols, terminalRows+1)
		}
	}

	w := newTerminalWindow(b.out, title, width, height)
	w.start()
	return w, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true: the terminal backend never opens a native window
func (b *TerminalBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

func newTerminalWindow(out io.Writer, title string, width, height int) *TerminalWindow {
	return &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		out:     out,
		pending: make(chan string, 1),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

func (w *TerminalWindow) start() {
	w.wg.Add(1)
	go w.drawLoop()
}

func (w *TerminalWindow) drawLoop() {
	defer w.wg.Done()
	for {
		select {
		case screen := <-w.pending:
			if _, err := io.WriteString(w.out, screen); err != nil {
				log.Printf("[GRAPHICS] Terminal write failed: %v", err)
			}
		case <-w.done:
			return
		}
	}
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns window dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// RenderFrame encodes the frame and hands it to the output goroutine.
// Unchanged frames are not redrawn.
func (w *TerminalWindow) RenderFrame(frame *Frame) error {
	w.countFrame()

	body := encodeBraille(frame)
	if body == w.last {
		return nil
	}
	w.last = body

	w.mu.Lock()
	header := fmt.Sprintf("FPS: %3d - Frame Skip: %3d"+lineBreak, w.fps, w.skipped)
	w.mu.Unlock()
	screen := ansiClearHome + header + body

	select {
	case w.pending <- screen:
	default:
		// Replace the queued screen with the newer one.
		select {
		case <-w.pending:
			w.mu.Lock()
			w.skipped++
			w.mu.Unlock()
		default:
		}
		select {
		case w.pending <- screen:
		default:
		}
	}
	return nil
}

func (w *TerminalWindow) countFrame() {
	second := w.now().Unix()
	w.mu.Lock()
	defer w.mu.Unlock()
	if second != w.second {
		w.fps = w.frames
		w.second = second
		w.frames = 1
		return
	}
	w.frames++
}

// Skipped returns how many encoded frames were dropped before output
func (w *TerminalWindow) Skipped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.skipped
}

// Cleanup stops the output goroutine
func (w *TerminalWindow) Cleanup() error {
	w.once.Do(func() {
		w.running = false
		close(w.done)
		w.wg.Wait()
	})
	return nil
}

// encodeBraille draws the visible area as rows of braille cells. A dot is
// lit when the pixel's luminance is above the midpoint.
func encodeBraille(frame *Frame) string {
	var sb strings.Builder
	sb.Grow(terminalRows * (terminalCols*3 + len(lineBreak)))

	for row := 0; row < terminalRows; row++ {
		for col := 0; col < terminalCols; col++ {
			cell := rune(0)
			for dy := 0; dy < cellHeight; dy++ {
				for dx := 0; dx < cellWidth; dx++ {
					if luminance(frame.At(col*cellWidth+dx, row*cellHeight+dy)) > litLuminance {
						cell |= brailleDots[dy][dx]
					}
				}
			}
			sb.WriteRune(brailleBase | cell)
		}
		sb.WriteString(lineBreak)
	}
	return sb.String()
}
