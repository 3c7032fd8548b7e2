//go:build headless

package graphics

import (
	"errors"

	"nescore/internal/input"
)

var errNoEbitengine = errors.New("Ebitengine backend not available in headless build")

// DefaultWindowKeys mirrors the windowed build so configuration stays valid.
var DefaultWindowKeys = [8]string{"X", "Z", "ShiftRight", "Enter", "ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight"}

// EbitengineBackend stub for headless builds
type EbitengineBackend struct{}

// EbitengineWindow stub for headless builds
type EbitengineWindow struct{}

// NewEbitengineBackend creates a stub backend for headless builds
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

func (b *EbitengineBackend) Initialize(config Config) error { return errNoEbitengine }
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, errNoEbitengine
}
func (b *EbitengineBackend) Cleanup() error   { return nil }
func (b *EbitengineBackend) IsHeadless() bool { return true }
func (b *EbitengineBackend) GetName() string  { return "Ebitengine-Stub" }

func (w *EbitengineWindow) SetTitle(title string)              {}
func (w *EbitengineWindow) GetSize() (width, height int)       { return 0, 0 }
func (w *EbitengineWindow) ShouldClose() bool                  { return true }
func (w *EbitengineWindow) Poll() input.Buttons                { return input.Buttons{} }
func (w *EbitengineWindow) RenderFrame(frame *Frame) error     { return errNoEbitengine }
func (w *EbitengineWindow) Cleanup() error                     { return nil }
func (w *EbitengineWindow) Run() error                         { return errNoEbitengine }
func (w *EbitengineWindow) SetEmulatorUpdateFunc(func() error) {}
