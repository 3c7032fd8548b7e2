// Package bus implements the machine aggregate that connects the NES
// components and drives them one instruction or one frame at a time.
package bus

import (
	"errors"
	"fmt"
	"log"

	"nescore/internal/apu"
	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/input"
	"nescore/internal/interrupts"
	"nescore/internal/memory"
	"nescore/internal/ppu"
)

// PPU dots per CPU cycle
const ppuDotsPerCycle = 3

var (
	// ErrNoCartridge is returned when stepping a machine with nothing loaded.
	ErrNoCartridge = errors.New("bus: no cartridge loaded")

	// ErrHalted is returned by every step after a fatal fault.
	ErrHalted = errors.New("bus: machine halted")
)

// Bus owns every component of one machine. Nothing in it is safe for
// concurrent use.
type Bus struct {
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	APU        *apu.APU
	Memory     *memory.Memory
	DMA        *memory.DMA
	Input      *input.Ports
	Interrupts *interrupts.Interrupts

	cartridge *cartridge.Cartridge
	mapper    cartridge.Mapper

	cpuCycles  uint64
	frameCount uint64
	fault      error

	enableDebugLogging bool
}

// New creates a machine without a cartridge. The APU produces samples at
// sampleRate.
func New(sampleRate int) *Bus {
	return &Bus{
		APU:        apu.New(sampleRate),
		Input:      input.NewPorts(nil, nil),
		Interrupts: interrupts.New(),
	}
}

// SetKeySources connects the sources sampled by each keypad once per frame.
func (b *Bus) SetKeySources(player1, player2 input.KeySource) {
	b.Input.Player1.SetSource(player1)
	b.Input.Player2.SetSource(player2)
}

// LoadCartridge builds the PPU, memory map and CPU around cart and resets
// the machine. An unsupported mapper fails before anything is replaced.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) error {
	mapper, err := cartridge.NewMapper(cart)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	b.cartridge = cart
	b.mapper = mapper
	b.PPU = ppu.New(cart.CHRROM(), cart.Mirroring(), b.Interrupts)
	b.Memory = memory.New(b.PPU, b.APU, mapper)
	b.Memory.SetInputSystem(b.Input)
	b.DMA = memory.NewDMA(b.Memory, b.PPU)
	b.Memory.SetDMA(b.DMA)
	b.CPU = cpu.New(b.Memory, b.Interrupts)

	if b.enableDebugLogging {
		log.Printf("[BUS] Loaded cartridge: mapper %d, %d bytes PRG, %d bytes CHR, %s mirroring",
			cart.MapperID(), len(cart.PRGROM()), len(cart.CHRROM()), cart.Mirroring())
	}
	b.SetDebugLogging(b.enableDebugLogging)

	return b.Reset()
}

// Reset returns every component to its power-up state and reloads PC from
// the reset vector.
func (b *Bus) Reset() (err error) {
	if b.CPU == nil {
		return ErrNoCartridge
	}
	defer b.recoverFault(&err)

	b.fault = nil
	b.cpuCycles = 0
	b.frameCount = 0
	b.Interrupts.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.CPU.Reset()
	return nil
}

// Step runs pending DMA and one CPU instruction, then advances the PPU and
// APU by the same time. It returns the frame snapshot when one completed.
func (b *Bus) Step() (frame *ppu.RenderingData, err error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	defer b.recoverFault(&err)
	return b.step()
}

// Frame steps until the PPU completes a frame, then samples the keypads.
func (b *Bus) Frame() (frame *ppu.RenderingData, err error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	defer b.recoverFault(&err)

	for frame == nil {
		if frame, err = b.step(); err != nil {
			return nil, err
		}
	}
	b.Input.Fetch()
	return frame, nil
}

func (b *Bus) step() (*ppu.RenderingData, error) {
	var cycles uint64
	if b.DMA.IsProcessing() {
		b.DMA.Run()
		cycles += memory.DMACycles
	}

	executed, err := b.CPU.Step()
	cycles += executed
	if err != nil {
		b.halt(err)
		return nil, err
	}

	b.cpuCycles += cycles
	b.APU.Step(int(cycles))
	frame := b.PPU.Run(int(cycles) * ppuDotsPerCycle)
	if frame != nil {
		b.frameCount++
	}
	return frame, nil
}

func (b *Bus) ready() error {
	if b.CPU == nil {
		return ErrNoCartridge
	}
	if b.fault != nil {
		return fmt.Errorf("%w: %v", ErrHalted, b.fault)
	}
	return nil
}

// recoverFault turns a ROM address panic into a returned error and halts
// the machine. Any other panic is re-raised.
func (b *Bus) recoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	addrErr, ok := r.(*cartridge.AddressError)
	if !ok {
		panic(r)
	}
	b.halt(addrErr)
	*err = addrErr
}

func (b *Bus) halt(err error) {
	b.fault = err
	log.Printf("[BUS] Machine halted: %v", err)
}

// Fault returns the error that halted the machine, or nil
func (b *Bus) Fault() error {
	return b.fault
}

// Cartridge returns the loaded cartridge
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cartridge
}

// CPUCycles returns the CPU cycles executed since reset, DMA included
func (b *Bus) CPUCycles() uint64 {
	return b.cpuCycles
}

// FrameCount returns the number of frames completed since reset
func (b *Bus) FrameCount() uint64 {
	return b.frameCount
}

// AudioSamples drains the samples the APU produced since the last call
func (b *Bus) AudioSamples() []float32 {
	return b.APU.Samples()
}

// SetDebugLogging enables component logging
func (b *Bus) SetDebugLogging(enabled bool) {
	b.enableDebugLogging = enabled
	b.APU.SetDebugLogging(enabled)
	b.Input.SetDebugLogging(enabled)
	if b.CPU == nil {
		return
	}
	b.PPU.SetDebugLogging(enabled)
	b.Memory.SetDebugLogging(enabled)
	b.DMA.SetDebugLogging(enabled)
}
