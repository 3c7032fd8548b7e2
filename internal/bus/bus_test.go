package bus

import (
	"errors"
	"testing"

	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/input"
)

// newTestBus loads a 16KB NROM image with code at 0x8000.
func newTestBus(t *testing.T, builder *cartridge.ROMBuilder) *Bus {
	t.Helper()
	cart, err := builder.BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge failed: %v", err)
	}
	b := New(44100)
	if err := b.LoadCartridge(cart); err != nil {
		t.Fatalf("LoadCartridge failed: %v", err)
	}
	return b
}

func mustStep(t *testing.T, b *Bus) {
	t.Helper()
	if _, err := b.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
}

func TestBus_LoadStoreProgram(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().WithCode(0x8000,
		0xA9, 0x42, // LDA #$42
		0x85, 0x00, // STA $00
		0x4C, 0x04, 0x80, // loop: JMP loop
	))

	mustStep(t, b)
	if b.CPU.A != 0x42 {
		t.Errorf("Expected A=0x42, got 0x%02X", b.CPU.A)
	}
	mustStep(t, b)
	if got := b.Memory.Read(0x0000); got != 0x42 {
		t.Errorf("Expected RAM[0]=0x42, got 0x%02X", got)
	}
	mustStep(t, b)
	if b.CPU.PC != 0x8004 {
		t.Errorf("Expected PC=0x8004, got 0x%04X", b.CPU.PC)
	}
	if b.CPUCycles() != 2+3+3 {
		t.Errorf("Expected 8 cycles, got %d", b.CPUCycles())
	}
}

func TestBus_DMAChargesFixedCost(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().WithCode(0x8000,
		0xA9, 0x02, // LDA #$02
		0x8D, 0x14, 0x40, // STA $4014
		0xEA, // NOP
	))
	for i := 0; i < 256; i++ {
		b.Memory.Write(0x0200+uint16(i), uint8(i^0xA5))
	}

	mustStep(t, b)
	mustStep(t, b)
	if !b.DMA.IsProcessing() {
		t.Fatal("DMA not pending after write to $4014")
	}
	before := b.CPUCycles()
	mustStep(t, b)

	if b.DMA.IsProcessing() {
		t.Error("DMA still pending after step")
	}
	if got := b.CPUCycles() - before; got != 514+2 {
		t.Errorf("Expected 516 cycles for DMA + NOP, got %d", got)
	}
	for i := 0; i < 256; i++ {
		if got := b.PPU.OAM().Read(uint16(i)); got != uint8(i^0xA5) {
			t.Fatalf("OAM[%d] = 0x%02X, want 0x%02X", i, got, uint8(i^0xA5))
		}
	}
}

func TestBus_FrameReturnsOneSnapshot(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().WithCode(0x8000, 0x4C, 0x00, 0x80))

	frame, err := b.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if frame == nil {
		t.Fatal("Frame returned no snapshot")
	}
	if b.FrameCount() != 1 {
		t.Errorf("FrameCount = %d, want 1", b.FrameCount())
	}
	// 89342 dots / 3 rounded up to whole 3-cycle JMPs
	if c := b.CPUCycles(); c < 29781 || c > 29783 {
		t.Errorf("frame took %d CPU cycles", c)
	}
	if b.PPU.Line() != 0 {
		t.Errorf("PPU line after frame = %d", b.PPU.Line())
	}

	samples := b.AudioSamples()
	if len(samples) < 730 || len(samples) > 740 {
		t.Errorf("got %d audio samples for one frame", len(samples))
	}
}

func TestBus_NMIHandlerRunsEachFrame(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().
		WithCode(0x8000,
			0xA9, 0x80, // LDA #$80
			0x8D, 0x00, 0x20, // STA $2000
			0x4C, 0x05, 0x80, // loop: JMP loop
		).
		WithCode(0x9000,
			0xE6, 0x10, // INC $10
			0x40, // RTI
		).
		WithNMIVector(0x9000))

	for i := 1; i <= 3; i++ {
		if _, err := b.Frame(); err != nil {
			t.Fatal(err)
		}
		if got := b.Memory.Read(0x0010); got != uint8(i) {
			t.Errorf("after frame %d: counter = %d", i, got)
		}
	}
}

type fixedSource struct {
	buttons input.Buttons
	polls   int
}

func (s *fixedSource) Poll() input.Buttons {
	s.polls++
	return s.buttons
}

func TestBus_FrameFetchesInput(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().WithCode(0x8000, 0x4C, 0x00, 0x80))
	source := &fixedSource{}
	source.buttons[input.ButtonStart] = true
	b.SetKeySources(source, nil)

	if _, err := b.Step(); err != nil {
		t.Fatal(err)
	}
	if source.polls != 0 {
		t.Error("Step sampled the keypad")
	}

	if _, err := b.Frame(); err != nil {
		t.Fatal(err)
	}
	if source.polls != 1 {
		t.Errorf("polls = %d, want 1", source.polls)
	}
	if !b.Input.Player1.IsPressed(input.ButtonStart) {
		t.Error("Start not latched into player 1")
	}
}

func TestBus_DecodeFaultHalts(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().WithCode(0x8000, 0xEA, 0x0B))

	mustStep(t, b)
	_, err := b.Step()
	var decodeErr *cpu.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Opcode != 0x0B || decodeErr.PC != 0x8001 {
		t.Fatalf("Expected DecodeError at 0x8001, got %v", err)
	}

	if _, err := b.Frame(); !errors.Is(err, ErrHalted) {
		t.Errorf("Expected ErrHalted, got %v", err)
	}
	if b.Fault() == nil {
		t.Error("Fault not recorded")
	}

	if err := b.Reset(); err != nil {
		t.Fatal(err)
	}
	if b.Fault() != nil {
		t.Error("Reset did not clear the fault")
	}
}

func TestBus_ROMAddressFaultHalts(t *testing.T) {
	// 24KB of PRG leaves the vectors outside the ROM window.
	cart := cartridge.New(make([]uint8, 0x6000), nil, cartridge.MirrorHorizontal, 0)
	b := New(44100)

	err := b.LoadCartridge(cart)
	var addrErr *cartridge.AddressError
	if !errors.As(err, &addrErr) {
		t.Fatalf("Expected AddressError, got %v", err)
	}
	if _, err := b.Step(); !errors.Is(err, ErrHalted) {
		t.Errorf("Expected ErrHalted, got %v", err)
	}
}

func TestBus_UnsupportedMapperFailsFast(t *testing.T) {
	cart, err := cartridge.NewROMBuilder().WithMapper(4).BuildCartridge()
	if err != nil {
		t.Fatal(err)
	}
	b := New(44100)

	err = b.LoadCartridge(cart)
	var unsupported *cartridge.UnsupportedMapperError
	if !errors.As(err, &unsupported) || unsupported.ID != 4 {
		t.Fatalf("Expected UnsupportedMapperError, got %v", err)
	}
	if b.CPU != nil {
		t.Error("machine was partially built")
	}
	if _, err := b.Frame(); !errors.Is(err, ErrNoCartridge) {
		t.Errorf("Expected ErrNoCartridge, got %v", err)
	}
}

func TestBus_ControllerReadThroughMemory(t *testing.T) {
	b := newTestBus(t, cartridge.NewROMBuilder().WithCode(0x8000, 0x4C, 0x00, 0x80))
	b.Input.Player1.SetButton(input.ButtonA, true)
	b.Input.Player2.SetButton(input.ButtonB, true)

	b.Memory.Write(0x4016, 1)
	b.Memory.Write(0x4016, 0)

	if b.Memory.Read(0x4016)&1 != 1 {
		t.Error("player 1 A not read")
	}
	if b.Memory.Read(0x4017)&1 != 0 {
		t.Error("player 2 A read as pressed")
	}
	if b.Memory.Read(0x4017)&1 != 1 {
		t.Error("player 2 B not read")
	}
}
