package ppu

import (
	"testing"

	"nescore/internal/cartridge"
)

// mockNMI records interrupt line activity
type mockNMI struct {
	asserted    bool
	assertCount int
}

func (m *mockNMI) AssertNMI() {
	m.asserted = true
	m.assertCount++
}

func (m *mockNMI) DeassertNMI() {
	m.asserted = false
}

func newTestPPU(mirror cartridge.MirrorMode) (*PPU, *mockNMI) {
	nmi := &mockNMI{}
	return New(make([]uint8, 0x2000), mirror, nmi), nmi
}

func setVramAddr(p *PPU, addr uint16) {
	p.WriteRegister(0x2006, uint8(addr>>8))
	p.WriteRegister(0x2006, uint8(addr))
}

func TestPPU_RunProducesOneSnapshotPerFrame(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)

	if data := p.Run(DotsPerFrame - 1); data != nil {
		t.Fatal("Snapshot returned before the frame ended")
	}
	if p.Line() != 261 || p.Dot() != 340 {
		t.Errorf("Expected line 261 dot 340, got line %d dot %d", p.Line(), p.Dot())
	}
	if data := p.Run(1); data == nil {
		t.Fatal("Expected a snapshot at the end of the frame")
	}
	if p.Line() != 0 || p.Dot() != 0 || p.FrameCount() != 1 {
		t.Errorf("Counters not reset: line %d dot %d frames %d", p.Line(), p.Dot(), p.FrameCount())
	}
}

func TestPPU_CPUFrameBudgetYieldsExactlyOneSnapshot(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)

	// A little over one frame of CPU time in 7-cycle instructions.
	snapshots := 0
	for cycles := 0; cycles < 29780; cycles += 7 {
		if p.Run(7*3) != nil {
			snapshots++
		}
	}
	if p.Run(2) != nil {
		snapshots++
	}
	if snapshots != 1 {
		t.Errorf("Expected 1 snapshot, got %d", snapshots)
	}
}

func TestPPU_LargeAdvanceCrossesSeveralLines(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)

	p.Run(341*3 + 10)
	if p.Line() != 3 || p.Dot() != 10 {
		t.Errorf("Expected line 3 dot 10, got line %d dot %d", p.Line(), p.Dot())
	}
}

func TestPPU_VBlankAndNMI(t *testing.T) {
	t.Run("NMI enabled", func(t *testing.T) {
		p, nmi := newTestPPU(cartridge.MirrorHorizontal)
		p.WriteRegister(0x2000, 0x80)

		p.Run(240 * 341)
		if nmi.asserted || p.IsVBlank() {
			t.Fatal("VBlank raised before line 241")
		}
		p.Run(341)
		if !nmi.asserted || !p.IsVBlank() {
			t.Fatal("Expected vblank and NMI at line 241")
		}
		p.Run(21 * 341)
		if nmi.asserted || p.IsVBlank() {
			t.Error("Expected vblank and NMI cleared at end of frame")
		}
		if nmi.assertCount != 1 {
			t.Errorf("Expected one NMI per frame, got %d", nmi.assertCount)
		}
	})

	t.Run("NMI disabled", func(t *testing.T) {
		p, nmi := newTestPPU(cartridge.MirrorHorizontal)
		p.Run(241 * 341)
		if !p.IsVBlank() {
			t.Error("Expected vblank at line 241")
		}
		if nmi.assertCount != 0 {
			t.Error("NMI raised with PPUCTRL bit 7 clear")
		}
	})
}

func TestPPU_StatusReadClearsVBlankAndToggles(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorFourScreen)
	p.Run(241 * 341)

	if status := p.ReadRegister(0x2002); status&statusVBlank == 0 {
		t.Fatalf("Expected vblank in status, got %02X", status)
	}
	if status := p.ReadRegister(0x2002); status&statusVBlank != 0 {
		t.Error("VBlank survived a status read")
	}

	// A dangling first address write is forgotten after a status read.
	p.WriteRegister(0x2006, 0x21)
	p.ReadRegister(0x2002)
	setVramAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0x99)
	if p.VRAM().Read(0x000) != 0x99 {
		t.Error("Address toggle not reset by status read")
	}

	p.WriteRegister(0x2005, 0x10)
	p.ReadRegister(0x2002)
	p.WriteRegister(0x2005, 0x20)
	if p.scrollX != 0x20 {
		t.Errorf("Scroll toggle not reset, scrollX=%02X", p.scrollX)
	}
}

func TestPPU_StatusWritesIgnored(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(0x2002, 0xFF)
	if status := p.ReadRegister(0x2002); status != 0 {
		t.Errorf("Expected status 00, got %02X", status)
	}
}

func TestPPU_RegisterMirroring(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorFourScreen)
	setVramAddr(p, 0x2000)
	p.WriteRegister(0x3FFF, 0x42) // mirror of 0x2007
	if p.VRAM().Read(0) != 0x42 {
		t.Error("Register mirror at 0x3FFF did not reach PPUDATA")
	}
}

func TestPPU_BufferedDataRead(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorFourScreen)
	setVramAddr(p, 0x2000)
	p.WriteRegister(0x2007, 0x55)
	p.WriteRegister(0x2007, 0x66)

	setVramAddr(p, 0x2000)
	if got := p.ReadRegister(0x2007); got != 0x00 {
		t.Errorf("First read should return the stale buffer, got %02X", got)
	}
	if got := p.ReadRegister(0x2007); got != 0x55 {
		t.Errorf("Expected 55, got %02X", got)
	}
	if got := p.ReadRegister(0x2007); got != 0x66 {
		t.Errorf("Expected 66, got %02X", got)
	}
}

func TestPPU_CharacterMemoryReadWrite(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[0x0010] = 0xAB
	p := New(chr, cartridge.MirrorHorizontal, nil)

	setVramAddr(p, 0x0010)
	p.ReadRegister(0x2007)
	if got := p.ReadRegister(0x2007); got != 0xAB {
		t.Errorf("Expected CHR byte AB, got %02X", got)
	}

	setVramAddr(p, 0x1FFF)
	p.WriteRegister(0x2007, 0x77)
	if p.CharacterRAM().Read(0x1FFF) != 0x77 {
		t.Error("CHR write lost")
	}
}

func TestPPU_PaletteReadIsImmediate(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	setVramAddr(p, 0x3F01)
	p.WriteRegister(0x2007, 0x2A)

	setVramAddr(p, 0x3F01)
	if got := p.ReadRegister(0x2007); got != 0x2A {
		t.Errorf("Expected palette entry 2A without buffering, got %02X", got)
	}
	// Mirrors every 32 bytes up to 0x3FFF.
	setVramAddr(p, 0x3FE1)
	if got := p.ReadRegister(0x2007); got != 0x2A {
		t.Errorf("Expected palette mirror 2A, got %02X", got)
	}
}

func TestPPU_AddressIncrement(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorFourScreen)
	p.WriteRegister(0x2000, ctrlIncrement32)
	setVramAddr(p, 0x2000)
	for _, v := range []uint8{1, 2, 3} {
		p.WriteRegister(0x2007, v)
	}

	for i, index := range []uint16{0x000, 0x020, 0x040} {
		if got := p.VRAM().Read(index); got != uint8(i+1) {
			t.Errorf("VRAM[%03X] = %d, want %d", index, got, i+1)
		}
	}
}

func TestPPU_AddressWrapsAt14Bits(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	setVramAddr(p, 0x7FFF) // masked to 0x3FFF
	p.WriteRegister(0x2007, 0x11)
	p.WriteRegister(0x2007, 0x22)

	if got := p.palette.Entry(0x1F); got != 0x11 {
		t.Errorf("Palette 1F = %02X, want 11", got)
	}
	if got := p.CharacterRAM().Read(0); got != 0x22 {
		t.Errorf("Increment did not wrap to 0000, CHR[0] = %02X", got)
	}
}

func TestPPU_NametableMirroring(t *testing.T) {
	tests := []struct {
		name   string
		mirror cartridge.MirrorMode
		want   map[uint16]uint16
	}{
		{"horizontal", cartridge.MirrorHorizontal, map[uint16]uint16{
			0x2000: 0x000, 0x2400: 0x000, 0x2800: 0x800, 0x2C00: 0x800, 0x3400: 0x000,
		}},
		{"vertical", cartridge.MirrorVertical, map[uint16]uint16{
			0x2000: 0x000, 0x2400: 0x400, 0x2800: 0x000, 0x2C00: 0x400, 0x3800: 0x000,
		}},
		{"four screen", cartridge.MirrorFourScreen, map[uint16]uint16{
			0x2000: 0x000, 0x2400: 0x400, 0x2800: 0x800, 0x2C00: 0xC00, 0x3C05: 0xC05,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for addr, index := range tt.want {
				p, _ := newTestPPU(tt.mirror)
				setVramAddr(p, addr)
				p.WriteRegister(0x2007, 0xC3)
				if got := p.VRAM().Read(index); got != 0xC3 {
					t.Errorf("Write to %04X: VRAM[%03X] = %02X, want C3", addr, index, got)
				}

				setVramAddr(p, addr)
				p.ReadRegister(0x2007)
				if got := p.ReadRegister(0x2007); got != 0xC3 {
					t.Errorf("Read back %04X = %02X, want C3", addr, got)
				}
			}
		})
	}
}

func TestPPU_OAMDataPort(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(0x2003, 0x05)
	p.WriteRegister(0x2004, 0xAA)
	p.WriteRegister(0x2004, 0xBB)

	if p.OAM().Read(5) != 0xAA || p.OAM().Read(6) != 0xBB {
		t.Fatal("OAM writes did not auto-increment")
	}

	p.WriteRegister(0x2003, 0x05)
	if got := p.ReadRegister(0x2004); got != 0xAA {
		t.Errorf("Expected AA, got %02X", got)
	}
	if got := p.ReadRegister(0x2004); got != 0xBB {
		t.Errorf("Expected BB, got %02X", got)
	}
}

func TestPPU_TransferSpriteUsesOAMAddress(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(0x2003, 0x10)
	p.TransferSprite(0xF8, 0x07)
	p.TransferSprite(0x00, 0x08)

	if p.OAM().Read(0x08) != 0x07 {
		t.Error("Transfer did not wrap within OAM")
	}
	if p.OAM().Read(0x10) != 0x08 {
		t.Error("Transfer did not start at OAMADDR")
	}
}

func TestPPU_SpriteZeroHit(t *testing.T) {
	tests := []struct {
		name string
		mask uint8
		hit  bool
	}{
		{"both layers", maskShowBackground | maskShowSprites, true},
		{"background only", maskShowBackground, false},
		{"sprites only", maskShowSprites, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPPU(cartridge.MirrorHorizontal)
			p.OAM().Write(0, 10)
			p.WriteRegister(0x2001, tt.mask)

			p.Run(9 * 341)
			if p.ReadRegister(0x2002)&statusSprite0Hit != 0 {
				t.Fatal("Hit raised early")
			}
			p.Run(341)
			hit := p.ReadRegister(0x2002)&statusSprite0Hit != 0
			if hit != tt.hit {
				t.Errorf("Sprite 0 hit = %t, want %t", hit, tt.hit)
			}
		})
	}
}

func TestPPU_SnapshotLayers(t *testing.T) {
	tests := []struct {
		name        string
		mask        uint8
		backgrounds int
		sprites     int
	}{
		{"disabled", 0, 0, 0},
		{"background", maskShowBackground, 33 * 30, 0},
		{"sprites", maskShowSprites, 0, 1},
		{"both", maskShowBackground | maskShowSprites, 33 * 30, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPPU(cartridge.MirrorHorizontal)
			p.OAM().Write(0, 50)
			p.WriteRegister(0x2001, tt.mask)

			data := p.Run(DotsPerFrame)
			if data == nil {
				t.Fatal("Expected snapshot")
			}
			if len(data.Background) != tt.backgrounds {
				t.Errorf("Background tiles = %d, want %d", len(data.Background), tt.backgrounds)
			}
			if len(data.Sprites) != tt.sprites {
				t.Errorf("Sprites = %d, want %d", len(data.Sprites), tt.sprites)
			}
		})
	}
}

func TestPPU_SpritesAboveScreenOmitted(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(0x2001, maskShowSprites)
	oam := p.OAM()
	// sprite 0 above the screen, sprite 1 on line 0, sprite 2 further down
	for i, entry := range [][4]uint8{{4, 1, 0, 0}, {8, 2, 0x40, 16}, {100, 3, 0x83, 200}} {
		for j, v := range entry {
			oam.Write(uint16(i*4+j), v)
		}
	}

	data := p.Run(DotsPerFrame)
	if len(data.Sprites) != 2 {
		t.Fatalf("Expected 2 sprites, got %d", len(data.Sprites))
	}
	s := data.Sprites[0]
	if s.ID != 2 || s.Y != 0 || s.X != 16 || s.Attribute != 0x40 {
		t.Errorf("Unexpected first sprite %+v", s)
	}
	s = data.Sprites[1]
	if s.ID != 3 || s.Y != 92 || s.X != 200 || s.Attribute != 0x83 {
		t.Errorf("Unexpected second sprite %+v", s)
	}
}

func TestPPU_BackgroundTileContents(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[1*16] = 0xFF   // tile 1, row 0, plane 0
	chr[1*16+8] = 0x0F // tile 1, row 0, plane 1
	p := New(chr, cartridge.MirrorHorizontal, nil)

	p.VRAM().Write(32, 1)       // row 1, column 0
	p.VRAM().Write(0x3C0, 0x03) // top-left quadrant palette 3
	p.WriteRegister(0x2001, maskShowBackground)

	data := p.Run(DotsPerFrame)
	tile := data.Background[0]
	if tile.PaletteID != 3 {
		t.Errorf("PaletteID = %d, want 3", tile.PaletteID)
	}
	want := [8]uint8{1, 1, 1, 1, 3, 3, 3, 3}
	if tile.Pattern[0] != want {
		t.Errorf("Pattern row 0 = %v, want %v", tile.Pattern[0], want)
	}
	if data.Background[1].Pattern[0] != ([8]uint8{}) {
		t.Error("Neighbouring tile should be blank")
	}
}

func TestPPU_BackgroundScroll(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[2*16] = 0x80
	p := New(chr, cartridge.MirrorVertical, nil)

	p.VRAM().Write(33, 2) // row 1, column 1
	p.WriteRegister(0x2001, maskShowBackground)
	p.WriteRegister(0x2005, 8)
	p.WriteRegister(0x2005, 0)

	data := p.Run(DotsPerFrame)
	tile := data.Background[0]
	if tile.Pattern[0][0] != 1 {
		t.Error("Horizontal scroll did not shift the first column")
	}
	if tile.ScrollX != 8 || tile.ScrollY != 0 {
		t.Errorf("Tile scroll = (%d,%d), want (8,0)", tile.ScrollX, tile.ScrollY)
	}
}

func TestPPU_PatternCacheInvalidation(t *testing.T) {
	chr := make([]uint8, 0x2000)
	chr[0] = 0x80
	p := New(chr, cartridge.MirrorHorizontal, nil)
	p.OAM().Write(0, 20)
	p.WriteRegister(0x2001, maskShowSprites)

	data := p.Run(DotsPerFrame)
	if data.Sprites[0].Pattern[0][0] != 1 {
		t.Fatalf("Expected decoded pixel 1, got %d", data.Sprites[0].Pattern[0][0])
	}

	setVramAddr(p, 0x0008)
	p.WriteRegister(0x2007, 0x80)

	// The sprite list for the next frame was already built, so the change
	// shows up one frame later.
	p.Run(DotsPerFrame)
	data = p.Run(DotsPerFrame)
	if data.Sprites[0].Pattern[0][0] != 3 {
		t.Errorf("Expected re-decoded pixel 3, got %d", data.Sprites[0].Pattern[0][0])
	}
}

func TestPPU_ResetKeepsMemory(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.OAM().Write(0, 0x12)
	p.WriteRegister(0x2000, 0x80)
	p.Run(1000)

	p.Reset()
	if p.Line() != 0 || p.Dot() != 0 {
		t.Error("Counters not reset")
	}
	if p.registers[ctrlIndex] != 0 {
		t.Error("PPUCTRL not reset")
	}
	if p.OAM().Read(0) != 0x12 {
		t.Error("OAM cleared by reset")
	}
}
