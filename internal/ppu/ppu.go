// Package ppu implements the Picture Processing Unit for the NES.
package ppu

import (
	"log"

	"nescore/internal/cartridge"
	"nescore/internal/memory"
)

const (
	dotsPerLine   = 341
	linesPerFrame = 262
	vblankLine    = 241
	lastTileLine  = 240

	// DotsPerFrame is the PPU time of one NTSC frame.
	DotsPerFrame = dotsPerLine * linesPerFrame

	vramSize         = 0x2000
	characterRAMSize = 0x4000
	oamSize          = 0x100
)

// PPUSTATUS bits
const (
	statusVBlank     = 0x80
	statusSprite0Hit = 0x40
)

// NMILine is the part of the interrupt latch the PPU drives.
type NMILine interface {
	AssertNMI()
	DeassertNMI()
}

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	// CPU-visible registers 0x2000-0x2006, indexed by address & 7
	registers [7]uint8

	// Memory
	vram         *memory.RAM // nametables and attribute tables
	oam          *memory.RAM // sprite descriptors
	characterRAM *memory.RAM // pattern tables
	palette      Palette

	// Register protocol state
	vramAddr        uint16
	vramReadBuf     uint8
	isLowerVramAddr bool
	oamAddr         uint8

	isHorizontalScroll bool
	scrollX            uint8
	scrollY            uint8

	mirror cartridge.MirrorMode

	// Timing
	dot          int
	line         int
	frameStarted bool
	frameCount   uint64

	// Per-frame build state
	background []Tile
	sprites    []Sprite
	patterns   patternCache

	nmi NMILine

	enableDebugLogging bool
}

// New creates a PPU whose pattern tables are seeded from chr. nmi may be nil.
func New(chr []uint8, mirror cartridge.MirrorMode, nmi NMILine) *PPU {
	p := &PPU{
		vram:         memory.NewRAM(vramSize),
		oam:          memory.NewRAM(oamSize),
		characterRAM: memory.NewRAMFrom(characterRAMSize, chr),
		mirror:       mirror,
		nmi:          nmi,
		patterns:     make(patternCache),
	}
	p.Reset()
	return p
}

// Reset returns the registers and counters to their power-up state. Memory
// contents survive.
func (p *PPU) Reset() {
	p.registers = [7]uint8{}
	p.vramAddr = 0
	p.vramReadBuf = 0
	p.isLowerVramAddr = false
	p.oamAddr = 0
	p.isHorizontalScroll = true
	p.scrollX = 0
	p.scrollY = 0
	p.dot = 0
	p.line = 0
	p.frameStarted = false
	p.background = nil
	p.sprites = nil
}

// Run advances the PPU by dots and returns a snapshot when the advance crosses
// the end of a frame, nil otherwise.
func (p *PPU) Run(dots int) *RenderingData {
	var frame *RenderingData
	p.dot += dots

	for {
		if p.line == 0 && !p.frameStarted {
			p.startFrame()
		}
		if p.dot < dotsPerLine {
			return frame
		}
		p.dot -= dotsPerLine
		if data := p.advanceLine(); data != nil {
			frame = data
		}
	}
}

// startFrame clears the background buffer and rebuilds the sprite list.
func (p *PPU) startFrame() {
	p.frameStarted = true
	p.background = make([]Tile, 0, tilesPerRow*30)
	p.buildSprites()
}

func (p *PPU) advanceLine() *RenderingData {
	p.line++

	if p.hasSpriteHit() {
		p.registers[statusIndex] |= statusSprite0Hit
	}

	if p.line <= lastTileLine && p.line%8 == 0 && p.scrollY <= lastTileLine {
		p.buildBackground()
	}

	switch p.line {
	case vblankLine:
		p.registers[statusIndex] |= statusVBlank
		if p.registers[ctrlIndex]&ctrlNMIEnable != 0 && p.nmi != nil {
			p.nmi.AssertNMI()
		}

	case linesPerFrame:
		p.registers[statusIndex] &^= statusVBlank | statusSprite0Hit
		p.line = 0
		p.frameStarted = false
		p.frameCount++
		if p.nmi != nil {
			p.nmi.DeassertNMI()
		}

		data := &RenderingData{Palette: p.palette.Read()}
		if p.isBackgroundEnabled() {
			data.Background = p.background
		}
		if p.isSpriteEnabled() {
			data.Sprites = p.sprites
		}
		if p.enableDebugLogging {
			log.Printf("[PPU] Frame %d: %d tiles, %d sprites", p.frameCount, len(data.Background), len(data.Sprites))
		}
		return data
	}
	return nil
}

// hasSpriteHit approximates sprite 0 hit: sprite 0's Y matches the line
// while both layers are enabled.
func (p *PPU) hasSpriteHit() bool {
	return int(p.oam.Read(0)) == p.line && p.isBackgroundEnabled() && p.isSpriteEnabled()
}

func (p *PPU) isBackgroundEnabled() bool {
	return p.registers[maskIndex]&maskShowBackground != 0
}

func (p *PPU) isSpriteEnabled() bool {
	return p.registers[maskIndex]&maskShowSprites != 0
}

// TransferSprite is the OAM DMA entry point. The transfer starts at the
// current OAM address and wraps within OAM.
func (p *PPU) TransferSprite(index uint8, value uint8) {
	p.oam.Write(uint16(index+p.oamAddr), value)
}

// Line returns the current scanline (0-261)
func (p *PPU) Line() int {
	return p.line
}

// Dot returns the dot within the current line (0-340)
func (p *PPU) Dot() int {
	return p.dot
}

// FrameCount returns the number of completed frames
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// IsVBlank returns true if currently in vertical blank
func (p *PPU) IsVBlank() bool {
	return p.registers[statusIndex]&statusVBlank != 0
}

// OAM exposes sprite memory.
func (p *PPU) OAM() *memory.RAM {
	return p.oam
}

// VRAM exposes nametable memory.
func (p *PPU) VRAM() *memory.RAM {
	return p.vram
}

// CharacterRAM exposes pattern table memory.
func (p *PPU) CharacterRAM() *memory.RAM {
	return p.characterRAM
}

// SetDebugLogging enables a log line per completed frame
func (p *PPU) SetDebugLogging(enabled bool) {
	p.enableDebugLogging = enabled
}
