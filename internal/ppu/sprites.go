package ppu

const (
	patternTableHigh = 0x1000
	patternBytes     = 16
	spriteCount      = 64
	spriteYOffset    = 8
)

type patternKey struct {
	id   uint8
	half uint16
}

// patternCache memoizes decoded patterns by tile ID and pattern table.
type patternCache map[patternKey]*Pattern

func (c patternCache) invalidate(addr uint16) {
	var half uint16
	if addr >= patternTableHigh {
		half = patternTableHigh
	}
	delete(c, patternKey{id: uint8((addr - half) / patternBytes), half: half})
}

// pattern decodes tile id from the pattern table at half, reusing a cached
// decode when one exists.
func (p *PPU) pattern(id uint8, half uint16) *Pattern {
	key := patternKey{id: id, half: half}
	if cached, ok := p.patterns[key]; ok {
		return cached
	}

	base := half + uint16(id)*patternBytes
	pattern := &Pattern{}
	for row := 0; row < 8; row++ {
		low := p.characterRAM.Read(base + uint16(row))
		high := p.characterRAM.Read(base + uint16(row) + 8)
		for col := 0; col < 8; col++ {
			bit := uint8(0x80 >> col)
			if low&bit != 0 {
				pattern[row][col] += 1
			}
			if high&bit != 0 {
				pattern[row][col] += 2
			}
		}
	}
	p.patterns[key] = pattern
	return pattern
}

// buildSprites reads the 64 OAM entries. Entries whose top edge would sit
// above the screen are left out.
func (p *PPU) buildSprites() {
	var half uint16
	if p.registers[ctrlIndex]&ctrlSpritePatternHigh != 0 {
		half = patternTableHigh
	}

	p.sprites = make([]Sprite, 0, spriteCount)
	for i := 0; i < spriteCount; i++ {
		base := uint16(i * 4)
		y := int(p.oam.Read(base)) - spriteYOffset
		if y < 0 {
			continue
		}
		id := p.oam.Read(base + 1)
		p.sprites = append(p.sprites, Sprite{
			Pattern:   p.pattern(id, half),
			X:         p.oam.Read(base + 3),
			Y:         y,
			Attribute: p.oam.Read(base + 2),
			ID:        id,
		})
	}
}
