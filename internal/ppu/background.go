package ppu

const (
	tilesPerRow      = 33
	nametableColumns = 32
	nametableRows    = 30
	nametableSize    = 0x400
	attributeOffset  = 0x3C0
)

// buildBackground appends one row of tiles, honoring scroll and the selected
// base nametable. The first 8 lines are never shown, so the row built at line
// 8*n is nametable row n.
func (p *PPU) buildBackground() {
	nametableID := int(p.registers[ctrlIndex] & ctrlNametable)
	scrollTileY := (int(p.scrollY) + (nametableID/2)*240) / 8
	tileY := p.line/8 + scrollTileY

	clampedY := tileY % nametableRows
	tableOffset := 0
	if (tileY/nametableRows)%2 == 1 {
		tableOffset = 2
	}

	scrollTileX := (int(p.scrollX) + (nametableID%2)*256) / 8
	for x := 0; x < tilesPerRow; x++ {
		tileX := x + scrollTileX
		clampedX := tileX % nametableColumns
		offset := ((tileX/nametableColumns)%2 + tableOffset) * nametableSize
		p.background = append(p.background, p.buildTile(clampedX, clampedY, offset))
	}
}

func (p *PPU) buildTile(tileX, tileY, offset int) Tile {
	blockID := (tileX%4)/2 + ((tileY%4)/2)*2
	tileID := p.vram.Read(p.foldNametable(uint16(tileY*nametableColumns + tileX + offset)))
	attr := p.vram.Read(p.foldNametable(uint16(tileX/4 + (tileY/4)*8 + attributeOffset + offset)))

	var half uint16
	if p.registers[ctrlIndex]&ctrlBGPatternHigh != 0 {
		half = patternTableHigh
	}

	return Tile{
		Pattern:   p.pattern(tileID, half),
		PaletteID: (attr >> (blockID * 2)) & 0x03,
		ScrollX:   p.scrollX,
		ScrollY:   p.scrollY,
	}
}
