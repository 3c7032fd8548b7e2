package ppu

// Palette holds the 32-byte palette store. Entries 0x10, 0x14, 0x18 and
// 0x1C share storage with 0x00, 0x04, 0x08 and 0x0C.
type Palette struct {
	entries [32]uint8
}

func isSpriteMirror(index uint16) bool {
	return index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C
}

func isBackgroundMirror(index uint16) bool {
	return index == 0x04 || index == 0x08 || index == 0x0C
}

// Write stores value at addr, an offset from 0x3F00.
func (p *Palette) Write(addr uint16, value uint8) {
	index := addr & 0x1F
	if isSpriteMirror(index) {
		index -= 0x10
	}
	p.entries[index] = value
}

// Entry returns the color a single palette address resolves to.
func (p *Palette) Entry(addr uint16) uint8 {
	index := addr & 0x1F
	switch {
	case isSpriteMirror(index):
		return p.entries[index-0x10]
	case isBackgroundMirror(index):
		return p.entries[0]
	default:
		return p.entries[index]
	}
}

// Read returns all 32 entries with aliasing applied. Entries 0x04, 0x08 and
// 0x0C read as the universal background color.
func (p *Palette) Read() [32]uint8 {
	var out [32]uint8
	for i := range out {
		out[i] = p.Entry(uint16(i))
	}
	return out
}
