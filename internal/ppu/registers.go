package ppu

// Register file indices (address & 7)
const (
	ctrlIndex   = 0 // $2000 PPUCTRL
	maskIndex   = 1 // $2001 PPUMASK
	statusIndex = 2 // $2002 PPUSTATUS
	oamAddrReg  = 3 // $2003 OAMADDR
	oamDataReg  = 4 // $2004 OAMDATA
	scrollReg   = 5 // $2005 PPUSCROLL
	addrReg     = 6 // $2006 PPUADDR
	dataReg     = 7 // $2007 PPUDATA
)

// PPUCTRL bits
const (
	ctrlNametable         = 0x03
	ctrlIncrement32       = 0x04
	ctrlSpritePatternHigh = 0x08
	ctrlBGPatternHigh     = 0x10
	ctrlNMIEnable         = 0x80
)

// PPUMASK bits
const (
	maskShowBackground = 0x08
	maskShowSprites    = 0x10
)

const (
	nametableBase = 0x2000
	mirrorBase    = 0x3000
	paletteBase   = 0x3F00
	addressMask   = 0x3FFF
)

// ReadRegister reads from a PPU register (CPU $2000-$2007)
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 7 {
	case statusIndex:
		status := p.registers[statusIndex]
		p.registers[statusIndex] &^= statusVBlank
		p.isHorizontalScroll = true
		p.isLowerVramAddr = false
		return status
	case oamDataReg:
		value := p.oam.Read(uint16(p.oamAddr))
		p.oamAddr++
		return value
	case dataReg:
		return p.readData()
	default:
		// write-only
		return 0
	}
}

// WriteRegister writes to a PPU register (CPU $2000-$2007)
func (p *PPU) WriteRegister(address uint16, value uint8) {
	index := address & 7
	switch index {
	case statusIndex:
		// read only
		return
	case oamAddrReg:
		p.oamAddr = value
	case oamDataReg:
		p.oam.Write(uint16(p.oamAddr), value)
		p.oamAddr++
	case scrollReg:
		if p.isHorizontalScroll {
			p.scrollX = value
		} else {
			p.scrollY = value
		}
		p.isHorizontalScroll = !p.isHorizontalScroll
	case addrReg:
		if p.isLowerVramAddr {
			p.vramAddr = (p.vramAddr&0xFF00 | uint16(value)) & addressMask
		} else {
			p.vramAddr = uint16(value) << 8 & addressMask
		}
		p.isLowerVramAddr = !p.isLowerVramAddr
	case dataReg:
		p.writeData(value)
		return
	}
	p.registers[index] = value
}

// readData implements the buffered PPUDATA read. Palette reads bypass the
// buffer.
func (p *PPU) readData() uint8 {
	addr := p.vramAddr
	p.incrementVramAddr()

	buffered := p.vramReadBuf
	switch {
	case addr < nametableBase:
		p.vramReadBuf = p.characterRAM.Read(addr)
	case addr < paletteBase:
		p.vramReadBuf = p.vram.Read(p.nametableIndex(addr))
	default:
		return p.palette.Entry(addr - paletteBase)
	}
	return buffered
}

func (p *PPU) writeData(value uint8) {
	addr := p.vramAddr
	p.incrementVramAddr()

	switch {
	case addr < nametableBase:
		p.characterRAM.Write(addr, value)
		p.patterns.invalidate(addr)
	case addr < paletteBase:
		p.vram.Write(p.nametableIndex(addr), value)
	default:
		p.palette.Write(addr-paletteBase, value)
	}
}

func (p *PPU) incrementVramAddr() {
	if p.registers[ctrlIndex]&ctrlIncrement32 != 0 {
		p.vramAddr += 32
	} else {
		p.vramAddr++
	}
	p.vramAddr &= addressMask
}

// nametableIndex maps a PPU address in 0x2000-0x3EFF to a VRAM index,
// applying the 0x3000 mirror and the cartridge's nametable mirroring.
func (p *PPU) nametableIndex(addr uint16) uint16 {
	if addr >= mirrorBase {
		addr -= 0x1000
	}
	return p.foldNametable(addr - nametableBase)
}

// foldNametable applies nametable mirroring to an offset from 0x2000.
func (p *PPU) foldNametable(offset uint16) uint16 {
	offset &= 0x0FFF
	switch {
	case p.mirror.IsHorizontal():
		// 0x2400 -> 0x2000, 0x2C00 -> 0x2800
		return offset &^ 0x0400
	case p.mirror.IsVertical():
		// 0x2800 -> 0x2000, 0x2C00 -> 0x2400
		return offset &^ 0x0800
	default:
		return offset
	}
}
