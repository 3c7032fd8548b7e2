package cartridge

const (
	prgRAMStart = 0x6000
	prgRAMSize  = 0x2000
	prgROMStart = 0x8000
)

// Mapper000 implements NROM (mapper 0)
// NROM is the simplest mapper with no bank switching capabilities.
// It supports:
// - 16KB or 32KB PRG ROM (16KB is mirrored to fill 32KB address space)
// - 8KB PRG RAM at 0x6000-0x7FFF (optionally battery-backed)
type Mapper000 struct {
	prgROM []uint8
	prgRAM [prgRAMSize]uint8
}

// NewMapper000 creates a new NROM mapper
func NewMapper000(cart *Cartridge) *Mapper000 {
	return &Mapper000{prgROM: cart.prgROM}
}

// Read reads from PRG ROM/RAM
// Memory map:
// 0x6000-0x7FFF: 8KB PRG RAM
// 0x8000-0xFFFF: 32KB PRG ROM space
//   - For 16KB ROMs: mirrored (0x8000-0xBFFF mirrors to 0xC000-0xFFFF)
//   - For larger ROMs: direct mapped
func (m *Mapper000) Read(address uint16) uint8 {
	switch {
	case address >= prgROMStart:
		offset := int(address - prgROMStart)
		if len(m.prgROM) <= prgBankSize {
			offset &= prgBankSize - 1
		}
		if offset >= len(m.prgROM) {
			panic(&AddressError{Address: address, Size: len(m.prgROM)})
		}
		return m.prgROM[offset]
	case address >= prgRAMStart:
		return m.prgRAM[address-prgRAMStart]
	}
	return 0
}

// Write writes to PRG RAM. Writes to ROM are ignored.
func (m *Mapper000) Write(address uint16, value uint8) {
	if address >= prgRAMStart && address < prgROMStart {
		m.prgRAM[address-prgRAMStart] = value
	}
}

// PRGRAM exposes the 8KB work RAM window.
func (m *Mapper000) PRGRAM() []uint8 {
	return m.prgRAM[:]
}
