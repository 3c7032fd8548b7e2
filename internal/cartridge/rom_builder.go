package cartridge

import (
	"bytes"
	"fmt"
)

// ROMBuilder assembles minimal iNES images, mostly for tests and demos.
type ROMBuilder struct {
	prgBanks   uint8
	chrBanks   uint8
	mapperID   uint8
	mirroring  MirrorMode
	hasBattery bool
	trainer    []uint8
	prg        map[uint16]uint8
	chr        []uint8
	reset      uint16
	nmi        uint16
	irq        uint16
}

// NewROMBuilder starts a 16KB PRG / 8KB CHR NROM image whose vectors all
// point at 0x8000.
func NewROMBuilder() *ROMBuilder {
	return &ROMBuilder{
		prgBanks:  1,
		chrBanks:  1,
		mirroring: MirrorHorizontal,
		prg:       make(map[uint16]uint8),
		reset:     prgROMStart,
		nmi:       prgROMStart,
		irq:       prgROMStart,
	}
}

// WithPRGSize sets the PRG ROM size in 16KB units
func (b *ROMBuilder) WithPRGSize(banks uint8) *ROMBuilder {
	b.prgBanks = banks
	return b
}

// WithCHRRAM configures the ROM to use CHR RAM instead of CHR ROM
func (b *ROMBuilder) WithCHRRAM() *ROMBuilder {
	b.chrBanks = 0
	return b
}

// WithMapper sets the mapper ID
func (b *ROMBuilder) WithMapper(id uint8) *ROMBuilder {
	b.mapperID = id
	return b
}

// WithMirroring sets the nametable mirroring mode
func (b *ROMBuilder) WithMirroring(mode MirrorMode) *ROMBuilder {
	b.mirroring = mode
	return b
}

// WithBattery enables battery-backed PRG RAM
func (b *ROMBuilder) WithBattery() *ROMBuilder {
	b.hasBattery = true
	return b
}

// WithTrainer adds a 512-byte trainer
func (b *ROMBuilder) WithTrainer(data []uint8) *ROMBuilder {
	b.trainer = make([]uint8, trainerSize)
	copy(b.trainer, data)
	return b
}

// WithCode places bytes at a CPU address in the 0x8000-0xFFFF window.
func (b *ROMBuilder) WithCode(address uint16, code ...uint8) *ROMBuilder {
	for i, value := range code {
		b.prg[address+uint16(i)] = value
	}
	return b
}

// WithCHRData sets the start of CHR ROM
func (b *ROMBuilder) WithCHRData(data []uint8) *ROMBuilder {
	b.chr = append([]uint8(nil), data...)
	return b
}

// WithResetVector sets the reset vector
func (b *ROMBuilder) WithResetVector(address uint16) *ROMBuilder {
	b.reset = address
	return b
}

// WithNMIVector sets the NMI vector
func (b *ROMBuilder) WithNMIVector(address uint16) *ROMBuilder {
	b.nmi = address
	return b
}

// WithIRQVector sets the IRQ/BRK vector
func (b *ROMBuilder) WithIRQVector(address uint16) *ROMBuilder {
	b.irq = address
	return b
}

// Build generates the iNES image
func (b *ROMBuilder) Build() ([]byte, error) {
	if b.prgBanks == 0 {
		return nil, fmt.Errorf("PRG ROM size cannot be zero")
	}

	var out bytes.Buffer
	out.Write(b.header())
	if b.trainer != nil {
		out.Write(b.trainer)
	}

	prg := make([]uint8, int(b.prgBanks)*prgBankSize)
	window := len(prg)
	if window > 0x8000 {
		window = 0x8000
	}
	for address, value := range b.prg {
		if address < prgROMStart {
			return nil, fmt.Errorf("code at $%04X is outside PRG ROM", address)
		}
		prg[int(address-prgROMStart)%window] = value
	}
	// Vectors live in the last six bytes of the CPU window.
	vectors := window - 6
	for i, v := range []uint16{b.nmi, b.reset, b.irq} {
		prg[vectors+i*2] = uint8(v)
		prg[vectors+i*2+1] = uint8(v >> 8)
	}
	out.Write(prg)

	if b.chrBanks > 0 {
		chr := make([]uint8, int(b.chrBanks)*chrBankSize)
		copy(chr, b.chr)
		out.Write(chr)
	}
	return out.Bytes(), nil
}

// BuildCartridge generates and loads the ROM as a cartridge
func (b *ROMBuilder) BuildCartridge() (*Cartridge, error) {
	data, err := b.Build()
	if err != nil {
		return nil, err
	}
	return LoadFromReader(bytes.NewReader(data))
}

func (b *ROMBuilder) header() []byte {
	header := make([]byte, 16)
	copy(header[0:4], "NES\x1A")
	header[4] = b.prgBanks
	header[5] = b.chrBanks

	flags6 := (b.mapperID & 0x0F) << 4
	if b.mirroring == MirrorVertical {
		flags6 |= 0x01
	}
	if b.hasBattery {
		flags6 |= 0x02
	}
	if b.trainer != nil {
		flags6 |= 0x04
	}
	if b.mirroring == MirrorFourScreen {
		flags6 |= 0x08
	}
	header[6] = flags6
	header[7] = b.mapperID & 0xF0
	return header
}
