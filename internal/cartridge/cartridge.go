// Package cartridge implements iNES ROM loading and the cartridge mappers.
package cartridge

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
)

const (
	prgBankSize = 0x4000
	chrBankSize = 0x2000
	trainerSize = 512
)

// Cartridge represents a NES cartridge
type Cartridge struct {
	// ROM data
	prgROM []uint8
	chrROM []uint8

	mapperID uint8
	mirror   MirrorMode

	hasBattery bool
	hasCHRRAM  bool
}

// iNES header structure
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// New builds a cartridge from raw program and character data. An empty chr
// gives the cartridge 8KB of character RAM.
func New(prg, chr []uint8, mirror MirrorMode, mapperID uint8) *Cartridge {
	cart := &Cartridge{
		prgROM:   prg,
		chrROM:   chr,
		mapperID: mapperID,
		mirror:   mirror,
	}
	if len(chr) == 0 {
		cart.chrROM = make([]uint8, chrBankSize)
		cart.hasCHRRAM = true
	}
	return cart
}

// LoadFromFile loads a cartridge from an iNES file
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open ROM: %w", err)
	}
	defer file.Close()

	cart, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cart, nil
}

// LoadFromReader loads a cartridge from an io.Reader
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if string(header.Magic[:]) != "NES\x1A" {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, header.Magic[:])
	}
	if header.PRGROMSize == 0 {
		return nil, fmt.Errorf("%w: PRG ROM size cannot be zero", ErrInvalidHeader)
	}

	cart := &Cartridge{
		mapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		hasBattery: header.Flags6&0x02 != 0,
	}

	switch {
	case header.Flags6&0x08 != 0:
		cart.mirror = MirrorFourScreen
	case header.Flags6&0x01 != 0:
		cart.mirror = MirrorVertical
	default:
		cart.mirror = MirrorHorizontal
	}

	if header.Flags6&0x04 != 0 {
		if _, err := io.CopyN(io.Discard, r, trainerSize); err != nil {
			return nil, fmt.Errorf("%w: trainer: %v", ErrTruncated, err)
		}
	}

	cart.prgROM = make([]uint8, int(header.PRGROMSize)*prgBankSize)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, fmt.Errorf("%w: PRG ROM: %v", ErrTruncated, err)
	}

	if header.CHRROMSize > 0 {
		cart.chrROM = make([]uint8, int(header.CHRROMSize)*chrBankSize)
		if _, err := io.ReadFull(r, cart.chrROM); err != nil {
			return nil, fmt.Errorf("%w: CHR ROM: %v", ErrTruncated, err)
		}
	} else {
		cart.chrROM = make([]uint8, chrBankSize)
		cart.hasCHRRAM = true
	}

	log.Printf("[CARTRIDGE] Loaded mapper %d, PRG %dKB, CHR %dKB (ram=%t), %s mirroring, battery=%t",
		cart.mapperID, len(cart.prgROM)/1024, len(cart.chrROM)/1024, cart.hasCHRRAM, cart.mirror, cart.hasBattery)

	return cart, nil
}

// PRGROM returns the program ROM bytes.
func (c *Cartridge) PRGROM() []uint8 {
	return c.prgROM
}

// CHRROM returns the character data that seeds the PPU's character memory.
func (c *Cartridge) CHRROM() []uint8 {
	return c.chrROM
}

// MapperID returns the iNES mapper number.
func (c *Cartridge) MapperID() uint8 {
	return c.mapperID
}

// Mirroring returns the cartridge's nametable mirroring mode
func (c *Cartridge) Mirroring() MirrorMode {
	return c.mirror
}

// HasBattery reports whether PRG RAM is battery backed.
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// HasCHRRAM reports whether the cartridge supplies character RAM instead of ROM.
func (c *Cartridge) HasCHRRAM() bool {
	return c.hasCHRRAM
}

// HasFourScreen reports whether the cartridge carries its own extra VRAM.
func (c *Cartridge) HasFourScreen() bool {
	return c.mirror == MirrorFourScreen
}
