// Package memory implements RAM, the CPU address-space router and the OAM DMA
// controller for the NES.
package memory

import "log"

const (
	ramSize = 0x0800

	ppuRegisterBase = 0x2000
	oamDMAAddress   = 0x4014
	apuStatus       = 0x4015
	joypad1         = 0x4016
	joypad2         = 0x4017
	expansionStart  = 0x4020
	cartridgeStart  = 0x6000
)

// PPUInterface defines the interface for PPU register access
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface defines the interface for APU register access
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface defines the interface for the controller ports
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// MapperInterface is the cartridge side of the bus. It sees CPU addresses
// from 0x6000 upwards.
type MapperInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// DMATrigger latches the source page written to 0x4014.
type DMATrigger interface {
	Write(page uint8)
}

// Memory represents the NES CPU memory map
type Memory struct {
	// Internal RAM (2KB, mirrored to 8KB)
	ram *RAM

	ppuRegisters PPUInterface
	apuRegisters APUInterface
	inputSystem  InputInterface
	mapper       MapperInterface
	dma          DMATrigger

	// Last value driven on the data bus, returned for unmapped reads
	openBusValue uint8

	enableDebugLogging bool
}

// New creates a new Memory instance. Any collaborator may be nil; reads from a
// missing one return open bus and writes to it are dropped.
func New(ppu PPUInterface, apu APUInterface, mapper MapperInterface) *Memory {
	return &Memory{
		ram:          NewRAM(ramSize),
		ppuRegisters: ppu,
		apuRegisters: apu,
		mapper:       mapper,
	}
}

// SetInputSystem sets the input system for controller access
func (m *Memory) SetInputSystem(input InputInterface) {
	m.inputSystem = input
}

// SetDMA connects the OAM DMA trigger at 0x4014.
func (m *Memory) SetDMA(dma DMATrigger) {
	m.dma = dma
}

// SetMapper swaps the cartridge mapper.
func (m *Memory) SetMapper(mapper MapperInterface) {
	m.mapper = mapper
}

// SetDebugLogging enables logging of writes to unmapped addresses
func (m *Memory) SetDebugLogging(enabled bool) {
	m.enableDebugLogging = enabled
}

// RAM returns the system RAM backing store.
func (m *Memory) RAM() *RAM {
	return m.ram
}

// Read reads a byte from the given address
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < ppuRegisterBase:
		value = m.ram.Read(address % ramSize)

	case address < 0x4000:
		if m.ppuRegisters == nil {
			return m.openBusValue
		}
		value = m.ppuRegisters.ReadRegister(ppuRegisterBase + address%8)

	case address == apuStatus:
		if m.apuRegisters == nil {
			return m.openBusValue
		}
		value = m.apuRegisters.ReadStatus()

	case address == joypad1 || address == joypad2:
		if m.inputSystem == nil {
			return m.openBusValue
		}
		value = m.inputSystem.Read(address)

	case address < cartridgeStart:
		// Write-only APU registers, test registers and the expansion area
		return m.openBusValue

	default:
		if m.mapper == nil {
			return m.openBusValue
		}
		value = m.mapper.Read(address)
	}

	m.openBusValue = value
	return value
}

// Write writes a byte to the given address
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < ppuRegisterBase:
		m.ram.Write(address%ramSize, value)

	case address < 0x4000:
		if m.ppuRegisters != nil {
			m.ppuRegisters.WriteRegister(ppuRegisterBase+address%8, value)
		}

	case address == oamDMAAddress:
		if m.dma != nil {
			m.dma.Write(value)
		}

	case address == joypad1:
		if m.inputSystem != nil {
			m.inputSystem.Write(address, value)
		}

	case address <= joypad2:
		// 0x4000-0x4013, 0x4015 and the frame counter at 0x4017
		if m.apuRegisters != nil {
			m.apuRegisters.WriteRegister(address, value)
		}

	case address < cartridgeStart:
		if m.enableDebugLogging {
			log.Printf("[MEMORY] Ignored write $%04X = $%02X", address, value)
		}

	default:
		if m.mapper != nil {
			m.mapper.Write(address, value)
		}
	}
}
