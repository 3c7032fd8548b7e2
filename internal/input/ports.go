package input

import "log"

// Controller port addresses on the CPU bus
const (
	Port1 = 0x4016
	Port2 = 0x4017
)

// Ports connects two keypads to the CPU bus.
type Ports struct {
	Player1 *Keypad
	Player2 *Keypad
}

// NewPorts wires one keypad per player. Either source may be nil.
func NewPorts(player1, player2 KeySource) *Ports {
	return &Ports{
		Player1: NewKeypad(player1),
		Player2: NewKeypad(player2),
	}
}

// Read reads from controller ports
func (p *Ports) Read(address uint16) uint8 {
	switch address {
	case Port1:
		return p.Player1.Read()
	case Port2:
		return p.Player2.Read()
	default:
		return 0
	}
}

// Write writes to controller ports. Both keypads share the strobe line.
func (p *Ports) Write(address uint16, value uint8) {
	if address != Port1 {
		return
	}
	if p.Player1.debugEnabled {
		log.Printf("[INPUT] $4016 write: value=0x%02X", value)
	}
	p.Player1.Write(value)
	p.Player2.Write(value)
}

// Fetch samples both key sources
func (p *Ports) Fetch() {
	p.Player1.Fetch()
	p.Player2.Fetch()
}

// Reset resets all input devices
func (p *Ports) Reset() {
	p.Player1.Reset()
	p.Player2.Reset()
}

// SetDebugLogging enables debug logging for both keypads
func (p *Ports) SetDebugLogging(enabled bool) {
	p.Player1.SetDebugLogging(enabled)
	p.Player2.SetDebugLogging(enabled)
}
