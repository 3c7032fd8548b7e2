// Package input implements controller handling for the NES.
package input

import (
	"log"
)

// Button represents NES controller buttons
type Button uint8

// Buttons in the order the shift register reports them.
const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight

	buttonCount
)

var buttonNames = [buttonCount]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	if b < buttonCount {
		return buttonNames[b]
	}
	return "Unknown"
}

// Buttons is a full controller state indexed by Button.
type Buttons [buttonCount]bool

// KeySource supplies the live button state. It is sampled once per frame.
type KeySource interface {
	Poll() Buttons
}

// NullKeySource never reports a pressed button.
type NullKeySource struct{}

// Poll implements KeySource
func (NullKeySource) Poll() Buttons {
	return Buttons{}
}

// Keypad is a standard controller: a live key buffer and the 8-bit shift
// register the CPU reads serially.
type Keypad struct {
	source KeySource

	keyBuffer    Buttons
	keyRegisters Buttons
	isSet        bool
	index        int

	readCount    uint64
	writeCount   uint64
	debugEnabled bool
}

// NewKeypad creates a keypad fed by source. A nil source leaves the key
// buffer under SetButton control.
func NewKeypad(source KeySource) *Keypad {
	return &Keypad{source: source}
}

// SetSource replaces the key source. nil hands the buffer back to SetButton.
func (k *Keypad) SetSource(source KeySource) {
	k.source = source
}

// SetButton sets the live state of a button
func (k *Keypad) SetButton(button Button, pressed bool) {
	if button >= buttonCount {
		return
	}
	k.keyBuffer[button] = pressed
	if k.debugEnabled {
		log.Printf("[INPUT] SetButton: %s pressed=%t", button, pressed)
	}
}

// IsPressed returns true if the button is currently held
func (k *Keypad) IsPressed(button Button) bool {
	return button < buttonCount && k.keyBuffer[button]
}

// Fetch samples the key source into the live buffer
func (k *Keypad) Fetch() {
	if k.source == nil {
		return
	}
	k.keyBuffer = k.source.Poll()
}

// Write handles the strobe register. Writing 1 arms the latch; the next
// write of 0 rewinds the read index and latches the live buffer.
func (k *Keypad) Write(value uint8) {
	k.writeCount++
	if value&0x01 != 0 {
		k.isSet = true
		return
	}
	if k.isSet {
		k.isSet = false
		k.index = 0
		k.keyRegisters = k.keyBuffer
		if k.debugEnabled {
			log.Printf("[INPUT] Latched buttons %v after %d reads", k.keyRegisters, k.readCount)
		}
	}
}

// Read returns the next button bit. After the eighth read it returns 1.
func (k *Keypad) Read() uint8 {
	k.readCount++
	if k.index >= int(buttonCount) {
		return 1
	}
	pressed := k.keyRegisters[k.index]
	k.index++
	if pressed {
		return 1
	}
	return 0
}

// Reset clears the live buffer and the shift register
func (k *Keypad) Reset() {
	k.keyBuffer = Buttons{}
	k.keyRegisters = Buttons{}
	k.isSet = false
	k.index = 0
	k.readCount = 0
	k.writeCount = 0
}

// Accesses returns how often the CPU read and wrote this keypad since the
// last reset
func (k *Keypad) Accesses() (reads, writes uint64) {
	return k.readCount, k.writeCount
}

// SetDebugLogging enables debug logging for this keypad
func (k *Keypad) SetDebugLogging(enabled bool) {
	k.debugEnabled = enabled
}
