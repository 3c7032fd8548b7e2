package apu

// Noise is the pseudo-random noise channel
type Noise struct {
	length   lengthCounter
	envelope envelope

	shortMode     bool // 93-step sequence
	timerPeriod   uint16
	timerValue    uint16
	shiftRegister uint16 // 15-bit LFSR
}

func (n *Noise) control(value uint8) {
	n.envelope.write(value)
	n.length.halt = n.envelope.loop
}

func (n *Noise) writePeriod(value uint8) {
	n.shortMode = value&0x80 != 0
	n.timerPeriod = noisePeriodTable[value&0x0F]
}

func (n *Noise) writeLength(value uint8) {
	n.length.load(value >> 3)
	n.envelope.start = true
}

func (n *Noise) setEnabled(enabled bool) {
	n.length.setEnabled(enabled)
}

func (n *Noise) isActive() bool {
	return n.length.value > 0
}

func (n *Noise) stepTimer() {
	if n.timerValue != 0 {
		n.timerValue--
		return
	}
	n.timerValue = n.timerPeriod

	shift := 1
	if n.shortMode {
		shift = 6
	}
	feedback := (n.shiftRegister & 1) ^ ((n.shiftRegister >> shift) & 1)
	n.shiftRegister = n.shiftRegister>>1 | feedback<<14
}

func (n *Noise) stepLength() {
	n.length.clock()
}

func (n *Noise) output() uint8 {
	if n.length.value == 0 || n.shiftRegister&1 == 1 {
		return 0
	}
	return n.envelope.output()
}
