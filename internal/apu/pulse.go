package apu

// Pulse is one of the two square wave channels
type Pulse struct {
	length   lengthCounter
	envelope envelope

	dutyMode  uint8
	dutyValue uint8

	timerPeriod uint16
	timerValue  uint16

	sweepEnable  bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepCounter uint8

	// pulse 1 negates with one's complement
	onesComplement bool
}

func (p *Pulse) control(value uint8) {
	p.dutyMode = (value >> 6) & 0x03
	p.envelope.write(value)
	p.length.halt = p.envelope.loop
}

func (p *Pulse) writeSweep(value uint8) {
	p.sweepEnable = value&0x80 != 0
	p.sweepPeriod = (value>>4)&0x07 + 1
	p.sweepNegate = value&0x08 != 0
	p.sweepShift = value & 0x07
	p.sweepReload = true
}

func (p *Pulse) writeTimerLow(value uint8) {
	p.timerPeriod = p.timerPeriod&0xFF00 | uint16(value)
}

func (p *Pulse) writeTimerHigh(value uint8) {
	p.timerPeriod = p.timerPeriod&0x00FF | uint16(value&0x07)<<8
	p.length.load(value >> 3)
	p.envelope.start = true
	p.dutyValue = 0
}

func (p *Pulse) setEnabled(enabled bool) {
	p.length.setEnabled(enabled)
}

func (p *Pulse) isActive() bool {
	return p.length.value > 0
}

func (p *Pulse) stepTimer() {
	if p.timerValue == 0 {
		p.timerValue = p.timerPeriod
		p.dutyValue = (p.dutyValue + 1) & 0x07
		return
	}
	p.timerValue--
}

func (p *Pulse) stepLength() {
	p.length.clock()
}

func (p *Pulse) stepSweep() {
	if p.sweepReload {
		if p.sweepEnable && p.sweepCounter == 0 {
			p.sweep()
		}
		p.sweepCounter = p.sweepPeriod
		p.sweepReload = false
		return
	}
	if p.sweepCounter > 0 {
		p.sweepCounter--
		return
	}
	if p.sweepEnable {
		p.sweep()
	}
	p.sweepCounter = p.sweepPeriod
}

func (p *Pulse) sweep() {
	delta := p.timerPeriod >> p.sweepShift
	if !p.sweepNegate {
		p.timerPeriod += delta
		return
	}
	p.timerPeriod -= delta
	if p.onesComplement {
		p.timerPeriod--
	}
}

func (p *Pulse) output() uint8 {
	if p.length.value == 0 || p.timerPeriod < 8 || p.timerPeriod > 0x7FF {
		return 0
	}
	if dutyTable[p.dutyMode][p.dutyValue] == 0 {
		return 0
	}
	return p.envelope.output()
}
