package apu

// Triangle is the triangle wave channel
type Triangle struct {
	length lengthCounter

	timerPeriod uint16
	timerValue  uint16
	dutyValue   uint8

	counterPeriod uint8
	counterValue  uint8
	counterReload bool
}

func (t *Triangle) control(value uint8) {
	t.length.halt = value&0x80 != 0
	t.counterPeriod = value & 0x7F
}

func (t *Triangle) writeTimerLow(value uint8) {
	t.timerPeriod = t.timerPeriod&0xFF00 | uint16(value)
}

func (t *Triangle) writeTimerHigh(value uint8) {
	t.timerPeriod = t.timerPeriod&0x00FF | uint16(value&0x07)<<8
	t.length.load(value >> 3)
	t.counterReload = true
}

func (t *Triangle) setEnabled(enabled bool) {
	t.length.setEnabled(enabled)
}

func (t *Triangle) isActive() bool {
	return t.length.value > 0
}

func (t *Triangle) stepTimer() {
	if t.timerValue != 0 {
		t.timerValue--
		return
	}
	t.timerValue = t.timerPeriod
	if t.length.value > 0 && t.counterValue > 0 {
		t.dutyValue = (t.dutyValue + 1) & 0x1F
	}
}

// stepCounter clocks the linear counter
func (t *Triangle) stepCounter() {
	if t.counterReload {
		t.counterValue = t.counterPeriod
	} else if t.counterValue > 0 {
		t.counterValue--
	}
	if !t.length.halt {
		t.counterReload = false
	}
}

func (t *Triangle) stepLength() {
	t.length.clock()
}

func (t *Triangle) output() uint8 {
	if t.length.value == 0 || t.counterValue == 0 {
		return 0
	}
	return triangleTable[t.dutyValue]
}
