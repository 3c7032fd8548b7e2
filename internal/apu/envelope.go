package apu

// envelope is the volume unit shared by the pulse and noise channels.
type envelope struct {
	loop     bool  // also halts the length counter
	constant bool  // use volume directly
	volume   uint8 // constant volume or divider period
	start    bool
	divider  uint8
	decay    uint8
}

func (e *envelope) write(value uint8) {
	e.loop = value&0x20 != 0
	e.constant = value&0x10 != 0
	e.volume = value & 0x0F
	e.start = true
}

func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.volume
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.volume
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) output() uint8 {
	if e.constant {
		return e.volume
	}
	return e.decay
}

// lengthCounter silences a channel after a programmed duration.
type lengthCounter struct {
	enabled bool
	halt    bool
	value   uint8
}

func (l *lengthCounter) load(index uint8) {
	if l.enabled {
		l.value = lengthTable[index&0x1F]
	}
}

func (l *lengthCounter) setEnabled(enabled bool) {
	l.enabled = enabled
	if !enabled {
		l.value = 0
	}
}

func (l *lengthCounter) clock() {
	if !l.halt && l.value > 0 {
		l.value--
	}
}
