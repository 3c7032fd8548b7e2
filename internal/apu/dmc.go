package apu

// DMC holds the delta modulation channel registers. Sample playback is not
// emulated; the direct-load level is mixed as a constant.
type DMC struct {
	enabled bool

	irqEnable bool
	loop      bool
	rate      uint16

	level         uint8
	sampleAddress uint16
	sampleLength  uint16
}

func (d *DMC) control(value uint8) {
	d.irqEnable = value&0x80 != 0
	d.loop = value&0x40 != 0
	d.rate = dmcRateTable[value&0x0F]
}

func (d *DMC) writeValue(value uint8) {
	d.level = value & 0x7F
}

func (d *DMC) writeAddress(value uint8) {
	d.sampleAddress = 0xC000 + uint16(value)<<6
}

func (d *DMC) writeLength(value uint8) {
	d.sampleLength = uint16(value)<<4 + 1
}

func (d *DMC) setEnabled(enabled bool) {
	d.enabled = enabled
}

// isActive reports bytes remaining. No sample is ever fetched, so it is
// always false.
func (d *DMC) isActive() bool {
	return false
}

func (d *DMC) output() uint8 {
	return d.level
}
