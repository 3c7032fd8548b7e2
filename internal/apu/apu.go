// Package apu implements the Audio Processing Unit for the NES.
package apu

import "log"

const (
	// CPUFrequency is the NTSC CPU clock in Hz.
	CPUFrequency = 1789773.0

	// DefaultSampleRate is used when New is given a non-positive rate.
	DefaultSampleRate = 44100
)

// Frame sequencer step boundaries in CPU cycles (240 Hz quarter frames)
const (
	quarterFrame1 = 7457
	quarterFrame2 = 14913
	quarterFrame3 = 22371
	quarterFrame4 = 29829
	fourStepEnd   = 29830
	fiveStepEnd   = 37281
)

// Status bits ($4015)
const (
	StatusPulse1   = 0x01
	StatusPulse2   = 0x02
	StatusTriangle = 0x04
	StatusNoise    = 0x08
	StatusDMC      = 0x10
	StatusFrameIRQ = 0x40
)

// APU represents the NES Audio Processing Unit
type APU struct {
	pulse1   Pulse
	pulse2   Pulse
	triangle Triangle
	noise    Noise
	dmc      DMC

	// Frame counter
	frameCounter   uint32
	fiveStepMode   bool
	frameIRQEnable bool
	frameIRQFlag   bool

	// Audio generation
	sampleBuffer     []float32
	sampleRate       int
	cycleAccumulator float64

	cycles             uint64
	enableDebugLogging bool
}

// New creates a new APU producing samples at sampleRate
func New(sampleRate int) *APU {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	apu := &APU{
		sampleBuffer: make([]float32, 0, 4096),
		sampleRate:   sampleRate,
	}
	apu.Reset()
	return apu
}

// Reset resets the APU to its initial state
func (apu *APU) Reset() {
	apu.pulse1 = Pulse{onesComplement: true}
	apu.pulse2 = Pulse{}
	apu.triangle = Triangle{}
	apu.noise = Noise{shiftRegister: 1}
	apu.dmc = DMC{}

	apu.frameCounter = 0
	apu.fiveStepMode = false
	apu.frameIRQEnable = true
	apu.frameIRQFlag = false

	apu.cycles = 0
	apu.cycleAccumulator = 0
	apu.sampleBuffer = apu.sampleBuffer[:0]
}

// Step advances the APU by the given number of CPU cycles
func (apu *APU) Step(cycles int) {
	for i := 0; i < cycles; i++ {
		apu.tick()
	}
}

func (apu *APU) tick() {
	apu.cycles++

	apu.stepFrameCounter()

	// Pulse and noise timers run at half the CPU clock.
	if apu.cycles%2 == 0 {
		apu.pulse1.stepTimer()
		apu.pulse2.stepTimer()
		apu.noise.stepTimer()
	}
	apu.triangle.stepTimer()

	apu.generateSample()
}

// stepFrameCounter handles frame counter timing
func (apu *APU) stepFrameCounter() {
	apu.frameCounter++

	switch apu.frameCounter {
	case quarterFrame1, quarterFrame3:
		apu.clockQuarterFrame()
	case quarterFrame2:
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
	case quarterFrame4:
		if !apu.fiveStepMode {
			apu.clockQuarterFrame()
			apu.clockHalfFrame()
		}
	case fourStepEnd:
		if !apu.fiveStepMode {
			if apu.frameIRQEnable {
				apu.frameIRQFlag = true
			}
			apu.frameCounter = 0
		}
	case fiveStepEnd:
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
		apu.frameCounter = 0
	}
}

// clockQuarterFrame clocks envelopes and the triangle linear counter
func (apu *APU) clockQuarterFrame() {
	apu.pulse1.envelope.clock()
	apu.pulse2.envelope.clock()
	apu.noise.envelope.clock()
	apu.triangle.stepCounter()
}

// clockHalfFrame clocks length counters and sweep units
func (apu *APU) clockHalfFrame() {
	apu.pulse1.stepLength()
	apu.pulse1.stepSweep()
	apu.pulse2.stepLength()
	apu.pulse2.stepSweep()
	apu.triangle.stepLength()
	apu.noise.stepLength()
}

// generateSample adds a mixed sample whenever the accumulator crosses one
// output sample period.
func (apu *APU) generateSample() {
	apu.cycleAccumulator += float64(apu.sampleRate) / CPUFrequency
	if apu.cycleAccumulator < 1.0 {
		return
	}
	apu.cycleAccumulator -= 1.0
	apu.sampleBuffer = append(apu.sampleBuffer, apu.Output())
}

// Output mixes the current channel levels through the nonlinear mixer
func (apu *APU) Output() float32 {
	return mix(apu.pulse1.output(), apu.pulse2.output(), apu.triangle.output(), apu.noise.output(), apu.dmc.output())
}

// WriteRegister writes to an APU register
func (apu *APU) WriteRegister(address uint16, value uint8) {
	if apu.enableDebugLogging {
		log.Printf("[AUDIO] Write $%04X = $%02X", address, value)
	}

	switch address {
	// Pulse Channel 1
	case 0x4000:
		apu.pulse1.control(value)
	case 0x4001:
		apu.pulse1.writeSweep(value)
	case 0x4002:
		apu.pulse1.writeTimerLow(value)
	case 0x4003:
		apu.pulse1.writeTimerHigh(value)

	// Pulse Channel 2
	case 0x4004:
		apu.pulse2.control(value)
	case 0x4005:
		apu.pulse2.writeSweep(value)
	case 0x4006:
		apu.pulse2.writeTimerLow(value)
	case 0x4007:
		apu.pulse2.writeTimerHigh(value)

	// Triangle Channel
	case 0x4008:
		apu.triangle.control(value)
	case 0x400A:
		apu.triangle.writeTimerLow(value)
	case 0x400B:
		apu.triangle.writeTimerHigh(value)

	// Noise Channel
	case 0x400C:
		apu.noise.control(value)
	case 0x400E:
		apu.noise.writePeriod(value)
	case 0x400F:
		apu.noise.writeLength(value)

	// DMC Channel
	case 0x4010:
		apu.dmc.control(value)
	case 0x4011:
		apu.dmc.writeValue(value)
	case 0x4012:
		apu.dmc.writeAddress(value)
	case 0x4013:
		apu.dmc.writeLength(value)

	// Control registers
	case 0x4015:
		apu.writeChannelEnable(value)
	case 0x4017:
		apu.writeFrameCounter(value)
	}
}

// ReadStatus reads the APU status register ($4015). Reading clears the
// frame IRQ flag.
func (apu *APU) ReadStatus() uint8 {
	var status uint8
	if apu.pulse1.isActive() {
		status |= StatusPulse1
	}
	if apu.pulse2.isActive() {
		status |= StatusPulse2
	}
	if apu.triangle.isActive() {
		status |= StatusTriangle
	}
	if apu.noise.isActive() {
		status |= StatusNoise
	}
	if apu.dmc.isActive() {
		status |= StatusDMC
	}
	if apu.frameIRQFlag {
		status |= StatusFrameIRQ
	}
	apu.frameIRQFlag = false
	return status
}

// writeChannelEnable writes to channel enable register ($4015)
func (apu *APU) writeChannelEnable(value uint8) {
	apu.pulse1.setEnabled(value&StatusPulse1 != 0)
	apu.pulse2.setEnabled(value&StatusPulse2 != 0)
	apu.triangle.setEnabled(value&StatusTriangle != 0)
	apu.noise.setEnabled(value&StatusNoise != 0)
	apu.dmc.setEnabled(value&StatusDMC != 0)
}

// writeFrameCounter writes to frame counter register ($4017)
func (apu *APU) writeFrameCounter(value uint8) {
	apu.fiveStepMode = value&0x80 != 0
	apu.frameIRQEnable = value&0x40 == 0
	if !apu.frameIRQEnable {
		apu.frameIRQFlag = false
	}

	apu.frameCounter = 0

	// 5-step mode clocks every unit immediately
	if apu.fiveStepMode {
		apu.clockQuarterFrame()
		apu.clockHalfFrame()
	}
}

// Samples drains the samples generated since the last call
func (apu *APU) Samples() []float32 {
	samples := make([]float32, len(apu.sampleBuffer))
	copy(samples, apu.sampleBuffer)
	apu.sampleBuffer = apu.sampleBuffer[:0]
	return samples
}

// SampleRate returns the output sample rate
func (apu *APU) SampleRate() int {
	return apu.sampleRate
}

// FrameIRQ returns the current frame counter IRQ flag
func (apu *APU) FrameIRQ() bool {
	return apu.frameIRQFlag
}

// SetDebugLogging enables logging of every register write
func (apu *APU) SetDebugLogging(enabled bool) {
	apu.enableDebugLogging = enabled
}
