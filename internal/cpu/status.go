package cpu

// Status register bit masks (NV-BDIZC)
const (
	nFlagMask = 0x80
	vFlagMask = 0x40
	rFlagMask = 0x20
	bFlagMask = 0x10
	dFlagMask = 0x08
	iFlagMask = 0x04
	zFlagMask = 0x02
	cFlagMask = 0x01
)

// Status is the processor status register kept as eight independent flags.
type Status struct {
	Negative         bool
	Overflow         bool
	Reserved         bool
	Break            bool
	Decimal          bool
	InterruptDisable bool
	Zero             bool
	Carry            bool
}

// Byte packs the flags into their register layout.
func (s Status) Byte() uint8 {
	var b uint8
	if s.Negative {
		b |= nFlagMask
	}
	if s.Overflow {
		b |= vFlagMask
	}
	if s.Reserved {
		b |= rFlagMask
	}
	if s.Break {
		b |= bFlagMask
	}
	if s.Decimal {
		b |= dFlagMask
	}
	if s.InterruptDisable {
		b |= iFlagMask
	}
	if s.Zero {
		b |= zFlagMask
	}
	if s.Carry {
		b |= cFlagMask
	}
	return b
}

// SetByte unpacks b into the flags.
func (s *Status) SetByte(b uint8) {
	s.Negative = b&nFlagMask != 0
	s.Overflow = b&vFlagMask != 0
	s.Reserved = b&rFlagMask != 0
	s.Break = b&bFlagMask != 0
	s.Decimal = b&dFlagMask != 0
	s.InterruptDisable = b&iFlagMask != 0
	s.Zero = b&zFlagMask != 0
	s.Carry = b&cFlagMask != 0
}

// StatusFromByte returns the Status encoded by b.
func StatusFromByte(b uint8) Status {
	var s Status
	s.SetByte(b)
	return s
}

// String renders the flags as "NV-BDIZC", lower case when clear.
func (s Status) String() string {
	flags := []struct {
		set  bool
		name byte
	}{
		{s.Negative, 'N'}, {s.Overflow, 'V'}, {s.Reserved, '-'}, {s.Break, 'B'},
		{s.Decimal, 'D'}, {s.InterruptDisable, 'I'}, {s.Zero, 'Z'}, {s.Carry, 'C'},
	}
	out := make([]byte, len(flags))
	for i, f := range flags {
		switch {
		case f.set:
			out[i] = f.name
		case f.name == '-':
			out[i] = '-'
		default:
			out[i] = f.name + ('a' - 'A')
		}
	}
	return string(out)
}
