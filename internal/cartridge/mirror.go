package cartridge

// MirrorMode represents nametable mirroring mode
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorFourScreen
)

// IsHorizontal reports whether 0x2400 and 0x2C00 fold onto 0x2000 and 0x2800.
func (m MirrorMode) IsHorizontal() bool {
	return m == MirrorHorizontal
}

// IsVertical reports whether 0x2800 and 0x2C00 fold onto 0x2000 and 0x2400.
func (m MirrorMode) IsVertical() bool {
	return m == MirrorVertical
}

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}
