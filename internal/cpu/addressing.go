package cpu

// AddressingMode selects how an instruction locates its operand.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect        // JMP ($nnnn)
	IndexedIndirect // ($nn,X)
	IndirectIndexed // ($nn),Y
)

const (
	zeroPageMask = 0xFF
	pageMask     = 0xFF00
)

var modeNames = [...]string{
	Implied:         "Implied",
	Accumulator:     "Accumulator",
	Immediate:       "Immediate",
	ZeroPage:        "ZeroPage",
	ZeroPageX:       "ZeroPageX",
	ZeroPageY:       "ZeroPageY",
	Relative:        "Relative",
	Absolute:        "Absolute",
	AbsoluteX:       "AbsoluteX",
	AbsoluteY:       "AbsoluteY",
	Indirect:        "Indirect",
	IndexedIndirect: "IndexedIndirect",
	IndirectIndexed: "IndirectIndexed",
}

func (m AddressingMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Unknown"
}

// OperandBytes returns how many bytes follow the opcode for this mode.
func (m AddressingMode) OperandBytes() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	default:
		return 1
	}
}

func samePage(a, b uint16) bool {
	return a&pageMask == b&pageMask
}

// fetch reads the byte at PC and advances PC.
func (cpu *CPU) fetch() uint8 {
	value := cpu.memory.Read(cpu.PC)
	cpu.PC++
	return value
}

func (cpu *CPU) fetchWord() uint16 {
	low := uint16(cpu.fetch())
	high := uint16(cpu.fetch())
	return high<<8 | low
}

func (cpu *CPU) readWord(address uint16) uint16 {
	low := uint16(cpu.memory.Read(address))
	high := uint16(cpu.memory.Read(address + 1))
	return high<<8 | low
}

// resolve consumes the operand bytes for mode and returns the effective
// address together with the page-cross flag for that mode. Immediate operands
// resolve to the address of the operand byte itself.
func (cpu *CPU) resolve(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		address := cpu.PC
		cpu.PC++
		return address, false

	case ZeroPage:
		return uint16(cpu.fetch()), false

	case ZeroPageX:
		return uint16(cpu.fetch() + cpu.X), false

	case ZeroPageY:
		return uint16(cpu.fetch() + cpu.Y), false

	case Relative:
		offset := int8(cpu.fetch())
		target := uint16(int32(cpu.PC) + int32(offset))
		return target, !samePage(target, cpu.PC)

	case Absolute:
		return cpu.fetchWord(), false

	case AbsoluteX:
		base := cpu.fetchWord()
		address := base + uint16(cpu.X)
		return address, !samePage(base, address)

	case AbsoluteY:
		base := cpu.fetchWord()
		address := base + uint16(cpu.Y)
		return address, !samePage(base, address)

	case Indirect:
		ptr := cpu.fetchWord()
		// The high byte is read from the start of the same page when the
		// pointer sits on a page's last byte.
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read(ptr&pageMask | (ptr+1)&zeroPageMask))
		return high<<8 | low, false

	case IndexedIndirect:
		base := cpu.fetch()
		ptr := base + cpu.X
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16(ptr + 1)))
		address := high<<8 | low
		return address, !samePage(address, uint16(base))

	case IndirectIndexed:
		ptr := cpu.fetch()
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16(ptr + 1)))
		base := high<<8 | low
		address := base + uint16(cpu.Y)
		return address, !samePage(base, address)
	}
	return 0, false
}
