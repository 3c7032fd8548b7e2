package cpu

// Operation identifies what an opcode does, independent of its addressing mode.
type Operation uint8

const (
	opADC Operation = iota
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA

	// undocumented
	opLAX
	opSAX
	opDCP
	opISB
	opSLO
	opRLA
	opSRE
	opRRA
)

// OpCode describes one entry of the decode table.
type OpCode struct {
	Name      string
	Opcode    uint8
	Operation Operation
	Mode      AddressingMode
	Cycles    uint8
	// PagePenalty is set when a page cross during operand resolution costs
	// one more cycle.
	PagePenalty bool
}

// Bytes returns the full instruction length including the opcode.
func (o *OpCode) Bytes() int {
	return 1 + o.Mode.OperandBytes()
}

// Lookup returns the table entry for opcode, or nil if the byte is undefined.
func Lookup(opcode uint8) *OpCode {
	return opcodeTable[opcode]
}

var opcodeTable = buildOpcodeTable()

type opcodeDef struct {
	opcode uint8
	mode   AddressingMode
	cycles uint8
}

// reads marks operations whose indexed forms pay the page-cross penalty.
var reads = map[Operation]bool{
	opADC: true, opAND: true, opCMP: true, opEOR: true, opLDA: true,
	opLDX: true, opLDY: true, opORA: true, opSBC: true, opLAX: true, opNOP: true,
}

func buildOpcodeTable() [256]*OpCode {
	var table [256]*OpCode
	add := func(name string, op Operation, defs ...opcodeDef) {
		for _, d := range defs {
			if table[d.opcode] != nil {
				panic("cpu: duplicate opcode " + name)
			}
			penalty := reads[op] && (d.mode == AbsoluteX || d.mode == AbsoluteY || d.mode == IndirectIndexed)
			table[d.opcode] = &OpCode{
				Name:        name,
				Opcode:      d.opcode,
				Operation:   op,
				Mode:        d.mode,
				Cycles:      d.cycles,
				PagePenalty: penalty,
			}
		}
	}

	// Loads and stores
	add("LDA", opLDA,
		opcodeDef{0xA9, Immediate, 2}, opcodeDef{0xA5, ZeroPage, 3}, opcodeDef{0xB5, ZeroPageX, 4},
		opcodeDef{0xAD, Absolute, 4}, opcodeDef{0xBD, AbsoluteX, 4}, opcodeDef{0xB9, AbsoluteY, 4},
		opcodeDef{0xA1, IndexedIndirect, 6}, opcodeDef{0xB1, IndirectIndexed, 5})
	add("LDX", opLDX,
		opcodeDef{0xA2, Immediate, 2}, opcodeDef{0xA6, ZeroPage, 3}, opcodeDef{0xB6, ZeroPageY, 4},
		opcodeDef{0xAE, Absolute, 4}, opcodeDef{0xBE, AbsoluteY, 4})
	add("LDY", opLDY,
		opcodeDef{0xA0, Immediate, 2}, opcodeDef{0xA4, ZeroPage, 3}, opcodeDef{0xB4, ZeroPageX, 4},
		opcodeDef{0xAC, Absolute, 4}, opcodeDef{0xBC, AbsoluteX, 4})
	add("STA", opSTA,
		opcodeDef{0x85, ZeroPage, 3}, opcodeDef{0x95, ZeroPageX, 4}, opcodeDef{0x8D, Absolute, 4},
		opcodeDef{0x9D, AbsoluteX, 5}, opcodeDef{0x99, AbsoluteY, 5},
		opcodeDef{0x81, IndexedIndirect, 6}, opcodeDef{0x91, IndirectIndexed, 6})
	add("STX", opSTX,
		opcodeDef{0x86, ZeroPage, 3}, opcodeDef{0x96, ZeroPageY, 4}, opcodeDef{0x8E, Absolute, 4})
	add("STY", opSTY,
		opcodeDef{0x84, ZeroPage, 3}, opcodeDef{0x94, ZeroPageX, 4}, opcodeDef{0x8C, Absolute, 4})

	// Transfers
	add("TAX", opTAX, opcodeDef{0xAA, Implied, 2})
	add("TAY", opTAY, opcodeDef{0xA8, Implied, 2})
	add("TXA", opTXA, opcodeDef{0x8A, Implied, 2})
	add("TYA", opTYA, opcodeDef{0x98, Implied, 2})
	add("TSX", opTSX, opcodeDef{0xBA, Implied, 2})
	add("TXS", opTXS, opcodeDef{0x9A, Implied, 2})

	// Arithmetic and logic
	add("ADC", opADC,
		opcodeDef{0x69, Immediate, 2}, opcodeDef{0x65, ZeroPage, 3}, opcodeDef{0x75, ZeroPageX, 4},
		opcodeDef{0x6D, Absolute, 4}, opcodeDef{0x7D, AbsoluteX, 4}, opcodeDef{0x79, AbsoluteY, 4},
		opcodeDef{0x61, IndexedIndirect, 6}, opcodeDef{0x71, IndirectIndexed, 5})
	add("SBC", opSBC,
		opcodeDef{0xE9, Immediate, 2}, opcodeDef{0xE5, ZeroPage, 3}, opcodeDef{0xF5, ZeroPageX, 4},
		opcodeDef{0xED, Absolute, 4}, opcodeDef{0xFD, AbsoluteX, 4}, opcodeDef{0xF9, AbsoluteY, 4},
		opcodeDef{0xE1, IndexedIndirect, 6}, opcodeDef{0xF1, IndirectIndexed, 5},
		opcodeDef{0xEB, Immediate, 2})
	add("AND", opAND,
		opcodeDef{0x29, Immediate, 2}, opcodeDef{0x25, ZeroPage, 3}, opcodeDef{0x35, ZeroPageX, 4},
		opcodeDef{0x2D, Absolute, 4}, opcodeDef{0x3D, AbsoluteX, 4}, opcodeDef{0x39, AbsoluteY, 4},
		opcodeDef{0x21, IndexedIndirect, 6}, opcodeDef{0x31, IndirectIndexed, 5})
	add("EOR", opEOR,
		opcodeDef{0x49, Immediate, 2}, opcodeDef{0x45, ZeroPage, 3}, opcodeDef{0x55, ZeroPageX, 4},
		opcodeDef{0x4D, Absolute, 4}, opcodeDef{0x5D, AbsoluteX, 4}, opcodeDef{0x59, AbsoluteY, 4},
		opcodeDef{0x41, IndexedIndirect, 6}, opcodeDef{0x51, IndirectIndexed, 5})
	add("ORA", opORA,
		opcodeDef{0x09, Immediate, 2}, opcodeDef{0x05, ZeroPage, 3}, opcodeDef{0x15, ZeroPageX, 4},
		opcodeDef{0x0D, Absolute, 4}, opcodeDef{0x1D, AbsoluteX, 4}, opcodeDef{0x19, AbsoluteY, 4},
		opcodeDef{0x01, IndexedIndirect, 6}, opcodeDef{0x11, IndirectIndexed, 5})
	add("CMP", opCMP,
		opcodeDef{0xC9, Immediate, 2}, opcodeDef{0xC5, ZeroPage, 3}, opcodeDef{0xD5, ZeroPageX, 4},
		opcodeDef{0xCD, Absolute, 4}, opcodeDef{0xDD, AbsoluteX, 4}, opcodeDef{0xD9, AbsoluteY, 4},
		opcodeDef{0xC1, IndexedIndirect, 6}, opcodeDef{0xD1, IndirectIndexed, 5})
	add("CPX", opCPX, opcodeDef{0xE0, Immediate, 2}, opcodeDef{0xE4, ZeroPage, 3}, opcodeDef{0xEC, Absolute, 4})
	add("CPY", opCPY, opcodeDef{0xC0, Immediate, 2}, opcodeDef{0xC4, ZeroPage, 3}, opcodeDef{0xCC, Absolute, 4})
	add("BIT", opBIT, opcodeDef{0x24, ZeroPage, 3}, opcodeDef{0x2C, Absolute, 4})

	// Shifts and rotates
	add("ASL", opASL,
		opcodeDef{0x0A, Accumulator, 2}, opcodeDef{0x06, ZeroPage, 5}, opcodeDef{0x16, ZeroPageX, 6},
		opcodeDef{0x0E, Absolute, 6}, opcodeDef{0x1E, AbsoluteX, 7})
	add("LSR", opLSR,
		opcodeDef{0x4A, Accumulator, 2}, opcodeDef{0x46, ZeroPage, 5}, opcodeDef{0x56, ZeroPageX, 6},
		opcodeDef{0x4E, Absolute, 6}, opcodeDef{0x5E, AbsoluteX, 7})
	add("ROL", opROL,
		opcodeDef{0x2A, Accumulator, 2}, opcodeDef{0x26, ZeroPage, 5}, opcodeDef{0x36, ZeroPageX, 6},
		opcodeDef{0x2E, Absolute, 6}, opcodeDef{0x3E, AbsoluteX, 7})
	add("ROR", opROR,
		opcodeDef{0x6A, Accumulator, 2}, opcodeDef{0x66, ZeroPage, 5}, opcodeDef{0x76, ZeroPageX, 6},
		opcodeDef{0x6E, Absolute, 6}, opcodeDef{0x7E, AbsoluteX, 7})

	// Increments and decrements
	add("INC", opINC,
		opcodeDef{0xE6, ZeroPage, 5}, opcodeDef{0xF6, ZeroPageX, 6},
		opcodeDef{0xEE, Absolute, 6}, opcodeDef{0xFE, AbsoluteX, 7})
	add("DEC", opDEC,
		opcodeDef{0xC6, ZeroPage, 5}, opcodeDef{0xD6, ZeroPageX, 6},
		opcodeDef{0xCE, Absolute, 6}, opcodeDef{0xDE, AbsoluteX, 7})
	add("INX", opINX, opcodeDef{0xE8, Implied, 2})
	add("INY", opINY, opcodeDef{0xC8, Implied, 2})
	add("DEX", opDEX, opcodeDef{0xCA, Implied, 2})
	add("DEY", opDEY, opcodeDef{0x88, Implied, 2})

	// Branches
	add("BCC", opBCC, opcodeDef{0x90, Relative, 2})
	add("BCS", opBCS, opcodeDef{0xB0, Relative, 2})
	add("BEQ", opBEQ, opcodeDef{0xF0, Relative, 2})
	add("BNE", opBNE, opcodeDef{0xD0, Relative, 2})
	add("BMI", opBMI, opcodeDef{0x30, Relative, 2})
	add("BPL", opBPL, opcodeDef{0x10, Relative, 2})
	add("BVC", opBVC, opcodeDef{0x50, Relative, 2})
	add("BVS", opBVS, opcodeDef{0x70, Relative, 2})

	// Stack
	add("PHA", opPHA, opcodeDef{0x48, Implied, 3})
	add("PHP", opPHP, opcodeDef{0x08, Implied, 3})
	add("PLA", opPLA, opcodeDef{0x68, Implied, 4})
	add("PLP", opPLP, opcodeDef{0x28, Implied, 4})

	// Control transfer
	add("JMP", opJMP, opcodeDef{0x4C, Absolute, 3}, opcodeDef{0x6C, Indirect, 5})
	add("JSR", opJSR, opcodeDef{0x20, Absolute, 6})
	add("RTS", opRTS, opcodeDef{0x60, Implied, 6})
	add("RTI", opRTI, opcodeDef{0x40, Implied, 6})
	add("BRK", opBRK, opcodeDef{0x00, Implied, 7})

	// Flags
	add("CLC", opCLC, opcodeDef{0x18, Implied, 2})
	add("CLD", opCLD, opcodeDef{0xD8, Implied, 2})
	add("CLI", opCLI, opcodeDef{0x58, Implied, 2})
	add("CLV", opCLV, opcodeDef{0xB8, Implied, 2})
	add("SEC", opSEC, opcodeDef{0x38, Implied, 2})
	add("SED", opSED, opcodeDef{0xF8, Implied, 2})
	add("SEI", opSEI, opcodeDef{0x78, Implied, 2})

	// NOPs, including the undocumented multi-byte forms and the JAM bytes
	add("NOP", opNOP,
		opcodeDef{0xEA, Implied, 2},
		opcodeDef{0x1A, Implied, 2}, opcodeDef{0x3A, Implied, 2}, opcodeDef{0x5A, Implied, 2},
		opcodeDef{0x7A, Implied, 2}, opcodeDef{0xDA, Implied, 2}, opcodeDef{0xFA, Implied, 2},
		opcodeDef{0x02, Implied, 2}, opcodeDef{0x12, Implied, 2}, opcodeDef{0x22, Implied, 2},
		opcodeDef{0x32, Implied, 2}, opcodeDef{0x42, Implied, 2}, opcodeDef{0x52, Implied, 2},
		opcodeDef{0x62, Implied, 2}, opcodeDef{0x72, Implied, 2}, opcodeDef{0x92, Implied, 2},
		opcodeDef{0xB2, Implied, 2}, opcodeDef{0xD2, Implied, 2}, opcodeDef{0xF2, Implied, 2},
		opcodeDef{0x80, Immediate, 2}, opcodeDef{0x82, Immediate, 2}, opcodeDef{0x89, Immediate, 2},
		opcodeDef{0xC2, Immediate, 2}, opcodeDef{0xE2, Immediate, 2},
		opcodeDef{0x04, ZeroPage, 3}, opcodeDef{0x44, ZeroPage, 3}, opcodeDef{0x64, ZeroPage, 3},
		opcodeDef{0x14, ZeroPageX, 4}, opcodeDef{0x34, ZeroPageX, 4}, opcodeDef{0x54, ZeroPageX, 4},
		opcodeDef{0x74, ZeroPageX, 4}, opcodeDef{0xD4, ZeroPageX, 4}, opcodeDef{0xF4, ZeroPageX, 4},
		opcodeDef{0x0C, Absolute, 4},
		opcodeDef{0x1C, AbsoluteX, 4}, opcodeDef{0x3C, AbsoluteX, 4}, opcodeDef{0x5C, AbsoluteX, 4},
		opcodeDef{0x7C, AbsoluteX, 4}, opcodeDef{0xDC, AbsoluteX, 4}, opcodeDef{0xFC, AbsoluteX, 4})

	// Undocumented combined operations
	add("LAX", opLAX,
		opcodeDef{0xA7, ZeroPage, 3}, opcodeDef{0xB7, ZeroPageY, 4}, opcodeDef{0xAF, Absolute, 4},
		opcodeDef{0xBF, AbsoluteY, 4}, opcodeDef{0xA3, IndexedIndirect, 6}, opcodeDef{0xB3, IndirectIndexed, 5})
	add("SAX", opSAX,
		opcodeDef{0x87, ZeroPage, 3}, opcodeDef{0x97, ZeroPageY, 4}, opcodeDef{0x8F, Absolute, 4},
		opcodeDef{0x83, IndexedIndirect, 6})
	add("DCP", opDCP, readModifyWrite(0xC7)...)
	add("ISB", opISB, readModifyWrite(0xE7)...)
	add("SLO", opSLO, readModifyWrite(0x07)...)
	add("RLA", opRLA, readModifyWrite(0x27)...)
	add("SRE", opSRE, readModifyWrite(0x47)...)
	add("RRA", opRRA, readModifyWrite(0x67)...)

	return table
}

// readModifyWrite lays out the seven encodings shared by the undocumented
// read-modify-write group, keyed off the zero page opcode.
func readModifyWrite(zp uint8) []opcodeDef {
	return []opcodeDef{
		{zp, ZeroPage, 5},
		{zp + 0x10, ZeroPageX, 6},
		{zp + 0x08, Absolute, 6},
		{zp + 0x18, AbsoluteX, 7},
		{zp + 0x14, AbsoluteY, 7},
		{zp - 0x04, IndexedIndirect, 8},
		{zp + 0x0C, IndirectIndexed, 8},
	}
}
