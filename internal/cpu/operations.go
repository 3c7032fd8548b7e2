package cpu

// execute runs op against the resolved address.
func (cpu *CPU) execute(op *OpCode, address uint16) {
	switch op.Operation {
	// Loads and transfers
	case opLDA:
		cpu.A = cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case opLDX:
		cpu.X = cpu.memory.Read(address)
		cpu.setZN(cpu.X)
	case opLDY:
		cpu.Y = cpu.memory.Read(address)
		cpu.setZN(cpu.Y)
	case opTAX:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case opTAY:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case opTXA:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case opTYA:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case opTSX:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case opTXS:
		cpu.SP = cpu.X

	// Stores
	case opSTA:
		cpu.memory.Write(address, cpu.A)
	case opSTX:
		cpu.memory.Write(address, cpu.X)
	case opSTY:
		cpu.memory.Write(address, cpu.Y)

	// Arithmetic and logic
	case opADC:
		cpu.adc(cpu.memory.Read(address))
	case opSBC:
		cpu.sbc(cpu.memory.Read(address))
	case opAND:
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case opEOR:
		cpu.A ^= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case opORA:
		cpu.A |= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case opCMP:
		cpu.compare(cpu.A, cpu.memory.Read(address))
	case opCPX:
		cpu.compare(cpu.X, cpu.memory.Read(address))
	case opCPY:
		cpu.compare(cpu.Y, cpu.memory.Read(address))
	case opBIT:
		value := cpu.memory.Read(address)
		cpu.P.Negative = value&nFlagMask != 0
		cpu.P.Overflow = value&vFlagMask != 0
		cpu.P.Zero = cpu.A&value == 0

	// Shifts and rotates
	case opASL:
		cpu.modify(op.Mode, address, cpu.asl)
	case opLSR:
		cpu.modify(op.Mode, address, cpu.lsr)
	case opROL:
		cpu.modify(op.Mode, address, cpu.rol)
	case opROR:
		cpu.modify(op.Mode, address, cpu.ror)

	// Increments and decrements
	case opINC:
		cpu.modify(op.Mode, address, cpu.inc)
	case opDEC:
		cpu.modify(op.Mode, address, cpu.dec)
	case opINX:
		cpu.X++
		cpu.setZN(cpu.X)
	case opINY:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case opDEX:
		cpu.X--
		cpu.setZN(cpu.X)
	case opDEY:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// Branches
	case opBCC:
		cpu.branch(!cpu.P.Carry, address)
	case opBCS:
		cpu.branch(cpu.P.Carry, address)
	case opBEQ:
		cpu.branch(cpu.P.Zero, address)
	case opBNE:
		cpu.branch(!cpu.P.Zero, address)
	case opBMI:
		cpu.branch(cpu.P.Negative, address)
	case opBPL:
		cpu.branch(!cpu.P.Negative, address)
	case opBVC:
		cpu.branch(!cpu.P.Overflow, address)
	case opBVS:
		cpu.branch(cpu.P.Overflow, address)

	// Stack
	case opPHA:
		cpu.push(cpu.A)
	case opPHP:
		pushed := cpu.P
		pushed.Break = true
		pushed.Reserved = true
		cpu.push(pushed.Byte())
	case opPLA:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case opPLP:
		cpu.P.SetByte(cpu.pop())
		cpu.P.Reserved = true

	// Control transfer
	case opJMP:
		cpu.PC = address
	case opJSR:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case opRTS:
		cpu.PC = cpu.popWord() + 1
	case opRTI:
		cpu.P.SetByte(cpu.pop())
		cpu.P.Reserved = true
		cpu.PC = cpu.popWord()
	case opBRK:
		cpu.brk()

	// Flags
	case opCLC:
		cpu.P.Carry = false
	case opCLD:
		cpu.P.Decimal = false
	case opCLI:
		cpu.P.InterruptDisable = false
	case opCLV:
		cpu.P.Overflow = false
	case opSEC:
		cpu.P.Carry = true
	case opSED:
		cpu.P.Decimal = true
	case opSEI:
		cpu.P.InterruptDisable = true

	case opNOP:
		// operand bytes were consumed by resolve

	// Undocumented: each one is the composition of two legal halves.
	case opLAX:
		cpu.A = cpu.memory.Read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case opSAX:
		cpu.memory.Write(address, cpu.A&cpu.X)
	case opDCP:
		cpu.compare(cpu.A, cpu.modify(op.Mode, address, cpu.dec))
	case opISB:
		cpu.sbc(cpu.modify(op.Mode, address, cpu.inc))
	case opSLO:
		cpu.A |= cpu.modify(op.Mode, address, cpu.asl)
		cpu.setZN(cpu.A)
	case opRLA:
		cpu.A &= cpu.modify(op.Mode, address, cpu.rol)
		cpu.setZN(cpu.A)
	case opSRE:
		cpu.A ^= cpu.modify(op.Mode, address, cpu.lsr)
		cpu.setZN(cpu.A)
	case opRRA:
		cpu.adc(cpu.modify(op.Mode, address, cpu.ror))
	}
}

// modify applies fn to the accumulator or, for memory modes, performs a
// read-modify-write through the bus. It returns the new value.
func (cpu *CPU) modify(mode AddressingMode, address uint16, fn func(uint8) uint8) uint8 {
	if mode == Accumulator {
		cpu.A = fn(cpu.A)
		return cpu.A
	}
	value := fn(cpu.memory.Read(address))
	cpu.memory.Write(address, value)
	return value
}

func (cpu *CPU) adc(data uint8) {
	var carry uint16
	if cpu.P.Carry {
		carry = 1
	}
	operated := uint16(cpu.A) + uint16(data) + carry
	result := uint8(operated)
	cpu.P.Overflow = (cpu.A^data)&0x80 == 0 && (cpu.A^result)&0x80 != 0
	cpu.P.Carry = operated > 0xFF
	cpu.A = result
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sbc(data uint8) {
	borrow := 1
	if cpu.P.Carry {
		borrow = 0
	}
	operated := int(cpu.A) - int(data) - borrow
	result := uint8(operated)
	cpu.P.Overflow = (cpu.A^result)&0x80 != 0 && (cpu.A^data)&0x80 != 0
	cpu.P.Carry = operated >= 0
	cpu.A = result
	cpu.setZN(cpu.A)
}

func (cpu *CPU) compare(register, data uint8) {
	compared := int(register) - int(data)
	cpu.P.Carry = compared >= 0
	cpu.setZN(uint8(compared))
}

func (cpu *CPU) asl(value uint8) uint8 {
	cpu.P.Carry = value&0x80 != 0
	value <<= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) lsr(value uint8) uint8 {
	cpu.P.Carry = value&0x01 != 0
	value >>= 1
	cpu.setZN(value)
	return value
}

func (cpu *CPU) rol(value uint8) uint8 {
	var carryIn uint8
	if cpu.P.Carry {
		carryIn = 0x01
	}
	cpu.P.Carry = value&0x80 != 0
	value = value<<1 | carryIn
	cpu.setZN(value)
	return value
}

func (cpu *CPU) ror(value uint8) uint8 {
	var carryIn uint8
	if cpu.P.Carry {
		carryIn = 0x80
	}
	cpu.P.Carry = value&0x01 != 0
	value = value>>1 | carryIn
	cpu.setZN(value)
	return value
}

func (cpu *CPU) inc(value uint8) uint8 {
	value++
	cpu.setZN(value)
	return value
}

func (cpu *CPU) dec(value uint8) uint8 {
	value--
	cpu.setZN(value)
	return value
}

func (cpu *CPU) branch(condition bool, target uint16) {
	if condition {
		cpu.PC = target
		cpu.branched = true
	}
}

// brk skips the padding byte, pushes the return address and status, and
// vectors through 0xFFFE unless interrupts were already disabled.
func (cpu *CPU) brk() {
	wasDisabled := cpu.P.InterruptDisable
	cpu.PC++
	cpu.pushWord(cpu.PC)
	cpu.P.Break = true
	pushed := cpu.P
	pushed.Reserved = true
	cpu.push(pushed.Byte())
	cpu.P.InterruptDisable = true
	if !wasDisabled {
		cpu.PC = cpu.readWord(irqVector)
	}
}
