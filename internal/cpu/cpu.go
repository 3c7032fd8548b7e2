// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

import (
	"fmt"
	"log"
)

const (
	stackBase = 0x0100

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	// interruptCycles is charged for an NMI or IRQ entry sequence.
	interruptCycles = 7
)

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptLines is the latch the CPU polls before every instruction.
type InterruptLines interface {
	IsNMIAsserted() bool
	DeassertNMI()
	IsIRQAsserted() bool
	DeassertIRQ()
}

// DecodeError reports an opcode byte with no table entry. The machine cannot
// continue after it.
type DecodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: undefined opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// State is a snapshot of the programmer-visible registers.
type State struct {
	A      uint8
	X      uint8
	Y      uint8
	SP     uint8
	PC     uint16
	P      Status
	Cycles uint64
}

// TraceEntry describes the instruction about to execute.
type TraceEntry struct {
	State    State
	OpCode   *OpCode
	Operands []uint8
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer, offset into page 0x01
	PC uint16 // Program counter
	P  Status

	memory     MemoryInterface
	interrupts InterruptLines

	cycles   uint64
	branched bool

	traceHook          func(TraceEntry)
	enableDebugLogging bool
}

// New creates a new CPU instance. interrupts may be nil when nothing can
// raise an interrupt.
func New(memory MemoryInterface, interrupts InterruptLines) *CPU {
	return &CPU{
		memory:     memory,
		interrupts: interrupts,
		SP:         0xFD,
	}
}

// Reset puts the registers in their power-up state and loads PC from the
// reset vector.
func (cpu *CPU) Reset() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = 0xFD
	cpu.P = Status{Reserved: true, Break: true, InterruptDisable: true}
	cpu.PC = cpu.readWord(resetVector)
	cpu.cycles = interruptCycles
	cpu.branched = false

	if cpu.enableDebugLogging {
		log.Printf("[CPU] Reset: PC=0x%04X", cpu.PC)
	}
}

// Step services a pending interrupt, then executes one instruction, and
// returns the cycles consumed by both.
func (cpu *CPU) Step() (uint64, error) {
	var cycles uint64

	if cpu.interrupts != nil {
		switch {
		case cpu.interrupts.IsNMIAsserted():
			cpu.interrupts.DeassertNMI()
			cpu.enterInterrupt(nmiVector)
			cycles += interruptCycles
		case cpu.interrupts.IsIRQAsserted() && !cpu.P.InterruptDisable:
			cpu.interrupts.DeassertIRQ()
			cpu.enterInterrupt(irqVector)
			cycles += interruptCycles
		}
	}

	pc := cpu.PC
	opcode := cpu.memory.Read(pc)
	op := opcodeTable[opcode]
	if op == nil {
		cpu.cycles += cycles
		return cycles, &DecodeError{Opcode: opcode, PC: pc}
	}

	if cpu.traceHook != nil {
		cpu.traceHook(cpu.traceEntry(op))
	}
	if cpu.enableDebugLogging {
		log.Printf("[CPU] 0x%04X: %s (0x%02X) A=%02X X=%02X Y=%02X P=%02X SP=%02X",
			pc, op.Name, opcode, cpu.A, cpu.X, cpu.Y, cpu.P.Byte(), cpu.SP)
	}

	cpu.PC++
	address, pageCrossed := cpu.resolve(op.Mode)

	cpu.branched = false
	cpu.execute(op, address)

	cycles += uint64(op.Cycles)
	if pageCrossed && op.PagePenalty {
		cycles++
	}
	if cpu.branched {
		cycles++
		if pageCrossed {
			cycles++
		}
	}

	cpu.cycles += cycles
	return cycles, nil
}

func (cpu *CPU) enterInterrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	pushed := cpu.P
	pushed.Break = false
	pushed.Reserved = true
	cpu.push(pushed.Byte())
	cpu.P.InterruptDisable = true
	cpu.PC = cpu.readWord(vector)
}

// Stack operations
func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase|uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase | uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return high<<8 | low
}

// setZN sets Zero and Negative flags based on value
func (cpu *CPU) setZN(value uint8) {
	cpu.P.Zero = value == 0
	cpu.P.Negative = value&nFlagMask != 0
}

func (cpu *CPU) traceEntry(op *OpCode) TraceEntry {
	operands := make([]uint8, op.Mode.OperandBytes())
	for i := range operands {
		operands[i] = cpu.memory.Read(cpu.PC + 1 + uint16(i))
	}
	return TraceEntry{State: cpu.State(), OpCode: op, Operands: operands}
}

// State returns a snapshot of the registers.
func (cpu *CPU) State() State {
	return State{
		A:      cpu.A,
		X:      cpu.X,
		Y:      cpu.Y,
		SP:     cpu.SP,
		PC:     cpu.PC,
		P:      cpu.P,
		Cycles: cpu.cycles,
	}
}

// Cycles returns the total number of cycles executed since reset.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// SetTraceHook installs fn to be called before every instruction. Pass nil
// to disable tracing.
func (cpu *CPU) SetTraceHook(fn func(TraceEntry)) {
	cpu.traceHook = fn
}

// SetDebugLogging enables per-instruction logging
func (cpu *CPU) SetDebugLogging(enabled bool) {
	cpu.enableDebugLogging = enabled
}
