package debug

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"nescore/internal/cpu"
)

// Tracer writes one line per executed instruction in the layout used by
// the common CPU conformance logs:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD CYC:7
type Tracer struct {
	out   *bufio.Writer
	lines uint64
	err   error
}

// NewTracer creates a tracer writing to w. Call Flush when done.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{out: bufio.NewWriter(w)}
}

// Attach installs the tracer as c's trace hook.
func (t *Tracer) Attach(c *cpu.CPU) {
	c.SetTraceHook(t.Trace)
}

// Trace formats one instruction. The first write error is kept and later
// entries are dropped.
func (t *Tracer) Trace(entry cpu.TraceEntry) {
	if t.err != nil {
		return
	}
	if _, err := io.WriteString(t.out, FormatTrace(entry)+"\n"); err != nil {
		t.err = err
		return
	}
	t.lines++
}

// Lines returns the number of instructions traced
func (t *Tracer) Lines() uint64 {
	return t.lines
}

// Flush writes buffered lines and reports the first error seen.
func (t *Tracer) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.out.Flush()
}

// FormatTrace renders a trace entry without the trailing newline.
func FormatTrace(entry cpu.TraceEntry) string {
	s := entry.State
	op := entry.OpCode

	var raw strings.Builder
	fmt.Fprintf(&raw, "%02X", op.Opcode)
	for _, b := range entry.Operands {
		fmt.Fprintf(&raw, " %02X", b)
	}

	return fmt.Sprintf("%04X  %-8s  %-30s  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		s.PC, raw.String(), Disassemble(op, entry.Operands, s.PC),
		s.A, s.X, s.Y, s.P.Byte(), s.SP, s.Cycles)
}

// Disassemble renders an instruction in assembler syntax. pc is the address
// of the opcode byte.
func Disassemble(op *cpu.OpCode, operands []uint8, pc uint16) string {
	var value uint16
	switch len(operands) {
	case 1:
		value = uint16(operands[0])
	case 2:
		value = uint16(operands[1])<<8 | uint16(operands[0])
	}

	switch op.Mode {
	case cpu.Implied:
		return op.Name
	case cpu.Accumulator:
		return op.Name + " A"
	case cpu.Immediate:
		return fmt.Sprintf("%s #$%02X", op.Name, value)
	case cpu.ZeroPage:
		return fmt.Sprintf("%s $%02X", op.Name, value)
	case cpu.ZeroPageX:
		return fmt.Sprintf("%s $%02X,X", op.Name, value)
	case cpu.ZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", op.Name, value)
	case cpu.Relative:
		target := pc + 2 + uint16(int8(value))
		return fmt.Sprintf("%s $%04X", op.Name, target)
	case cpu.Absolute:
		return fmt.Sprintf("%s $%04X", op.Name, value)
	case cpu.AbsoluteX:
		return fmt.Sprintf("%s $%04X,X", op.Name, value)
	case cpu.AbsoluteY:
		return fmt.Sprintf("%s $%04X,Y", op.Name, value)
	case cpu.Indirect:
		return fmt.Sprintf("%s ($%04X)", op.Name, value)
	case cpu.IndexedIndirect:
		return fmt.Sprintf("%s ($%02X,X)", op.Name, value)
	case cpu.IndirectIndexed:
		return fmt.Sprintf("%s ($%02X),Y", op.Name, value)
	default:
		return op.Name
	}
}
