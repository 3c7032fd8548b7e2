package debug

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"nescore/internal/cpu"
)

// MachineState is the register and counter snapshot written by
// WriteStateGraph.
type MachineState struct {
	CPU       cpu.State
	Flags     string
	PPULine   int
	PPUDot    int
	Frames    uint64
	CPUCycles uint64
	Cartridge string
	Fault     string

	KeypadReads  uint64
	KeypadWrites uint64
}

// WriteStateGraph writes state as a Graphviz dot graph.
func WriteStateGraph(w io.Writer, state *MachineState) {
	memviz.Map(w, state)
}
