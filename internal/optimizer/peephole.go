package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
)

// PeepholeNopRemover collapses a Goto whose only effect is jumping to the
// very next instruction into an explicit Nop — a local, single-instruction
// pattern match independent of the graph, in the spirit of a jump-patching
// pass operating purely on the instruction stream rather than on dataflow
// facts.
type PeepholeNopRemover struct{}

func (*PeepholeNopRemover) Name() string { return "peephole-nop-removal" }

func (p *PeepholeNopRemover) Apply(method *dex.Method, _ *engine.ExecutionGraph) int {
	changed := 0
	for pc, instr := range method.Instructions {
		g, ok := instr.(dex.Goto)
		if !ok || g.Offset != 1 {
			continue
		}
		method.Instructions[pc] = dex.Nop{}
		changed++
	}
	return changed
}
