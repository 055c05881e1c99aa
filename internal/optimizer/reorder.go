package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
)

// InstructionReorderer canonicalizes a commutative BinaryArith's operand
// order (lower register index first) so that two semantically identical
// expressions written with swapped operands end up as the same
// instruction — letting a later re-run of ConstantPropagator or a
// structural diff treat them identically. Driven by register-index
// bookkeeping rather than any dataflow fact, which is why it runs
// independent of the graph.
type InstructionReorderer struct{}

func (*InstructionReorderer) Name() string { return "instruction-reorder" }

func (p *InstructionReorderer) Apply(method *dex.Method, _ *engine.ExecutionGraph) int {
	changed := 0
	for pc, instr := range method.Instructions {
		b, ok := instr.(dex.BinaryArith)
		if !ok || b.LiteralForm || !commutative(b.Op) {
			continue
		}
		if b.Left <= b.Right {
			continue
		}
		b.Left, b.Right = b.Right, b.Left
		method.Instructions[pc] = b
		changed++
	}
	return changed
}

func commutative(op dex.ArithOp) bool {
	switch op {
	case dex.Add, dex.Mul, dex.And, dex.Or, dex.Xor:
		return true
	default:
		return false
	}
}
