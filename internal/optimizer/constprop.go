package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
	"dexsimplify/internal/value"
)

// ConstantPropagator replaces a BinaryArith instruction with a plain Const
// wherever every node that ever reached its pc agrees both operands are the
// identical concrete value (ExecutionGraph.ConsensusRegister) — a fold that
// holds regardless of which path got there, not just the first one
// observed, so it is sound even for a method with more than one route to
// the same program point.
type ConstantPropagator struct{}

func (*ConstantPropagator) Name() string { return "constant-propagation" }

func (p *ConstantPropagator) Apply(method *dex.Method, graph *engine.ExecutionGraph) int {
	changed := 0
	for pc, instr := range method.Instructions {
		b, ok := instr.(dex.BinaryArith)
		if !ok {
			continue
		}

		leftItem, ok := graph.ConsensusRegister(pc, b.Left)
		if !ok {
			continue
		}
		left, ok := leftItem.AsConcrete()
		if !ok {
			continue
		}

		right := value.ConcreteInt(b.Literal)
		if !b.LiteralForm {
			rightItem, ok := graph.ConsensusRegister(pc, b.Right)
			if !ok {
				continue
			}
			right, ok = rightItem.AsConcrete()
			if !ok {
				continue
			}
		}

		lit, folded, divByZero := foldBinaryArith(b, left, right)
		if divByZero {
			// A statically-certain divide by zero is left for execution to
			// turn into a VirtualException node rather than folded away —
			// folding it would erase the exception edge the driver built.
			continue
		}
		if !folded {
			continue
		}
		method.Instructions[pc] = dex.Const{Dest: b.Dest, Literal: lit}
		changed++
	}
	return changed
}
