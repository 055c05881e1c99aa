// Package optimizer implements a fixed optimization pipeline: a sequence
// of passes that rewrite a method's instruction stream using the facts
// its ExecutionGraph already established, re-running the driver and the
// pipeline until a fixpoint or maxOptimizationPasses, whichever comes
// first. The register-rewrite and jump-offset-patching passes follow a
// register allocator's Alloc/Free/Lock bookkeeping shape; the pass-count
// accounting follows a profiler's call-count-driven decisions, generalized
// here to pass-count-driven decisions.
package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
)

// Pass is one optimization over a method's instruction stream, informed by
// the ExecutionGraph the driver already built for it. A pass mutates
// method.Instructions in place (never the graph, which reflects the state
// *before* this pass ran) and reports how many sites it changed.
type Pass interface {
	Name() string
	Apply(method *dex.Method, graph *engine.ExecutionGraph) int
}

// Pipeline is the fixed sequence: constant propagation, dead-assignment
// elimination, unreachable-branch removal, peephole nop removal, a
// canonicalizing instruction reorder, then predictable-call collapse — in
// that order. Every pass in a round reads the same graph, built before the
// round began, so a pass sees an earlier pass's rewrites only once the
// launcher rebuilds the graph for the next round.
func Pipeline() []Pass {
	return []Pass{
		&ConstantPropagator{},
		&DeadAssignmentEliminator{},
		&UnreachableBranchRemover{},
		&PeepholeNopRemover{},
		&InstructionReorderer{},
		&MethodInliner{},
	}
}

// Stats accumulates per-pass and total change counts across however many
// re-execution rounds a method went through, for the launcher's summary
// report — a callCounts-style map, here counting optimizer effect instead
// of call frequency.
type Stats struct {
	PerPass map[string]int
	Rounds  int
}

func NewStats() *Stats {
	return &Stats{PerPass: make(map[string]int)}
}

func (s *Stats) record(pass string, n int) {
	s.PerPass[pass] += n
}

func (s *Stats) Total() int {
	total := 0
	for _, n := range s.PerPass {
		total += n
	}
	return total
}

// RunOnce applies every pass in the pipeline once, in order, against the
// graph built for method's current instructions, returning the number of
// sites changed across all passes this round.
func RunOnce(method *dex.Method, graph *engine.ExecutionGraph, stats *Stats) int {
	round := 0
	for _, p := range Pipeline() {
		n := p.Apply(method, graph)
		stats.record(p.Name(), n)
		round += n
	}
	return round
}
