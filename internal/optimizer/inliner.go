package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
	"dexsimplify/internal/engine/state"
)

// MethodInliner collapses a call whose own execution never produced an
// observable side effect (state.LevelNone, joined across every node that
// ever reached the call site) into either a plain Nop (a void call) or a
// Const carrying its return value (when the following instruction is a
// MoveResult and every node agrees on one concrete return value via
// ExecutionGraph.ConsensusRegister) — a "predictable call" collapse of the
// call site itself, rather than splicing in the callee's own instructions
// the way a traditional method inliner would.
type MethodInliner struct{}

func (*MethodInliner) Name() string { return "predictable-call-collapse" }

func (p *MethodInliner) Apply(method *dex.Method, graph *engine.ExecutionGraph) int {
	changed := 0
	for pc, instr := range method.Instructions {
		in, ok := instr.(dex.Invoke)
		if !ok {
			continue
		}
		nodes := graph.NodesAt(pc)
		if len(nodes) == 0 {
			continue
		}
		sideEffectFree := true
		for _, idx := range nodes {
			n := graph.Node(idx)
			if n.Exception != nil || n.Level != state.LevelNone {
				sideEffectFree = false
				break
			}
		}
		if !sideEffectFree {
			continue
		}

		if in.Method.ReturnType == "V" {
			method.Instructions[pc] = dex.Nop{}
			changed++
			continue
		}

		mr, hasMoveResult := peekMoveResultAt(method, pc)
		if !hasMoveResult {
			// Result discarded entirely (no move-result follows): the call
			// can still be dropped since it provably did nothing observable.
			method.Instructions[pc] = dex.Nop{}
			changed++
			continue
		}
		item, ok := graph.ConsensusRegister(pc+1, mr.Dest)
		if !ok {
			continue
		}
		lit, ok := literalFromHeapItem(item)
		if !ok {
			continue
		}
		method.Instructions[pc] = dex.Nop{}
		method.Instructions[pc+1] = dex.Const{Dest: mr.Dest, Literal: lit}
		changed++
	}
	return changed
}

func peekMoveResultAt(method *dex.Method, pc int) (dex.MoveResult, bool) {
	if pc+1 >= len(method.Instructions) {
		return dex.MoveResult{}, false
	}
	mr, ok := method.Instructions[pc+1].(dex.MoveResult)
	return mr, ok
}
