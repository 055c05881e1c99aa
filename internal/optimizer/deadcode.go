package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
)

// DeadAssignmentEliminator replaces an instruction with Nop when its
// destination register is never read on any path out of the node before
// being overwritten — a liveness check walked directly over the
// ExecutionGraph rather than a separate dataflow framework, since the
// graph already enumerates every path the method actually takes.
//
// Limited to instructions whose only effect is the register write itself
// (Const, Move, BinaryArith, NewArray, InstanceOf, MoveResult): NewInstance
// and the field/static accessors are excluded even when their destination
// is dead, because eliding them would also erase the <clinit> trigger or
// allocation they carry.
type DeadAssignmentEliminator struct{}

func (*DeadAssignmentEliminator) Name() string { return "dead-assignment-elimination" }

func (p *DeadAssignmentEliminator) Apply(method *dex.Method, graph *engine.ExecutionGraph) int {
	changed := 0
	for pc, instr := range method.Instructions {
		dest, eligible := eliminationCandidate(instr)
		if !eligible {
			continue
		}
		nodes := graph.NodesAt(pc)
		if len(nodes) == 0 {
			continue
		}
		live := false
		for _, idx := range nodes {
			n := graph.Node(idx)
			if n.Exception != nil {
				live = true // the write still happened before the exception; don't touch it
				break
			}
			for _, child := range n.Children {
				if registerLiveFrom(graph, child, dest, make(map[engine.NodeIndex]bool)) {
					live = true
					break
				}
			}
			if live {
				break
			}
		}
		if live {
			continue
		}
		method.Instructions[pc] = dex.Nop{}
		changed++
	}
	return changed
}

// eliminationCandidate reports the single register an instruction writes,
// and whether that instruction is safe to elide when the write is dead.
func eliminationCandidate(instr dex.Instruction) (dex.Register, bool) {
	switch ins := instr.(type) {
	case dex.Const:
		return ins.Dest, true
	case dex.Move:
		return ins.Dest, true
	case dex.BinaryArith:
		return ins.Dest, true
	case dex.NewArray:
		return ins.Dest, true
	case dex.InstanceOf:
		return ins.Dest, true
	case dex.MoveResult:
		return ins.Dest, true
	}
	return 0, false
}

// registerLiveFrom reports whether r is read somewhere reachable from node
// before it is redefined, recursing over Children and memoizing per node to
// keep this linear in graph size rather than exponential in path count.
func registerLiveFrom(g *engine.ExecutionGraph, node engine.NodeIndex, r dex.Register, memo map[engine.NodeIndex]bool) bool {
	if v, ok := memo[node]; ok {
		return v
	}
	memo[node] = false // break cycles (loop-back merges) pessimistically as not-yet-proven-live
	n := g.Node(node)
	if instructionReads(n.Instr, r) {
		memo[node] = true
		return true
	}
	if w, ok := eliminationCandidate(n.Instr); ok && w == r {
		memo[node] = false
		return false
	}
	if writesRegisterAnyKind(n.Instr, r) {
		memo[node] = false
		return false
	}
	for _, child := range n.Children {
		if registerLiveFrom(g, child, r, memo) {
			memo[node] = true
			return true
		}
	}
	return false
}

func instructionReads(instr dex.Instruction, r dex.Register) bool {
	switch ins := instr.(type) {
	case dex.Move:
		return ins.Src == r
	case dex.IfTest:
		return ins.Left == r || ins.Right == r
	case dex.IfTestZ:
		return ins.Reg == r
	case dex.ReturnOp:
		return ins.HasValue && ins.Src == r
	case dex.ThrowOp:
		return ins.Src == r
	case dex.BinaryArith:
		return ins.Left == r || (!ins.LiteralForm && ins.Right == r)
	case dex.NewArray:
		return ins.SizeReg == r
	case dex.InstanceOf:
		return ins.Ref == r
	case dex.CheckCast:
		return ins.Ref == r
	case dex.InstanceField:
		if ins.ObjectReg == r {
			return true
		}
		return !ins.IsGet && ins.ValueReg == r
	case dex.StaticField:
		return !ins.IsGet && ins.ValueReg == r
	case dex.Invoke:
		for _, a := range ins.Args {
			if a == r {
				return true
			}
		}
	}
	return false
}

// writesRegisterAnyKind covers every instruction with a destination
// register, including the ones eliminationCandidate excludes (NewInstance,
// field/static gets) — those still redefine the register for liveness
// purposes even though they're not themselves elimination candidates.
func writesRegisterAnyKind(instr dex.Instruction, r dex.Register) bool {
	switch ins := instr.(type) {
	case dex.Const:
		return ins.Dest == r
	case dex.Move:
		return ins.Dest == r
	case dex.MoveResult:
		return ins.Dest == r
	case dex.MoveException:
		return ins.Dest == r
	case dex.BinaryArith:
		return ins.Dest == r
	case dex.NewInstance:
		return ins.Dest == r
	case dex.NewArray:
		return ins.Dest == r
	case dex.InstanceOf:
		return ins.Dest == r
	case dex.InstanceField:
		return ins.IsGet && ins.ValueReg == r
	case dex.StaticField:
		return ins.IsGet && ins.ValueReg == r
	}
	return false
}
