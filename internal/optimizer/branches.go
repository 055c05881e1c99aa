package optimizer

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine"
)

// UnreachableBranchRemover rewrites a conditional branch into an
// unconditional Goto when every node that ever reached it took the exact
// same one of its two structural successors — something package ops's
// execIfTest/execIfTestZ already decide per node when both operands were
// concrete (Result.Successors narrowed to one edge); this pass only needs
// to confirm that decision was unanimous across every path, then bake it
// into the instruction stream so later passes (and a human reading the
// output) see a plain Goto instead of a branch that can never go the other
// way.
type UnreachableBranchRemover struct{}

func (*UnreachableBranchRemover) Name() string { return "unreachable-branch-removal" }

func (p *UnreachableBranchRemover) Apply(method *dex.Method, graph *engine.ExecutionGraph) int {
	changed := 0
	for pc, instr := range method.Instructions {
		switch instr.(type) {
		case dex.IfTest, dex.IfTestZ:
		default:
			continue
		}
		nodes := graph.NodesAt(pc)
		if len(nodes) == 0 {
			continue
		}
		taken := -1
		unanimous := true
		for _, idx := range nodes {
			n := graph.Node(idx)
			if len(n.Children) != 1 {
				unanimous = false
				break
			}
			childPC := graph.Node(n.Children[0]).PC
			if taken == -1 {
				taken = childPC
			} else if taken != childPC {
				unanimous = false
				break
			}
		}
		if !unanimous || taken == -1 {
			continue
		}
		method.Instructions[pc] = dex.Goto{Offset: taken - pc}
		changed++
	}
	return changed
}
