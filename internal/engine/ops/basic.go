package ops

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/value"
)

func execConst(ec EvalContext, c dex.Const) (Result, error) {
	var v value.Value
	switch {
	case c.Literal.Null:
		v = value.ConcreteRef(nil, c.Literal.Type)
	case c.Literal.Type == "J":
		v = value.ConcreteLong(c.Literal.I64)
	case c.Literal.Type == "F":
		v = value.ConcreteFloat(c.Literal.F32)
	case c.Literal.Type == "D":
		v = value.ConcreteDouble(c.Literal.F64)
	case c.Literal.Type == "Z":
		v = value.ConcreteBool(c.Literal.I32 != 0)
	default:
		v = value.ConcreteInt(c.Literal.I32)
	}
	ec.Ctx.Method.Assign(c.Dest, value.NewHeapItem(v, c.Literal.Type))
	return Result{Level: state.LevelNone}, nil
}

func execMove(ec EvalContext, m dex.Move) (Result, error) {
	ec.Ctx.Method.Assign(m.Dest, ec.Ctx.Method.Read(m.Src))
	return Result{Level: state.LevelNone}, nil
}

func execMoveResult(ec EvalContext, m dex.MoveResult) (Result, error) {
	// The driver stashes the preceding invoke's return value in register -1
	// of the same MethodState is not representable; instead the driver
	// writes it directly via Assign before scheduling this node's successor,
	// so by the time this handler runs Dest already holds it. This handler
	// exists to keep the dispatch table total and the assigned-bitset honest.
	return Result{Level: state.LevelNone}, nil
}

func execMoveException(ec EvalContext, m dex.MoveException) (Result, error) {
	// Same story as MoveResult: the driver assigns Dest with the caught
	// VirtualException's HeapItem when it builds the handler-entry node.
	return Result{Level: state.LevelNone}, nil
}

func compareConcrete(op dex.CompareOp, left, right value.Concrete) bool {
	var cmp int
	switch left.Kind {
	case value.Long:
		switch {
		case left.I64 < right.I64:
			cmp = -1
		case left.I64 > right.I64:
			cmp = 1
		}
	case value.Float:
		switch {
		case left.F32 < right.F32:
			cmp = -1
		case left.F32 > right.F32:
			cmp = 1
		}
	case value.Double:
		switch {
		case left.F64 < right.F64:
			cmp = -1
		case left.F64 > right.F64:
			cmp = 1
		}
	case value.ObjectRef:
		// only eq/ne are meaningful for references; cmp stays 0 (equal) when
		// both refs are the identical payload.
		if left.Ref != right.Ref {
			cmp = 1
		}
	default: // Int, Boolean
		lv, rv := left.I32, right.I32
		if left.Kind == value.Boolean {
			lv, rv = boolToInt(left.Bool), boolToInt(right.Bool)
		}
		switch {
		case lv < rv:
			cmp = -1
		case lv > rv:
			cmp = 1
		}
	}
	switch op {
	case dex.CmpEQ:
		return cmp == 0
	case dex.CmpNE:
		return cmp != 0
	case dex.CmpLT:
		return cmp < 0
	case dex.CmpGE:
		return cmp >= 0
	case dex.CmpGT:
		return cmp > 0
	case dex.CmpLE:
		return cmp <= 0
	}
	return false
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// execIfTest and execIfTestZ narrow Successors to the single taken edge
// when both operands are concrete, and leave it nil (both structural edges)
// when either is Unknown — the driver falls back to Instruction.Successors
// in that case. This is the same narrowing the optimizer's
// UnreachableBranchRemover pass performs at the method level; doing it here
// too lets a single execution pass already prune branches whose condition
// happens to be decidable from constants folded earlier in the same node.
func execIfTest(ec EvalContext, t dex.IfTest) (Result, error) {
	left, right := ec.Ctx.Method.Read(t.Left), ec.Ctx.Method.Read(t.Right)
	lc, lok := left.AsConcrete()
	rc, rok := right.AsConcrete()
	if !lok || !rok || lc.Kind != rc.Kind {
		return Result{Level: state.LevelNone}, nil
	}
	taken := compareConcrete(t.Op, lc, rc)
	return Result{Level: state.LevelNone, Successors: takenSuccessor(ec.PC, t.Successors(ec.PC), taken)}, nil
}

func execIfTestZ(ec EvalContext, t dex.IfTestZ) (Result, error) {
	operand := ec.Ctx.Method.Read(t.Reg)
	oc, ok := operand.AsConcrete()
	if !ok {
		return Result{Level: state.LevelNone}, nil
	}
	zero := value.Concrete{Kind: oc.Kind}
	taken := compareConcrete(t.Op, oc, zero)
	return Result{Level: state.LevelNone, Successors: takenSuccessor(ec.PC, t.Successors(ec.PC), taken)}, nil
}

// takenSuccessor picks the branch-taken or fall-through edge out of the two
// structural successors, which dex.IfTest/IfTestZ always order as
// [fall-through, branch-target].
func takenSuccessor(pc int, structural []int, taken bool) []int {
	if len(structural) != 2 {
		return structural
	}
	if taken {
		return []int{structural[1]}
	}
	return []int{structural[0]}
}

func execReturn(ec EvalContext, r dex.ReturnOp) (Result, error) {
	return Result{Level: state.LevelNone}, nil
}

func execThrow(ec EvalContext, t dex.ThrowOp) (Result, error) {
	item := ec.Ctx.Method.Read(t.Src)
	if exc, ok := item.Value.(value.VirtualException); ok {
		return Result{Level: state.LevelNone, Exception: &exc}, nil
	}
	// A throw of an Unknown or Uninitialized reference can't be attributed
	// to a concrete exception kind; model it as an exception of unknown
	// kind so handler matching still degenerates to catch-all routing.
	exc := value.VirtualException{Kind: item.DeclaredType, Message: "thrown value not statically known"}
	return Result{Level: state.LevelNone, Exception: &exc}, nil
}
