// Package ops implements one handler per opcode variant defined in package
// dex. Each handler is one of three capability shapes: MethodStateOp
// (registers only), ExecutionContextOp (may also read/write class state),
// or InvokeOp (may recurse into another method). Dispatch is a single type
// switch over the dex.Instruction sum type, not a subclass hierarchy.
package ops

import (
	"fmt"

	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/value"
)

// Capability is the shape an opcode handler declares.
type Capability uint8

const (
	MethodStateOp Capability = iota
	ExecutionContextOp
	InvokeOp
)

// Invoker is how an InvokeOp handler recurses into the driver without
// package ops depending on package engine (which depends on ops).
type Invoker interface {
	// InvokeLocal symbolically executes target with the given concrete
	// argument HeapItems in a fresh child context, returning its return
	// value and aggregated side-effect level.
	InvokeLocal(caller *state.ExecutionContext, target *dex.Method, args []value.HeapItem) (value.HeapItem, state.SideEffectLevel, error)
	// ResolveLocal reports whether ref names a local method present in the
	// analyzed DEX.
	ResolveLocal(ref dex.MethodRef) (*dex.Method, bool)
	// ReflectSafe reflectively invokes a configuration-declared-safe
	// method's real implementation when every argument is concrete,
	// returning (result, true) on success.
	ReflectSafe(ref dex.MethodRef, args []value.HeapItem) (value.HeapItem, bool)
}

// EvalContext bundles everything a handler needs to execute one instruction.
type EvalContext struct {
	Ctx     *state.ExecutionContext
	Method  *dex.Method
	PC      int
	Policy  state.Policy
	Invoker Invoker
}

// Result is what executing one instruction produces: the side-effect level
// it incurred, and — on the exceptional path — the VirtualException to
// attach to the node (exceptions are modeled as values, not control flow).
// Successors is left nil for the common case (the driver falls back to
// Instruction.Successors); a handler only sets it to signal it has already
// decided the outgoing edges differ from the structural default
// (execIfTest and execIfTestZ set it to the single taken edge when the
// condition is concrete).
type Result struct {
	Level      state.SideEffectLevel
	Exception  *value.VirtualException
	Successors []int
	// ReturnValue is set only by an Invoke handler: the callee's return
	// HeapItem, which the driver assigns into the following move-result
	// node's destination register when it builds that successor (a
	// move-result reads the return value left by the immediately preceding
	// invoke — MethodState has no extra slot to hold it between nodes, so
	// the driver threads it through here instead).
	ReturnValue *value.HeapItem
}

// MalformedErr reports that an instruction's operands don't match its
// declared shape (the MalformedInstruction error kind). Handlers return
// this as a plain error; the driver wraps it into *enginerr.EngineError so
// that package ops stays independent of the error-kind package.
type MalformedErr struct {
	Mnemonic string
	Reason   string
}

func (e *MalformedErr) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Mnemonic, e.Reason)
}

// Execute dispatches on the concrete type of instr.
func Execute(ec EvalContext, instr dex.Instruction) (Result, error) {
	switch ins := instr.(type) {
	case dex.Const:
		return execConst(ec, ins)
	case dex.Move:
		return execMove(ec, ins)
	case dex.MoveResult:
		return execMoveResult(ec, ins)
	case dex.MoveException:
		return execMoveException(ec, ins)
	case dex.Goto:
		return Result{Level: state.LevelNone}, nil
	case dex.IfTest:
		return execIfTest(ec, ins)
	case dex.IfTestZ:
		return execIfTestZ(ec, ins)
	case dex.ReturnOp:
		return execReturn(ec, ins)
	case dex.ThrowOp:
		return execThrow(ec, ins)
	case dex.BinaryArith:
		return execBinaryArith(ec, ins)
	case dex.NewInstance:
		return execNewInstance(ec, ins)
	case dex.NewArray:
		return execNewArray(ec, ins)
	case dex.InstanceOf:
		return execInstanceOf(ec, ins)
	case dex.CheckCast:
		return execCheckCast(ec, ins)
	case dex.InstanceField:
		return execInstanceField(ec, ins)
	case dex.StaticField:
		return execStaticField(ec, ins)
	case dex.Invoke:
		return execInvoke(ec, ins)
	case dex.Nop:
		return Result{Level: state.LevelNone}, nil
	default:
		return Result{}, &MalformedErr{Mnemonic: instr.Mnemonic(), Reason: "unimplemented opcode variant"}
	}
}
