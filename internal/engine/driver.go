package engine

import (
	"errors"
	"fmt"

	"dexsimplify/internal/dex"
	"dexsimplify/internal/enginerr"
	"dexsimplify/internal/engine/ops"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/value"
)

// Driver is the VM: a work-list algorithm that builds one ExecutionGraph
// per method, dispatching each instruction to package ops and itself
// playing the Invoker role ops.Invoke needs to recurse into a callee. Its
// cache-and-build shape generalizes "resolve and run a module" to "build
// and merge an execution graph."
type Driver struct {
	Manager dex.ClassManager
	Policy  state.Policy
	Session *Session
}

func NewDriver(manager dex.ClassManager, policy state.Policy, session *Session) *Driver {
	return &Driver{Manager: manager, Policy: policy, Session: session}
}

// ResolveLocal implements ops.Invoker.
func (d *Driver) ResolveLocal(ref dex.MethodRef) (*dex.Method, bool) {
	for _, m := range d.Manager.Methods(ref.OwnerClass) {
		if m.Signature() == ref.Signature() {
			return m, true
		}
	}
	return nil, false
}

// ReflectSafe implements ops.Invoker by delegating to the built-in
// registry of side-effect-free standard-library methods (safelib.go).
func (d *Driver) ReflectSafe(ref dex.MethodRef, args []value.HeapItem) (value.HeapItem, bool) {
	return reflectSafeCall(ref, args)
}

// InvokeLocal implements ops.Invoker: it enforces maxCallDepth and
// maxMethodVisits before recursing, then builds the callee's own
// ExecutionGraph and aggregates its terminals into a single return value
// and side-effect level (method-level aggregation, applied one level up
// by the caller).
func (d *Driver) InvokeLocal(caller *state.ExecutionContext, target *dex.Method, args []value.HeapItem) (value.HeapItem, state.SideEffectLevel, error) {
	depth := 0
	if caller != nil {
		depth = caller.Depth() + 1
	}
	if depth > d.Session.Bounds.MaxCallDepth {
		return value.UnknownItem(target.ReturnType), state.LevelStrong, nil
	}
	if err := d.Session.CheckTime(); err != nil {
		return value.HeapItem{}, state.LevelNone, err
	}
	if !d.Session.IncrMethodVisit() {
		return value.UnknownItem(target.ReturnType), state.LevelStrong, nil
	}

	ms := state.NewMethodState(target.NumRegisters)
	seedArgs(ms, target, args)
	childCtx := state.NewExecutionContext(ms, caller.Classes, caller)

	graph, err := d.Build(target, childCtx)
	if err != nil {
		ee := toEngineError(target.Signature(), err)
		if ee.Recoverable() {
			return value.UnknownItem(target.ReturnType), state.LevelStrong, nil
		}
		return value.HeapItem{}, state.LevelNone, ee
	}
	return aggregateReturn(graph, target.ReturnType), graph.AggregateLevel(), nil
}

func seedArgs(ms *state.MethodState, target *dex.Method, args []value.HeapItem) {
	start := target.ParamRegisterStart()
	for i, a := range args {
		if start+i >= ms.NumRegisters() {
			break
		}
		ms.Assign(dex.Register(start+i), a)
	}
}

// BuildMethod is the top-level entry point the launcher calls for each
// method it selects for analysis: it seeds every parameter register
// (including the receiver, for an instance method) as Unknown at its
// declared type — this is a standalone analysis of an already-constructed
// object, never the moment right after new-instance, so the receiver is
// Unknown rather than Uninitialized — and builds the method's graph.
func (d *Driver) BuildMethod(method *dex.Method, classes *state.ClassCache) (*ExecutionGraph, error) {
	ms := state.NewMethodState(method.NumRegisters)
	idx := method.ParamRegisterStart()
	if !method.IsStatic {
		if idx < ms.NumRegisters() {
			ms.Assign(dex.Register(idx), value.UnknownItem(method.OwnerClass))
		}
		idx++
	}
	for _, t := range method.ParamTypes {
		if idx < ms.NumRegisters() {
			ms.Assign(dex.Register(idx), value.UnknownItem(t))
		}
		idx++
	}
	if !d.Session.IncrMethodVisit() {
		return nil, enginerr.NewResourceBound(method.Signature(), "maxMethodVisits", "session method visit budget exceeded before this method could start")
	}
	ctx := state.NewExecutionContext(ms, classes, nil)
	return d.Build(method, ctx)
}

// ClinitRunner returns a state.ClinitRunner that finds className's
// <clinit> through d.Manager and builds its graph through d itself,
// aggregating the resulting side-effect level onto cs — the callback
// state.ClassCache.Get invokes at most once per class. A class with
// no declared <clinit>, or one the ClassManager doesn't know about, is a
// no-op: its ClassState simply starts and stays at LevelNone.
//
// cachePtr is a pointer to the *state.ClassCache that will own this
// runner, resolved lazily: the cache doesn't exist yet when the runner
// must be constructed (state.NewClassCache takes the runner as an
// argument), so the caller wires it up as:
//
//	var cache *state.ClassCache
//	cache = state.NewClassCache(driver.ClinitRunner(&cache))
//
// By the time the runner is actually invoked (on a cache miss, strictly
// after NewClassCache returns), *cachePtr is set.
func (d *Driver) ClinitRunner(cachePtr **state.ClassCache) state.ClinitRunner {
	return func(className string, cs *state.ClassState) error {
		class, ok := d.Manager.Class(className)
		if !ok || class.ClinitMethod == nil {
			return nil
		}
		if !d.Session.IncrMethodVisit() {
			cs.Level = state.LevelStrong
			return nil
		}
		ms := state.NewMethodState(class.ClinitMethod.NumRegisters)
		ctx := state.NewExecutionContext(ms, *cachePtr, nil)
		graph, err := d.Build(class.ClinitMethod, ctx)
		if err != nil {
			ee := toEngineError(class.ClinitMethod.Signature(), err)
			if ee.Recoverable() {
				cs.Level = state.LevelStrong
				return nil
			}
			return ee
		}
		cs.Level = cs.Level.Join(graph.AggregateLevel())
		return nil
	}
}

type workItem struct {
	pc           int
	ctx          *state.ExecutionContext
	parent       NodeIndex
	handlerEntry bool
}

// Build runs the FIFO work-list loop for one method, producing its
// ExecutionGraph. A back edge (successor pc <= current pc) landing on an
// already-visited pc merges register state with the most recent node
// there (the loop-back-edge case); any other re-arrival at a visited pc
// clones and diverges, growing the graph with its own distinct path
// rather than collapsing it — maxAddressVisits is the backstop against
// that growth running away.
func (d *Driver) Build(method *dex.Method, entry *state.ExecutionContext) (*ExecutionGraph, error) {
	g := NewExecutionGraph(method)
	queue := []workItem{{pc: 0, ctx: entry, parent: noNode}}
	addressVisits := make(map[int]int)

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if err := d.Session.CheckTime(); err != nil {
			return g, err
		}

		addressVisits[item.pc]++
		if addressVisits[item.pc] > d.Session.Bounds.MaxAddressVisits {
			return g, enginerr.NewResourceBound(method.Signature(), "maxAddressVisits",
				fmt.Sprintf("pc %d visited more than %d times", item.pc, d.Session.Bounds.MaxAddressVisits))
		}
		if item.pc < 0 || item.pc >= len(method.Instructions) {
			return g, enginerr.NewMalformedInstruction(method.Signature(), fmt.Sprintf("pc %d out of range", item.pc))
		}

		instr := method.Instructions[item.pc]
		// Snapshot the register file entering this node before the instruction
		// below mutates item.ctx.Method in place: straight-line successors
		// reuse that same *state.MethodState pointer (no clone for the tail
		// successor), so without a copy here a node's State would keep
		// drifting as later instructions in the same chain execute, instead
		// of staying a fixed picture of state at this pc.
		node := &ExecutionNode{PC: item.pc, Instr: instr, State: item.ctx.Method.BranchedCopy(), HandlerEntry: item.handlerEntry}
		idx := g.addNode(node)
		if item.parent != noNode {
			g.link(item.parent, idx)
		}

		evalCtx := ops.EvalContext{Ctx: item.ctx, Method: method, PC: item.pc, Policy: d.Policy, Invoker: d}
		res, err := ops.Execute(evalCtx, instr)
		if err != nil {
			ee := toEngineError(method.Signature(), err)
			if !ee.Recoverable() {
				return g, ee
			}
			continue // malformed instruction: this node stays terminal, rest of the work-list proceeds
		}
		node.Level = res.Level

		if res.Exception != nil {
			node.Exception = res.Exception
			if handler, ok := method.HandlerFor(item.pc, res.Exception.Kind); ok {
				handlerState := item.ctx.Method.BranchedCopy()
				handlerState.Assign(handler.CatchRegister, value.NewHeapItem(*res.Exception, res.Exception.Kind))
				handlerCtx := state.NewExecutionContext(handlerState, item.ctx.Classes, item.ctx.Parent)
				d.enqueueSuccessor(&queue, g, idx, item.pc, handler.HandlerPC, handlerCtx, true)
			}
			continue // uncaught: node stays terminal with its Exception attached
		}

		if res.ReturnValue != nil {
			if mr, ok := peekMoveResult(method, item.pc); ok {
				item.ctx.Method.Assign(mr.Dest, *res.ReturnValue)
			}
		}

		successors := res.Successors
		if successors == nil {
			successors = instr.Successors(item.pc)
		}
		for i, succPC := range successors {
			var succState *state.MethodState
			if i == len(successors)-1 {
				succState = item.ctx.Method
			} else {
				succState = item.ctx.Method.BranchedCopy()
			}
			succCtx := state.NewExecutionContext(succState, item.ctx.Classes, item.ctx.Parent)
			d.enqueueSuccessor(&queue, g, idx, item.pc, succPC, succCtx, false)
		}
	}
	return g, nil
}

func (d *Driver) enqueueSuccessor(queue *[]workItem, g *ExecutionGraph, parent NodeIndex, fromPC, targetPC int, succCtx *state.ExecutionContext, handlerEntry bool) {
	existing := g.NodesAt(targetPC)
	if targetPC <= fromPC && len(existing) > 0 {
		last := g.Node(existing[len(existing)-1])
		merged, changed := last.State.Merge(succCtx.Method)
		if !changed {
			g.link(parent, existing[len(existing)-1])
			return
		}
		mergedCtx := state.NewExecutionContext(merged, succCtx.Classes, succCtx.Parent)
		*queue = append(*queue, workItem{pc: targetPC, ctx: mergedCtx, parent: parent, handlerEntry: handlerEntry})
		return
	}
	*queue = append(*queue, workItem{pc: targetPC, ctx: succCtx, parent: parent, handlerEntry: handlerEntry})
}

func peekMoveResult(method *dex.Method, pc int) (dex.MoveResult, bool) {
	if pc+1 >= len(method.Instructions) {
		return dex.MoveResult{}, false
	}
	mr, ok := method.Instructions[pc+1].(dex.MoveResult)
	return mr, ok
}

// aggregateReturn joins the return value of every ReturnOp terminal node
// into one HeapItem (the same merge rule used at a branch join, applied
// across a method's exit points instead).
func aggregateReturn(g *ExecutionGraph, returnType string) value.HeapItem {
	if returnType == "V" {
		return value.HeapItem{}
	}
	var merged value.HeapItem
	first := true
	for _, idx := range g.Terminals() {
		n := g.Node(idx)
		ret, ok := n.Instr.(dex.ReturnOp)
		if !ok || !ret.HasValue {
			continue
		}
		item := n.State.Peek(ret.Src)
		if first {
			merged = item
			first = false
			continue
		}
		merged = value.MergeHeapItem(merged, item)
	}
	if first {
		return value.UnknownItem(returnType)
	}
	return merged
}

func toEngineError(methodSig string, err error) *enginerr.EngineError {
	var ee *enginerr.EngineError
	if errors.As(err, &ee) {
		return ee
	}
	return enginerr.NewMalformedInstruction(methodSig, err.Error())
}
