package state

// ExecutionContext bundles a (MethodState, ClassState cache, parent
// context reference) triple. Parent links a callee's context back to its
// caller, so an InvokeOp handler can attribute a recursive call's depth and
// propagate a return value without a separate call stack structure.
type ExecutionContext struct {
	Method  *MethodState
	Classes *ClassCache
	Parent  *ExecutionContext
}

func NewExecutionContext(method *MethodState, classes *ClassCache, parent *ExecutionContext) *ExecutionContext {
	return &ExecutionContext{Method: method, Classes: classes, Parent: parent}
}

// Clone copies the register file (copy-on-branch) while sharing the class
// cache — ClassState is VM-instance-wide, not per-path.
func (c *ExecutionContext) Clone() *ExecutionContext {
	return &ExecutionContext{Method: c.Method.BranchedCopy(), Classes: c.Classes, Parent: c.Parent}
}

// Depth counts recursive invoke frames above this context, for maxCallDepth.
func (c *ExecutionContext) Depth() int {
	d := 0
	for p := c.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
