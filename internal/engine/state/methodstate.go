// Package state holds the per-method and per-class execution state the
// driver and opcode handlers share: the register file (MethodState), the
// static-field store with lazy <clinit> (ClassState/ClassCache), and the
// ExecutionContext that threads both through a method's symbolic execution.
// It is split out from package engine so that both the driver and the
// opcode handlers in package ops can depend on it without the two
// depending on each other.
package state

import (
	"time"

	"dexsimplify/internal/dex"
	"dexsimplify/internal/value"
)

// MethodState is the register file: N HeapItems plus a parallel
// "assigned-this-node" bitset recording which registers the current
// instruction newly wrote, for display and dataflow queries.
type MethodState struct {
	registers []value.HeapItem
	assigned  []bool
}

func NewMethodState(numRegisters int) *MethodState {
	return &MethodState{
		registers: make([]value.HeapItem, numRegisters),
		assigned:  make([]bool, numRegisters),
	}
}

func (s *MethodState) NumRegisters() int { return len(s.registers) }

// Read returns a register's value as an instruction operand.
func (s *MethodState) Read(r dex.Register) value.HeapItem {
	return s.registers[r]
}

// Peek returns a register's value without participating in the
// assigned-this-node bitset — used by consensus queries and display/debug
// tooling that inspect state without being part of the executing
// instruction's own operand reads.
func (s *MethodState) Peek(r dex.Register) value.HeapItem {
	return s.registers[r]
}

// Assign writes item to r and marks it newly-assigned for this node.
func (s *MethodState) Assign(r dex.Register, item value.HeapItem) {
	s.registers[r] = item
	s.assigned[r] = true
}

func (s *MethodState) WasAssignedThisNode(r dex.Register) bool {
	return s.assigned[r]
}

// BranchedCopy clones the register file for a child node (copy-on-branch);
// the assigned bitset always starts fresh since it describes what the
// child's own, not-yet-executed, instruction will write.
func (s *MethodState) BranchedCopy() *MethodState {
	regs := make([]value.HeapItem, len(s.registers))
	copy(regs, s.registers)
	return &MethodState{registers: regs, assigned: make([]bool, len(s.registers))}
}

// Merge joins this state with another register-wise (the loop-back-edge
// merge), returning a new MethodState and whether any register actually
// changed — callers use the latter to decide whether a merged loop node
// needs re-enqueueing.
func (s *MethodState) Merge(other *MethodState) (*MethodState, bool) {
	merged := make([]value.HeapItem, len(s.registers))
	changed := false
	for i := range s.registers {
		m := value.MergeHeapItem(s.registers[i], other.registers[i])
		if !value.Equal(m.Value, s.registers[i].Value) || m.DeclaredType != s.registers[i].DeclaredType {
			changed = true
		}
		merged[i] = m
	}
	return &MethodState{registers: merged, assigned: make([]bool, len(s.registers))}, changed
}

// ResourceBounds are the four configured cancellation points.
type ResourceBounds struct {
	MaxAddressVisits int
	MaxCallDepth     int
	MaxMethodVisits  int
	MaxExecutionTime time.Duration
}

// DefaultBounds mirrors conservative defaults a CLI would otherwise require
// explicitly; the launcher's CLI layer overrides these from flags.
func DefaultBounds() ResourceBounds {
	return ResourceBounds{
		MaxAddressVisits: 10000,
		MaxCallDepth:     50,
		MaxMethodVisits:  10000,
		MaxExecutionTime: 10 * time.Second,
	}
}

// Policy is the configuration collaborator: predicates over classes and
// methods that opcode handlers consult to decide whether they may actually
// invoke real code, and which classes are local to the DEX under analysis
// versus framework.
type Policy interface {
	IsSafeClass(className string) bool
	IsSafeMethod(signature string) bool
	IsFrameworkClass(className string) bool
	IsLocalClass(className string) bool
}
