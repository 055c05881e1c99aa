package state

import (
	"sync"

	"dexsimplify/internal/value"
)

// SideEffectLevel is a join-semilattice: NONE < WEAK < STRONG. A method's
// level is the join over every reachable node's level.
type SideEffectLevel uint8

const (
	LevelNone SideEffectLevel = iota
	LevelWeak
	LevelStrong
)

func (l SideEffectLevel) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelWeak:
		return "WEAK"
	case LevelStrong:
		return "STRONG"
	default:
		return "?"
	}
}

// Join returns the least upper bound of two levels.
func (l SideEffectLevel) Join(o SideEffectLevel) SideEffectLevel {
	if o > l {
		return o
	}
	return l
}

// InitStatus is the <clinit> state machine: NotStarted → InProgress →
// Done, with re-entry during InProgress short-circuited rather than
// recursing (models the JVM semantics of a thread re-entering its own
// <clinit>).
type InitStatus uint8

const (
	NotStarted InitStatus = iota
	InProgress
	Done
)

// ClassState is the per-class static-field store: a mapping from field
// name to HeapItem, an init status, and a cached aggregate side-effect
// level for the class's <clinit>; later static field writes do not
// change that level.
type ClassState struct {
	Name   string
	Status InitStatus
	Level  SideEffectLevel

	mu     sync.Mutex
	fields map[string]value.HeapItem
}

func NewClassState(name string) *ClassState {
	return &ClassState{Name: name, fields: make(map[string]value.HeapItem)}
}

func (c *ClassState) GetField(name string) value.HeapItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hi, ok := c.fields[name]; ok {
		return hi
	}
	return value.UnknownItem("")
}

func (c *ClassState) SetField(name string, item value.HeapItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = item
}

// ClinitRunner executes a class's <clinit> against its (already
// InProgress-marked) ClassState. Implemented by the driver, which recurses
// into itself to symbolically execute the <clinit> method body — kept as a
// callback here to avoid package ops/state depending on the driver.
type ClinitRunner func(className string, cs *ClassState) error

// ClassCache is the per-VM-instance cache: a VM instance owns the
// ClassManager and the ClassState map for its lifetime, with at-most-once
// <clinit> initialization. The cache+"loading"-map+mutex shape collapses
// here into ClassState's own three-state Status field.
type ClassCache struct {
	mu        sync.Mutex
	states    map[string]*ClassState
	runClinit ClinitRunner
}

func NewClassCache(runClinit ClinitRunner) *ClassCache {
	return &ClassCache{states: make(map[string]*ClassState), runClinit: runClinit}
}

// Get looks up className's state, triggering <clinit> at most once per
// class per VM instance. A class whose <clinit> is already InProgress
// (a re-entrant lookup from within its own static initializer, directly or
// transitively) is returned as-is, with whatever fields have been assigned
// so far — Unknown otherwise, via ClassState.GetField's default.
func (cc *ClassCache) Get(className string) *ClassState {
	cc.mu.Lock()
	cs, ok := cc.states[className]
	if !ok {
		cs = NewClassState(className)
		cc.states[className] = cs
	}
	if cs.Status != NotStarted {
		cc.mu.Unlock()
		return cs
	}
	cs.Status = InProgress
	cc.mu.Unlock()

	if cc.runClinit != nil {
		_ = cc.runClinit(className, cs)
	}

	cc.mu.Lock()
	if cs.Status == InProgress {
		cs.Status = Done
	}
	cc.mu.Unlock()
	return cs
}

// Invalidate drops a class's cached state, forcing <clinit> to rerun on the
// next Get — used when the optimizer rewrites a class's <clinit>; otherwise
// the cache is read-only once a class's <clinit> has run.
func (cc *ClassCache) Invalidate(className string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.states, className)
}
