// Package value implements the abstract value domain the symbolic
// interpreter carries along execution-graph edges: concrete primitives and
// object references, the unknown top value, uninitialized instances created
// by new-instance before their constructor runs, and exceptions represented
// as values rather than host-language panics.
package value

import "fmt"

// PrimKind distinguishes the concrete Dalvik primitive/reference shapes a
// Concrete value can hold.
type PrimKind uint8

const (
	Int PrimKind = iota
	Long
	Float
	Double
	Boolean
	ObjectRef
)

func (k PrimKind) String() string {
	switch k {
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Boolean:
		return "boolean"
	case ObjectRef:
		return "objectref"
	default:
		return "unknown-kind"
	}
}

// Value is the abstract domain: exactly one of Concrete, Unknown,
// Uninitialized or VirtualException. Implementations are comparable with ==
// only through Equal below — Concrete's Ref field may hold an uncomparable
// payload, so direct struct comparison is never used outside this package.
type Value interface {
	isValue()
	String() string
}

// Concrete is a fully-known primitive or object reference. Ref is nil for a
// concrete null reference, or holds an opaque payload (e.g. a resolved
// string literal, or a pointer into the heap the driver maintains) for
// ObjectRef.
type Concrete struct {
	Kind    PrimKind
	I32     int32
	I64     int64
	F32     float32
	F64     float64
	Bool    bool
	Ref     interface{}
	RefType string // object's runtime type descriptor, set only when Kind == ObjectRef
}

func (Concrete) isValue() {}

func (c Concrete) String() string {
	switch c.Kind {
	case Int:
		return fmt.Sprintf("%d", c.I32)
	case Long:
		return fmt.Sprintf("%dL", c.I64)
	case Float:
		return fmt.Sprintf("%gf", c.F32)
	case Double:
		return fmt.Sprintf("%g", c.F64)
	case Boolean:
		return fmt.Sprintf("%t", c.Bool)
	case ObjectRef:
		if c.Ref == nil {
			return "null"
		}
		return fmt.Sprintf("%v", c.Ref)
	default:
		return "<bad-concrete>"
	}
}

func ConcreteInt(v int32) Concrete    { return Concrete{Kind: Int, I32: v} }
func ConcreteLong(v int64) Concrete   { return Concrete{Kind: Long, I64: v} }
func ConcreteFloat(v float32) Concrete { return Concrete{Kind: Float, F32: v} }
func ConcreteDouble(v float64) Concrete { return Concrete{Kind: Double, F64: v} }
func ConcreteBool(v bool) Concrete    { return Concrete{Kind: Boolean, Bool: v} }
func ConcreteNull() Concrete          { return Concrete{Kind: ObjectRef, Ref: nil} }
func ConcreteRef(ref interface{}, runtimeType string) Concrete {
	return Concrete{Kind: ObjectRef, Ref: ref, RefType: runtimeType}
}

// Unknown is the top of the lattice: any concrete value is possible. Two
// Unknowns still carry a declared type at the HeapItem level, but the value
// itself carries none — merging never narrows it back down.
type Unknown struct{}

func (Unknown) isValue()       {}
func (Unknown) String() string { return "<unknown>" }

// Uninitialized is what new-instance assigns to its destination register:
// an object of ClassName exists, but its constructor has not run.
type Uninitialized struct {
	ClassName string
}

func (Uninitialized) isValue() {}
func (u Uninitialized) String() string {
	return fmt.Sprintf("<uninitialized %s>", u.ClassName)
}

// VirtualException is an exception flowing along an edge as a value, never
// as a host-language panic or error return.
type VirtualException struct {
	Kind    string // e.g. "Ljava/lang/ArithmeticException;"
	Message string
}

func (VirtualException) isValue() {}
func (e VirtualException) String() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HeapItem pairs a Value with its declared Dalvik type descriptor. The
// declared type is tracked independently of the value so
// that narrowing/widening during arithmetic, and supertype-merging during a
// branch join, stay explicit rather than folded into the value itself.
type HeapItem struct {
	Value        Value
	DeclaredType string
}

func NewHeapItem(v Value, declaredType string) HeapItem {
	return HeapItem{Value: v, DeclaredType: declaredType}
}

// UnknownItem builds the top HeapItem for a given declared type — the
// default for registers the driver cannot seed with a concrete parameter.
func UnknownItem(declaredType string) HeapItem {
	return HeapItem{Value: Unknown{}, DeclaredType: declaredType}
}

func (h HeapItem) IsUnknown() bool {
	_, ok := h.Value.(Unknown)
	return ok
}

func (h HeapItem) IsConcrete() bool {
	_, ok := h.Value.(Concrete)
	return ok
}

func (h HeapItem) AsConcrete() (Concrete, bool) {
	c, ok := h.Value.(Concrete)
	return c, ok
}

func (h HeapItem) IsUninitialized() bool {
	_, ok := h.Value.(Uninitialized)
	return ok
}

func (h HeapItem) IsException() bool {
	_, ok := h.Value.(VirtualException)
	return ok
}

func (h HeapItem) String() string {
	return fmt.Sprintf("%s:%s", h.Value.String(), h.DeclaredType)
}

// ============================================================================
// Lattice operations
// ============================================================================

// Equal reports whether two values are the identical lattice element. Used
// by consensus queries (do all nodes at a location agree on register R) and
// by the merge idempotence check (x ⊔ x = x).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case Uninitialized:
		bv, ok := b.(Uninitialized)
		return ok && av.ClassName == bv.ClassName
	case VirtualException:
		bv, ok := b.(VirtualException)
		return ok && av.Kind == bv.Kind && av.Message == bv.Message
	case Concrete:
		bv, ok := b.(Concrete)
		if !ok || av.Kind != bv.Kind {
			return false
		}
		switch av.Kind {
		case Int:
			return av.I32 == bv.I32
		case Long:
			return av.I64 == bv.I64
		case Float:
			return av.F32 == bv.F32
		case Double:
			return av.F64 == bv.F64
		case Boolean:
			return av.Bool == bv.Bool
		case ObjectRef:
			return av.Ref == bv.Ref
		}
	}
	return false
}

// Join computes a ⊔ b over the value lattice: idempotent,
// commutative and associative because any disagreement collapses straight
// to Unknown — this is a flat, height-two semilattice, so those three
// algebraic laws hold trivially rather than needing a per-case proof.
func Join(a, b Value) Value {
	if Equal(a, b) {
		return a
	}
	return Unknown{}
}

// MergeHeapItem merges two HeapItems: with the same declared type it
// returns a HeapItem of that type; with different declared
// types, of their common supertype (generic Object when no narrower common
// ancestor is known to this package — real supertype resolution belongs to
// the external class hierarchy the ClassManager collaborator exposes, which
// this package does not depend on).
func MergeHeapItem(a, b HeapItem) HeapItem {
	declared := a.DeclaredType
	if a.DeclaredType != b.DeclaredType {
		declared = commonSupertype(a.DeclaredType, b.DeclaredType)
	}
	return HeapItem{Value: Join(a.Value, b.Value), DeclaredType: declared}
}

const objectType = "Ljava/lang/Object;"

func commonSupertype(t1, t2 string) string {
	if t1 == t2 {
		return t1
	}
	// Primitive descriptors never share a common supertype with anything
	// but themselves; a mismatch here means the merge is already unsound
	// (e.g. a verifier bug upstream), so fall back to the generic object
	// type rather than panic.
	if isPrimitiveDescriptor(t1) || isPrimitiveDescriptor(t2) {
		return objectType
	}
	return objectType
}

func isPrimitiveDescriptor(t string) bool {
	switch t {
	case "I", "J", "F", "D", "Z", "B", "S", "C", "V":
		return true
	default:
		return false
	}
}
