// Package dex models the slice of the Dalvik instruction set the engine
// interprets, plus the method/class shapes and the ClassManager
// collaborator contract. Actual DEX/APK byte-level parsing and emission
// stay external to this repository — this package only defines the
// in-memory representation a real parsing library would hand the engine,
// and the interfaces the engine expects back.
//
// Each opcode is a tagged variant of the Instruction sum type — a single
// dispatch that pattern-matches on the variant — rather than one subclass
// per opcode.
package dex

// Register addresses a slot in a method's register file.
type Register int

// Instruction is implemented by exactly the opcode variants this package
// defines. Successors reports the structural control-flow targets from
// program counter pc — independent of the value domain, since Dalvik
// control flow never depends on abstract values, only on the opcode and its
// encoded offsets.
type Instruction interface {
	Mnemonic() string
	Successors(pc int) []int
}

func fallthroughOnly(pc int) []int { return []int{pc + 1} }
func terminal(int) []int           { return nil }

// ============================================================================
// Constants and moves
// ============================================================================

// Const materializes a literal primitive or null into Dest. Used both as a
// genuine opcode (const/4, const/16, const, const-wide, ...) and as the
// replacement instruction ConstantPropagator and MethodInliner emit.
type Const struct {
	Dest    Register
	Literal ConstLiteral
}

type ConstLiteral struct {
	Type string // Dalvik type descriptor: "I", "J", "F", "D", or an object type for a null constant
	I32  int32
	I64  int64
	F32  float32
	F64  float64
	Null bool
}

func (Const) Mnemonic() string                 { return "const" }
func (c Const) Successors(pc int) []int { return fallthroughOnly(pc) }

type Move struct {
	Dest, Src Register
}

func (Move) Mnemonic() string          { return "move" }
func (m Move) Successors(pc int) []int { return fallthroughOnly(pc) }

// MoveResult reads the return value left by the immediately preceding
// invoke into Dest.
type MoveResult struct {
	Dest Register
}

func (MoveResult) Mnemonic() string          { return "move-result" }
func (m MoveResult) Successors(pc int) []int { return fallthroughOnly(pc) }

// MoveException binds the VirtualException carried into a catch handler to
// Dest; only ever valid as the first instruction at a handler's entry pc.
type MoveException struct {
	Dest Register
}

func (MoveException) Mnemonic() string          { return "move-exception" }
func (m MoveException) Successors(pc int) []int { return fallthroughOnly(pc) }

// ============================================================================
// Control flow
// ============================================================================

type Goto struct {
	Offset int
}

func (Goto) Mnemonic() string        { return "goto" }
func (g Goto) Successors(pc int) []int { return []int{pc + g.Offset} }

type CompareOp uint8

const (
	CmpEQ CompareOp = iota
	CmpNE
	CmpLT
	CmpGE
	CmpGT
	CmpLE
)

func (op CompareOp) String() string {
	return [...]string{"eq", "ne", "lt", "ge", "gt", "le"}[op]
}

// IfTest is the two-register conditional (if-eq/ne/lt/ge/gt/le). Fall-through
// is listed before the branch target, matching Dalvik's natural successor
// order.
type IfTest struct {
	Op          CompareOp
	Left, Right Register
	Offset      int
}

func (t IfTest) Mnemonic() string { return "if-" + t.Op.String() }
func (t IfTest) Successors(pc int) []int {
	return []int{pc + 1, pc + t.Offset}
}

// IfTestZ is the one-register form comparing against zero (if-eqz, ...).
type IfTestZ struct {
	Op     CompareOp
	Reg    Register
	Offset int
}

func (t IfTestZ) Mnemonic() string { return "if-" + t.Op.String() + "z" }
func (t IfTestZ) Successors(pc int) []int {
	return []int{pc + 1, pc + t.Offset}
}

type ReturnOp struct {
	HasValue bool
	Src      Register
}

func (ReturnOp) Mnemonic() string            { return "return" }
func (r ReturnOp) Successors(int) []int { return terminal(0) }

type ThrowOp struct {
	Src Register
}

func (ThrowOp) Mnemonic() string          { return "throw" }
func (t ThrowOp) Successors(int) []int { return terminal(0) }

// ============================================================================
// Binary arithmetic — the canonical pure case
// ============================================================================

type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
	Ushr
	Rsub
)

var arithOpNames = [...]string{"add", "sub", "mul", "div", "rem", "and", "or", "xor", "shl", "shr", "ushr", "rsub"}

func (op ArithOp) String() string { return arithOpNames[op] }

type OperandType uint8

const (
	TInt OperandType = iota
	TLong
	TFloat
	TDouble
)

var operandTypeNames = [...]string{"int", "long", "float", "double"}

func (t OperandType) String() string { return operandTypeNames[t] }

// BinaryArith encodes op × operand-type and optionally a literal second
// operand (the *-lit8/-lit16 forms). LiteralForm is always typed "I"
// regardless of Type, since Dalvik's literal-form opcodes only ever exist
// for int math.
type BinaryArith struct {
	Op          ArithOp
	Type        OperandType
	Dest        Register
	Left        Register
	Right       Register // ignored when LiteralForm is true
	LiteralForm bool
	Literal     int32
}

func (b BinaryArith) Mnemonic() string {
	suffix := "-" + b.Type.String()
	if b.LiteralForm {
		suffix += "/lit"
	}
	return b.Op.String() + suffix
}
func (b BinaryArith) Successors(pc int) []int { return fallthroughOnly(pc) }

// ============================================================================
// Object model opcodes
// ============================================================================

// NewInstance — the canonical side-effecting case.
type NewInstance struct {
	Dest      Register
	ClassName string
}

func (NewInstance) Mnemonic() string          { return "new-instance" }
func (n NewInstance) Successors(pc int) []int { return fallthroughOnly(pc) }

type NewArray struct {
	Dest        Register
	SizeReg     Register
	ElementType string
}

func (NewArray) Mnemonic() string          { return "new-array" }
func (n NewArray) Successors(pc int) []int { return fallthroughOnly(pc) }

type InstanceOf struct {
	Dest, Ref Register
	ClassName string
}

func (InstanceOf) Mnemonic() string          { return "instance-of" }
func (i InstanceOf) Successors(pc int) []int { return fallthroughOnly(pc) }

type CheckCast struct {
	Ref       Register
	ClassName string
}

func (CheckCast) Mnemonic() string          { return "check-cast" }
func (c CheckCast) Successors(pc int) []int { return fallthroughOnly(pc) }

// FieldRef identifies a field independent of the class hierarchy resolution
// the external class manager performs.
type FieldRef struct {
	OwnerClass string
	Name       string
	Type       string
}

// InstanceField is iget/iput: field access through an object reference
// (may raise NullPointerException).
type InstanceField struct {
	IsGet     bool
	ValueReg  Register
	ObjectReg Register
	Field     FieldRef
}

func (InstanceField) Mnemonic() string          { return "iget/iput" }
func (f InstanceField) Successors(pc int) []int { return fallthroughOnly(pc) }

// StaticField is sget/sput: triggers the owning class's <clinit> via
// ClassState lookup (ExecutionContext semantics).
type StaticField struct {
	IsGet    bool
	ValueReg Register
	Field    FieldRef
}

func (StaticField) Mnemonic() string          { return "sget/sput" }
func (f StaticField) Successors(pc int) []int { return fallthroughOnly(pc) }

// ============================================================================
// Invocation
// ============================================================================

type InvokeKind uint8

const (
	InvokeVirtual InvokeKind = iota
	InvokeDirect
	InvokeStatic
	InvokeInterface
	InvokeSuper
)

var invokeKindNames = [...]string{"invoke-virtual", "invoke-direct", "invoke-static", "invoke-interface", "invoke-super"}

func (k InvokeKind) String() string { return invokeKindNames[k] }

// MethodRef identifies a callee independent of whether it resolves to a
// local method, a safe framework method, or neither.
type MethodRef struct {
	OwnerClass string
	Name       string
	ParamTypes []string
	ReturnType string
}

func (m MethodRef) Signature() string {
	s := m.OwnerClass + "->" + m.Name + "("
	for _, p := range m.ParamTypes {
		s += p
	}
	return s + ")" + m.ReturnType
}

type Invoke struct {
	Kind   InvokeKind
	Method MethodRef
	Args   []Register // Args[0] is the receiver for non-static kinds
}

func (i Invoke) Mnemonic() string          { return i.Kind.String() }
func (i Invoke) Successors(pc int) []int { return fallthroughOnly(pc) }

type Nop struct{}

func (Nop) Mnemonic() string          { return "nop" }
func (n Nop) Successors(pc int) []int { return fallthroughOnly(pc) }
