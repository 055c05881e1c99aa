package dex

// CatchHandler is one entry of a try block's handler list.
type CatchHandler struct {
	ExceptionType string // empty string means catch-all
	HandlerPC     int
	CatchRegister Register
}

// TryBlock covers the half-open instruction range [StartPC, EndPC).
type TryBlock struct {
	StartPC, EndPC int
	Handlers       []CatchHandler
}

// HandlerFor returns the first handler covering pc whose ExceptionType is
// either a catch-all or matches exceptionType, and whether one was found.
// Matching is by exact descriptor equality; the external class hierarchy
// (superclass/interface matching) is the ClassManager collaborator's
// concern, not this package's.
func (t TryBlock) HandlerFor(pc int, exceptionType string) (CatchHandler, bool) {
	if pc < t.StartPC || pc >= t.EndPC {
		return CatchHandler{}, false
	}
	for _, h := range t.Handlers {
		if h.ExceptionType == "" || h.ExceptionType == exceptionType {
			return h, true
		}
	}
	return CatchHandler{}, false
}

// Method is one method of one class, with its register-based instruction
// stream and exception table. Signature is the Dalvik method signature
// (e.g. "Lcom/app/A;->m(I)V") used by the launcher's include/exclude filters.
type Method struct {
	OwnerClass   string
	Name         string
	ParamTypes   []string
	ReturnType   string
	IsStatic     bool
	NumRegisters int // total register file size
	NumParams    int // number of incoming-argument registers, seeded at the tail of the register file per Dalvik convention
	Instructions []Instruction
	TryBlocks    []TryBlock
}

func (m *Method) Signature() string {
	s := m.OwnerClass + "->" + m.Name + "("
	for _, p := range m.ParamTypes {
		s += p
	}
	return s + ")" + m.ReturnType
}

// ParamRegisterStart is the register index of the first incoming argument —
// Dalvik places parameters in the last NumParams registers of the frame.
func (m *Method) ParamRegisterStart() int {
	return m.NumRegisters - m.NumParams
}

// HandlerFor finds the try block (if any) covering pc and delegates to it.
func (m *Method) HandlerFor(pc int, exceptionType string) (CatchHandler, bool) {
	for _, tb := range m.TryBlocks {
		if h, ok := tb.HandlerFor(pc, exceptionType); ok {
			return h, true
		}
	}
	return CatchHandler{}, false
}

// Class is a non-framework class as exposed by the ClassManager collaborator.
type Class struct {
	Name          string
	SuperClass    string
	Interfaces    []string
	StaticFields  []FieldRef
	Methods       []*Method
	HasClinit     bool
	ClinitMethod  *Method
}

// Builder is the DEX/APK emission collaborator: the concrete writer of
// the final archive. Real implementations wrap a binary-format library;
// this repository only depends on the interface.
type Builder interface {
	// Write emits the rewritten DEX (or APK with classes.dex replaced) to
	// outPath.
	Write(outPath string) error
}

// ClassManager is the collaborator contract: enumerate non-framework
// classes, retrieve their methods, expose the emission builder, and track
// method mutation so callers always get a fresh view of a method's
// instructions after the optimizer rewrites it.
type ClassManager interface {
	ClassNames() []string
	Class(name string) (*Class, bool)
	Methods(className string) []*Method
	// MarkMutated registers that a method's instructions have been
	// mutated so that a fresh builder view of that method is returned on
	// next access.
	MarkMutated(method *Method)
	Builder() Builder
}
