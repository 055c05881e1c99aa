package optimizer

import (
	"math"

	"dexsimplify/internal/dex"
	"dexsimplify/internal/value"
)

// foldBinaryArith re-derives the same arithmetic package ops's
// execBinaryArith defines, scoped down to the pure constant-folding
// question an optimization pass asks at compile time rather than
// execution time: can
// this operation be reduced to a single dex.Const, and does it throw
// unconditionally. Kept independent of package ops (which is unexported at
// the per-op level) rather than re-exporting ops's internals just for this.
func foldBinaryArith(b dex.BinaryArith, left, right value.Concrete) (dex.ConstLiteral, bool, bool) {
	switch b.Type {
	case dex.TInt:
		return foldInt(b, left.I32, right.I32)
	case dex.TLong:
		return foldLong(b, left.I64, right.I64)
	case dex.TFloat:
		return foldFloat(b, left.F32, right.F32)
	case dex.TDouble:
		return foldDouble(b, left.F64, right.F64)
	}
	return dex.ConstLiteral{}, false, false
}

func foldInt(b dex.BinaryArith, l, r int32) (dex.ConstLiteral, bool, bool) {
	switch b.Op {
	case dex.Add:
		return intLit(l + r), true, false
	case dex.Sub:
		return intLit(l - r), true, false
	case dex.Mul:
		return intLit(l * r), true, false
	case dex.Div:
		if r == 0 {
			return dex.ConstLiteral{}, false, true
		}
		return intLit(l / r), true, false
	case dex.Rem:
		if r == 0 {
			return dex.ConstLiteral{}, false, true
		}
		return intLit(l % r), true, false
	case dex.And:
		return intLit(l & r), true, false
	case dex.Or:
		return intLit(l | r), true, false
	case dex.Xor:
		return intLit(l ^ r), true, false
	case dex.Shl:
		return intLit(l << (uint32(r) & 0x1f)), true, false
	case dex.Shr:
		return intLit(l >> (uint32(r) & 0x1f)), true, false
	case dex.Ushr:
		return intLit(int32(uint32(l) >> (uint32(r) & 0x1f))), true, false
	case dex.Rsub:
		return intLit(r - l), true, false
	}
	return dex.ConstLiteral{}, false, false
}

func foldLong(b dex.BinaryArith, l, r int64) (dex.ConstLiteral, bool, bool) {
	switch b.Op {
	case dex.Add:
		return longLit(l + r), true, false
	case dex.Sub:
		return longLit(l - r), true, false
	case dex.Mul:
		return longLit(l * r), true, false
	case dex.Div:
		if r == 0 {
			return dex.ConstLiteral{}, false, true
		}
		return longLit(l / r), true, false
	case dex.Rem:
		if r == 0 {
			return dex.ConstLiteral{}, false, true
		}
		return longLit(l % r), true, false
	case dex.And:
		return longLit(l & r), true, false
	case dex.Or:
		return longLit(l | r), true, false
	case dex.Xor:
		return longLit(l ^ r), true, false
	case dex.Shl:
		return longLit(l << (uint64(r) & 0x3f)), true, false
	case dex.Shr:
		return longLit(l >> (uint64(r) & 0x3f)), true, false
	case dex.Ushr:
		return longLit(int64(uint64(l) >> (uint64(r) & 0x3f))), true, false
	case dex.Rsub:
		return longLit(r - l), true, false
	}
	return dex.ConstLiteral{}, false, false
}

func foldFloat(b dex.BinaryArith, l, r float32) (dex.ConstLiteral, bool, bool) {
	switch b.Op {
	case dex.Add:
		return floatLit(l + r), true, false
	case dex.Sub:
		return floatLit(l - r), true, false
	case dex.Mul:
		return floatLit(l * r), true, false
	case dex.Div:
		return floatLit(l / r), true, false
	case dex.Rem:
		return floatLit(float32(math.Mod(float64(l), float64(r)))), true, false
	case dex.Rsub:
		return floatLit(r - l), true, false
	}
	return dex.ConstLiteral{}, false, false
}

func foldDouble(b dex.BinaryArith, l, r float64) (dex.ConstLiteral, bool, bool) {
	switch b.Op {
	case dex.Add:
		return doubleLit(l + r), true, false
	case dex.Sub:
		return doubleLit(l - r), true, false
	case dex.Mul:
		return doubleLit(l * r), true, false
	case dex.Div:
		return doubleLit(l / r), true, false
	case dex.Rem:
		return doubleLit(math.Mod(l, r)), true, false
	case dex.Rsub:
		return doubleLit(r - l), true, false
	}
	return dex.ConstLiteral{}, false, false
}

func intLit(v int32) dex.ConstLiteral    { return dex.ConstLiteral{Type: "I", I32: v} }
func longLit(v int64) dex.ConstLiteral   { return dex.ConstLiteral{Type: "J", I64: v} }
func floatLit(v float32) dex.ConstLiteral { return dex.ConstLiteral{Type: "F", F32: v} }
func doubleLit(v float64) dex.ConstLiteral { return dex.ConstLiteral{Type: "D", F64: v} }

// literalFromHeapItem converts a fully concrete HeapItem back into a
// dex.ConstLiteral the MethodInliner (predictable-call collapse) can
// replace an instruction with; a null reference becomes a Null literal,
// while non-null object references and non-concrete items have no literal
// form.
func literalFromHeapItem(item value.HeapItem) (dex.ConstLiteral, bool) {
	c, ok := item.AsConcrete()
	if !ok {
		return dex.ConstLiteral{}, false
	}
	switch c.Kind {
	case value.Int:
		return intLit(c.I32), true
	case value.Long:
		return longLit(c.I64), true
	case value.Float:
		return floatLit(c.F32), true
	case value.Double:
		return doubleLit(c.F64), true
	case value.Boolean:
		v := int32(0)
		if c.Bool {
			v = 1
		}
		return dex.ConstLiteral{Type: "Z", I32: v}, true
	case value.ObjectRef:
		if c.Ref == nil {
			return dex.ConstLiteral{Type: item.DeclaredType, Null: true}, true
		}
	}
	return dex.ConstLiteral{}, false
}
