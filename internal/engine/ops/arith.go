package ops

import (
	"math"

	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/value"
)

var descriptorForType = [...]string{
	dex.TInt:    "I",
	dex.TLong:   "J",
	dex.TFloat:  "F",
	dex.TDouble: "D",
}

// execBinaryArith is the canonical pure case: 32/64-bit two's complement
// wraparound for int/long (Go's fixed-width integer arithmetic already
// wraps identically), masked shift amounts, RSUB as rhs-lhs, and DIV/REM
// by zero raising ArithmeticException rather than propagating a concrete
// result — the one case a "pure" opcode still produces an exception value.
func execBinaryArith(ec EvalContext, b dex.BinaryArith) (Result, error) {
	left := ec.Ctx.Method.Read(b.Left)

	var right value.HeapItem
	if b.LiteralForm {
		right = value.NewHeapItem(value.ConcreteInt(b.Literal), "I")
	} else {
		right = ec.Ctx.Method.Read(b.Right)
	}

	descriptor := descriptorForType[b.Type]

	lc, lok := left.AsConcrete()
	rc, rok := right.AsConcrete()
	if !lok || !rok {
		ec.Ctx.Method.Assign(b.Dest, value.UnknownItem(descriptor))
		return Result{Level: state.LevelNone}, nil
	}

	switch b.Type {
	case dex.TInt:
		return evalIntArith(ec, b, lc.I32, rc.I32)
	case dex.TLong:
		return evalLongArith(ec, b, lc.I64, rc.I64)
	case dex.TFloat:
		return evalFloatArith(ec, b, lc.F32, rc.F32)
	case dex.TDouble:
		return evalDoubleArith(ec, b, lc.F64, rc.F64)
	}
	return Result{}, &MalformedErr{Mnemonic: b.Mnemonic(), Reason: "unknown operand type"}
}

func divByZeroException(mnemonic string) value.VirtualException {
	return value.VirtualException{Kind: "Ljava/lang/ArithmeticException;", Message: "divide by zero in " + mnemonic}
}

func evalIntArith(ec EvalContext, b dex.BinaryArith, l, r int32) (Result, error) {
	switch b.Op {
	case dex.Add:
		return assignInt(ec, b, l+r)
	case dex.Sub:
		return assignInt(ec, b, l-r)
	case dex.Mul:
		return assignInt(ec, b, l*r)
	case dex.Div:
		if r == 0 {
			exc := divByZeroException(b.Mnemonic())
			return Result{Exception: &exc}, nil
		}
		return assignInt(ec, b, l/r)
	case dex.Rem:
		if r == 0 {
			exc := divByZeroException(b.Mnemonic())
			return Result{Exception: &exc}, nil
		}
		return assignInt(ec, b, l%r)
	case dex.And:
		return assignInt(ec, b, l&r)
	case dex.Or:
		return assignInt(ec, b, l|r)
	case dex.Xor:
		return assignInt(ec, b, l^r)
	case dex.Shl:
		return assignInt(ec, b, l<<(uint32(r)&0x1f))
	case dex.Shr:
		return assignInt(ec, b, l>>(uint32(r)&0x1f))
	case dex.Ushr:
		return assignInt(ec, b, int32(uint32(l)>>(uint32(r)&0x1f)))
	case dex.Rsub:
		return assignInt(ec, b, r-l)
	}
	return Result{}, &MalformedErr{Mnemonic: b.Mnemonic(), Reason: "unknown int arith op"}
}

func evalLongArith(ec EvalContext, b dex.BinaryArith, l, r int64) (Result, error) {
	switch b.Op {
	case dex.Add:
		return assignLong(ec, b, l+r)
	case dex.Sub:
		return assignLong(ec, b, l-r)
	case dex.Mul:
		return assignLong(ec, b, l*r)
	case dex.Div:
		if r == 0 {
			exc := divByZeroException(b.Mnemonic())
			return Result{Exception: &exc}, nil
		}
		return assignLong(ec, b, l/r)
	case dex.Rem:
		if r == 0 {
			exc := divByZeroException(b.Mnemonic())
			return Result{Exception: &exc}, nil
		}
		return assignLong(ec, b, l%r)
	case dex.And:
		return assignLong(ec, b, l&r)
	case dex.Or:
		return assignLong(ec, b, l|r)
	case dex.Xor:
		return assignLong(ec, b, l^r)
	case dex.Shl:
		return assignLong(ec, b, l<<(uint64(r)&0x3f))
	case dex.Shr:
		return assignLong(ec, b, l>>(uint64(r)&0x3f))
	case dex.Ushr:
		return assignLong(ec, b, int64(uint64(l)>>(uint64(r)&0x3f)))
	case dex.Rsub:
		return assignLong(ec, b, r-l)
	}
	return Result{}, &MalformedErr{Mnemonic: b.Mnemonic(), Reason: "unknown long arith op"}
}

// evalFloatArith and evalDoubleArith implement IEEE754 semantics directly
// via Go's float32/float64 operators — no exception is ever raised for
// float/division-by-zero (produces ±Inf or NaN).
func evalFloatArith(ec EvalContext, b dex.BinaryArith, l, r float32) (Result, error) {
	switch b.Op {
	case dex.Add:
		return assignFloat(ec, b, l+r)
	case dex.Sub:
		return assignFloat(ec, b, l-r)
	case dex.Mul:
		return assignFloat(ec, b, l*r)
	case dex.Div:
		return assignFloat(ec, b, l/r)
	case dex.Rem:
		return assignFloat(ec, b, float32(math.Mod(float64(l), float64(r))))
	case dex.Rsub:
		return assignFloat(ec, b, r-l)
	}
	return Result{}, &MalformedErr{Mnemonic: b.Mnemonic(), Reason: "bitwise/shift op undefined for float"}
}

func evalDoubleArith(ec EvalContext, b dex.BinaryArith, l, r float64) (Result, error) {
	switch b.Op {
	case dex.Add:
		return assignDouble(ec, b, l+r)
	case dex.Sub:
		return assignDouble(ec, b, l-r)
	case dex.Mul:
		return assignDouble(ec, b, l*r)
	case dex.Div:
		return assignDouble(ec, b, l/r)
	case dex.Rem:
		return assignDouble(ec, b, math.Mod(l, r))
	case dex.Rsub:
		return assignDouble(ec, b, r-l)
	}
	return Result{}, &MalformedErr{Mnemonic: b.Mnemonic(), Reason: "bitwise/shift op undefined for double"}
}

func assignInt(ec EvalContext, b dex.BinaryArith, v int32) (Result, error) {
	ec.Ctx.Method.Assign(b.Dest, value.NewHeapItem(value.ConcreteInt(v), "I"))
	return Result{Level: state.LevelNone}, nil
}

func assignLong(ec EvalContext, b dex.BinaryArith, v int64) (Result, error) {
	ec.Ctx.Method.Assign(b.Dest, value.NewHeapItem(value.ConcreteLong(v), "J"))
	return Result{Level: state.LevelNone}, nil
}

func assignFloat(ec EvalContext, b dex.BinaryArith, v float32) (Result, error) {
	ec.Ctx.Method.Assign(b.Dest, value.NewHeapItem(value.ConcreteFloat(v), "F"))
	return Result{Level: state.LevelNone}, nil
}

func assignDouble(ec EvalContext, b dex.BinaryArith, v float64) (Result, error) {
	ec.Ctx.Method.Assign(b.Dest, value.NewHeapItem(value.ConcreteDouble(v), "D"))
	return Result{Level: state.LevelNone}, nil
}
