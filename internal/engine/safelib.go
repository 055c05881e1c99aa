package engine

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/value"
)

// safeMethod is a pure, fully-concrete-argument standard-library call the
// driver can evaluate directly rather than leaving it Unknown. Limited to
// a few side-effect-free numeric methods (java.lang.Math abs/max/min and
// java.lang.Integer signum) — simple enough to model exactly without a
// real Android/Java runtime behind this repository.
type safeMethod func(args []value.HeapItem) (value.HeapItem, bool)

var safeMethods = map[string]safeMethod{
	"Ljava/lang/Math;->abs(I)I": func(args []value.HeapItem) (value.HeapItem, bool) {
		c, ok := requireInt(args, 0)
		if !ok {
			return value.HeapItem{}, false
		}
		v := c.I32
		if v < 0 {
			v = -v
		}
		return value.NewHeapItem(value.ConcreteInt(v), "I"), true
	},
	"Ljava/lang/Math;->abs(J)J": func(args []value.HeapItem) (value.HeapItem, bool) {
		c, ok := requireLong(args, 0)
		if !ok {
			return value.HeapItem{}, false
		}
		v := c.I64
		if v < 0 {
			v = -v
		}
		return value.NewHeapItem(value.ConcreteLong(v), "J"), true
	},
	"Ljava/lang/Math;->max(II)I": func(args []value.HeapItem) (value.HeapItem, bool) {
		a, ok1 := requireInt(args, 0)
		b, ok2 := requireInt(args, 1)
		if !ok1 || !ok2 {
			return value.HeapItem{}, false
		}
		v := a.I32
		if b.I32 > v {
			v = b.I32
		}
		return value.NewHeapItem(value.ConcreteInt(v), "I"), true
	},
	"Ljava/lang/Math;->min(II)I": func(args []value.HeapItem) (value.HeapItem, bool) {
		a, ok1 := requireInt(args, 0)
		b, ok2 := requireInt(args, 1)
		if !ok1 || !ok2 {
			return value.HeapItem{}, false
		}
		v := a.I32
		if b.I32 < v {
			v = b.I32
		}
		return value.NewHeapItem(value.ConcreteInt(v), "I"), true
	},
	"Ljava/lang/Integer;->signum(I)I": func(args []value.HeapItem) (value.HeapItem, bool) {
		c, ok := requireInt(args, 0)
		if !ok {
			return value.HeapItem{}, false
		}
		switch {
		case c.I32 > 0:
			return value.NewHeapItem(value.ConcreteInt(1), "I"), true
		case c.I32 < 0:
			return value.NewHeapItem(value.ConcreteInt(-1), "I"), true
		default:
			return value.NewHeapItem(value.ConcreteInt(0), "I"), true
		}
	},
}

func requireInt(args []value.HeapItem, i int) (value.Concrete, bool) {
	if i >= len(args) {
		return value.Concrete{}, false
	}
	c, ok := args[i].AsConcrete()
	return c, ok && c.Kind == value.Int
}

func requireLong(args []value.HeapItem, i int) (value.Concrete, bool) {
	if i >= len(args) {
		return value.Concrete{}, false
	}
	c, ok := args[i].AsConcrete()
	return c, ok && c.Kind == value.Long
}

func reflectSafeCall(ref dex.MethodRef, args []value.HeapItem) (value.HeapItem, bool) {
	fn, ok := safeMethods[ref.Signature()]
	if !ok {
		return value.HeapItem{}, false
	}
	return fn(args)
}

// IsKnownSafeMethod reports whether signature names one of the registry's
// entries — exported for internal/config's default Policy, which has no
// other way to know which signatures this registry actually covers.
func IsKnownSafeMethod(signature string) bool {
	_, ok := safeMethods[signature]
	return ok
}
