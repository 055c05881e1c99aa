package ops

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/value"
)

// execNewInstance is the canonical side-effecting case, with a side-effect
// level that depends on what's known about the class being instantiated.
// A local class triggers its <clinit> (at most once per class per VM
// instance, via ClassCache.Get) and inherits whatever level that run
// aggregated. A non-local class the policy declares safe carries no level
// of its own. Anything else — a non-local class outside the safe list,
// where no <clinit> will ever be interpreted to find out what it does — is
// assumed to run arbitrary code and reported conservatively as STRONG. The
// constructor itself only runs when a matching invoke-direct of <init> is
// later interpreted; this only assigns the Uninitialized placeholder.
func execNewInstance(ec EvalContext, n dex.NewInstance) (Result, error) {
	ec.Ctx.Method.Assign(n.Dest, value.NewHeapItem(value.Uninitialized{ClassName: n.ClassName}, n.ClassName))

	if ec.Policy.IsLocalClass(n.ClassName) {
		cs := ec.Ctx.Classes.Get(n.ClassName)
		return Result{Level: cs.Level}, nil
	}
	if ec.Policy.IsSafeClass(n.ClassName) {
		return Result{Level: state.LevelNone}, nil
	}
	return Result{Level: state.LevelStrong}, nil
}

func execNewArray(ec EvalContext, n dex.NewArray) (Result, error) {
	descriptor := "[" + n.ElementType
	sizeItem := ec.Ctx.Method.Read(n.SizeReg)
	if sc, ok := sizeItem.AsConcrete(); ok && sc.Kind == value.Int {
		ec.Ctx.Method.Assign(n.Dest, value.NewHeapItem(value.ConcreteRef(int(sc.I32), descriptor), descriptor))
		return Result{Level: state.LevelNone}, nil
	}
	ec.Ctx.Method.Assign(n.Dest, value.UnknownItem(descriptor))
	return Result{Level: state.LevelNone}, nil
}

// execInstanceOf answers true/false only when the reference is concretely
// null (always false) or its runtime type is known and identical to
// ClassName; proper supertype/interface matching belongs to the external
// class hierarchy this package does not depend on (dex.ClassManager), so a
// concrete ref of a *different* runtime type still degenerates to Unknown
// rather than risk a false negative.
func execInstanceOf(ec EvalContext, i dex.InstanceOf) (Result, error) {
	ref := ec.Ctx.Method.Read(i.Ref)
	if rc, ok := ref.AsConcrete(); ok && rc.Kind == value.ObjectRef {
		if rc.Ref == nil {
			ec.Ctx.Method.Assign(i.Dest, value.NewHeapItem(value.ConcreteBool(false), "Z"))
			return Result{Level: state.LevelNone}, nil
		}
		if rc.RefType == i.ClassName {
			ec.Ctx.Method.Assign(i.Dest, value.NewHeapItem(value.ConcreteBool(true), "Z"))
			return Result{Level: state.LevelNone}, nil
		}
	}
	ec.Ctx.Method.Assign(i.Dest, value.UnknownItem("Z"))
	return Result{Level: state.LevelNone}, nil
}

// execCheckCast never rewrites Ref — it is a runtime assertion, not a
// conversion. A failing cast would raise ClassCastException, but without
// the class hierarchy collaborator this package cannot determine failure
// versus success for anything but a concrete null (which always passes),
// so it is modeled as always succeeding.
func execCheckCast(ec EvalContext, c dex.CheckCast) (Result, error) {
	return Result{Level: state.LevelNone}, nil
}

func npeException() value.VirtualException {
	return value.VirtualException{Kind: "Ljava/lang/NullPointerException;", Message: "null object reference"}
}

func isConcreteNull(item value.HeapItem) bool {
	c, ok := item.AsConcrete()
	return ok && c.Kind == value.ObjectRef && c.Ref == nil
}

// execInstanceField models iget/iput conservatively: this package's value
// domain (package value) tracks registers and static fields but no
// per-object heap map, so a successful iget always yields Unknown at the
// field's declared type — the point is detecting the NullPointerException
// case and the WEAK side effect of a write, not simulating field contents.
func execInstanceField(ec EvalContext, f dex.InstanceField) (Result, error) {
	obj := ec.Ctx.Method.Read(f.ObjectReg)
	if obj.IsConcrete() && isConcreteNull(obj) {
		exc := npeException()
		return Result{Exception: &exc}, nil
	}
	if f.IsGet {
		ec.Ctx.Method.Assign(f.ValueReg, value.UnknownItem(f.Field.Type))
		return Result{Level: state.LevelNone}, nil
	}
	return Result{Level: state.LevelWeak}, nil
}

// execStaticField models sget/sput: both trigger the owning class's
// <clinit> via the same at-most-once ClassCache.Get path as new-instance;
// sput additionally carries its own WEAK side effect for mutating shared
// static state, joined with whatever <clinit> incurred.
func execStaticField(ec EvalContext, f dex.StaticField) (Result, error) {
	cs := ec.Ctx.Classes.Get(f.Field.OwnerClass)
	if f.IsGet {
		ec.Ctx.Method.Assign(f.ValueReg, cs.GetField(f.Field.Name))
		return Result{Level: cs.Level}, nil
	}
	cs.SetField(f.Field.Name, ec.Ctx.Method.Read(f.ValueReg))
	return Result{Level: cs.Level.Join(state.LevelWeak)}, nil
}
