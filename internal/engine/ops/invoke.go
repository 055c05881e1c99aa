package ops

import (
	"dexsimplify/internal/dex"
	"dexsimplify/internal/engine/state"
	"dexsimplify/internal/value"
)

func requiresReceiver(kind dex.InvokeKind) bool {
	return kind != dex.InvokeStatic
}

// execInvoke is the InvokeOp capability handler: it tries, in order, a
// null-receiver check, a local-method recursive invocation, a reflective
// call into a policy-declared-safe framework method with fully concrete
// arguments, and finally degrades to an Unknown result with a STRONG side
// effect for anything it cannot resolve or safely call.
func execInvoke(ec EvalContext, in dex.Invoke) (Result, error) {
	args := make([]value.HeapItem, len(in.Args))
	for idx, r := range in.Args {
		args[idx] = ec.Ctx.Method.Read(r)
	}

	if requiresReceiver(in.Kind) && len(args) > 0 && isConcreteNull(args[0]) {
		exc := npeException()
		return Result{Exception: &exc}, nil
	}

	retType := in.Method.ReturnType

	if target, ok := ec.Invoker.ResolveLocal(in.Method); ok {
		ret, level, err := ec.Invoker.InvokeLocal(ec.Ctx, target, args)
		if err != nil {
			return Result{}, err
		}
		return Result{Level: level, ReturnValue: returnItem(retType, ret)}, nil
	}

	if ec.Policy.IsSafeMethod(in.Method.Signature()) && allConcrete(args) {
		if ret, ok := ec.Invoker.ReflectSafe(in.Method, args); ok {
			return Result{Level: state.LevelNone, ReturnValue: returnItem(retType, ret)}, nil
		}
	}

	if retType == "V" {
		return Result{Level: state.LevelStrong}, nil
	}
	unk := value.UnknownItem(retType)
	return Result{Level: state.LevelStrong, ReturnValue: &unk}, nil
}

func allConcrete(args []value.HeapItem) bool {
	for _, a := range args {
		if !a.IsConcrete() {
			return false
		}
	}
	return true
}

func returnItem(declaredType string, ret value.HeapItem) *value.HeapItem {
	if declaredType == "V" {
		return nil
	}
	ret.DeclaredType = declaredType
	return &ret
}
