package value

import (
	"testing"

	"github.com/kr/pretty"
)

// requireEqualHeapItem compares two HeapItems field-by-field and, on
// mismatch, prints a pretty.Diff rather than a flat %v dump — HeapItem
// nests an interface-typed Value, where %v hides which field actually
// differs.
func requireEqualHeapItem(t *testing.T, got, want HeapItem) {
	t.Helper()
	if got.DeclaredType != want.DeclaredType || !Equal(got.Value, want.Value) {
		for _, d := range pretty.Diff(got, want) {
			t.Error(d)
		}
		t.FailNow()
	}
}

func TestJoinIdempotentCommutativeAssociative(t *testing.T) {
	a := ConcreteInt(7)
	b := ConcreteInt(7)
	c := ConcreteInt(8)

	if !Equal(Join(a, b), a) {
		t.Fatalf("equal concretes should join to themselves, got %v", Join(a, b))
	}
	if !Equal(Join(a, a), a) {
		t.Fatalf("join is not idempotent: %v", Join(a, a))
	}
	if !Equal(Join(a, c), Join(c, a)) {
		t.Fatalf("join is not commutative: %v vs %v", Join(a, c), Join(c, a))
	}

	left := Join(Join(a, c), Unknown{})
	right := Join(a, Join(c, Unknown{}))
	if !Equal(left, right) {
		t.Fatalf("join is not associative: %v vs %v", left, right)
	}
}

func TestJoinDisagreementCollapsesToUnknown(t *testing.T) {
	got := Join(ConcreteInt(1), ConcreteInt(2))
	if _, ok := got.(Unknown); !ok {
		t.Fatalf("expected Unknown on disagreement, got %v", got)
	}
}

func TestMergeHeapItemSameDeclaredType(t *testing.T) {
	a := NewHeapItem(ConcreteInt(3), "I")
	b := NewHeapItem(ConcreteInt(3), "I")
	merged := MergeHeapItem(a, b)
	requireEqualHeapItem(t, merged, NewHeapItem(ConcreteInt(3), "I"))
}

func TestMergeHeapItemDifferentDeclaredTypeFallsBackToObject(t *testing.T) {
	a := NewHeapItem(ConcreteRef(nil, "Lcom/app/A;"), "Lcom/app/A;")
	b := NewHeapItem(ConcreteRef(nil, "Lcom/app/B;"), "Lcom/app/B;")
	merged := MergeHeapItem(a, b)
	if merged.DeclaredType != "Ljava/lang/Object;" {
		t.Fatalf("expected common supertype fallback, got %s", merged.DeclaredType)
	}
}

func TestHeapItemAccessors(t *testing.T) {
	u := UnknownItem("I")
	if !u.IsUnknown() {
		t.Fatal("expected IsUnknown")
	}
	if u.IsConcrete() || u.IsUninitialized() || u.IsException() {
		t.Fatal("unknown item should not report other kinds")
	}

	c := NewHeapItem(ConcreteInt(5), "I")
	cv, ok := c.AsConcrete()
	if !ok || cv.I32 != 5 {
		t.Fatalf("expected AsConcrete to yield 5, got %v ok=%v", cv, ok)
	}

	ui := NewHeapItem(Uninitialized{ClassName: "Lcom/app/A;"}, "Lcom/app/A;")
	if !ui.IsUninitialized() {
		t.Fatal("expected IsUninitialized")
	}

	ex := NewHeapItem(VirtualException{Kind: "Ljava/lang/ArithmeticException;"}, "Ljava/lang/ArithmeticException;")
	if !ex.IsException() {
		t.Fatal("expected IsException")
	}
}

func TestEqualDistinguishesConcreteKinds(t *testing.T) {
	if Equal(ConcreteInt(1), ConcreteBool(true)) {
		t.Fatal("different PrimKinds must never be Equal even with matching bit patterns")
	}
}
