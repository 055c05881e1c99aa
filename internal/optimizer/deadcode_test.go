package optimizer

import (
	"testing"

	"dexsimplify/internal/dex"
)

func TestDeadAssignmentEliminatorRemovesUnreadWrite(t *testing.T) {
	method := &dex.Method{
		OwnerClass:   "Lcom/app/A;",
		Name:         "m",
		ReturnType:   "V",
		NumRegisters: 2,
		Instructions: []dex.Instruction{
			dex.Const{Dest: 0, Literal: dex.ConstLiteral{Type: "I", I32: 1}}, // reg0 never read again
			dex.Const{Dest: 1, Literal: dex.ConstLiteral{Type: "I", I32: 2}},
			dex.ReturnOp{},
		},
	}
	graph, err := buildGraph(method)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &DeadAssignmentEliminator{}
	n := p.Apply(method, graph)
	if n != 2 {
		t.Fatalf("expected both dead consts eliminated, got %d", n)
	}
	if _, ok := method.Instructions[0].(dex.Nop); !ok {
		t.Fatalf("expected instruction 0 to become Nop, got %#v", method.Instructions[0])
	}
	if _, ok := method.Instructions[1].(dex.Nop); !ok {
		t.Fatalf("expected instruction 1 to become Nop, got %#v", method.Instructions[1])
	}
}

func TestDeadAssignmentEliminatorKeepsLiveWrite(t *testing.T) {
	method := &dex.Method{
		OwnerClass:   "Lcom/app/A;",
		Name:         "m",
		ReturnType:   "I",
		NumRegisters: 1,
		Instructions: []dex.Instruction{
			dex.Const{Dest: 0, Literal: dex.ConstLiteral{Type: "I", I32: 1}},
			dex.ReturnOp{HasValue: true, Src: 0},
		},
	}
	graph, err := buildGraph(method)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &DeadAssignmentEliminator{}
	n := p.Apply(method, graph)
	if n != 0 {
		t.Fatalf("expected the live write to survive, got %d eliminated", n)
	}
}

func TestDeadAssignmentEliminatorNeverTouchesNewInstance(t *testing.T) {
	method := &dex.Method{
		OwnerClass:   "Lcom/app/A;",
		Name:         "m",
		ReturnType:   "V",
		NumRegisters: 1,
		Instructions: []dex.Instruction{
			dex.NewInstance{Dest: 0, ClassName: "Lcom/app/B;"},
			dex.ReturnOp{},
		},
	}
	graph, err := buildGraph(method)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &DeadAssignmentEliminator{}
	n := p.Apply(method, graph)
	if n != 0 {
		t.Fatalf("expected new-instance to never be elided even though its register is dead, got %d", n)
	}
	if _, ok := method.Instructions[0].(dex.NewInstance); !ok {
		t.Fatalf("expected new-instance to survive untouched, got %#v", method.Instructions[0])
	}
}

func TestDeadAssignmentEliminatorKeepsWriteThatRaisesException(t *testing.T) {
	method := &dex.Method{
		OwnerClass:   "Lcom/app/A;",
		Name:         "m",
		ReturnType:   "V",
		NumRegisters: 2,
		Instructions: []dex.Instruction{
			dex.Const{Dest: 0, Literal: dex.ConstLiteral{Type: "I", I32: 10}},
			dex.Const{Dest: 1, Literal: dex.ConstLiteral{Type: "I", I32: 0}},
			// dest (reg0) is never read afterward, but this node raises
			// ArithmeticException — eliding it to a Nop would silently
			// suppress the exception path, not just a dead write.
			dex.BinaryArith{Op: dex.Div, Type: dex.TInt, Dest: 0, Left: 0, Right: 1},
			dex.ReturnOp{},
		},
	}
	graph, err := buildGraph(method)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &DeadAssignmentEliminator{}
	p.Apply(method, graph)
	if _, ok := method.Instructions[2].(dex.Nop); ok {
		t.Fatal("expected the exception-raising write to stay live despite its dead register")
	}
}
