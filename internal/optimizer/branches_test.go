package optimizer

import (
	"testing"

	"dexsimplify/internal/dex"
)

func TestUnreachableBranchRemoverBakesInUnanimousEdge(t *testing.T) {
	method := &dex.Method{
		OwnerClass:   "Lcom/app/A;",
		Name:         "m",
		ReturnType:   "V",
		NumRegisters: 1,
		Instructions: []dex.Instruction{
			dex.Const{Dest: 0, Literal: dex.ConstLiteral{Type: "I", I32: 0}},
			dex.IfTestZ{Op: dex.CmpEQ, Reg: 0, Offset: 2}, // always taken (reg0 concretely 0)
			dex.ReturnOp{},                                // unreached dead branch
			dex.ReturnOp{},                                // taken target
		},
	}
	graph, err := buildGraph(method)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &UnreachableBranchRemover{}
	n := p.Apply(method, graph)
	if n != 1 {
		t.Fatalf("expected one branch baked into a goto, got %d", n)
	}
	g, ok := method.Instructions[1].(dex.Goto)
	if !ok {
		t.Fatalf("expected instruction 1 to become a Goto, got %#v", method.Instructions[1])
	}
	if g.Offset != 2 {
		t.Fatalf("expected goto offset 2 (to the always-taken target), got %d", g.Offset)
	}
}

func TestUnreachableBranchRemoverLeavesGenuineBranch(t *testing.T) {
	method := &dex.Method{
		OwnerClass:   "Lcom/app/A;",
		Name:         "m",
		ReturnType:   "V",
		NumRegisters: 1,
		NumParams:    1,
		IsStatic:     true,
		ParamTypes:   []string{"I"},
		Instructions: []dex.Instruction{
			dex.IfTestZ{Op: dex.CmpEQ, Reg: 0, Offset: 2}, // reg0 is an Unknown param: genuinely undecidable
			dex.ReturnOp{},
			dex.ReturnOp{},
		},
	}
	graph, err := buildGraph(method)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &UnreachableBranchRemover{}
	n := p.Apply(method, graph)
	if n != 0 {
		t.Fatalf("expected a genuinely undecidable branch left alone, got %d rewrites", n)
	}
	if _, ok := method.Instructions[0].(dex.IfTestZ); !ok {
		t.Fatalf("expected instruction 0 to remain an IfTestZ, got %#v", method.Instructions[0])
	}
}
