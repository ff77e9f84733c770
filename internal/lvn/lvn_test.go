package lvn

import (
	"testing"

	"github.com/dshills/brilopt/internal/ir"
)

func constI(dest string, v int64) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindConstant, Dest: dest, Type: ir.TypeInt, Value: ir.NewIntLiteral(v)})
}

func constB(dest string, v bool) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindConstant, Dest: dest, Type: ir.TypeBool, Value: ir.NewBoolLiteral(v)})
}

func val(op, dest, typ string, args ...string) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindValue, Op: op, Dest: dest, Type: ir.Type(typ), Args: args})
}

func eff(op string, args ...string) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindEffect, Op: op, Args: args})
}

func instrOf(c ir.Code) *ir.Instruction { return c.Instr }

func TestE1RedundantAdd(t *testing.T) {
	block := []ir.Code{
		constI("a", 4),
		constI("b", 2),
		val("add", "sum1", "int", "a", "b"),
		val("add", "sum2", "int", "a", "b"),
		eff("print", "sum2"),
	}
	BlockPass(block, Options{Fold: true, CopyPropagate: true, Commutative: true})

	sum2 := instrOf(block[3])
	if sum2.Op != string(ir.OpId) || len(sum2.Args) != 1 || sum2.Args[0] != "sum1" {
		t.Fatalf("expected sum2 = id sum1, got %+v", sum2)
	}
}

func TestE2Commutativity(t *testing.T) {
	block := []ir.Code{
		constI("x", 1),
		constI("y", 2),
		val("add", "p", "int", "x", "y"),
		val("add", "q", "int", "y", "x"),
		eff("print", "q"),
	}
	BlockPass(block, Options{Commutative: true})

	q := instrOf(block[3])
	if q.Op != string(ir.OpId) || q.Args[0] != "p" {
		t.Fatalf("expected q = id p under -c, got %+v", q)
	}
}

func TestE2NoCommutativityMisses(t *testing.T) {
	block := []ir.Code{
		constI("x", 1),
		constI("y", 2),
		val("add", "p", "int", "x", "y"),
		val("add", "q", "int", "y", "x"),
	}
	BlockPass(block, Options{})

	q := instrOf(block[3])
	if q.Op != "add" {
		t.Fatalf("without -c, add y x must not collapse onto add x y, got %+v", q)
	}
}

func TestE3CopyPropagationThroughConstant(t *testing.T) {
	block := []ir.Code{
		constI("a", 7),
		val(string(ir.OpId), "b", "int", "a"),
		val(string(ir.OpId), "c", "int", "b"),
		eff("print", "c"),
	}
	BlockPass(block, Options{CopyPropagate: true})

	b := instrOf(block[1])
	c := instrOf(block[2])
	if b.Kind != ir.KindConstant || !b.Value.Equal(ir.NewIntLiteral(7)) {
		t.Fatalf("expected b = const 7, got %+v", b)
	}
	if c.Kind != ir.KindConstant || !c.Value.Equal(ir.NewIntLiteral(7)) {
		t.Fatalf("expected c = const 7, got %+v", c)
	}
}

func TestE4AndFolding(t *testing.T) {
	block := []ir.Code{
		constB("t", true),
		constB("f", false),
		val(string(ir.OpAnd), "r", "bool", "t", "f"),
		eff("print", "r"),
	}
	BlockPass(block, Options{Fold: true, CopyPropagate: true, Commutative: true})

	r := instrOf(block[2])
	if r.Kind != ir.KindConstant || !r.Value.Equal(ir.NewBoolLiteral(false)) {
		t.Fatalf("expected r = const false, got %+v", r)
	}
}

func TestE5NotFolding(t *testing.T) {
	block := []ir.Code{
		constB("t", true),
		val(string(ir.OpNot), "r", "bool", "t"),
		eff("print", "r"),
	}
	BlockPass(block, Options{Fold: true, CopyPropagate: true, Commutative: true})

	r := instrOf(block[1])
	if r.Kind != ir.KindConstant || !r.Value.Equal(ir.NewBoolLiteral(false)) {
		t.Fatalf("expected r = const false, got %+v", r)
	}
}

func TestExternalArgumentSelfRegisters(t *testing.T) {
	// "x" is defined outside this block; the block must not panic and
	// must canonicalize subsequent uses of it to themselves.
	block := []ir.Code{
		val("add", "y", "int", "x", "x"),
		eff("print", "y"),
	}
	BlockPass(block, Options{})

	y := instrOf(block[0])
	if y.Args[0] != "x" || y.Args[1] != "x" {
		t.Fatalf("expected external args to remain 'x', got %+v", y.Args)
	}
}

func TestRunSplicesBlocksBackInOrder(t *testing.T) {
	fn := &ir.Function{
		Name: "main",
		Instrs: []ir.Code{
			constI("a", 1),
			eff("jmp", "loop"),
			ir.NewLabel("loop"),
			val("add", "b", "int", "a", "a"),
			eff("ret"),
		},
	}
	Run(fn, Options{})

	if len(fn.Instrs) != 5 {
		t.Fatalf("Run must preserve instruction count, got %d", len(fn.Instrs))
	}
	if !fn.Instrs[2].IsLabel() || fn.Instrs[2].Label != "loop" {
		t.Fatalf("expected label 'loop' preserved in place, got %+v", fn.Instrs[2])
	}
	if !fn.Instrs[4].Instr.IsTerminator() {
		t.Fatalf("expected terminator preserved at end, got %+v", fn.Instrs[4])
	}
}

func TestIdempotence(t *testing.T) {
	original := []ir.Code{
		constI("a", 4),
		constI("b", 2),
		val("add", "sum1", "int", "a", "b"),
		val("add", "sum2", "int", "a", "b"),
		eff("print", "sum2"),
	}
	opts := Options{Fold: true, CopyPropagate: true, Commutative: true}
	BlockPass(original, opts)

	again := make([]ir.Code, len(original))
	for i, c := range original {
		if c.IsLabel() {
			again[i] = c
			continue
		}
		again[i] = ir.NewInstr(*ir.CloneInstr(c.Instr))
	}
	BlockPass(again, opts)

	for i := range original {
		a, b := original[i].Instr, again[i].Instr
		if a.Kind != b.Kind || a.Op != b.Op || a.Dest != b.Dest || len(a.Args) != len(b.Args) {
			t.Fatalf("second LVN pass changed instruction %d: %+v vs %+v", i, a, b)
		}
		for j := range a.Args {
			if a.Args[j] != b.Args[j] {
				t.Fatalf("second LVN pass changed args of instruction %d: %+v vs %+v", i, a, b)
			}
		}
	}
}
