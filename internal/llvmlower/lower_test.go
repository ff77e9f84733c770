package llvmlower

import (
	"testing"

	llvm "github.com/llir/llvm/ir"

	"github.com/dshills/brilopt/internal/ir"
)

func constI(dest string, v int64) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindConstant, Dest: dest, Type: ir.TypeInt, Value: ir.NewIntLiteral(v)})
}

func val(op, dest, typ string, args ...string) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindValue, Op: op, Dest: dest, Type: ir.Type(typ), Args: args})
}

func ret(args ...string) ir.Code {
	return ir.NewInstr(ir.Instruction{Kind: ir.KindEffect, Op: string(ir.EffectReturn), Args: args})
}

func TestLowerStraightLineFunction(t *testing.T) {
	prog := &ir.Program{Functions: []ir.Function{
		{
			Name:    "add_two",
			Returns: ir.TypeInt,
			Instrs: []ir.Code{
				constI("a", 1),
				constI("b", 2),
				val("add", "sum", "int", "a", "b"),
				ret("sum"),
			},
		},
	}}

	m, err := Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if len(m.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(m.Funcs))
	}
	fn := m.Funcs[0]
	if fn.Name() != "add_two" {
		t.Fatalf("unexpected function name %q", fn.Name())
	}
	if len(fn.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(fn.Blocks))
	}
	if fn.Blocks[0].Term == nil {
		t.Fatalf("block has no terminator")
	}
}

func TestLowerBranchingFunction(t *testing.T) {
	prog := &ir.Program{Functions: []ir.Function{
		{
			Name:    "choose",
			Returns: ir.TypeInt,
			Instrs: []ir.Code{
				ir.NewInstr(ir.Instruction{Kind: ir.KindConstant, Dest: "c", Type: ir.TypeBool, Value: ir.NewBoolLiteral(true)}),
				ir.NewInstr(ir.Instruction{Kind: ir.KindEffect, Op: string(ir.EffectBranch), Args: []string{"c"}, Labels: []string{"then", "else"}}),
				ir.NewLabel("then"),
				constI("x", 1),
				ret("x"),
				ir.NewLabel("else"),
				constI("x", 2),
				ret("x"),
			},
		},
	}}

	m, err := Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	fn := m.Funcs[0]
	if len(fn.Blocks) != 3 {
		t.Fatalf("expected 3 blocks (entry, then, else), got %d", len(fn.Blocks))
	}
	for _, b := range fn.Blocks {
		if b.Term == nil {
			t.Fatalf("block %v missing terminator", b)
		}
	}
}

func TestOptimizeFoldsConstantAdd(t *testing.T) {
	prog := &ir.Program{Functions: []ir.Function{
		{
			Name:    "folds",
			Returns: ir.TypeInt,
			Instrs: []ir.Code{
				constI("a", 1),
				constI("b", 2),
				val("add", "sum", "int", "a", "b"),
				ret("sum"),
			},
		},
	}}

	m, err := Lower(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	Optimize(m)

	fn := m.Funcs[0]
	var addCount int
	for _, b := range fn.Blocks {
		for _, inst := range b.Insts {
			if _, ok := inst.(*llvm.InstAdd); ok {
				addCount++
			}
		}
	}
	if addCount != 0 {
		t.Fatalf("expected constant add to be folded away, found %d add instructions", addCount)
	}
}
