package validator

import (
	"testing"

	"github.com/dshills/brilopt/internal/ir"
)

func TestValidateProgramAcceptsWellFormed(t *testing.T) {
	p := &ir.Program{Functions: []ir.Function{
		{
			Name: "main",
			Instrs: []ir.Code{
				ir.NewInstr(ir.Instruction{Kind: ir.KindConstant, Dest: "a", Type: ir.TypeInt, Value: ir.NewIntLiteral(1)}),
				ir.NewInstr(ir.Instruction{Kind: ir.KindEffect, Op: "ret"}),
			},
		},
	}}

	if err := New().ValidateProgram(p); err != nil {
		t.Fatalf("expected well-formed program to validate, got %v", err)
	}
}

func TestValidateProgramRejectsDuplicateFunctionNames(t *testing.T) {
	fn := ir.Function{Name: "main", Instrs: []ir.Code{ir.NewInstr(ir.Instruction{Kind: ir.KindEffect, Op: "ret"})}}
	p := &ir.Program{Functions: []ir.Function{fn, fn}}

	if err := New().ValidateProgram(p); err == nil {
		t.Fatalf("expected duplicate function name to be rejected")
	}
}

func TestValidateProgramRejectsMissingDest(t *testing.T) {
	p := &ir.Program{Functions: []ir.Function{
		{
			Name: "main",
			Instrs: []ir.Code{
				ir.NewInstr(ir.Instruction{Kind: ir.KindValue, Op: "add", Args: []string{"a", "b"}}),
			},
		},
	}}

	if err := New().ValidateProgram(p); err == nil {
		t.Fatalf("expected value instruction without dest to be rejected")
	}
}
