package ir

import (
	"bytes"
	"math"
	"testing"
)

func TestLiteralEqualFloatBitPattern(t *testing.T) {
	nan1 := math.Float64frombits(0x7ff8000000000001)
	nan2 := math.Float64frombits(0x7ff8000000000002)

	if NewFloatLiteral(nan1).Equal(NewFloatLiteral(nan2)) {
		t.Fatalf("distinct NaN bit patterns must not compare equal")
	}
	if !NewFloatLiteral(nan1).Equal(NewFloatLiteral(nan1)) {
		t.Fatalf("identical NaN bit pattern must compare equal to itself")
	}
	if NewFloatLiteral(0.0).Equal(NewFloatLiteral(math.Copysign(0, -1))) {
		t.Fatalf("+0.0 and -0.0 must not compare equal under bit-pattern equality")
	}
}

func TestCodeJSONRoundTrip(t *testing.T) {
	prog := &Program{
		Functions: []Function{
			{
				Name: "main",
				Instrs: []Code{
					NewLabel("entry"),
					NewInstr(Instruction{Kind: KindConstant, Dest: "a", Type: TypeInt, Value: NewIntLiteral(4)}),
					NewInstr(Instruction{Kind: KindValue, Op: string(OpAdd), Dest: "b", Type: TypeInt, Args: []string{"a", "a"}}),
					NewInstr(Instruction{Kind: KindEffect, Op: string(EffectPrint), Args: []string{"b"}}),
					NewInstr(Instruction{Kind: KindEffect, Op: string(EffectReturn)}),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := Store(&buf, prog); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Functions) != 1 || len(got.Functions[0].Instrs) != 5 {
		t.Fatalf("round trip shape mismatch: %+v", got)
	}
	fn := got.Functions[0]
	if !fn.Instrs[0].IsLabel() || fn.Instrs[0].Label != "entry" {
		t.Fatalf("expected label 'entry', got %+v", fn.Instrs[0])
	}
	c := fn.Instrs[1].Instr
	if c.Kind != KindConstant || !c.Value.Equal(NewIntLiteral(4)) {
		t.Fatalf("expected const 4, got %+v", c)
	}
	add := fn.Instrs[2].Instr
	if add.Kind != KindValue || add.Op != string(OpAdd) || len(add.Args) != 2 {
		t.Fatalf("expected add value instr, got %+v", add)
	}
	effect := fn.Instrs[3].Instr
	if effect.Kind != KindEffect || effect.Op != string(EffectPrint) {
		t.Fatalf("expected print effect, got %+v", effect)
	}
}
