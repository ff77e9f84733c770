package lvn

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/brilopt/internal/ir"
)

// litKey is a comparable encoding of an ir.Literal suitable for use as (or
// inside) a map key. Floats are keyed by raw bit pattern rather than by
// ir.Literal's own float64 field, since Go's built-in == on float64 treats
// NaN as unequal to itself and +0.0 as equal to -0.0 -- the opposite of a
// lawful, truly-identical-only fold.
type litKey struct {
	kind  ir.LiteralKind
	i     int64
	b     bool
	fbits uint64
	c     rune
}

func keyOfLiteral(l ir.Literal) litKey {
	return litKey{kind: l.Kind, i: l.Int, b: l.Bool, fbits: math.Float64bits(l.Float), c: l.Char}
}

// valueExpr is the canonical, hashable representation of "what an
// instruction computes": constants by literal bit pattern alone;
// operations by opcode, argument *numbers* (not names, and in
// commutativity-normalized order when enabled) and declared result type.
type valueExpr struct {
	isConstant bool
	lit        litKey

	op      string
	argsKey string
	typ     ir.Type
}

func constantValue(l ir.Literal) valueExpr {
	return valueExpr{isConstant: true, lit: keyOfLiteral(l)}
}

func opValue(op string, argNums []int, typ ir.Type) valueExpr {
	return valueExpr{op: op, argsKey: encodeArgs(argNums), typ: typ}
}

func encodeArgs(nums []int) string {
	var b strings.Builder
	for i, n := range nums {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	return b.String()
}

// asConstantLiteral reports whether v denotes a constant and, if so,
// returns a Literal carrying the same kind/payload as the one originally
// folded into it. Used by constant folding and by copy-propagation through
// a constant to read back an operand's known value.
func (v valueExpr) asConstantLiteral() (ir.Literal, bool) {
	if !v.isConstant {
		return ir.Literal{}, false
	}
	switch v.lit.kind {
	case ir.LiteralInt:
		return ir.NewIntLiteral(v.lit.i), true
	case ir.LiteralBool:
		return ir.NewBoolLiteral(v.lit.b), true
	case ir.LiteralFloat:
		return ir.Literal{Kind: ir.LiteralFloat, Float: math.Float64frombits(v.lit.fbits)}, true
	case ir.LiteralChar:
		return ir.NewCharLiteral(v.lit.c), true
	default:
		return ir.Literal{}, false
	}
}
