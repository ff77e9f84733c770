package lvn

import "github.com/dshills/brilopt/internal/ir"

// entry is the payload of the value->(canonical_var, number) inverse
// index: the first destination variable that produced a given value
// number, paired with the number itself.
type entry struct {
	canonicalVar string
	num          int
}

// Table is the per-block LVN state: four mutually consistent indices,
// built fresh for one basic block and discarded at block end.
type Table struct {
	// numberToValue is sparse: externally-numbered variables (defined
	// outside the block) get a number and a canonical-var slot but no
	// known value expression, so they are absent here rather than mapped
	// to a zero value -- that keeps constant-folding lookups correctly
	// reporting "unknown" for them instead of "known zero/empty".
	numberToValue map[int]valueExpr

	// numberToCanonicalVar is dense: index n holds the canonical variable
	// for value number n, for n in [0, nextNumber).
	numberToCanonicalVar []string

	valueToEntry map[valueExpr]entry
	varToNumber  map[string]int
}

// NewTable returns an empty table, ready to process a single basic block.
func NewTable() *Table {
	return &Table{
		numberToValue: make(map[int]valueExpr),
		valueToEntry:  make(map[valueExpr]entry),
		varToNumber:   make(map[string]int),
	}
}

func (t *Table) nextNumber() int {
	return len(t.numberToCanonicalVar)
}

// canonicalVarOf returns the canonical variable chosen for value number n.
// It is never updated once set, even when later instructions alias n
// under a different name (copy propagation does not rename).
func (t *Table) canonicalVarOf(n int) string {
	return t.numberToCanonicalVar[n]
}

// numberOf returns the current value number for name, registering it as a
// fresh externally-defined number (one with no known value expression) on
// first sight. This is how an argument defined outside the block, or
// earlier in a prior block entirely, gets a number at all.
func (t *Table) numberOf(name string) int {
	if n, ok := t.varToNumber[name]; ok {
		return n
	}
	n := t.nextNumber()
	t.numberToCanonicalVar = append(t.numberToCanonicalVar, name)
	t.varToNumber[name] = n
	return n
}

// argNumbers resolves every argument name to its current value number,
// self-registering any external name encountered for the first time.
func (t *Table) argNumbers(args []string) []int {
	nums := make([]int, len(args))
	for i, a := range args {
		nums[i] = t.numberOf(a)
	}
	return nums
}

// constLiteralAt reports the constant literal known to be stored at value
// number n, if any.
func (t *Table) constLiteralAt(n int) (ir.Literal, bool) {
	v, ok := t.numberToValue[n]
	if !ok {
		return ir.Literal{}, false
	}
	return v.asConstantLiteral()
}

func (t *Table) constBoolAt(n int) (bool, bool) {
	lit, ok := t.constLiteralAt(n)
	if !ok || lit.Kind != ir.LiteralBool {
		return false, false
	}
	return lit.Bool, true
}

// allocateFresh allocates a fresh value number for dest/v without
// consulting or updating the value->(canonical_var,number) inverse index
// -- used by constant folding, which never looks up or registers into that
// index (see lvn.go's processValue).
func (t *Table) allocateFresh(dest string, v valueExpr) int {
	num := t.nextNumber()
	t.numberToCanonicalVar = append(t.numberToCanonicalVar, dest)
	t.numberToValue[num] = v
	return num
}

// registerOrLookup is the generic lookup-or-allocate step: if v has
// already been computed under some canonical variable, return that entry
// unchanged (a hit). Otherwise allocate a fresh number for v, recording
// dest as its canonical variable (a miss).
func (t *Table) registerOrLookup(dest string, v valueExpr) (e entry, hit bool) {
	if e, ok := t.valueToEntry[v]; ok {
		return e, true
	}
	num := t.nextNumber()
	t.numberToCanonicalVar = append(t.numberToCanonicalVar, dest)
	t.numberToValue[num] = v
	e = entry{canonicalVar: dest, num: num}
	t.valueToEntry[v] = e
	return e, false
}

// rewriteArgsInPlace replaces args with the canonical variable currently
// associated with each one's value number. Used for the Effect path and
// for a freshly-numbered Value instruction.
func (t *Table) rewriteArgsInPlace(args []string, nums []int) {
	for i, n := range nums {
		args[i] = t.canonicalVarOf(n)
	}
}

// tryFold evaluates And/Or/Not over known-constant Bool operands,
// returning the folded literal if every required operand is a constant
// Bool. Arithmetic folding (Add/Mul/Eq) is deliberately not attempted.
func (t *Table) tryFold(op ir.ValueOp, argNums []int) (ir.Literal, bool) {
	switch op {
	case ir.OpAnd:
		if len(argNums) != 2 {
			return ir.Literal{}, false
		}
		a, aok := t.constBoolAt(argNums[0])
		b, bok := t.constBoolAt(argNums[1])
		if !aok || !bok {
			return ir.Literal{}, false
		}
		return ir.NewBoolLiteral(a && b), true
	case ir.OpOr:
		if len(argNums) != 2 {
			return ir.Literal{}, false
		}
		a, aok := t.constBoolAt(argNums[0])
		b, bok := t.constBoolAt(argNums[1])
		if !aok || !bok {
			return ir.Literal{}, false
		}
		return ir.NewBoolLiteral(a || b), true
	case ir.OpNot:
		if len(argNums) != 1 {
			return ir.Literal{}, false
		}
		a, aok := t.constBoolAt(argNums[0])
		if !aok {
			return ir.Literal{}, false
		}
		return ir.NewBoolLiteral(!a), true
	default:
		return ir.Literal{}, false
	}
}

func (v valueExpr) declaredType() ir.Type {
	if v.isConstant {
		switch v.lit.kind {
		case ir.LiteralInt:
			return ir.TypeInt
		case ir.LiteralBool:
			return ir.TypeBool
		case ir.LiteralFloat:
			return ir.TypeFloat
		case ir.LiteralChar:
			return ir.TypeChar
		default:
			return ""
		}
	}
	return v.typ
}
