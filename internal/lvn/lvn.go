// Package lvn implements local value numbering over a single basic block,
// grounded on original_source/lvn/src/main.rs's table algorithm and on
// internal/codegen/optimizer.go's fixed-point rewrite-pass idiom (the
// teacher's LLVM-level constantFolding/commonSubexpressionElimination),
// adapted to this repo's flat label/jump IR.
package lvn

import (
	"github.com/dshills/brilopt/internal/cfg"
	"github.com/dshills/brilopt/internal/ir"
)

// BlockPass transforms one basic block in place, using a fresh Table
// discarded when the block ends.
func BlockPass(block cfg.BasicBlock, opts Options) {
	t := NewTable()
	for i := range block {
		if block[i].IsLabel() {
			continue
		}
		t.processInstruction(block[i].Instr, opts)
	}
}

// processInstruction runs the full LVN pipeline -- classification, commutativity,
// folding, copy propagation and lookup/registration -- against a single
// instruction, mutating it in place.
func (t *Table) processInstruction(instr *ir.Instruction, opts Options) {
	switch instr.Kind {
	case ir.KindEffect:
		t.processEffect(instr)
	case ir.KindConstant:
		t.processConstant(instr)
	case ir.KindValue:
		t.processValue(instr, opts)
	}
}

// processEffect is step 6: rewrite args to canonical form, nothing else.
func (t *Table) processEffect(instr *ir.Instruction) {
	nums := t.argNumbers(instr.Args)
	t.rewriteArgsInPlace(instr.Args, nums)
}

// processConstant handles a Constant instruction: step 1 classification is
// immediate (its own literal is the value expression), then steps 4/5(b)
// via registerOrLookup. Constants have no args, so copy propagation and
// argument rewriting never apply to them.
func (t *Table) processConstant(instr *ir.Instruction) {
	v := constantValue(instr.Value)
	e, hit := t.registerOrLookup(instr.Dest, v)
	if hit {
		rewriteAsID(instr, e.canonicalVar, v.declaredType())
	}
	t.varToNumber[instr.Dest] = e.num
}

// processValue handles a Value instruction through commutativity
// canonicalization, constant folding, copy propagation and the generic
// lookup/miss path, in that order.
func (t *Table) processValue(instr *ir.Instruction, opts Options) {
	op := ir.ValueOp(instr.Op)
	argNums := t.argNumbers(instr.Args)

	// Step 2: commutativity canonicalization.
	if opts.Commutative && ir.IsCommutative(op) && len(argNums) == 2 {
		if argNums[1] < argNums[0] {
			argNums[0], argNums[1] = argNums[1], argNums[0]
		}
	}

	// Step 3: constant folding, short-circuits the rest of the pipeline.
	// A fold always allocates a fresh number and never consults or
	// populates the value->(canonical_var,number) inverse index -- a
	// folded "and t f" becomes a literal "const false" even when an
	// earlier "f:bool = const false" already holds the same value under a
	// different name, rather than aliasing onto it.
	if opts.Fold {
		if folded, ok := t.tryFold(op, argNums); ok {
			dest := instr.Dest
			num := t.allocateFresh(dest, constantValue(folded))
			*instr = ir.Instruction{Kind: ir.KindConstant, Dest: dest, Type: ir.TypeBool, Value: folded}
			t.varToNumber[dest] = num
			return
		}
	}

	// Step 5(a): copy propagation. A hit is impossible for a bare alias
	// expression on its first occurrence, so this check runs before the
	// generic lookup rather than after a miss -- y = id x always takes
	// this branch, never the fresh-value branch, the first time it is
	// seen.
	if opts.CopyPropagate && op == ir.OpId && len(argNums) == 1 {
		n := argNums[0]
		if lit, ok := t.constLiteralAt(n); ok {
			*instr = ir.Instruction{Kind: ir.KindConstant, Dest: instr.Dest, Type: instr.Type, Value: lit}
		} else {
			rewriteAsID(instr, t.canonicalVarOf(n), instr.Type)
		}
		t.varToNumber[instr.Dest] = n
		return
	}

	// Steps 4 and 5(b): generic lookup, or a fresh value with its
	// arguments rewritten to canonical form.
	v := opValue(instr.Op, argNums, instr.Type)
	e, hit := t.registerOrLookup(instr.Dest, v)
	if hit {
		rewriteAsID(instr, e.canonicalVar, v.declaredType())
	} else {
		t.rewriteArgsInPlace(instr.Args, argNums)
	}
	t.varToNumber[instr.Dest] = e.num
}

// rewriteAsID replaces instr in place with `dest = id canonicalVar`,
// preserving dest and using typ as the declared op_type -- corrected
// behavior in place of original_source/lvn/src/main.rs's bug of always
// writing Type::Int.
func rewriteAsID(instr *ir.Instruction, canonicalVar string, typ ir.Type) {
	dest := instr.Dest
	*instr = ir.Instruction{
		Kind: ir.KindValue,
		Op:   string(ir.OpId),
		Dest: dest,
		Type: typ,
		Args: []string{canonicalVar},
	}
}

// Run is the LVN driver: split fn into blocks, run BlockPass on each with a
// fresh table, then splice the blocks back into fn.Instrs in original
// order. It never merges blocks or drops labels.
func Run(fn *ir.Function, opts Options) {
	blocks := cfg.ToBlocks(fn.Instrs)
	for _, b := range blocks {
		BlockPass(b, opts)
	}
	fn.Instrs = cfg.Flatten(blocks)
}
