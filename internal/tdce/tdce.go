// Package tdce implements trivial dead code elimination, grounded on
// original_source/src/tdce.rs and on internal/codegen/optimizer.go's
// deadCodeElimination fixed-point loop.
package tdce

import "github.com/dshills/brilopt/internal/ir"

// Run removes pure defining instructions (Constant, Value) whose
// destination is never read anywhere in fn, iterating to a fixed point.
// TDCE owns no persistent state across functions or calls.
func Run(fn *ir.Function) {
	for {
		next, changed := onePass(fn.Instrs)
		fn.Instrs = next
		if !changed {
			return
		}
	}
}

// onePass performs one scan-and-filter round, reporting whether it
// removed anything (i.e. whether the pass has not yet converged).
func onePass(instrs []ir.Code) ([]ir.Code, bool) {
	used := make(map[string]bool)
	for _, code := range instrs {
		if code.IsLabel() {
			continue
		}
		if code.Instr.Kind == ir.KindValue || code.Instr.Kind == ir.KindEffect {
			for _, a := range code.Instr.Args {
				used[a] = true
			}
		}
	}

	kept := make([]ir.Code, 0, len(instrs))
	for _, code := range instrs {
		if code.IsLabel() {
			kept = append(kept, code)
			continue
		}
		if code.Instr.Kind == ir.KindConstant || code.Instr.Kind == ir.KindValue {
			if !used[code.Instr.Dest] {
				continue
			}
		}
		kept = append(kept, code)
	}

	return kept, len(kept) != len(instrs)
}
