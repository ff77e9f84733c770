// Package cfg partitions a Function's flat instruction stream into basic
// blocks, grounded on the original cs6120 lvn tool's instructions_to_blocks
// (original_source/src/cfg.rs).
package cfg

import "github.com/dshills/brilopt/internal/ir"

// BasicBlock is an ordered run of Code items: at most one Label at
// position 0, followed by Instructions, ending at a terminator or just
// before the next label.
type BasicBlock []ir.Code

// ToBlocks partitions instrs into an ordered list of non-empty basic
// blocks. A block begins at program start, immediately after a
// terminator, or at a label; it ends at a terminator or just before the
// next label.
func ToBlocks(instrs []ir.Code) []BasicBlock {
	var blocks []BasicBlock
	current := BasicBlock{}

	for _, code := range instrs {
		if code.IsLabel() {
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = BasicBlock{code}
			continue
		}

		current = append(current, code)
		if code.Instr.IsTerminator() {
			blocks = append(blocks, current)
			current = BasicBlock{}
		}
	}

	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}

// Flatten concatenates blocks back into a single Code stream, in order.
func Flatten(blocks []BasicBlock) []ir.Code {
	var total int
	for _, b := range blocks {
		total += len(b)
	}
	out := make([]ir.Code, 0, total)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// NamesByBlock assigns every block a name: its own leading label if it has
// one, or else a freshly synthesized "b<n>" name, scanning forward so a
// synthesized name never collides with a label seen later in the
// function. Mirrors the original's map_blocks_by_name, kept separate from
// it (rather than discarding the label) since internal/llvmlower needs a
// name for every LLVM basic block, labeled or not.
func NamesByBlock(blocks []BasicBlock) []string {
	names := make([]string, len(blocks))
	labels := make(map[string]bool)
	for _, b := range blocks {
		if len(b) > 0 && b[0].IsLabel() {
			labels[b[0].Label] = true
		}
	}
	next := 1
	for i, b := range blocks {
		if len(b) > 0 && b[0].IsLabel() {
			names[i] = b[0].Label
			continue
		}
		name := syntheticName(next)
		next++
		for labels[name] {
			name = syntheticName(next)
			next++
		}
		names[i] = name
	}
	return names
}

func syntheticName(n int) string {
	const digits = "0123456789"
	if n < 10 {
		return "b" + string(digits[n])
	}
	// Fall back to a decimal expansion for larger n; blocks rarely exceed
	// single digits in practice but this keeps names unique regardless.
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "b" + string(buf)
}
