// Package llvmlower lowers an optimized Function into github.com/llir/llvm
// IR, grounded on internal/codegen/llvm.go's module/function/block
// construction idiom. Unlike that generator, which walks a nested ALaS
// statement tree, this one walks a flat label/jump instruction stream, so
// basic blocks are built directly from internal/cfg rather than recreated
// per control-flow statement.
package llvmlower

import (
	"fmt"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	llvmvalue "github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/dshills/brilopt/internal/cfg"
	"github.com/dshills/brilopt/internal/ir"
)

// Lower builds an *llvm.Module containing one LLVM function per Function in
// prog. Each IR function becomes its own LLVM func; there is no cross-
// function inlining or linking step -- interprocedural analysis is out of
// scope, and this lowerer does not add any of its own.
func Lower(prog *ir.Program) (*llvm.Module, error) {
	m := llvm.NewModule()
	for i := range prog.Functions {
		if _, err := lowerFunction(m, &prog.Functions[i]); err != nil {
			return nil, errors.Wrapf(err, "lower function %s", prog.Functions[i].Name)
		}
	}
	return m, nil
}

// funcBuilder holds the per-function state needed while lowering a single
// Function: its LLVM func, the LLVM block for each source block name, and
// the SSA value currently bound to each IR variable.
type funcBuilder struct {
	module *llvm.Module
	fn     *llvm.Func
	blocks map[string]*llvm.Block
	vars   map[string]llvmvalue.Value
}

func lowerFunction(m *llvm.Module, fn *ir.Function) (*llvm.Func, error) {
	retType, err := convertType(fn.Returns)
	if err != nil {
		return nil, errors.Wrap(err, "return type")
	}

	var params []*llvm.Param
	for _, p := range fn.Params {
		pt, err := convertType(p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", p.Name)
		}
		params = append(params, llvm.NewParam(p.Name, pt))
	}

	llvmFn := m.NewFunc(fn.Name, retType, params...)

	blocks := cfg.ToBlocks(fn.Instrs)
	names := cfg.NamesByBlock(blocks)

	b := &funcBuilder{
		module: m,
		fn:     llvmFn,
		blocks: make(map[string]*llvm.Block, len(blocks)),
		vars:   make(map[string]llvmvalue.Value),
	}
	for _, name := range names {
		b.blocks[name] = llvmFn.NewBlock(name)
	}
	for i, p := range fn.Params {
		b.vars[p.Name] = llvmFn.Params[i]
	}

	for i, block := range blocks {
		cur := b.blocks[names[i]]
		var next *llvm.Block
		if i+1 < len(blocks) {
			next = b.blocks[names[i+1]]
		}
		if err := b.lowerBlock(cur, block, retType, next); err != nil {
			return nil, errors.Wrapf(err, "block %s", names[i])
		}
	}
	return llvmFn, nil
}

// lowerBlock emits every non-label instruction of block into cur. If the
// block has no terminator it falls through: it branches to next, the block
// that follows it, or, when it is the last block of the function (next is
// nil), it is given an implicit return of the type's zero value, mirroring
// internal/codegen/llvm.go's generateFunction fallback.
func (b *funcBuilder) lowerBlock(cur *llvm.Block, block cfg.BasicBlock, retType types.Type, next *llvm.Block) error {
	terminated := false
	for _, code := range block {
		if code.IsLabel() {
			continue
		}
		instr := code.Instr
		if instr.Kind == ir.KindEffect && instr.IsTerminator() {
			if err := b.lowerTerminator(cur, instr); err != nil {
				return err
			}
			terminated = true
			continue
		}
		if err := b.lowerInstruction(cur, instr); err != nil {
			return err
		}
	}
	if !terminated {
		if next != nil {
			cur.NewBr(next)
		} else {
			cur.NewRet(zeroValue(retType))
		}
	}
	return nil
}

func (b *funcBuilder) lowerInstruction(cur *llvm.Block, instr *ir.Instruction) error {
	switch instr.Kind {
	case ir.KindConstant:
		b.vars[instr.Dest] = literalConstant(instr.Value)
		return nil
	case ir.KindValue:
		v, err := b.lowerValue(cur, instr)
		if err != nil {
			return err
		}
		b.vars[instr.Dest] = v
		return nil
	case ir.KindEffect:
		return b.lowerEffect(cur, instr)
	default:
		return fmt.Errorf("unknown instruction kind")
	}
}

func (b *funcBuilder) lowerValue(cur *llvm.Block, instr *ir.Instruction) (llvmvalue.Value, error) {
	args := make([]llvmvalue.Value, len(instr.Args))
	for i, name := range instr.Args {
		v, ok := b.vars[name]
		if !ok {
			return nil, fmt.Errorf("use of unbound variable %q", name)
		}
		args[i] = v
	}

	switch ir.ValueOp(instr.Op) {
	case ir.OpId:
		return args[0], nil
	case ir.OpAdd:
		if instr.Type == ir.TypeFloat {
			return cur.NewFAdd(args[0], args[1]), nil
		}
		return cur.NewAdd(args[0], args[1]), nil
	case ir.OpMul:
		if instr.Type == ir.TypeFloat {
			return cur.NewFMul(args[0], args[1]), nil
		}
		return cur.NewMul(args[0], args[1]), nil
	case ir.OpEq:
		if instr.Type == ir.TypeFloat {
			return cur.NewFCmp(enum.FPredOEQ, args[0], args[1]), nil
		}
		return cur.NewICmp(enum.IPredEQ, args[0], args[1]), nil
	case ir.OpAnd:
		return cur.NewAnd(args[0], args[1]), nil
	case ir.OpOr:
		return cur.NewOr(args[0], args[1]), nil
	case ir.OpNot:
		one := constant.NewInt(types.I1, 1)
		return cur.NewXor(args[0], one), nil
	default:
		return nil, fmt.Errorf("unsupported value op %q", instr.Op)
	}
}

// lowerEffect handles non-terminator effects. None of them (print, call,
// store, and the speculative-execution markers) have an LLVM-native
// lowering or a declared external runtime in this domain stack --
// codegen semantics for I/O and memory are out of scope here -- so they
// are dropped rather than given an invented ABI.
func (b *funcBuilder) lowerEffect(cur *llvm.Block, instr *ir.Instruction) error {
	return nil
}

// lowerTerminator emits cur's single terminating instruction.
func (b *funcBuilder) lowerTerminator(cur *llvm.Block, instr *ir.Instruction) error {
	switch ir.EffectOp(instr.Op) {
	case ir.EffectJump:
		target, ok := b.blocks[instr.Labels[0]]
		if !ok {
			return fmt.Errorf("jump to unknown block %q", instr.Labels[0])
		}
		cur.NewBr(target)
		return nil
	case ir.EffectBranch:
		cond, ok := b.vars[instr.Args[0]]
		if !ok {
			return fmt.Errorf("branch on unbound variable %q", instr.Args[0])
		}
		thenBlock, ok := b.blocks[instr.Labels[0]]
		if !ok {
			return fmt.Errorf("branch to unknown block %q", instr.Labels[0])
		}
		elseBlock, ok := b.blocks[instr.Labels[1]]
		if !ok {
			return fmt.Errorf("branch to unknown block %q", instr.Labels[1])
		}
		cur.NewCondBr(cond, thenBlock, elseBlock)
		return nil
	case ir.EffectReturn:
		if len(instr.Args) == 0 {
			cur.NewRet(nil)
			return nil
		}
		v, ok := b.vars[instr.Args[0]]
		if !ok {
			return fmt.Errorf("return of unbound variable %q", instr.Args[0])
		}
		cur.NewRet(v)
		return nil
	default:
		return fmt.Errorf("unsupported terminator %q", instr.Op)
	}
}

func convertType(t ir.Type) (types.Type, error) {
	switch t {
	case ir.TypeInt:
		return types.I64, nil
	case ir.TypeBool:
		return types.I1, nil
	case ir.TypeFloat:
		return types.Double, nil
	case ir.TypeChar:
		return types.I32, nil
	case "":
		return types.Void, nil
	default:
		return nil, fmt.Errorf("unsupported type %q", t)
	}
}

func literalConstant(l ir.Literal) constant.Constant {
	switch l.Kind {
	case ir.LiteralInt:
		return constant.NewInt(types.I64, l.Int)
	case ir.LiteralBool:
		if l.Bool {
			return constant.NewInt(types.I1, 1)
		}
		return constant.NewInt(types.I1, 0)
	case ir.LiteralFloat:
		return constant.NewFloat(types.Double, l.Float)
	case ir.LiteralChar:
		return constant.NewInt(types.I32, int64(l.Char))
	default:
		return constant.NewInt(types.I64, 0)
	}
}

func zeroValue(t types.Type) llvmvalue.Value {
	switch t {
	case types.Void:
		return nil
	case types.I1:
		return constant.NewInt(types.I1, 0)
	case types.I64, types.I32:
		return constant.NewInt(t.(*types.IntType), 0)
	case types.Double:
		return constant.NewFloat(types.Double, 0)
	default:
		return constant.NewInt(types.I64, 0)
	}
}
