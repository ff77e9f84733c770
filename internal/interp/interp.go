// Package interp is a small reference interpreter for the IR in
// internal/ir, used to test that LVN and TDCE preserve program semantics.
// It is not part of the optimizer pipeline itself.
//
// Scope is deliberately narrow: straight-line-with-jumps single-function
// execution over the recognized ValueOps and the Jump/Branch/Return/Print
// effects. Calls, memory and module boundaries are out of scope --
// interprocedural analysis and memory/pointer value numbering are not
// features this module implements, so this interpreter only needs to be
// an oracle for the programs that narrower scope still allows.
//
// Grounded on internal/interpreter/interpreter.go's environment-plus-
// eval-loop shape (parent-less here, since this IR has no lexical
// nesting), adapted from ALaS's nested statement tree to a flat
// label/jump instruction stream.
package interp

import (
	"fmt"
	"strconv"

	"github.com/dshills/brilopt/internal/ir"
)

// Environment is the flat variable store a function body executes
// against. Unlike internal/interpreter/interpreter.go's Environment, this
// IR has no nested lexical scopes to chain -- a function body is one flat
// instruction stream -- so there is no parent pointer.
type Environment struct {
	vars map[string]ir.Literal
}

// NewEnvironment returns an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]ir.Literal)}
}

// Get returns the current value of name and whether it is bound.
func (e *Environment) Get(name string) (ir.Literal, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set binds name to value.
func (e *Environment) Set(name string, value ir.Literal) {
	e.vars[name] = value
}

// Result is the observable outcome of running a function: its return
// value (if any) and the sequence of strings it printed, in order.
type Result struct {
	Returned bool
	Value    ir.Literal
	Prints   []string
}

// Run executes fn with args bound to its parameters, in order, and
// returns its observable effects.
func Run(fn *ir.Function, args []ir.Literal) (Result, error) {
	if len(args) != len(fn.Params) {
		return Result{}, fmt.Errorf("%s: expected %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	env := NewEnvironment()
	for i, p := range fn.Params {
		env.Set(p.Name, args[i])
	}

	labelPos := make(map[string]int, len(fn.Instrs))
	for i, c := range fn.Instrs {
		if c.IsLabel() {
			labelPos[c.Label] = i
		}
	}

	var res Result
	pc := 0
	for pc < len(fn.Instrs) {
		code := fn.Instrs[pc]
		if code.IsLabel() {
			pc++
			continue
		}
		instr := code.Instr
		next, done, err := step(instr, env, labelPos, &res)
		if err != nil {
			return Result{}, fmt.Errorf("%s: instr %d (%s): %w", fn.Name, pc, instr.Op, err)
		}
		if done {
			return res, nil
		}
		if next == -1 {
			pc++
		} else {
			pc = next
		}
	}
	return res, nil
}

// step executes one instruction, returning the position of a jump or
// branch target, or -1 to continue with the next instruction, and whether
// the function has returned.
func step(instr *ir.Instruction, env *Environment, labelPos map[string]int, res *Result) (next int, done bool, err error) {
	switch instr.Kind {
	case ir.KindConstant:
		env.Set(instr.Dest, instr.Value)
		return -1, false, nil
	case ir.KindValue:
		v, err := evalValue(instr, env)
		if err != nil {
			return 0, false, err
		}
		env.Set(instr.Dest, v)
		return -1, false, nil
	case ir.KindEffect:
		return evalEffect(instr, env, labelPos, res)
	default:
		return 0, false, fmt.Errorf("unknown instruction kind")
	}
}

func evalValue(instr *ir.Instruction, env *Environment) (ir.Literal, error) {
	args := make([]ir.Literal, len(instr.Args))
	for i, name := range instr.Args {
		v, ok := env.Get(name)
		if !ok {
			return ir.Literal{}, fmt.Errorf("use of unbound variable %q", name)
		}
		args[i] = v
	}

	switch ir.ValueOp(instr.Op) {
	case ir.OpId:
		return args[0], nil
	case ir.OpAdd:
		return ir.NewIntLiteral(args[0].Int + args[1].Int), nil
	case ir.OpMul:
		return ir.NewIntLiteral(args[0].Int * args[1].Int), nil
	case ir.OpEq:
		return ir.NewBoolLiteral(literalsEqual(args[0], args[1])), nil
	case ir.OpAnd:
		return ir.NewBoolLiteral(args[0].Bool && args[1].Bool), nil
	case ir.OpOr:
		return ir.NewBoolLiteral(args[0].Bool || args[1].Bool), nil
	case ir.OpNot:
		return ir.NewBoolLiteral(!args[0].Bool), nil
	default:
		return ir.Literal{}, fmt.Errorf("unsupported value op %q", instr.Op)
	}
}

func literalsEqual(a, b ir.Literal) bool {
	switch a.Kind {
	case ir.LiteralInt:
		return a.Int == b.Int
	case ir.LiteralBool:
		return a.Bool == b.Bool
	case ir.LiteralChar:
		return a.Char == b.Char
	default:
		return a.Float == b.Float
	}
}

func evalEffect(instr *ir.Instruction, env *Environment, labelPos map[string]int, res *Result) (next int, done bool, err error) {
	switch ir.EffectOp(instr.Op) {
	case ir.EffectJump:
		pos, ok := labelPos[instr.Labels[0]]
		if !ok {
			return 0, false, fmt.Errorf("jump to undefined label %q", instr.Labels[0])
		}
		return pos, false, nil
	case ir.EffectBranch:
		cond, ok := env.Get(instr.Args[0])
		if !ok {
			return 0, false, fmt.Errorf("branch on unbound variable %q", instr.Args[0])
		}
		target := instr.Labels[1]
		if cond.Bool {
			target = instr.Labels[0]
		}
		pos, ok := labelPos[target]
		if !ok {
			return 0, false, fmt.Errorf("branch to undefined label %q", target)
		}
		return pos, false, nil
	case ir.EffectReturn:
		if len(instr.Args) > 0 {
			v, ok := env.Get(instr.Args[0])
			if !ok {
				return 0, false, fmt.Errorf("return of unbound variable %q", instr.Args[0])
			}
			res.Returned = true
			res.Value = v
		}
		return 0, true, nil
	case ir.EffectPrint:
		parts := make([]string, len(instr.Args))
		for i, a := range instr.Args {
			v, ok := env.Get(a)
			if !ok {
				return 0, false, fmt.Errorf("print of unbound variable %q", a)
			}
			parts[i] = formatLiteral(v)
		}
		line := parts[0]
		for _, p := range parts[1:] {
			line += " " + p
		}
		res.Prints = append(res.Prints, line)
		return -1, false, nil
	default:
		return 0, false, fmt.Errorf("unsupported effect op %q", instr.Op)
	}
}

func formatLiteral(v ir.Literal) string {
	switch v.Kind {
	case ir.LiteralInt:
		return strconv.FormatInt(v.Int, 10)
	case ir.LiteralBool:
		return strconv.FormatBool(v.Bool)
	case ir.LiteralFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ir.LiteralChar:
		return string(v.Char)
	default:
		return ""
	}
}
