// Package validator checks a deserialized Program for the structural
// malformations that would otherwise panic or silently misbehave deep
// inside a pass, before any optimization runs. It is deliberately not a
// semantic checker: argument arity, undefined variables and dangling jump
// targets are out of scope -- the engine is non-validating by design.
// Errors accumulate across the whole program rather than aborting at the
// first one: a single run reports every function's name problems and, for
// each function, the first malformation found in its parameters or body.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/brilopt/internal/ir"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// Validator accumulates structural errors across a Program.
type Validator struct {
	errors []string
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// ValidateProgram checks p and returns an aggregated error describing
// every problem found, or nil if p is well-formed.
func (v *Validator) ValidateProgram(p *ir.Program) error {
	v.errors = nil

	names := make(map[string]bool)
	for i, fn := range p.Functions {
		if err := v.validateFunction(&fn); err != nil {
			v.addError("function %d: %v", i, err)
		}
		if fn.Name == "" {
			v.addError("function %d: name cannot be empty", i)
		} else if names[fn.Name] {
			v.addError("duplicate function name: %s", fn.Name)
		}
		names[fn.Name] = true
	}

	if len(v.errors) == 0 {
		return nil
	}
	return fmt.Errorf("program validation failed:\n%s", strings.Join(v.errors, "\n"))
}

func (v *Validator) validateFunction(fn *ir.Function) error {
	params := make(map[string]bool)
	for _, p := range fn.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if params[p.Name] {
			return fmt.Errorf("duplicate parameter name: %s", p.Name)
		}
		params[p.Name] = true
	}

	for i, code := range fn.Instrs {
		if code.IsLabel() {
			if !identifierPattern.MatchString(code.Label) {
				return fmt.Errorf("instr %d: invalid label %q", i, code.Label)
			}
			continue
		}
		if err := validateInstruction(code.Instr); err != nil {
			return fmt.Errorf("instr %d: %w", i, err)
		}
	}
	return nil
}

func validateInstruction(instr *ir.Instruction) error {
	switch instr.Kind {
	case ir.KindConstant:
		if instr.Dest == "" {
			return fmt.Errorf("constant instruction missing dest")
		}
		if instr.Value.Kind == ir.LiteralNone {
			return fmt.Errorf("constant instruction %q has no literal value", instr.Dest)
		}
	case ir.KindValue:
		if instr.Dest == "" {
			return fmt.Errorf("value instruction missing dest")
		}
		if instr.Op == "" {
			return fmt.Errorf("value instruction %q missing op", instr.Dest)
		}
	case ir.KindEffect:
		if instr.Op == "" {
			return fmt.Errorf("effect instruction missing op")
		}
	default:
		return fmt.Errorf("instruction with unknown kind %d", instr.Kind)
	}
	return nil
}

func (v *Validator) addError(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}
