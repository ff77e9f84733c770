// Command bril2llvm lowers an IR Program to LLVM IR text. It is a thin
// exposer of internal/llvmlower, grounded on cmd/alas-compile/main.go's
// read/generate/write-output shape.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/dshills/brilopt/internal/ir"
	"github.com/dshills/brilopt/internal/llvmlower"
	"github.com/dshills/brilopt/internal/lvn"
	"github.com/dshills/brilopt/internal/tdce"
	"github.com/dshills/brilopt/internal/validator"
)

func main() {
	var output string
	var optimize bool
	flag.StringVar(&output, "o", "", "output file for LLVM IR text (default: stdout)")
	flag.BoolVar(&optimize, "opt", false, "run LVN+TDCE on the IR, and a matching LLVM-level pass, before emitting")
	flag.Parse()

	if err := run(output, optimize); err != nil {
		fmt.Fprintf(os.Stderr, "bril2llvm: %v\n", err)
		os.Exit(1)
	}
}

func run(output string, optimize bool) error {
	program, err := ir.Load(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "load program")
	}

	if err := validator.New().ValidateProgram(program); err != nil {
		return errors.Wrap(err, "validate program")
	}

	if optimize {
		for i := range program.Functions {
			fn := &program.Functions[i]
			lvn.Run(fn, lvn.Options{Fold: true, CopyPropagate: true, Commutative: true})
			tdce.Run(fn)
		}
	}

	module, err := llvmlower.Lower(program)
	if err != nil {
		return errors.Wrap(err, "lower to LLVM IR")
	}
	if optimize {
		llvmlower.Optimize(module)
	}

	text := module.String()
	if output == "" {
		_, err := fmt.Fprint(os.Stdout, text)
		return errors.Wrap(err, "write LLVM IR")
	}
	return errors.Wrap(os.WriteFile(output, []byte(text), 0o600), "write LLVM IR")
}
