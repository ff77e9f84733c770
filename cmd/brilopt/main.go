// Command brilopt reads an IR Program from stdin, applies local value
// numbering (with the requested options) and trivial dead code
// elimination to every function, and writes the transformed Program to
// stdout. Grounded on cmd/alas-compile/main.go's read-stdin/validate/
// transform/write-stdout shape.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/dshills/brilopt/internal/ir"
	"github.com/dshills/brilopt/internal/lvn"
	"github.com/dshills/brilopt/internal/tdce"
	"github.com/dshills/brilopt/internal/validator"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "brilopt: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout *os.File) error {
	opts := lvn.ParseOptions(args)

	program, err := ir.Load(stdin)
	if err != nil {
		return errors.Wrap(err, "load program")
	}

	if err := validator.New().ValidateProgram(program); err != nil {
		return errors.Wrap(err, "validate program")
	}

	for i := range program.Functions {
		fn := &program.Functions[i]
		lvn.Run(fn, opts)
		tdce.Run(fn)
	}

	if err := ir.Store(stdout, program); err != nil {
		return errors.Wrap(err, "write program")
	}
	return nil
}
