package ir

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Load deserializes a Program from r. There is no existing bril parser
// library anywhere in the example pack (see DESIGN.md), so this is a
// first-party JSON decoder rather than a wrapped external one.
func Load(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decode program")
	}
	return &p, nil
}

// Store serializes p to w.
func Store(w io.Writer, p *Program) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode program")
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "write program")
}

// CloneInstr returns a deep-enough copy of i suitable for mutation without
// aliasing the caller's slices.
func CloneInstr(i *Instruction) *Instruction {
	clone := *i
	clone.Args = append([]string(nil), i.Args...)
	clone.Funcs = append([]string(nil), i.Funcs...)
	clone.Labels = append([]string(nil), i.Labels...)
	return &clone
}
