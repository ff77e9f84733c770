package ir

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// wireCode is the on-the-wire shape of one Code item: a Label item has
// only "label"; an Instruction item never has "label" and is distinguished
// by "op" ("const" for a Constant instruction, otherwise a Value
// instruction if "dest" is present, else an Effect instruction).
type wireCode struct {
	Label  string          `json:"label,omitempty"`
	Op     string          `json:"op,omitempty"`
	Dest   string          `json:"dest,omitempty"`
	Type   Type            `json:"type,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Args   []string        `json:"args,omitempty"`
	Funcs  []string        `json:"funcs,omitempty"`
	Labels []string        `json:"labels,omitempty"`
}

// MarshalJSON renders a Code item in the wire shape a bril-style
// deserializer expects: labels carry only "label", instructions omit it.
func (c Code) MarshalJSON() ([]byte, error) {
	if c.IsLabel() {
		return json.Marshal(wireCode{Label: c.Label})
	}
	w := wireCode{
		Op:     c.Instr.Op,
		Dest:   c.Instr.Dest,
		Type:   c.Instr.Type,
		Args:   c.Instr.Args,
		Funcs:  c.Instr.Funcs,
		Labels: c.Instr.Labels,
	}
	if c.Instr.Kind == KindConstant {
		raw, err := marshalLiteral(c.Instr.Value)
		if err != nil {
			return nil, errors.Wrap(err, "marshal constant literal")
		}
		w.Op = "const"
		w.Value = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses a Code item, classifying it as a Label or one of
// the three Instruction kinds.
func (c *Code) UnmarshalJSON(data []byte) error {
	var w wireCode
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "decode code item")
	}
	if w.Label != "" && w.Op == "" && w.Dest == "" && len(w.Args) == 0 {
		*c = Code{Label: w.Label}
		return nil
	}

	instr := Instruction{
		Op:     w.Op,
		Dest:   w.Dest,
		Type:   w.Type,
		Args:   w.Args,
		Funcs:  w.Funcs,
		Labels: w.Labels,
	}
	switch {
	case w.Op == "const":
		lit, err := unmarshalLiteral(w.Value, w.Type)
		if err != nil {
			return errors.Wrap(err, "decode constant literal")
		}
		instr.Kind = KindConstant
		instr.Value = lit
	case w.Dest != "":
		instr.Kind = KindValue
	default:
		instr.Kind = KindEffect
	}
	*c = Code{Instr: &instr}
	return nil
}

// unmarshalLiteral disambiguates a bare JSON scalar into the Literal it denotes,
// consulting the instruction's declared Type when the JSON value alone is
// ambiguous (JSON has no distinct bool-vs-int-vs-float numeric tag here
// only matters for int, since encoding/json decodes all bare numbers as
// float64 when the target is interface{}).
func unmarshalLiteral(raw json.RawMessage, t Type) (Literal, error) {
	if len(raw) == 0 {
		return Literal{}, nil
	}
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return NewBoolLiteral(asBool), nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		r := []rune(asString)
		if len(r) != 1 {
			return Literal{}, errors.Errorf("char literal %q must be exactly one rune", asString)
		}
		return NewCharLiteral(r[0]), nil
	}
	var asNum float64
	if err := json.Unmarshal(raw, &asNum); err != nil {
		return Literal{}, errors.Wrap(err, "decode numeric literal")
	}
	if t == TypeFloat {
		return NewFloatLiteral(asNum), nil
	}
	return NewIntLiteral(int64(asNum)), nil
}

func marshalLiteral(l Literal) (json.RawMessage, error) {
	switch l.Kind {
	case LiteralInt:
		return json.Marshal(l.Int)
	case LiteralBool:
		return json.Marshal(l.Bool)
	case LiteralFloat:
		return json.Marshal(l.Float)
	case LiteralChar:
		return json.Marshal(string(l.Char))
	default:
		return json.Marshal(nil)
	}
}

// floatBits returns the raw IEEE-754 bit pattern of f, used for Literal
// equality and hashing so NaN payloads and signed zero are distinguished
// structurally rather than numerically.
func floatBits(f float64) uint64 {
	return math.Float64bits(f)
}
