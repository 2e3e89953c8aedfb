// Package value implements the polymorphic value model the core consumes:
// nil, boolean, number, string, table, and callable (spec.md §3/§4.1).
package value

import (
	"fmt"
	"regexp"
	"strconv"
)

// Value is implemented by every kind the machine can hold in a register,
// constant slot, or upvalue cell.
type Value interface {
	Type() string
	String() string
}

// Nil is the absent value. The zero Value is not Nil; callers must use the
// Nil sentinel explicitly (a nil Go interface means "no value produced",
// distinct from the language's own nil).
type Nil struct{}

func (Nil) Type() string   { return "nil" }
func (Nil) String() string { return "nil" }

// Boolean is the language boolean.
type Boolean bool

func (Boolean) Type() string    { return "boolean" }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Number is the language's single numeric kind, a double-precision float.
type Number float64

func (Number) Type() string { return "number" }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String is the language string kind.
type String string

func (String) Type() string      { return "string" }
func (s String) String() string  { return string(s) }

// Callable is any value that CALL/TAILCALL may invoke: a closure
// (machine.Function, which runs a fresh Activation per call), or a
// host-provided function.
type Callable interface {
	Value
	Call(args []Value) ([]Value, error)
}

// GoFunc adapts a plain Go function into a Callable, for host collaborators
// (the string library, builtins, test fixtures) that don't need a full
// Activation.
type GoFunc struct {
	Name string
	Fn   func(args []Value) ([]Value, error)
}

func (f *GoFunc) Type() string   { return "function" }
func (f *GoFunc) String() string { return fmt.Sprintf("function: %s", f.Name) }
func (f *GoFunc) Call(args []Value) ([]Value, error) { return f.Fn(args) }

// numericPattern is the floating-point pattern spec §3 defines for
// string<->number coercion.
var numericPattern = regexp.MustCompile(`^[-+]?[0-9]*\.?([0-9]+([eE][-+]?[0-9]+)?)?$`)

// IsNumeric reports whether v is a Number, or a String whose textual form
// matches the numeric pattern. The empty string and the bare strings "-",
// "+" and "." match the pattern but are rejected.
func IsNumeric(v Value) bool {
	switch t := v.(type) {
	case Number:
		return true
	case String:
		s := string(t)
		return s != "" && s != "-" && s != "+" && s != "." && numericPattern.MatchString(s)
	default:
		return false
	}
}

// ToNumber parses v as a float under the same pattern IsNumeric uses. The
// result is undefined (and ok is false) unless the caller has already
// checked IsNumeric.
func ToNumber(v Value) (Number, bool) {
	switch t := v.(type) {
	case Number:
		return t, true
	case String:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return 0, false
		}
		return Number(f), true
	default:
		return 0, false
	}
}

// Truthy reports the language's truthiness: false iff v is nil or the
// boolean false. Zero and the empty string are truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil, Nil:
		return false
	case Boolean:
		return bool(t)
	default:
		return true
	}
}
