// Package stringlib implements the external "String library" collaborator
// spec.md §6 describes: a mapping of method names consulted when GETTABLE
// indexes a string value. Trimmed from the teacher's RegisterStdlib
// (internal/vmregister/stdlib.go), which registers several thousand lines
// of unrelated domain helpers (network, security, ML, cloud posture
// scanning) alongside a handful of genuine string functions — only those
// string functions are this spec's concern (spec.md §1 excludes the rest
// of the standard library as an external collaborator of its own).
package stringlib

import (
	"strconv"
	"strings"

	"wisp/internal/value"
)

// Library implements machine.StringLib.
type Library struct {
	methods map[string]value.Value
	arities map[string]int
}

// New builds the reference string-method table: len, upper, lower, sub,
// find, rep, matching the teacher's createStringFunc-registered names.
func New() *Library {
	l := &Library{methods: make(map[string]value.Value), arities: make(map[string]int)}
	l.register("len", 1, func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Number(len(string(asString(args, 0))))}, nil
	})
	l.register("upper", 1, func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.String(strings.ToUpper(string(asString(args, 0))))}, nil
	})
	l.register("lower", 1, func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.String(strings.ToLower(string(asString(args, 0))))}, nil
	})
	l.register("sub", 3, func(args []value.Value) ([]value.Value, error) {
		s := string(asString(args, 0))
		start := clampIndex(asInt(args, 1), len(s))
		end := clampIndex(asInt(args, 2), len(s))
		if start > end {
			return []value.Value{value.String("")}, nil
		}
		return []value.Value{value.String(s[start:end])}, nil
	})
	l.register("find", 2, func(args []value.Value) ([]value.Value, error) {
		s := string(asString(args, 0))
		needle := string(asString(args, 1))
		idx := strings.Index(s, needle)
		if idx < 0 {
			return []value.Value{value.Nil{}}, nil
		}
		return []value.Value{value.Number(idx + 1)}, nil
	})
	l.register("rep", 2, func(args []value.Value) ([]value.Value, error) {
		s := string(asString(args, 0))
		n := asInt(args, 1)
		if n < 0 {
			n = 0
		}
		return []value.Value{value.String(strings.Repeat(s, n))}, nil
	})
	return l
}

func (l *Library) register(name string, arity int, fn func([]value.Value) ([]value.Value, error)) {
	l.methods[name] = &value.GoFunc{Name: name, Fn: fn}
	l.arities[name] = arity
}

// Arity reports the declared parameter count of a registered method, for
// host tooling that wants to validate call sites before invoking one.
func (l *Library) Arity(name string) (int, bool) {
	n, ok := l.arities[name]
	return n, ok
}

// Member implements machine.StringLib.
func (l *Library) Member(name string) (value.Value, bool) {
	v, ok := l.methods[name]
	return v, ok
}

func asString(args []value.Value, i int) value.String {
	if i >= len(args) {
		return ""
	}
	if s, ok := args[i].(value.String); ok {
		return s
	}
	return ""
}

func asInt(args []value.Value, i int) int {
	if i >= len(args) {
		return 0
	}
	switch t := args[i].(type) {
	case value.Number:
		return int(t)
	case value.String:
		n, err := strconv.Atoi(string(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func clampIndex(i, length int) int {
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}
