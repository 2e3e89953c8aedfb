package stringlib

import (
	"testing"

	"wisp/internal/value"
)

func call(t *testing.T, l *Library, name string, args ...value.Value) []value.Value {
	t.Helper()
	member, ok := l.Member(name)
	if !ok {
		t.Fatalf("no method named %q", name)
	}
	fn, ok := member.(value.Callable)
	if !ok {
		t.Fatalf("member %q is not callable", name)
	}
	results, err := fn.Call(args)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return results
}

func TestLibraryMethods(t *testing.T) {
	l := New()
	tests := []struct {
		name string
		args []value.Value
		want value.Value
	}{
		{"len", []value.Value{value.String("hello")}, value.Number(5)},
		{"upper", []value.Value{value.String("hello")}, value.String("HELLO")},
		{"lower", []value.Value{value.String("HELLO")}, value.String("hello")},
		{"sub", []value.Value{value.String("hello"), value.Number(1), value.Number(3)}, value.String("el")},
		{"find", []value.Value{value.String("hello"), value.String("ll")}, value.Number(3)},
		{"find", []value.Value{value.String("hello"), value.String("zz")}, value.Nil{}},
		{"rep", []value.Value{value.String("ab"), value.Number(3)}, value.String("ababab")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, l, tt.name, tt.args...)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("%s(%v) = %v, want [%v]", tt.name, tt.args, got, tt.want)
			}
		})
	}
}

func TestLibraryArity(t *testing.T) {
	l := New()
	n, ok := l.Arity("sub")
	if !ok || n != 3 {
		t.Fatalf("Arity(sub) = %d, %v; want 3, true", n, ok)
	}
	if _, ok := l.Arity("nope"); ok {
		t.Fatal("Arity(nope) unexpectedly found")
	}
}

func TestMemberUnknown(t *testing.T) {
	l := New()
	if _, ok := l.Member("nope"); ok {
		t.Fatal("Member(nope) unexpectedly found")
	}
}
