package langerr

import (
	"errors"
	"strings"
	"testing"
)

func TestWithFrameAppendsInOrder(t *testing.T) {
	e := New(IndexNil, "attempt to index a nil value")
	e = e.WithFrame("inner.lua", 10)
	e = e.WithFrame("outer.lua", 20)

	if len(e.Stack) != 2 {
		t.Fatalf("len(Stack) = %d, want 2", len(e.Stack))
	}
	if e.Stack[0].SourceName != "inner.lua" || e.Stack[0].Line != 10 {
		t.Fatalf("Stack[0] = %+v, want {inner.lua 10}", e.Stack[0])
	}
	if e.Stack[1].SourceName != "outer.lua" || e.Stack[1].Line != 20 {
		t.Fatalf("Stack[1] = %+v, want {outer.lua 20}", e.Stack[1])
	}
}

func TestWithFrameDoesNotMutateReceiver(t *testing.T) {
	base := New(LengthOfNil, "attempt to get length of a nil value")
	withOne := base.WithFrame("a.lua", 1)
	if len(base.Stack) != 0 {
		t.Fatalf("WithFrame mutated the receiver's Stack: %v", base.Stack)
	}
	if len(withOne.Stack) != 1 {
		t.Fatalf("len(withOne.Stack) = %d, want 1", len(withOne.Stack))
	}
}

func TestWrapHostCapturesCause(t *testing.T) {
	cause := errors.New("boom")
	e := WrapHost(cause)
	if e.Kind != HostError {
		t.Fatalf("Kind = %v, want HostError", e.Kind)
	}
	if !strings.Contains(e.Error(), "boom") {
		t.Fatalf("Error() = %q, want it to contain the wrapped cause", e.Error())
	}
}

func TestErrorStringIncludesFrames(t *testing.T) {
	e := New(CallNonCallable, "attempt to call a nil value").WithFrame("x.lua", 3)
	s := e.Error()
	if !strings.Contains(s, "CallNonCallable") || !strings.Contains(s, "at x.lua on line 3") {
		t.Fatalf("Error() = %q, missing kind or frame text", s)
	}
}
