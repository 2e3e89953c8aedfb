package debugctl

import (
	"testing"

	"wisp/internal/machine"
	"wisp/internal/proto"
	"wisp/internal/value"
)

func TestBreakpointSuspendsAndResumes(t *testing.T) {
	b := proto.NewBuilder("scenario:breakpoint")
	kOne := b.Constant(value.Number(1))
	b.Emit(uint32(machine.NewABx(machine.OpLoadK, 0, uint32(kOne))), 1)
	b.Emit(uint32(machine.NewABC(machine.OpReturn, 0, 2, 0)), 2)
	p := b.SetParamCount(0).SetMaxStack(1).Build()

	ctrl := New()
	ctrl.AddBreakpoint("scenario:breakpoint", 2)

	ctx := &machine.ExecContext{Globals: machine.NewGlobals(), Debug: ctrl}
	fn := &machine.Function{Proto: p, Ctx: ctx}

	act := machine.NewActivation(fn, nil)
	result, err := act.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("result = %v, want nil (suspended at breakpoint)", result)
	}
	if act.Terminated() {
		t.Fatal("activation reports terminated before reaching RETURN")
	}
	if ctrl.Status() != Suspending {
		t.Fatalf("Status() = %v, want Suspending", ctrl.Status())
	}

	result, err = ctrl.Resume()
	if err != nil {
		t.Fatalf("Resume: unexpected error: %v", err)
	}
	if len(result) != 1 || result[0] != value.Value(value.Number(1)) {
		t.Fatalf("Resume result = %v, want [1]", result)
	}
	if !act.Terminated() {
		t.Fatal("activation should be terminated after RETURN")
	}
	if ctrl.Status() != Running {
		t.Fatalf("Status() = %v, want Running", ctrl.Status())
	}
}

func TestRemoveBreakpoint(t *testing.T) {
	ctrl := New()
	id := ctrl.AddBreakpoint("x", 1)
	if !ctrl.RemoveBreakpoint(id) {
		t.Fatal("RemoveBreakpoint reported not found for a just-added breakpoint")
	}
	if ctrl.RemoveBreakpoint(id) {
		t.Fatal("RemoveBreakpoint reported found for an already-removed breakpoint")
	}
}

func TestResumeWithNothingSuspended(t *testing.T) {
	ctrl := New()
	if _, err := ctrl.Resume(); err == nil {
		t.Fatal("expected an error resuming with nothing suspended")
	}
}
