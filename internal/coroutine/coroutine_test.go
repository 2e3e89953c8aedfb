package coroutine

import (
	"testing"

	"wisp/internal/machine"
	"wisp/internal/proto"
	"wisp/internal/stringlib"
	"wisp/internal/value"
)

func TestNewAssignsID(t *testing.T) {
	a := New()
	b := New()
	if a.ID == "" {
		t.Fatal("New() left ID empty")
	}
	if a.ID == b.ID {
		t.Fatal("two coroutines were assigned the same ID")
	}
	if a.Status() != Running {
		t.Fatalf("Status() = %v, want Running", a.Status())
	}
}

func TestResumeWithNothingSuspended(t *testing.T) {
	c := New()
	if _, err := c.Resume(nil); err == nil {
		t.Fatal("expected an error resuming a coroutine with nothing suspended")
	}
}

func TestStartWithoutYieldTerminatesImmediately(t *testing.T) {
	b := proto.NewBuilder("scenario:no-yield")
	k := b.Constant(value.Number(5))
	b.Emit(uint32(machine.NewABx(machine.OpLoadK, 0, uint32(k))), 1)
	b.Emit(uint32(machine.NewABC(machine.OpReturn, 0, 2, 0)), 1)
	p := b.SetParamCount(0).SetMaxStack(1).Build()

	c := New()
	ctx := &machine.ExecContext{Globals: machine.NewGlobals(), StringLib: stringlib.New(), Coroutine: c}
	fn := &machine.Function{Proto: p, Ctx: ctx}

	result, err := c.Start(fn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0] != value.Value(value.Number(5)) {
		t.Fatalf("result = %v, want [5]", result)
	}
}

func TestRemoveClearsResumeStack(t *testing.T) {
	c := New()
	c.resumeStack = []*machine.Activation{{}}
	c.Remove()
	if len(c.resumeStack) != 0 {
		t.Fatalf("resumeStack after Remove = %v, want empty", c.resumeStack)
	}
	if c.Status() != Suspended {
		t.Fatalf("Status() after Remove = %v, want Suspended", c.Status())
	}
}

func TestYieldCallableProducesYieldSignal(t *testing.T) {
	fn := YieldCallable()
	_, err := fn.Call([]value.Value{value.Number(1)})
	if _, ok := err.(*machine.YieldSignal); !ok {
		t.Fatalf("error type = %T, want *machine.YieldSignal", err)
	}
}
