package machine

import (
	"fmt"

	"wisp/internal/proto"
	"wisp/internal/value"
)

// Function is a closure: an immutable prototype plus the upvalue cells it
// captured at CLOSURE time (spec.md §3/§4.4). It is the Value stored in
// registers and constants; calling it creates a fresh Activation and runs
// the activation driver from pc 0 (spec.md §3 "An activation is itself
// callable").
type Function struct {
	Proto    *proto.Prototype
	Upvalues []*Cell
	Ctx      *ExecContext
}

func (f *Function) Type() string   { return "function" }
func (f *Function) String() string { return fmt.Sprintf("function: %s", f.Proto.SourceName) }

// Call creates a new Activation bound to f and runs it to completion or
// suspension (spec.md §6: "a callable wrapper around each activation that
// accepts a positional argument vector and returns a vector of results").
func (f *Function) Call(args []value.Value) ([]value.Value, error) {
	return NewActivation(f, args).Run()
}

// NewActivation binds args to a fresh, not-yet-run Activation. Most callers
// should just use Function.Call; NewActivation exists so a coroutine
// controller can record the activation as its entry point before the
// first Run (spec.md §6's "_func._instance" sentinel) — Suspend needs to
// recognize that activation by identity the first time it yields.
func NewActivation(f *Function, args []value.Value) *Activation {
	act := &Activation{fn: f}
	act.bindArgs(args)
	return act
}

// Run executes the activation from its current program counter (0 for a
// freshly bound activation) to completion or suspension.
func (act *Activation) Run() ([]value.Value, error) {
	return act.loop()
}

// capturedLocal is one entry of an activation's captured-locals list
// (spec.md §3): a still-open cell bound to register reg.
type capturedLocal struct {
	reg  int
	cell *Cell
}

// Activation is one invocation record (spec.md §3 "Activation"): the
// function being run, its private register file, program counter,
// captured-locals list, and the original argument vector (for VARARG).
// Created per invocation; mutated only by its own driver; discarded on
// final return, except that a suspended activation survives on a resume
// stack until resumed.
type Activation struct {
	fn   *Function
	Regs RegisterFile
	pc   int

	captured []capturedLocal
	args     []value.Value

	terminated bool

	pendingResume    []value.Value
	hasPendingResume bool
}

// Terminated reports whether this activation's RETURN has already run
// (spec.md §6: "a terminated flag after completion").
func (act *Activation) Terminated() bool { return act.terminated }

// SourceName returns the prototype's source name, for debugger UIs and
// error-frame rendering.
func (act *Activation) SourceName() string { return act.fn.Proto.SourceName }

// CurrentLine returns the source line of the instruction about to execute
// next, for breakpoint matching.
func (act *Activation) CurrentLine() int { return act.fn.Proto.Line(act.pc) }

// Resume re-enters a previously suspended activation with the values a
// coroutine resume (or, with vals == nil, a debugger resume) supplies. The
// program counter was already rewound to the suspending CALL/TAILCALL at
// suspend time (spec.md §4.5).
func (act *Activation) Resume(vals []value.Value) ([]value.Value, error) {
	if vals != nil {
		act.pendingResume = vals
		act.hasPendingResume = true
	}
	return act.loop()
}

func (act *Activation) bindArgs(args []value.Value) {
	act.args = args
	p := act.fn.Proto
	n := p.ParamCount
	for i := 0; i < n; i++ {
		if i < len(args) {
			act.Regs.Set(i, args[i])
		} else {
			act.Regs.Set(i, value.Nil{})
		}
	}
	if p.IsVarArg == proto.CompatVarArg {
		extra := args[min(n, len(args)):]
		t := value.NewTable()
		for i, v := range extra {
			t.SetMember(value.Number(i+1), v)
		}
		t.SetMember(value.String("n"), value.Number(len(extra)))
		act.Regs.Set(n, t)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// findOrCreateCell returns the shared cell bound to register reg, creating
// an open one and recording it in the captured-locals list if none exists
// yet (spec.md §4.4 CLOSURE: "if some captured-local already exists for
// register index B, reuse its cell").
func (act *Activation) findOrCreateCell(reg int) *Cell {
	for _, cl := range act.captured {
		if cl.reg == reg {
			return cl.cell
		}
	}
	cell := newOpenCell(&act.Regs, reg)
	act.captured = append(act.captured, capturedLocal{reg: reg, cell: cell})
	return cell
}

// closeFrom closes every captured-local with register index >= threshold,
// unlinking it from the register file and removing it from the
// captured-locals list (spec.md §4.4 RETURN/CLOSE).
func (act *Activation) closeFrom(threshold int) {
	kept := act.captured[:0]
	for _, cl := range act.captured {
		if cl.reg >= threshold {
			cl.cell.Close(act.Regs.Get(cl.reg))
		} else {
			kept = append(kept, cl)
		}
	}
	act.captured = kept
}
