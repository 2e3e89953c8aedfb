// Package coroutine implements the external "Coroutine controller" spec.md
// §6 describes: a status state machine, a resume stack restored innermost
// activation first, and the
// sentinel identifying a coroutine's entry activation. Grounded on the
// teacher's FiberObj/FiberState design (internal/vmregister/value.go):
// sentra's fibers are this spec's coroutines under another name, with
// FIBER_NEW/RUNNING/SUSPENDED/DEAD renamed to the status vocabulary
// spec.md §6 uses (running/suspending/suspended/resuming).
package coroutine

import (
	"fmt"

	"github.com/google/uuid"

	"wisp/internal/machine"
	"wisp/internal/value"
)

// Status is the coroutine state machine spec.md §6 names.
type Status string

const (
	Running    Status = "running"
	Suspending Status = "suspending"
	Suspended  Status = "suspended"
	Resuming   Status = "resuming"
)

// Controller is one coroutine: it implements machine.CoroutineController,
// so an *Activation's driver can hand it a yield without the machine
// package importing this one.
type Controller struct {
	ID     string
	status Status

	entry       *machine.Activation
	resumeStack []*machine.Activation
}

// New creates an idle coroutine controller, identified by a generated UUID
// for debug/log correlation.
func New() *Controller {
	return &Controller{ID: uuid.NewString(), status: Running}
}

func (c *Controller) Status() Status { return c.status }

// Start runs body as this coroutine's entry point for the first time. body
// must have been built with an ExecContext whose Coroutine field is c, so
// that a yield anywhere inside body's call chain routes back to c.Suspend.
func (c *Controller) Start(body *machine.Function, args []value.Value) ([]value.Value, error) {
	act := machine.NewActivation(body, args)
	c.entry = act
	return act.Run()
}

// Suspend implements machine.CoroutineController. It is called once per
// activation as a YieldSignal unwinds the Go call stack (spec.md §4.5
// driver rule 1), innermost activation first: every activation on the
// chain is appended to the resume stack in that order; for the entry
// activation Suspend also marks the coroutine Suspended and hands back the
// yielded values.
func (c *Controller) Suspend(act *machine.Activation, yieldVars []value.Value) (final []value.Value, isEntry bool) {
	c.resumeStack = append(c.resumeStack, act)
	if act == c.entry {
		c.status = Suspended
		return yieldVars, true
	}
	return nil, false
}

// Resume restores the resume stack (spec.md §5: "restored LIFO on
// resume"). Suspend appends in the chronological order the Go call stack
// actually unwinds — innermost (the activation that called yield) first,
// outermost (the entry activation) last — so the innermost suspended
// activation is logically on "top"; Resume pops that one first, feeds it
// vals, and threads each activation's own result into the next one's
// pending call, continuing until the entry activation is reached.
func (c *Controller) Resume(vals []value.Value) ([]value.Value, error) {
	if len(c.resumeStack) == 0 {
		return nil, fmt.Errorf("coroutine %s: resume on a coroutine with nothing suspended", c.ID)
	}
	c.status = Resuming
	next := vals
	for len(c.resumeStack) > 0 {
		innermost := c.resumeStack[0]
		c.resumeStack = c.resumeStack[1:]

		pending := len(c.resumeStack)
		result, err := innermost.Resume(next)
		if yielded, ok := err.(*machine.YieldSignal); ok {
			// innermost yielded again before reaching the entry activation:
			// Suspend appended the newly suspended activations (innermost
			// first) after the ones still pending, so move them to the front
			// to keep the innermost one first for the next Resume.
			fresh := append([]*machine.Activation(nil), c.resumeStack[pending:]...)
			c.resumeStack = append(fresh, c.resumeStack[:pending]...)
			c.status = Suspended
			return yielded.Vars, nil
		}
		if err != nil {
			return nil, err
		}
		if innermost == c.entry {
			if innermost.Terminated() {
				c.status = Suspended
			}
			return result, nil
		}
		next = result
	}
	c.status = Running
	return next, nil
}

// Remove tears the coroutine down: any activations still parked on the
// resume stack are simply dropped, matching spec.md §5's "if the coroutine
// is never resumed, the activation simply remains on the resume stack,
// referenced for its lifetime" — Remove is the explicit release of that
// reference.
func (c *Controller) Remove() {
	c.resumeStack = nil
	c.status = Suspended
}

// YieldCallable returns the Callable a coroutine body invokes to yield.
// Calling it never returns normally: it always produces a *machine.
// YieldSignal, which the driver recognizes and routes through Suspend
// instead of ordinary error propagation.
func YieldCallable() value.Callable {
	return &value.GoFunc{
		Name: "yield",
		Fn: func(args []value.Value) ([]value.Value, error) {
			return nil, &machine.YieldSignal{Vars: args}
		},
	}
}
