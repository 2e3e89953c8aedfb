// Package debugctl implements the external "Debug controller" spec.md §6
// describes: a status state machine, a resume stack, and the breakpoint/
// step-mode bookkeeping a stepping debugger needs. Grounded on the
// teacher's internal/debugger/debugger.go (Breakpoint, DebugState
// Running/Paused/StepInto/StepOver/StepOut/Terminated, the breakpoint
// map keyed by ID) adapted from sentra's stack VM to this spec's
// Activation, and internal/vm/vm_hook.go's per-instruction hook shape.
package debugctl

import (
	"fmt"

	"wisp/internal/machine"
	"wisp/internal/value"
)

// Status is the debug controller's state machine (spec.md §6: "status ∈
// {running, suspending, resuming}").
type Status string

const (
	Running    Status = "running"
	Suspending Status = "suspending"
	Resuming   Status = "resuming"
)

// StepMode selects what ShouldSuspend treats as a stopping point, mirroring
// the teacher's DebugState step granularities.
type StepMode int

const (
	StepNone StepMode = iota
	StepInto
	StepOver
	StepOut
)

// Breakpoint is a line breakpoint, grounded directly on the teacher's
// Breakpoint struct (trimmed to the fields this core's line-only model
// needs).
type Breakpoint struct {
	ID      int
	Source  string
	Line    int
	Enabled bool
}

// Controller implements machine.DebugController. It is polled once per
// instruction by the activation driver (spec.md §4.5 rule 2).
type Controller struct {
	status Status
	step   StepMode

	breakpoints map[int]*Breakpoint
	nextBpID    int

	resumeStack []*machine.Activation
}

func New() *Controller {
	return &Controller{status: Running, breakpoints: make(map[int]*Breakpoint), nextBpID: 1}
}

// AddBreakpoint registers a line breakpoint, grounded on the teacher's
// AddBreakpoint.
func (c *Controller) AddBreakpoint(source string, line int) int {
	id := c.nextBpID
	c.nextBpID++
	c.breakpoints[id] = &Breakpoint{ID: id, Source: source, Line: line, Enabled: true}
	return id
}

// RemoveBreakpoint unregisters a breakpoint by ID.
func (c *Controller) RemoveBreakpoint(id int) bool {
	if _, ok := c.breakpoints[id]; !ok {
		return false
	}
	delete(c.breakpoints, id)
	return true
}

// SetStepMode arms single-stepping; ShouldSuspend consults it on the very
// next poll, and the Suspend that follows resets it to StepNone.
func (c *Controller) SetStepMode(mode StepMode) { c.step = mode }

// ShouldSuspend implements machine.DebugController: true if act's current
// instruction sits on an enabled breakpoint, or if a step mode is armed.
func (c *Controller) ShouldSuspend(act *machine.Activation) bool {
	if c.step != StepNone {
		return true
	}
	line := act.CurrentLine()
	source := act.SourceName()
	for _, bp := range c.breakpoints {
		if bp.Enabled && bp.Source == source && bp.Line == line {
			return true
		}
	}
	return false
}

// Suspend implements machine.DebugController: records act for later
// resumption via Resume.
func (c *Controller) Suspend(act *machine.Activation) {
	c.status = Suspending
	c.step = StepNone
	c.resumeStack = append(c.resumeStack, act)
}

// Resume re-enters the most recently suspended activation. Unlike a
// coroutine yield, a debug pause never replaces an instruction's operands,
// so resumption needs no pending-value substitution — just continuing the
// loop from the saved pc.
func (c *Controller) Resume() ([]value.Value, error) {
	if len(c.resumeStack) == 0 {
		return nil, fmt.Errorf("debug controller: resume with nothing suspended")
	}
	c.status = Resuming
	top := c.resumeStack[len(c.resumeStack)-1]
	c.resumeStack = c.resumeStack[:len(c.resumeStack)-1]
	result, err := top.Resume(nil)
	if err != nil {
		return nil, err
	}
	if len(c.resumeStack) == 0 {
		c.status = Running
	}
	return result, nil
}

func (c *Controller) Status() Status { return c.status }
