package machine

import (
	"wisp/internal/langerr"
	"wisp/internal/value"
)

// loop is the fetch/decode/execute driver of spec.md §4.5. It fetches the
// instruction at pc, advances pc, dispatches to the opcode's handler, and
// inspects outcomes in this order: a coroutine yield, then an error, then an
// ordinary terminating result, and only when the instruction produced no
// result, a debugger suspension request.
func (act *Activation) loop() ([]value.Value, error) {
	for {
		if act.pc < 0 || act.pc >= len(act.fn.Proto.Instructions) {
			act.terminated = true
			return nil, nil
		}

		instrPC := act.pc
		instr := Instruction(act.fn.Proto.Instructions[instrPC])
		act.pc++

		result, err := act.dispatch(instr)

		if yielded, ok := err.(*YieldSignal); ok {
			act.pc = instrPC // re-enter the suspending CALL/TAILCALL on resume
			ctrl := act.fn.Ctx.Coroutine
			if ctrl == nil {
				return nil, langerr.New(langerr.HostError, "yield outside a coroutine")
			}
			final, isEntry := ctrl.Suspend(act, yielded.Vars)
			if isEntry {
				return final, nil
			}
			return nil, yielded // propagate the same signal to the caller's CALL handler
		}

		if err != nil {
			lerr := toLangError(err)
			return nil, lerr.WithFrame(act.fn.Proto.SourceName, act.fn.Proto.Line(instrPC))
		}

		if result != nil {
			act.terminated = true
			act.closeFrom(0)
			return result, nil
		}

		if debug := act.fn.Ctx.Debug; debug != nil && debug.ShouldSuspend(act) {
			debug.Suspend(act)
			return nil, nil
		}
	}
}

func toLangError(err error) *langerr.Error {
	if le, ok := err.(*langerr.Error); ok {
		return le
	}
	return langerr.WrapHost(err)
}
