package machine

import (
	"math"

	"wisp/internal/langerr"
	"wisp/internal/value"
)

// rk decodes an RK-encoded operand (spec.md §3/§4.4): values >= 256 name a
// constant, values < 256 name a register.
func (act *Activation) rk(x uint16) value.Value {
	if isConstOperand(x) {
		idx := int(x) - rkConstBase
		if idx >= 0 && idx < len(act.fn.Proto.Constants) {
			return act.fn.Proto.Constants[idx]
		}
		return value.Nil{}
	}
	return act.Regs.Get(int(x))
}

// dispatch runs the handler for one instruction. A non-nil result marks
// the activation terminated (RETURN only); any other error, including a
// *YieldSignal, propagates to loop() for the suspend/error bookkeeping.
func (act *Activation) dispatch(in Instruction) ([]value.Value, error) {
	switch in.OpCode() {
	case OpMove:
		act.Regs.Set(int(in.A()), act.Regs.Get(int(in.B())))
		return nil, nil
	case OpLoadK:
		act.Regs.Set(int(in.A()), act.constant(int(in.Bx())))
		return nil, nil
	case OpLoadBool:
		act.Regs.Set(int(in.A()), value.Boolean(in.B() != 0))
		if in.C() != 0 {
			act.pc++
		}
		return nil, nil
	case OpLoadNil:
		for i := int(in.A()); i <= int(in.B()); i++ {
			act.Regs.Set(i, value.Nil{})
		}
		return nil, nil
	case OpGetUpval:
		act.Regs.Set(int(in.A()), act.fn.Upvalues[int(in.B())].Get())
		return nil, nil
	case OpSetUpval:
		act.fn.Upvalues[int(in.B())].Set(act.Regs.Get(int(in.A())))
		return nil, nil
	case OpGetGlobal:
		return nil, act.opGetGlobal(in)
	case OpSetGlobal:
		name, _ := act.constant(int(in.Bx())).(value.String)
		act.fn.Ctx.Globals.Set(string(name), act.Regs.Get(int(in.A())))
		return nil, nil
	case OpGetTable:
		return nil, act.opGetTable(in)
	case OpSetTable:
		key := act.rk(in.B())
		val := act.rk(in.C())
		return nil, setIndexValue(act.Regs.Get(int(in.A())), key, val)
	case OpNewTable:
		act.Regs.Set(int(in.A()), value.NewTable())
		return nil, nil
	case OpSelf:
		return nil, act.opSelf(in)
	case OpAdd:
		return nil, act.opArith(in, value.MetaAdd, func(a, b float64) float64 { return a + b })
	case OpSub:
		return nil, act.opArith(in, value.MetaSub, func(a, b float64) float64 { return a - b })
	case OpMul:
		return nil, act.opArith(in, value.MetaMul, func(a, b float64) float64 { return a * b })
	case OpDiv:
		return nil, act.opArith(in, value.MetaDiv, func(a, b float64) float64 { return a / b })
	case OpMod:
		return nil, act.opArith(in, value.MetaMod, math.Mod)
	case OpPow:
		return nil, act.opArith(in, value.MetaPow, math.Pow)
	case OpUnm:
		return nil, act.opUnm(in)
	case OpNot:
		act.Regs.Set(int(in.A()), value.Boolean(!value.Truthy(act.Regs.Get(int(in.B())))))
		return nil, nil
	case OpLen:
		return nil, act.opLen(in)
	case OpConcat:
		return nil, act.opConcat(in)
	case OpJmp:
		act.pc += int(in.SBx())
		return nil, nil
	case OpEq:
		return nil, act.opEq(in)
	case OpLt:
		return nil, act.opCompare(in, true)
	case OpLe:
		return nil, act.opCompare(in, false)
	case OpTest:
		if value.Truthy(act.Regs.Get(int(in.A()))) != (in.C() != 0) {
			act.pc++
		}
		return nil, nil
	case OpTestSet:
		if value.Truthy(act.Regs.Get(int(in.B()))) == (in.C() != 0) {
			act.Regs.Set(int(in.A()), act.Regs.Get(int(in.B())))
		} else {
			act.pc++
		}
		return nil, nil
	case OpCall:
		return act.opCall(int(in.A()), in.B(), in.C())
	case OpTailCall:
		return act.opCall(int(in.A()), in.B(), 0)
	case OpReturn:
		return act.opReturn(in), nil
	case OpForLoop:
		act.opForLoop(in)
		return nil, nil
	case OpForPrep:
		act.opForPrep(in)
		return nil, nil
	case OpTForLoop:
		return nil, act.opTForLoop(in)
	case OpSetList:
		return nil, act.opSetList(in)
	case OpClose:
		act.closeFrom(int(in.A()))
		return nil, nil
	case OpClosure:
		act.opClosure(in)
		return nil, nil
	case OpVarArg:
		act.opVarArg(in)
		return nil, nil
	default:
		return nil, langerr.New(langerr.UnknownOpcode, "unknown opcode %d", in.OpCode())
	}
}

func (act *Activation) constant(idx int) value.Value {
	if idx < 0 || idx >= len(act.fn.Proto.Constants) {
		return value.Nil{}
	}
	return act.fn.Proto.Constants[idx]
}

func (act *Activation) opGetGlobal(in Instruction) error {
	name, _ := act.constant(int(in.Bx())).(value.String)
	if string(name) == "_G" {
		act.Regs.Set(int(in.A()), act.fn.Ctx.Globals.AsTable())
		return nil
	}
	act.Regs.Set(int(in.A()), act.fn.Ctx.Globals.Get(string(name)))
	return nil
}

func (act *Activation) opGetTable(in Instruction) error {
	key := act.rk(in.C())
	v, err := indexValue(act.fn.Ctx, act.Regs.Get(int(in.B())), key)
	if err != nil {
		return err
	}
	act.Regs.Set(int(in.A()), v)
	return nil
}

func (act *Activation) opSelf(in Instruction) error {
	base := act.Regs.Get(int(in.B()))
	act.Regs.Set(int(in.A())+1, base)
	v, err := indexValue(act.fn.Ctx, base, act.rk(in.C()))
	if err != nil {
		return err
	}
	act.Regs.Set(int(in.A()), v)
	return nil
}

func (act *Activation) opArith(in Instruction, meta string, op binaryOp) error {
	left := act.rk(in.B())
	right := act.rk(in.C())
	result, err := arithDispatch(act.fn.Ctx, meta, left, right, op)
	if err != nil {
		return err
	}
	act.Regs.Set(int(in.A()), result)
	return nil
}

func (act *Activation) opUnm(in Instruction) error {
	operand := act.rk(in.B())
	result, err := unaryArithDispatch(act.fn.Ctx, value.MetaUnm, operand, func(a float64) float64 { return -a })
	if err != nil {
		return err
	}
	act.Regs.Set(int(in.A()), result)
	return nil
}

func (act *Activation) opLen(in Instruction) error {
	result, err := lengthOf(act.Regs.Get(int(in.B())))
	if err != nil {
		return err
	}
	act.Regs.Set(int(in.A()), result)
	return nil
}

func (act *Activation) opConcat(in Instruction) error {
	b, c := int(in.B()), int(in.C())
	acc := act.Regs.Get(c)
	for i := c - 1; i >= b; i-- {
		left := act.Regs.Get(i)
		result, err := concatStep(act.fn.Ctx, left, acc)
		if err != nil {
			return err
		}
		acc = result
	}
	act.Regs.Set(int(in.A()), acc)
	return nil
}

func (act *Activation) opEq(in Instruction) error {
	eq, err := valuesEqual(act.fn.Ctx, act.rk(in.B()), act.rk(in.C()))
	if err != nil {
		return err
	}
	if eq != (in.A() != 0) {
		act.pc++
	}
	return nil
}

func (act *Activation) opCompare(in Instruction, strict bool) error {
	result, err := compareDispatch(act.fn.Ctx, act.rk(in.B()), act.rk(in.C()), strict)
	if err != nil {
		return err
	}
	if result != (in.A() != 0) {
		act.pc++
	}
	return nil
}

// opCall implements CALL(A,B,C) and, via c==0, TAILCALL(A,B) (spec.md
// §4.4): it is the sole suspension point of the whole core. On a resumed
// re-entry, pendingResume substitutes for the call outright so the splice
// phase runs against the yielded values instead of invoking the callee
// again.
func (act *Activation) opCall(a int, b, c uint16) ([]value.Value, error) {
	var results []value.Value
	if act.hasPendingResume {
		results = act.pendingResume
		act.pendingResume = nil
		act.hasPendingResume = false
	} else {
		callee := act.Regs.Get(a)
		var args []value.Value
		if b > 0 {
			args = act.Regs.Slice(a+1, a+int(b))
		} else {
			args = act.Regs.Slice(a+1, act.Regs.Len())
		}
		r, err := callValue(act.fn.Ctx, callee, args)
		if err != nil {
			return nil, err
		}
		results = r
	}

	if c == 0 {
		act.Regs.Truncate(a)
		for i, v := range results {
			act.Regs.Set(a+i, v)
		}
	} else {
		n := int(c) - 1
		for i := 0; i < n; i++ {
			if i < len(results) {
				act.Regs.Set(a+i, results[i])
			} else {
				act.Regs.Set(a+i, value.Nil{})
			}
		}
	}
	return nil, nil
}

// opReturn implements RETURN(A,B): gather the return values, then close
// every still-open captured-local (spec.md §4.4/§9's cycle-breaking note).
func (act *Activation) opReturn(in Instruction) []value.Value {
	a, b := int(in.A()), int(in.B())
	var vals []value.Value
	if b > 0 {
		vals = act.Regs.Slice(a, a+b-1)
	} else {
		vals = act.Regs.Slice(a, act.Regs.Len())
	}
	act.closeFrom(0)
	if vals == nil {
		vals = []value.Value{}
	}
	return vals
}

func (act *Activation) regNumber(i int) float64 {
	n, _ := value.ToNumber(act.Regs.Get(i))
	return float64(n)
}

func (act *Activation) opForPrep(in Instruction) {
	a := int(in.A())
	init := act.regNumber(a)
	step := act.regNumber(a + 2)
	act.Regs.Set(a, value.Number(init-step))
	act.pc += int(in.SBx())
}

func (act *Activation) opForLoop(in Instruction) {
	a := int(in.A())
	step := act.regNumber(a + 2)
	newInit := act.regNumber(a) + step
	limit := act.regNumber(a + 1)

	cont := newInit <= limit
	if step < 0 {
		cont = newInit >= limit
	}
	if cont {
		act.Regs.Set(a, value.Number(newInit))
		act.Regs.Set(a+3, value.Number(newInit))
		act.pc += int(in.SBx())
	}
}

func (act *Activation) opTForLoop(in Instruction) error {
	a, c := int(in.A()), int(in.C())
	callee := act.Regs.Get(a)
	results, err := callValue(act.fn.Ctx, callee, []value.Value{act.Regs.Get(a + 1), act.Regs.Get(a + 2)})
	if err != nil {
		return err
	}

	for i := 0; i < c; i++ {
		var v value.Value = value.Nil{}
		if i < len(results) {
			v = results[i]
		}
		act.Regs.Set(a+3+i, v)
	}

	if s, ok := act.Regs.Get(a + 3).(value.String); ok {
		if f, ok := roundTripsExactly(string(s)); ok {
			act.Regs.Set(a+3, value.Number(f))
		}
	}

	if _, isNil := act.Regs.Get(a + 3).(value.Nil); !isNil {
		act.Regs.Set(a+2, act.Regs.Get(a+3))
	} else {
		act.pc++
	}
	return nil
}

// opSetList implements SETLIST(A,B,C): spec.md §4.4's 50-per-batch field
// offset.
func (act *Activation) opSetList(in Instruction) error {
	a, b, c := int(in.A()), int(in.B()), int(in.C())
	length := b
	if b == 0 {
		length = act.Regs.Len() - a - 1
	}
	t, ok := act.Regs.Get(a).(*value.Table)
	if !ok {
		return langerr.New(langerr.IndexNil, "SETLIST target is not a table")
	}
	base := 50 * (c - 1)
	for i := 1; i <= length; i++ {
		t.SetMember(value.Number(base+i), act.Regs.Get(a+i))
	}
	return nil
}

// opClosure implements CLOSURE(A,Bx): create the closure, then consume the
// upvalue-binding pseudo-instructions that immediately follow it (spec.md
// §4.4).
func (act *Activation) opClosure(in Instruction) {
	nested := act.fn.Proto.Functions[int(in.Bx())]
	fn := &Function{Proto: nested, Ctx: act.fn.Ctx}
	cells := make([]*Cell, len(nested.Upvalues))
	for i := range nested.Upvalues {
		pseudo := Instruction(act.fn.Proto.Instructions[act.pc])
		act.pc++
		b := int(pseudo.B())
		if pseudo.OpCode() == OpGetUpval {
			cells[i] = act.fn.Upvalues[b]
		} else {
			cells[i] = act.findOrCreateCell(b)
		}
	}
	fn.Upvalues = cells
	act.Regs.Set(int(in.A()), fn)
}

// opVarArg implements VARARG(A,B) (spec.md §4.4).
func (act *Activation) opVarArg(in Instruction) {
	a, b := int(in.A()), int(in.B())
	paramCount := act.fn.Proto.ParamCount
	extras := len(act.args) - paramCount
	if extras < 0 {
		extras = 0
	}
	limit := extras
	if b > 0 {
		limit = b - 1
	}
	for i := 0; i < limit; i++ {
		var v value.Value = value.Nil{}
		if i < extras {
			v = act.args[paramCount+i]
		}
		act.Regs.Set(a+i, v)
	}
	if b == 0 {
		act.Regs.Truncate(a + limit)
	}
}
