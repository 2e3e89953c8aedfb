package machine

import (
	"strconv"

	"wisp/internal/langerr"
	"wisp/internal/value"
)

// callValue invokes any Callable value, surfacing CallNonCallable for
// anything else (spec.md §4.4 CALL, and every metamethod dispatch site).
func callValue(ctx *ExecContext, callee value.Value, args []value.Value) ([]value.Value, error) {
	c, ok := callee.(value.Callable)
	if !ok {
		return nil, langerr.New(langerr.CallNonCallable, "attempt to call a %s value", callee.Type())
	}
	return c.Call(args)
}

func first(vs []value.Value) value.Value {
	if len(vs) == 0 {
		return value.Nil{}
	}
	return vs[0]
}

// binaryOp is one arithmetic operator's float computation.
type binaryOp func(a, b float64) float64

// arithDispatch implements the shared shape of ADD/SUB/MUL/DIV/MOD/POW
// (spec.md §4.4): try the left operand's metamethod first, then require
// both operands to be numeric.
func arithDispatch(ctx *ExecContext, metaName string, left, right value.Value, op binaryOp) (value.Value, error) {
	if t, ok := left.(*value.Table); ok {
		if mm, found := t.Metamethod(metaName); found {
			res, err := callValue(ctx, mm, []value.Value{left, right})
			if err != nil {
				return nil, err
			}
			return first(res), nil
		}
	}
	if !value.IsNumeric(left) || !value.IsNumeric(right) {
		return nil, langerr.New(langerr.ArithOnNonNumeric, "attempt to perform arithmetic on a %s value", nonNumericOperand(left, right))
	}
	ln, _ := value.ToNumber(left)
	rn, _ := value.ToNumber(right)
	return value.Number(op(float64(ln), float64(rn))), nil
}

// unaryArithDispatch implements UNM: the metamethod (if any) is invoked
// with the operand in both argument positions, matching spec.md §4.4's
// "invoke the metamethod with (left, right)" phrasing applied to a single
// operand.
func unaryArithDispatch(ctx *ExecContext, metaName string, operand value.Value, op func(float64) float64) (value.Value, error) {
	if t, ok := operand.(*value.Table); ok {
		if mm, found := t.Metamethod(metaName); found {
			res, err := callValue(ctx, mm, []value.Value{operand, operand})
			if err != nil {
				return nil, err
			}
			return first(res), nil
		}
	}
	if !value.IsNumeric(operand) {
		return nil, langerr.New(langerr.ArithOnNonNumeric, "attempt to perform arithmetic on a %s value", operand.Type())
	}
	n, _ := value.ToNumber(operand)
	return value.Number(op(float64(n))), nil
}

func nonNumericOperand(left, right value.Value) string {
	if !value.IsNumeric(left) {
		return left.Type()
	}
	return right.Type()
}

// concatStep folds one more operand into the accumulator from the right,
// per spec.md §4.4 CONCAT.
func concatStep(ctx *ExecContext, left, acc value.Value) (value.Value, error) {
	if t, ok := left.(*value.Table); ok {
		if mm, found := t.Metamethod(value.MetaConcat); found {
			res, err := callValue(ctx, mm, []value.Value{left, acc})
			if err != nil {
				return nil, err
			}
			return first(res), nil
		}
	}
	if !concatable(left) || !concatable(acc) {
		return nil, langerr.New(langerr.ConcatOnNonStringNumber, "attempt to concatenate a %s value", concatBadOperand(left, acc))
	}
	return value.String(left.String() + acc.String()), nil
}

func concatable(v value.Value) bool {
	switch v.(type) {
	case value.String, value.Number:
		return true
	default:
		return false
	}
}

func concatBadOperand(left, acc value.Value) string {
	if !concatable(left) {
		return left.Type()
	}
	return acc.Type()
}

// compareDispatch implements LT/LE (spec.md §4.4 and §9's documented
// quirk): both always consult `__le` on the left table operand when the
// operands are tables of identical kind and non-identical; otherwise fall
// to a numeric or lexicographic comparison, strict for LT, non-strict for
// LE.
func compareDispatch(ctx *ExecContext, left, right value.Value, strict bool) (bool, error) {
	lt, lok := left.(*value.Table)
	rt, rok := right.(*value.Table)
	if lok && rok && lt != rt {
		if mm, found := lt.Metamethod(value.MetaLe); found {
			res, err := callValue(ctx, mm, []value.Value{left, right})
			if err != nil {
				return false, err
			}
			return value.Truthy(first(res)), nil
		}
	}
	if value.IsNumeric(left) && value.IsNumeric(right) {
		ln, _ := value.ToNumber(left)
		rn, _ := value.ToNumber(right)
		if strict {
			return ln < rn, nil
		}
		return ln <= rn, nil
	}
	if ls, ok := left.(value.String); ok {
		if rs, ok2 := right.(value.String); ok2 {
			if strict {
				return ls < rs, nil
			}
			return ls <= rs, nil
		}
	}
	return false, langerr.New(langerr.ArithOnNonNumeric, "attempt to compare a %s value", left.Type())
}

// valuesEqual implements EQ's default identity rule: numbers by value,
// strings by content, everything else (booleans, nil, callables) by plain
// Go equality, which for our pointer-backed kinds (Function, Table,
// GoFunc) is reference identity.
func valuesEqual(ctx *ExecContext, left, right value.Value) (bool, error) {
	lt, lok := left.(*value.Table)
	rt, rok := right.(*value.Table)
	if lok && rok && lt != rt {
		if mm, found := lt.Metamethod(value.MetaEq); found {
			res, err := callValue(ctx, mm, []value.Value{left, right})
			if err != nil {
				return false, err
			}
			return value.Truthy(first(res)), nil
		}
	}
	return left == right, nil
}

// lengthOf implements LEN (spec.md §4.4): tables and strings have a
// well-defined length; nil fails; every other kind reports zero, since the
// generic host-object property bag LEN's "other object" case describes is
// out of scope here (spec.md §1).
func lengthOf(v value.Value) (value.Value, error) {
	switch t := v.(type) {
	case value.Nil:
		return nil, langerr.New(langerr.LengthOfNil, "attempt to get length of a nil value")
	case *value.Table:
		return value.Number(t.Len()), nil
	case value.String:
		return value.Number(len(string(t))), nil
	default:
		return value.Number(0), nil
	}
}

// indexValue implements GETTABLE/SELF's read side (spec.md §4.4).
func indexValue(ctx *ExecContext, base, key value.Value) (value.Value, error) {
	switch t := base.(type) {
	case value.Nil:
		return nil, langerr.New(langerr.IndexNil, "attempt to index a nil value")
	case *value.Table:
		return t.GetMember(key), nil
	case value.String:
		if ctx.StringLib != nil {
			if name, ok := key.(value.String); ok {
				if v, found := ctx.StringLib.Member(string(name)); found {
					return v, nil
				}
			}
		}
		return value.Nil{}, nil
	default:
		return value.Nil{}, nil
	}
}

// setIndexValue implements SETTABLE's write side (spec.md §4.4).
func setIndexValue(base, key, val value.Value) error {
	switch t := base.(type) {
	case value.Nil:
		return langerr.New(langerr.IndexNil, "index missing field")
	case *value.Table:
		t.SetMember(key, val)
		return nil
	default:
		return nil
	}
}

// roundTripsExactly reports whether s parses as a float and reformatting
// that float reproduces s exactly, the condition spec.md §4.4/§9's
// TFORLOOP coercion requires before replacing retvals[0] with a number.
func roundTripsExactly(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, strconv.FormatFloat(f, 'g', -1, 64) == s
}
