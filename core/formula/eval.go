package formula

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// checkInterval is how many steps run between clock and context checks.
const checkInterval = 64

// machine executes one Program. It is not reused across evaluations.
type machine struct {
	ctx      context.Context
	slots    []value
	steps    int
	maxSteps int
	deadline time.Time
	now      func() time.Time
}

func (m *machine) tick(pos position) error {
	m.steps++
	if m.maxSteps > 0 && m.steps > m.maxSteps {
		return wrapError(KindLimit, pos, ErrStepLimit)
	}
	if m.steps != 1 && m.steps%checkInterval != 0 {
		return nil
	}
	if err := m.ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: KindLimit, Line: pos.line, Column: pos.col, Msg: ErrTimeout.Error(), Err: errors.Join(ErrTimeout, err)}
		}
		return wrapError(KindLimit, pos, err)
	}
	if !m.deadline.IsZero() && m.now().After(m.deadline) {
		return wrapError(KindLimit, pos, ErrTimeout)
	}
	return nil
}

func (m *machine) eval(e expr) (value, error) {
	if err := m.tick(e.position()); err != nil {
		return undefined, err
	}

	switch x := e.(type) {
	case *literalExpr:
		return x.val, nil

	case *slotExpr:
		return m.slots[x.slot], nil

	case *unaryExpr:
		v, err := m.eval(x.x)
		if err != nil {
			return undefined, err
		}
		switch x.op {
		case "-":
			return number(-v.toNumber()), nil
		case "+":
			return number(v.toNumber()), nil
		default:
			return boolean(!v.truthy()), nil
		}

	case *binaryExpr:
		l, err := m.eval(x.l)
		if err != nil {
			return undefined, err
		}
		r, err := m.eval(x.r)
		if err != nil {
			return undefined, err
		}
		return applyBinary(x.op, l, r), nil

	case *logicalExpr:
		l, err := m.eval(x.l)
		if err != nil {
			return undefined, err
		}
		switch x.op {
		case "&&":
			if !l.truthy() {
				return l, nil
			}
		case "||":
			if l.truthy() {
				return l, nil
			}
		default: // ??
			if !l.absent() {
				return l, nil
			}
		}
		return m.eval(x.r)

	case *conditionalExpr:
		cond, err := m.eval(x.cond)
		if err != nil {
			return undefined, err
		}
		if cond.truthy() {
			return m.eval(x.then)
		}
		return m.eval(x.alt)

	case *callExpr:
		callee, err := m.eval(x.callee)
		if err != nil {
			return undefined, err
		}
		if callee.kind != funcValue {
			return undefined, runtimeErrorf(x.pos, "%s is not a function", x.name)
		}
		args := make([]value, len(x.args))
		for i, a := range x.args {
			if args[i], err = m.eval(a); err != nil {
				return undefined, err
			}
		}
		v, err := callee.fn.call(args)
		if err != nil {
			return undefined, wrapError(KindRuntime, x.pos, err)
		}
		return v, nil
	}

	return undefined, runtimeErrorf(e.position(), "unsupported expression %T", e)
}

func applyBinary(op string, l, r value) value {
	switch op {
	case "===":
		return boolean(strictEquals(l, r))
	case "!==":
		return boolean(!strictEquals(l, r))
	case "==":
		return boolean(looseEquals(l, r))
	case "!=":
		return boolean(!looseEquals(l, r))
	}

	a, b := l.toNumber(), r.toNumber()
	switch op {
	case "+":
		return number(a + b)
	case "-":
		return number(a - b)
	case "*":
		return number(a * b)
	case "/":
		return number(a / b)
	case "%":
		return number(math.Mod(a, b))
	case "**":
		return number(pow(a, b))
	case "<":
		return boolean(a < b)
	case "<=":
		return boolean(a <= b)
	case ">":
		return boolean(a > b)
	case ">=":
		return boolean(a >= b)
	}
	return undefined
}

// result converts the returned value into a finite score.
func result(v value, pos position) (float64, error) {
	switch v.kind {
	case numberValue, boolValue:
		n := v.toNumber()
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, nil
		}
		return 0, &Error{Kind: KindResult, Line: pos.line, Column: pos.col, Msg: fmt.Sprintf("%s (got %v)", ErrNotFinite, n), Err: ErrNotFinite}
	default:
		return 0, &Error{Kind: KindResult, Line: pos.line, Column: pos.col, Msg: fmt.Sprintf("%s (got %s)", ErrNotFinite, v.typeName()), Err: ErrNotFinite}
	}
}
