package formula

import "math"

type valueKind uint8

const (
	undefinedValue valueKind = iota
	nullValue
	numberValue
	boolValue
	funcValue
)

// value is a runtime value: a number, a boolean, absent (null/undefined)
// or a built-in function.
type value struct {
	kind valueKind
	num  float64
	b    bool
	fn   *builtin
}

var (
	undefined = value{kind: undefinedValue}
	null      = value{kind: nullValue}
)

func number(v float64) value {
	return value{kind: numberValue, num: v}
}

func boolean(b bool) value {
	return value{kind: boolValue, b: b}
}

// optionalNumber maps a nil pointer to undefined.
func optionalNumber(v *float64) value {
	if v == nil {
		return undefined
	}
	return number(*v)
}

// toNumber applies numeric coercion: undefined is NaN, null is 0, booleans are 0/1.
func (v value) toNumber() float64 {
	switch v.kind {
	case numberValue:
		return v.num
	case boolValue:
		if v.b {
			return 1
		}
		return 0
	case nullValue:
		return 0
	default:
		return math.NaN()
	}
}

func (v value) truthy() bool {
	switch v.kind {
	case numberValue:
		return v.num != 0 && !math.IsNaN(v.num)
	case boolValue:
		return v.b
	case funcValue:
		return true
	default:
		return false
	}
}

func (v value) absent() bool {
	return v.kind == undefinedValue || v.kind == nullValue
}

func (v value) typeName() string {
	switch v.kind {
	case numberValue:
		return "number"
	case boolValue:
		return "boolean"
	case nullValue:
		return "null"
	case funcValue:
		return "function"
	default:
		return "undefined"
	}
}

func strictEquals(a, b value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case numberValue:
		return a.num == b.num
	case boolValue:
		return a.b == b.b
	case funcValue:
		return a.fn == b.fn
	default:
		return true
	}
}

func looseEquals(a, b value) bool {
	if a.absent() || b.absent() {
		return a.absent() && b.absent()
	}
	if a.kind == funcValue || b.kind == funcValue {
		return strictEquals(a, b)
	}
	return a.toNumber() == b.toNumber()
}

func nan() float64 {
	return math.NaN()
}

func inf() float64 {
	return math.Inf(1)
}
