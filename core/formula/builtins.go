package formula

import (
	"fmt"
	"math"
	"sort"
)

// builtin is a function visible to scripts.
type builtin struct {
	name      string
	signature string
	doc       string
	call      func(args []value) (value, error)
}

// SymbolKind tells apart the names visible to a script.
type SymbolKind string

// All symbol kinds.
const (
	VariableSymbol SymbolKind = "variable"
	ConstantSymbol SymbolKind = "constant"
	FunctionSymbol SymbolKind = "function"
)

// Symbol describes one name in the scoring context.
type Symbol struct {
	Name        string     `json:"name"`
	Kind        SymbolKind `json:"kind"`
	Signature   string     `json:"signature"`
	Description string     `json:"description"`
}

// Context variable names bound for every evaluation.
const (
	CurrentName  = "c"
	PreviousName = "p"
	RatioName    = "r"
)

// InterpolationName is the name of the piecewise-linear helper.
const InterpolationName = "interpolation"

var contextVariables = []Symbol{
	{Name: CurrentName, Kind: VariableSymbol, Signature: CurrentName, Description: "Current value (undefined when absent)"},
	{Name: PreviousName, Kind: VariableSymbol, Signature: PreviousName, Description: "Previous value (undefined when absent)"},
	{Name: RatioName, Kind: VariableSymbol, Signature: RatioName, Description: "Ratio between current and previous as a fraction (percentage / 100)"},
}

var constants = map[string]struct {
	v   float64
	doc string
}{
	"E":       {math.E, "Euler's number"},
	"LN2":     {math.Ln2, "Natural logarithm of 2"},
	"LN10":    {math.Ln10, "Natural logarithm of 10"},
	"LOG2E":   {math.Log2E, "Base 2 logarithm of E"},
	"LOG10E":  {math.Log10E, "Base 10 logarithm of E"},
	"PI":      {math.Pi, "Ratio of a circle's circumference to its diameter"},
	"SQRT1_2": {math.Sqrt2 / 2, "Square root of 1/2"},
	"SQRT2":   {math.Sqrt2, "Square root of 2"},
}

// library holds every built-in name except the context variables.
var library = buildLibrary()

func buildLibrary() map[string]value {
	lib := make(map[string]value)
	for name, c := range constants {
		lib[name] = number(c.v)
	}

	unary := map[string]struct {
		f   func(float64) float64
		doc string
	}{
		"abs":    {math.Abs, "Absolute value"},
		"acos":   {math.Acos, "Arccosine"},
		"acosh":  {math.Acosh, "Hyperbolic arccosine"},
		"asin":   {math.Asin, "Arcsine"},
		"asinh":  {math.Asinh, "Hyperbolic arcsine"},
		"atan":   {math.Atan, "Arctangent"},
		"atanh":  {math.Atanh, "Hyperbolic arctangent"},
		"cbrt":   {math.Cbrt, "Cube root"},
		"ceil":   {math.Ceil, "Smallest integer greater than or equal to x"},
		"clz32":  {clz32, "Leading zero bits of the 32-bit integer representation"},
		"cos":    {math.Cos, "Cosine"},
		"cosh":   {math.Cosh, "Hyperbolic cosine"},
		"exp":    {math.Exp, "E raised to x"},
		"expm1":  {math.Expm1, "E raised to x, minus 1"},
		"floor":  {math.Floor, "Largest integer less than or equal to x"},
		"fround": {fround, "Nearest single precision float"},
		"log":    {math.Log, "Natural logarithm"},
		"log1p":  {math.Log1p, "Natural logarithm of 1 + x"},
		"log2":   {math.Log2, "Base 2 logarithm"},
		"log10":  {math.Log10, "Base 10 logarithm"},
		"round":  {roundHalfUp, "Nearest integer, halves rounded up"},
		"sign":   {sign, "Sign of x: -1, 0 or 1"},
		"sin":    {math.Sin, "Sine"},
		"sinh":   {math.Sinh, "Hyperbolic sine"},
		"sqrt":   {math.Sqrt, "Square root"},
		"tan":    {math.Tan, "Tangent"},
		"tanh":   {math.Tanh, "Hyperbolic tangent"},
		"trunc":  {math.Trunc, "Integer part of x"},
	}
	for name, u := range unary {
		f := u.f
		lib[name] = value{kind: funcValue, fn: &builtin{
			name:      name,
			signature: name + "(x)",
			doc:       u.doc,
			call: func(args []value) (value, error) {
				return number(f(arg(args, 0))), nil
			},
		}}
	}

	fns := []*builtin{
		{name: "atan2", signature: "atan2(y, x)", doc: "Arctangent of y/x", call: func(args []value) (value, error) {
			return number(math.Atan2(arg(args, 0), arg(args, 1))), nil
		}},
		{name: "pow", signature: "pow(x, y)", doc: "x raised to y", call: func(args []value) (value, error) {
			return number(pow(arg(args, 0), arg(args, 1))), nil
		}},
		{name: "imul", signature: "imul(a, b)", doc: "32-bit integer multiplication", call: func(args []value) (value, error) {
			return number(float64(toInt32(arg(args, 0)) * toInt32(arg(args, 1)))), nil
		}},
		{name: "hypot", signature: "hypot(x, ...)", doc: "Square root of the sum of squares", call: func(args []value) (value, error) {
			h := 0.0
			for _, a := range args {
				h = math.Hypot(h, a.toNumber())
			}
			return number(h), nil
		}},
		{name: "max", signature: "max(x, ...)", doc: "Largest argument (-Infinity without arguments)", call: func(args []value) (value, error) {
			return number(extreme(args, math.Inf(-1), func(a, b float64) bool { return a > b })), nil
		}},
		{name: "min", signature: "min(x, ...)", doc: "Smallest argument (Infinity without arguments)", call: func(args []value) (value, error) {
			return number(extreme(args, math.Inf(1), func(a, b float64) bool { return a < b })), nil
		}},
		{name: InterpolationName, signature: "interpolation(value, min, minScore, max, maxScore)", doc: "Piecewise-linear mapping of value from [min, max] onto [minScore, maxScore]", call: callInterpolation},
	}
	for _, fn := range fns {
		lib[fn.name] = value{kind: funcValue, fn: fn}
	}
	return lib
}

// arg returns the numeric value of args[i], or NaN when missing.
func arg(args []value, i int) float64 {
	if i >= len(args) {
		return math.NaN()
	}
	return args[i].toNumber()
}

func extreme(args []value, start float64, better func(a, b float64) bool) float64 {
	result := start
	for _, a := range args {
		v := a.toNumber()
		if math.IsNaN(v) {
			return math.NaN()
		}
		if better(v, result) {
			result = v
		}
	}
	return result
}

func roundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Floor(x + 0.5)
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

func fround(x float64) float64 {
	return float64(float32(x))
}

// pow differs from math.Pow where IEEE and ECMAScript disagree.
func pow(x, y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	if math.Abs(x) == 1 && math.IsInf(y, 0) {
		return math.NaN()
	}
	return math.Pow(x, y)
}

func toUint32(x float64) uint32 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return uint32(int64(math.Mod(math.Trunc(x), 1<<32)))
}

func toInt32(x float64) int32 {
	return int32(toUint32(x))
}

func clz32(x float64) float64 {
	u := toUint32(x)
	n := 0
	for i := 31; i >= 0; i-- {
		if u&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	return float64(n)
}

func callInterpolation(args []value) (value, error) {
	var v any
	if len(args) > 0 && args[0].kind == numberValue {
		v = args[0].num
	}
	minScore := 0.0
	if len(args) > 2 && !args[2].absent() {
		minScore = args[2].toNumber()
	}
	maxScore := 0.0
	if len(args) > 4 && !args[4].absent() {
		maxScore = args[4].toNumber()
	}
	score, err := Interpolate(v, arg(args, 1), minScore, arg(args, 3), maxScore)
	if err != nil {
		return undefined, err
	}
	return number(score), nil
}

// Symbols lists every name visible to a script: context variables first,
// then constants and functions in alphabetical order.
func Symbols() []Symbol {
	out := make([]Symbol, 0, len(contextVariables)+len(library))
	out = append(out, contextVariables...)

	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if c, ok := constants[name]; ok {
			out = append(out, Symbol{Name: name, Kind: ConstantSymbol, Signature: name, Description: fmt.Sprintf("%s (%g)", c.doc, c.v)})
		}
	}
	for _, name := range names {
		v := library[name]
		if v.kind == funcValue {
			out = append(out, Symbol{Name: name, Kind: FunctionSymbol, Signature: v.fn.signature, Description: v.fn.doc})
		}
	}
	return out
}
