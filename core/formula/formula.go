// Package formula compiles and evaluates user-authored scoring scripts.
//
// A script is one or more lines. Blank lines are ignored, the last line is the
// returned expression (an optional leading "return" is accepted) and the lines
// before it may declare bindings with const, let or var. Scripts only see the
// scoring context: c (current), p (previous), r (ratio as a fraction), the math
// library and interpolation. Evaluation is bounded by a step budget and a
// wall-clock timeout; every failure is reported as a *Error.
package formula

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Default execution bounds.
const (
	DefaultTimeout  = 250 * time.Millisecond
	DefaultMaxSteps = 100_000
)

// Options bounds a single evaluation. Zero values disable the bound.
type Options struct {
	Timeout  time.Duration
	MaxSteps int
}

// DefaultOptions returns the default execution bounds.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, MaxSteps: DefaultMaxSteps}
}

// Inputs are the values bound to c, p and r. Ratio is a percentage and is
// divided by 100 before binding to r.
type Inputs struct {
	Current  *float64
	Previous *float64
	Ratio    float64
}

// Program is a compiled script. It holds no evaluation state and may be
// evaluated concurrently.
type Program struct {
	source string
	stmts  []stmt
	result expr
	nslots int
}

// Source returns the script the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// ShouldEvaluate reports whether script contains anything but whitespace.
func ShouldEvaluate(script string) bool {
	return strings.TrimSpace(script) != ""
}

// Compile parses script into a Program.
func Compile(script string) (*Program, error) {
	if len(script) > MaxScriptBytes {
		return nil, &Error{Kind: KindLimit, Msg: fmt.Sprintf("%s (%d bytes, limit %d)", ErrScriptTooLarge, len(script), MaxScriptBytes), Err: ErrScriptTooLarge}
	}
	lines := splitLines(script)
	if len(lines) == 0 {
		return nil, &Error{Kind: KindSyntax, Msg: ErrEmptyScript.Error(), Err: ErrEmptyScript}
	}

	prog, err := newParser().parseProgram(lines)
	if err != nil {
		return nil, err
	}
	prog.source = script
	return prog, nil
}

// Check compiles script without running it.
func Check(script string) error {
	_, err := Compile(script)
	return err
}

// Eval runs the program against in.
func (p *Program) Eval(ctx context.Context, in Inputs, opts Options) (float64, error) {
	return p.eval(ctx, in, opts, time.Now)
}

func (p *Program) eval(ctx context.Context, in Inputs, opts Options, now func() time.Time) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, &Error{Kind: KindRuntime, Msg: fmt.Sprintf("evaluation failed: %v", r)}
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	m := &machine{
		ctx:      ctx,
		slots:    make([]value, p.nslots),
		maxSteps: opts.MaxSteps,
		now:      now,
	}
	if opts.Timeout > 0 {
		m.deadline = now().Add(opts.Timeout)
	}
	m.slots[currentSlot] = optionalNumber(in.Current)
	m.slots[previousSlot] = optionalNumber(in.Previous)
	m.slots[ratioSlot] = number(in.Ratio / 100)

	for _, s := range p.stmts {
		v, err := m.eval(s.x)
		if err != nil {
			return 0, err
		}
		if s.slot >= 0 {
			m.slots[s.slot] = v
		}
	}

	v, err := m.eval(p.result)
	if err != nil {
		return 0, err
	}
	return result(v, p.result.position())
}

// Evaluator compiles and runs scripts with fixed execution bounds.
type Evaluator struct {
	opts Options
	now  func() time.Time
}

// NewEvaluator returns an Evaluator using opts.
func NewEvaluator(opts Options) *Evaluator {
	return &Evaluator{opts: opts, now: time.Now}
}

// Evaluate compiles and runs script. Failures never escape as panics; they are
// returned as *Error.
func (e *Evaluator) Evaluate(ctx context.Context, script string, in Inputs) (float64, error) {
	prog, err := Compile(script)
	if err != nil {
		return 0, err
	}
	return prog.eval(ctx, in, e.opts, e.now)
}

var defaultEvaluator = NewEvaluator(DefaultOptions())

// Evaluate runs script with the default bounds.
func Evaluate(script string, current, previous *float64, ratio float64) (float64, error) {
	return defaultEvaluator.Evaluate(context.Background(), script, Inputs{Current: current, Previous: previous, Ratio: ratio})
}
