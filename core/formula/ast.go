package formula

// expr is an expression node.
type expr interface {
	position() position
}

type (
	literalExpr struct {
		pos position
		val value
	}

	// slotExpr reads a context variable or local binding.
	slotExpr struct {
		pos  position
		name string
		slot int
	}

	unaryExpr struct {
		pos position
		op  string
		x   expr
	}

	binaryExpr struct {
		pos  position
		op   string
		l, r expr
	}

	// logicalExpr covers the short-circuit operators &&, || and ??.
	logicalExpr struct {
		pos  position
		op   string
		l, r expr
	}

	conditionalExpr struct {
		pos             position
		cond, then, alt expr
	}

	callExpr struct {
		pos    position
		callee expr
		name   string
		args   []expr
	}
)

func (e *literalExpr) position() position     { return e.pos }
func (e *slotExpr) position() position        { return e.pos }
func (e *unaryExpr) position() position       { return e.pos }
func (e *binaryExpr) position() position      { return e.pos }
func (e *logicalExpr) position() position     { return e.pos }
func (e *conditionalExpr) position() position { return e.pos }
func (e *callExpr) position() position        { return e.pos }

// stmt stores the value of x into slot, or discards it when slot is negative.
type stmt struct {
	pos  position
	slot int
	x    expr
}
