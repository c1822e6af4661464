package formula

import (
	"strings"
)

// Parser bounds.
const (
	MaxScriptBytes = 64 << 10
	MaxDepth       = 128
)

type bindingKind int

const (
	contextBinding bindingKind = iota
	constBinding
	mutableBinding
	libraryBinding
)

type binding struct {
	kind bindingKind
	slot int
	val  value
}

// Slots of the context variables; locals follow.
const (
	currentSlot = iota
	previousSlot
	ratioSlot
	firstLocalSlot
)

// keywords that are reserved but unsupported.
var unsupportedKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "function": {}, "new": {},
	"this": {}, "typeof": {}, "delete": {}, "void": {}, "class": {}, "import": {},
	"export": {}, "throw": {}, "try": {}, "catch": {}, "switch": {}, "case": {},
	"in": {}, "instanceof": {}, "yield": {}, "await": {}, "with": {},
}

var literalKeywords = map[string]value{
	"true":      boolean(true),
	"false":     boolean(false),
	"null":      null,
	"undefined": undefined,
	"NaN":       number(nan()),
	"Infinity":  number(inf()),
}

type parser struct {
	toks     []token
	i        int
	depth    int
	bindings map[string]binding
	nslots   int
}

func newParser() *parser {
	p := &parser{
		bindings: make(map[string]binding, len(library)+8),
		nslots:   firstLocalSlot,
	}
	p.bindings[CurrentName] = binding{kind: contextBinding, slot: currentSlot}
	p.bindings[PreviousName] = binding{kind: contextBinding, slot: previousSlot}
	p.bindings[RatioName] = binding{kind: contextBinding, slot: ratioSlot}
	for name, v := range library {
		p.bindings[name] = binding{kind: libraryBinding, val: v}
	}
	return p
}

// sourceLine is a non-blank script line with its 1-based line number.
type sourceLine struct {
	text string
	num  int
}

func splitLines(script string) []sourceLine {
	var lines []sourceLine
	for i, l := range strings.Split(script, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, sourceLine{text: l, num: i + 1})
	}
	return lines
}

// parseProgram parses every line but the last as statements, and the last
// line as the returned expression. Statements may span lines.
func (p *parser) parseProgram(lines []sourceLine) (*Program, error) {
	prog := &Program{}
	if len(lines) > 1 {
		toks, err := lexStatements(lines[:len(lines)-1])
		if err != nil {
			return nil, err
		}
		p.toks, p.i = toks, 0
		if err := p.parseStatements(prog); err != nil {
			return nil, err
		}
	}

	last := lines[len(lines)-1]
	toks, err := lexLine(last.text, last.num)
	if err != nil {
		return nil, err
	}
	p.toks, p.i = toks, 0
	result, err := p.parseReturnLine()
	if err != nil {
		return nil, err
	}
	prog.result = result
	prog.nslots = p.nslots
	return prog, nil
}

func (p *parser) parseStatements(prog *Program) error {
	for p.peek().typ != tokEOF {
		if p.acceptPunct(";") {
			continue
		}
		s, err := p.parseStatement()
		if err != nil {
			return err
		}
		prog.stmts = append(prog.stmts, s)
		if !p.acceptPunct(";") && p.peek().typ != tokEOF {
			return syntaxErrorf(p.peek().pos, "unexpected %s", describe(p.peek()))
		}
	}
	return nil
}

func (p *parser) parseReturnLine() (expr, error) {
	if t := p.peek(); t.typ == tokIdent && t.text == "return" {
		p.next()
	}
	if p.peek().typ == tokEOF {
		return nil, syntaxErrorf(p.peek().pos, "expected expression")
	}
	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	for p.acceptPunct(";") {
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, syntaxErrorf(t.pos, "unexpected %s", describe(t))
	}
	return x, nil
}

func (p *parser) parseStatement() (stmt, error) {
	t := p.peek()
	if t.typ == tokIdent {
		switch t.text {
		case "const", "let", "var":
			return p.parseDeclaration()
		case "return":
			return stmt{}, syntaxErrorf(t.pos, "return is only allowed on the last line")
		}
		if nt := p.peekAt(1); nt.typ == tokPunct && nt.text == "=" {
			return p.parseAssignment()
		}
	}
	x, err := p.parseExpression()
	if err != nil {
		return stmt{}, err
	}
	return stmt{pos: t.pos, slot: -1, x: x}, nil
}

func (p *parser) parseDeclaration() (stmt, error) {
	kw := p.next()
	nameTok := p.next()
	if nameTok.typ != tokIdent {
		return stmt{}, syntaxErrorf(nameTok.pos, "expected identifier after %s", kw.text)
	}
	if err := p.checkBindable(nameTok); err != nil {
		return stmt{}, err
	}
	if _, exists := p.bindings[nameTok.text]; exists {
		return stmt{}, syntaxErrorf(nameTok.pos, "identifier '%s' has already been declared", nameTok.text)
	}
	if !p.acceptPunct("=") {
		return stmt{}, syntaxErrorf(p.peek().pos, "missing initializer in declaration of '%s'", nameTok.text)
	}
	x, err := p.parseExpression()
	if err != nil {
		return stmt{}, err
	}

	kind := mutableBinding
	if kw.text == "const" {
		kind = constBinding
	}
	slot := p.nslots
	p.nslots++
	p.bindings[nameTok.text] = binding{kind: kind, slot: slot}
	return stmt{pos: kw.pos, slot: slot, x: x}, nil
}

func (p *parser) parseAssignment() (stmt, error) {
	nameTok := p.next()
	p.next() // =
	b, ok := p.bindings[nameTok.text]
	switch {
	case !ok:
		return stmt{}, syntaxErrorf(nameTok.pos, "%s is not defined", nameTok.text)
	case b.kind == constBinding:
		return stmt{}, syntaxErrorf(nameTok.pos, "assignment to constant variable '%s'", nameTok.text)
	case b.kind != mutableBinding:
		return stmt{}, syntaxErrorf(nameTok.pos, "cannot assign to '%s'", nameTok.text)
	}
	x, err := p.parseExpression()
	if err != nil {
		return stmt{}, err
	}
	return stmt{pos: nameTok.pos, slot: b.slot, x: x}, nil
}

func (p *parser) checkBindable(t token) error {
	if _, ok := unsupportedKeywords[t.text]; ok {
		return syntaxErrorf(t.pos, "unexpected keyword '%s'", t.text)
	}
	if _, ok := literalKeywords[t.text]; ok {
		return syntaxErrorf(t.pos, "unexpected keyword '%s'", t.text)
	}
	switch t.text {
	case "const", "let", "var", "return", "Math":
		return syntaxErrorf(t.pos, "unexpected keyword '%s'", t.text)
	}
	return nil
}

func (p *parser) enter(pos position) error {
	p.depth++
	if p.depth > MaxDepth {
		return wrapError(KindLimit, pos, ErrTooDeep)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) parseExpression() (expr, error) {
	return p.parseConditional()
}

func (p *parser) parseConditional() (expr, error) {
	if err := p.enter(p.peek().pos); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseNullish()
	if err != nil {
		return nil, err
	}
	q := p.peek()
	if !p.acceptPunct("?") {
		return cond, nil
	}
	then, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if !p.acceptPunct(":") {
		return nil, syntaxErrorf(p.peek().pos, "expected ':' in conditional expression, found %s", describe(p.peek()))
	}
	alt, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &conditionalExpr{pos: q.pos, cond: cond, then: then, alt: alt}, nil
}

func (p *parser) parseNullish() (expr, error) {
	return p.parseLogical([]string{"??"}, p.parseOr)
}

func (p *parser) parseOr() (expr, error) {
	return p.parseLogical([]string{"||"}, p.parseAnd)
}

func (p *parser) parseAnd() (expr, error) {
	return p.parseLogical([]string{"&&"}, p.parseEquality)
}

func (p *parser) parseLogical(ops []string, operand func() (expr, error)) (expr, error) {
	l, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.acceptOneOf(ops)
		if !ok {
			return l, nil
		}
		r, err := operand()
		if err != nil {
			return nil, err
		}
		l = &logicalExpr{pos: t.pos, op: t.text, l: l, r: r}
	}
}

func (p *parser) parseEquality() (expr, error) {
	return p.parseBinary([]string{"===", "!==", "==", "!="}, p.parseRelational)
}

func (p *parser) parseRelational() (expr, error) {
	return p.parseBinary([]string{"<=", ">=", "<", ">"}, p.parseAdditive)
}

func (p *parser) parseAdditive() (expr, error) {
	return p.parseBinary([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (expr, error) {
	return p.parseBinary([]string{"*", "/", "%"}, p.parseUnary)
}

func (p *parser) parseBinary(ops []string, operand func() (expr, error)) (expr, error) {
	l, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.acceptOneOf(ops)
		if !ok {
			return l, nil
		}
		r, err := operand()
		if err != nil {
			return nil, err
		}
		l = &binaryExpr{pos: t.pos, op: t.text, l: l, r: r}
	}
}

func (p *parser) parseUnary() (expr, error) {
	t := p.peek()
	if t.typ == tokPunct && (t.text == "-" || t.text == "+" || t.text == "!") {
		if err := p.enter(t.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{pos: t.pos, op: t.text, x: x}, nil
	}
	return p.parseExponent()
}

func (p *parser) parseExponent() (expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	t, ok := p.acceptOneOf([]string{"**"})
	if !ok {
		return base, nil
	}
	if err := p.enter(t.pos); err != nil {
		return nil, err
	}
	defer p.leave()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryExpr{pos: t.pos, op: "**", l: base, r: exp}, nil
}

func (p *parser) parsePostfix() (expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		open := p.peek()
		if !p.acceptPunct("(") {
			return x, nil
		}
		call := &callExpr{pos: open.pos, callee: x, name: calleeName(x)}
		if !p.acceptPunct(")") {
			for {
				a, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				call.args = append(call.args, a)
				if p.acceptPunct(")") {
					break
				}
				if !p.acceptPunct(",") {
					return nil, syntaxErrorf(p.peek().pos, "expected ',' or ')' in argument list, found %s", describe(p.peek()))
				}
			}
		}
		x = call
	}
}

func (p *parser) parsePrimary() (expr, error) {
	t := p.next()
	switch t.typ {
	case tokNumber:
		return &literalExpr{pos: t.pos, val: number(t.num)}, nil
	case tokPunct:
		if t.text == "(" {
			x, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if !p.acceptPunct(")") {
				return nil, syntaxErrorf(p.peek().pos, "expected ')', found %s", describe(p.peek()))
			}
			return x, nil
		}
		return nil, syntaxErrorf(t.pos, "unexpected %s", describe(t))
	case tokIdent:
		return p.parseIdentifier(t)
	default:
		return nil, syntaxErrorf(t.pos, "unexpected end of line")
	}
}

func (p *parser) parseIdentifier(t token) (expr, error) {
	if v, ok := literalKeywords[t.text]; ok {
		return &literalExpr{pos: t.pos, val: v}, nil
	}
	if t.text == "Math" {
		if !p.acceptPunct(".") {
			return nil, syntaxErrorf(p.peek().pos, "expected '.' after Math")
		}
		member := p.next()
		if member.typ != tokIdent {
			return nil, syntaxErrorf(member.pos, "expected property name after 'Math.'")
		}
		v, ok := library[member.text]
		if !ok || member.text == InterpolationName {
			return nil, syntaxErrorf(member.pos, "Math.%s is not supported", member.text)
		}
		return &literalExpr{pos: t.pos, val: v}, nil
	}
	if err := p.checkBindable(t); err != nil {
		return nil, err
	}

	b, ok := p.bindings[t.text]
	if !ok {
		return nil, syntaxErrorf(t.pos, "%s is not defined", t.text)
	}
	if b.kind == libraryBinding {
		return &literalExpr{pos: t.pos, val: b.val}, nil
	}
	return &slotExpr{pos: t.pos, name: t.text, slot: b.slot}, nil
}

func calleeName(x expr) string {
	switch e := x.(type) {
	case *slotExpr:
		return e.name
	case *literalExpr:
		if e.val.kind == funcValue {
			return e.val.fn.name
		}
		return e.val.typeName()
	default:
		return "expression"
	}
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.typ != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) acceptPunct(text string) bool {
	t := p.peek()
	if t.typ == tokPunct && t.text == text {
		p.i++
		return true
	}
	return false
}

func (p *parser) acceptOneOf(ops []string) (token, bool) {
	t := p.peek()
	if t.typ != tokPunct {
		return t, false
	}
	for _, op := range ops {
		if t.text == op {
			p.i++
			return t, true
		}
	}
	return t, false
}

func describe(t token) string {
	switch t.typ {
	case tokEOF:
		return "end of line"
	case tokNumber:
		return "number " + t.text
	case tokIdent:
		return "identifier " + t.text
	default:
		return "'" + t.text + "'"
	}
}
