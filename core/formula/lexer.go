package formula

import (
	"errors"
	"strconv"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokPunct
)

type token struct {
	typ  tokenType
	text string
	num  float64
	pos  position
}

// punctuators ordered longest first so greedy matching works.
var punctuators = []string{
	"===", "!==",
	"**", "==", "!=", "<=", ">=", "&&", "||", "??",
	"+", "-", "*", "/", "%", "<", ">", "!", "?", ":", "(", ")", ",", ".", ";", "=",
}

// lexLine tokenizes a single source line. Line comments start with "//".
func lexLine(src string, line int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		ch := src[i]
		pos := position{line: line, col: i + 1}

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			i++
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			i = len(src)
		case isDigit(ch) || (ch == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i < len(src) && src[i] == '.' {
				i++
				for i < len(src) && isDigit(src[i]) {
					i++
				}
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			if i < len(src) && isIdentStart(src[i]) {
				return nil, syntaxErrorf(position{line: line, col: i + 1}, "invalid number literal %q", src[start:i+1])
			}
			text := src[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return nil, syntaxErrorf(pos, "invalid number literal %q", text)
			}
			toks = append(toks, token{typ: tokNumber, text: text, num: v, pos: pos})
		case isIdentStart(ch):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{typ: tokIdent, text: src[start:i], pos: pos})
		default:
			matched := ""
			for _, p := range punctuators {
				if strings.HasPrefix(src[i:], p) {
					matched = p
					break
				}
			}
			if matched == "" {
				return nil, syntaxErrorf(pos, "unexpected character %q", string(src[i]))
			}
			toks = append(toks, token{typ: tokPunct, text: matched, pos: pos})
			i += len(matched)
		}
	}
	toks = append(toks, token{typ: tokEOF, pos: position{line: line, col: len(src) + 1}})
	return toks, nil
}

// lexStatements tokenizes the statement lines of a script as one stream. A line
// break ends a statement only when the statement is complete: no parenthesis
// is open, the line ends in an operand and the next line starts a new one.
// Otherwise the statement continues on the next line.
func lexStatements(lines []sourceLine) ([]token, error) {
	var toks []token
	open := 0
	for _, line := range lines {
		lt, err := lexLine(line.text, line.num)
		if err != nil {
			return nil, err
		}
		lt = lt[:len(lt)-1]
		if len(lt) == 0 {
			continue
		}
		if n := len(toks); n > 0 && open == 0 && endsOperand(toks[n-1]) && startsOperand(lt[0]) {
			last := toks[n-1]
			toks = append(toks, token{typ: tokPunct, text: ";", pos: position{line: last.pos.line, col: last.pos.col + len(last.text)}})
		}
		for _, t := range lt {
			switch {
			case t.typ != tokPunct:
			case t.text == "(":
				open++
			case t.text == ")" && open > 0:
				open--
			}
		}
		toks = append(toks, lt...)
	}

	end := lines[len(lines)-1]
	return append(toks, token{typ: tokEOF, pos: position{line: end.num, col: len(end.text) + 1}}), nil
}

func endsOperand(t token) bool {
	return t.typ == tokNumber || t.typ == tokIdent || (t.typ == tokPunct && t.text == ")")
}

// startsOperand reports whether t cannot continue the previous expression.
// A leading '(', '+', '-' or binary operator continues it.
func startsOperand(t token) bool {
	return t.typ == tokNumber || t.typ == tokIdent || (t.typ == tokPunct && t.text == "!")
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
