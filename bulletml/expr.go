package bulletml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// env is the evaluation context of an expression
type env struct {
	params []float64
	rand   func() float64
	rank   float64
}

// expr is a compiled numeric expression
type expr func(e *env) float64

func constant(v float64) expr { return func(*env) float64 { return v } }

// exprParser is a recursive descent parser over the BulletML expression grammar:
// sum := product (('+'|'-') product)*
// product := unary (('*'|'/'|'%') unary)*
// unary := ('-'|'+') unary | primary
// primary := number | $rand | $rank | $N | '(' sum ')'
type exprParser struct {
	src   string
	pos   int
	depth int
}

// maxExprDepth bounds unary and parenthesis nesting
const maxExprDepth = 64

// compileExpr parses src, an empty source compiles to zero
func compileExpr(src string) (expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return constant(0), nil
	}
	p := &exprParser{src: src}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("expression %q: unexpected %q at offset %d", src, p.src[p.pos:], p.pos)
	}
	return e, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) sum() (expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		if op == '+' {
			left = func(e *env) float64 { return l(e) + r(e) }
		} else {
			left = func(e *env) float64 { return l(e) - r(e) }
		}
	}
}

func (p *exprParser) product() (expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		switch op {
		case '*':
			left = func(e *env) float64 { return l(e) * r(e) }
		case '/':
			left = func(e *env) float64 {
				d := r(e)
				if d == 0 {
					return 0
				}
				return l(e) / d
			}
		default:
			left = func(e *env) float64 {
				d := r(e)
				if d == 0 {
					return 0
				}
				return math.Mod(l(e), d)
			}
		}
	}
}

func (p *exprParser) unary() (expr, error) {
	if p.depth++; p.depth > maxExprDepth {
		return nil, fmt.Errorf("expression nested deeper than %d levels", maxExprDepth)
	}
	defer func() { p.depth-- }()

	switch p.peek() {
	case '-':
		p.pos++
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return func(e *env) float64 { return -inner(e) }, nil
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *exprParser) primary() (expr, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, fmt.Errorf("expression %q: unexpected end", p.src)

	case c == '(':
		p.pos++
		inner, err := p.sum()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("expression %q: missing ')'", p.src)
		}
		p.pos++
		return inner, nil

	case c == '$':
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos]))) {
			p.pos++
		}
		name := p.src[start+1 : p.pos]
		switch name {
		case "rand":
			return func(e *env) float64 { return e.rand() }, nil
		case "rank":
			return func(e *env) float64 { return e.rank }, nil
		}
		n, err := strconv.Atoi(name)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("expression %q: unknown variable $%s", p.src, name)
		}
		idx := n - 1
		return func(e *env) float64 {
			if idx < len(e.params) {
				return e.params[idx]
			}
			return 0
		}, nil

	case c == '.' || (c >= '0' && c <= '9'):
		start := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] == '.' || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("expression %q: bad number %q", p.src, p.src[start:p.pos])
		}
		return constant(v), nil
	}
	return nil, fmt.Errorf("expression %q: unexpected %q at offset %d", p.src, c, p.pos)
}
