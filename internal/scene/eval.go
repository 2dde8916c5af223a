package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// EvalExpression evaluates a scripted driver expression against the
// given symbol values. The grammar is exactly what the engine emits:
// decimal literals, symbols, pi, unary minus, the four arithmetic
// operators, parentheses, and the functions fabs, sqrt, pow, acos, and
// clamp.
func EvalExpression(expression string, env map[string]float64) (float64, error) {
	p := &exprParser{src: expression, env: env}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	return v, nil
}

type exprParser struct {
	src string
	pos int
	env map[string]float64
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("expression %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, p.errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpace()
	c := p.peek()

	switch {
	case c == '(':
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if err := p.expect(')'); err != nil {
			return 0, err
		}
		return v, nil

	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()

	case isSymbolStart(rune(c)):
		return p.parseSymbol()
	}
	return 0, p.errorf("unexpected input")
}

func (p *exprParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) parseSymbol() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && isSymbolRune(rune(p.src[p.pos])) {
		p.pos++
	}
	name := p.src[start:p.pos]

	p.skipSpace()
	if p.peek() == '(' {
		return p.parseCall(name)
	}

	if name == "pi" {
		return math.Pi, nil
	}
	v, ok := p.env[name]
	if !ok {
		return 0, p.errorf("unknown symbol %q", name)
	}
	return v, nil
}

func (p *exprParser) parseCall(name string) (float64, error) {
	p.pos++ // consume '('
	var args []float64
	for {
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		p.skipSpace()
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if err := p.expect(')'); err != nil {
		return 0, err
	}

	arity := map[string]int{"fabs": 1, "sqrt": 1, "acos": 1, "pow": 2, "clamp": 3}
	want, ok := arity[name]
	if !ok {
		return 0, p.errorf("unknown function %q", name)
	}
	if len(args) != want {
		return 0, p.errorf("%s takes %d arguments, got %d", name, want, len(args))
	}

	switch name {
	case "fabs":
		return math.Abs(args[0]), nil
	case "sqrt":
		if args[0] < 0 {
			return 0, p.errorf("sqrt of negative value")
		}
		return math.Sqrt(args[0]), nil
	case "acos":
		if args[0] < -1 || args[0] > 1 {
			return 0, p.errorf("acos argument out of range")
		}
		return math.Acos(args[0]), nil
	case "pow":
		return math.Pow(args[0], args[1]), nil
	default: // clamp
		return math.Min(math.Max(args[0], args[1]), args[2]), nil
	}
}

func isSymbolStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isSymbolRune(c rune) bool {
	return isSymbolStart(c) || unicode.IsDigit(c)
}

// exprSymbols is a debugging aid: the free symbols of an expression in
// first-appearance order.
func exprSymbols(expression string) []string {
	known := map[string]bool{"pi": true, "fabs": true, "sqrt": true, "acos": true, "pow": true, "clamp": true}
	var out []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		name := current.String()
		current.Reset()
		if !known[name] {
			known[name] = true
			out = append(out, name)
		}
	}
	for _, c := range expression {
		if isSymbolRune(c) && (current.Len() > 0 || isSymbolStart(c)) {
			current.WriteRune(c)
			continue
		}
		flush()
	}
	flush()
	return out
}
