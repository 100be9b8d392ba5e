package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Грамматика формул намеренно урезана: числа, именованные переменные,
// + - * / и скобки. Никаких вызовов, сравнений и обращений наружу —
// формула приходит из конфигурации и не должна уметь ничего, кроме арифметики.
//
//	expr   = term {("+"|"-") term}
//	term   = factor {("*"|"/") factor}
//	factor = number | ident | "(" expr ")" | "-" factor

// EvaluateFormula вычисляет арифметическое выражение над связанными переменными.
func EvaluateFormula(expr string, vars map[string]float64) (float64, error) {
	p := &formulaParser{input: expr, vars: vars}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("неожиданный символ %q на позиции %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

type formulaParser struct {
	input string
	pos   int
	vars  map[string]float64
}

func (p *formulaParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *formulaParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *formulaParser) parseExpr() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

func (p *formulaParser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("деление на ноль")
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *formulaParser) parseFactor() (float64, error) {
	p.skipSpaces()
	ch := p.peek()
	switch {
	case ch == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, fmt.Errorf("ожидалась закрывающая скобка")
		}
		p.pos++
		return value, nil
	case ch == '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case ch >= '0' && ch <= '9' || ch == '.':
		return p.parseNumber()
	case isIdentRune(rune(ch)):
		return p.parseIdent()
	case ch == 0:
		return 0, fmt.Errorf("неожиданный конец формулы")
	default:
		return 0, fmt.Errorf("недопустимый символ %q", ch)
	}
}

func (p *formulaParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			p.pos++
			continue
		}
		break
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("не удалось разобрать число %q", p.input[start:p.pos])
	}
	return value, nil
}

func (p *formulaParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentRune(rune(p.input[p.pos])) {
		p.pos++
	}
	name := p.input[start:p.pos]
	value, ok := p.vars[strings.TrimSpace(name)]
	if !ok {
		return 0, fmt.Errorf("неизвестная переменная %q", name)
	}
	return value, nil
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}
