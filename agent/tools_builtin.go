package agent

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// BuiltinTools returns the tools every tool agent starts with.
func BuiltinTools() []Tool {
	return []Tool{
		{
			Spec: mcptypes.Tool{
				Name:        "calculator",
				Description: "Evaluates an arithmetic expression with + - * / and parentheses, e.g. TOOL[calculator](2+2).",
				InputSchema: mcptypes.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"expression": map[string]any{
							"type":        "string",
							"description": "the arithmetic expression to evaluate",
						},
					},
					Required: []string{"expression"},
				},
			},
			Run: func(_ context.Context, args string) (string, error) {
				value, err := evalExpression(args)
				if err != nil {
					return "", err
				}
				return formatNumber(value), nil
			},
		},
		{
			Spec: mcptypes.Tool{
				Name:        "current_time",
				Description: "Returns the current date and time. Takes no arguments: TOOL[current_time]().",
				InputSchema: mcptypes.ToolInputSchema{
					Type:       "object",
					Properties: map[string]any{},
				},
			},
			Run: func(_ context.Context, _ string) (string, error) {
				return time.Now().Format("2006-01-02 15:04:05 MST"), nil
			},
		},
		{
			Spec: mcptypes.Tool{
				Name:        "echo",
				Description: "Returns its argument unchanged, e.g. TOOL[echo](hello).",
				InputSchema: mcptypes.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "the text to echo back",
						},
					},
					Required: []string{"text"},
				},
			},
			Run: func(_ context.Context, args string) (string, error) {
				return args, nil
			},
		},
	}
}

// formatNumber renders integers without a decimal point.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// evalExpression evaluates an arithmetic expression by recursive descent.
// Grammar: expr = term (('+'|'-') term)*, term = factor (('*'|'/') factor)*,
// factor = number | '-' factor | '(' expr ')'.
func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
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

func (p *exprParser) parseTerm() (float64, error) {
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
				return 0, fmt.Errorf("division by zero")
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpaces()
	switch {
	case p.peek() == '-':
		p.pos++
		value, err := p.parseFactor()
		return -value, err
	case p.peek() == '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected a number at position %d", start)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}
