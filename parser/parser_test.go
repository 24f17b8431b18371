package parser

import (
	"reflect"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/deltac/ast"
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/lexer"
	"github.com/pontaoski/deltac/types"
	"github.com/ztrue/tracerr"
)

func newParser(t *testing.T, src string) *Parser {
	t.Helper()
	tokens, bad := lexer.Tokenize(src)
	if len(bad) != 0 {
		t.Fatalf("unexpected lexical errors: %v", bad)
	}
	return NewParser(src, tokens)
}

func number(value string) ast.Literal {
	return ast.Literal{Value: value, Type: types.Number}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected ast.Expression
	}{
		{
			input: "12 + 2",
			expected: ast.Binary{
				Left:  number("12"),
				Op:    ast.Addition,
				Right: number("2"),
			},
		},
		{
			input: "abc + 2",
			expected: ast.Binary{
				Left:  ast.Variable("abc"),
				Op:    ast.Addition,
				Right: number("2"),
			},
		},
		{
			input:    "abc",
			expected: ast.Variable("abc"),
		},
		{
			input: "a > 5",
			expected: ast.Binary{
				Left:  ast.Variable("a"),
				Op:    ast.Greater,
				Right: number("5"),
			},
		},
		{
			input: "1 + 2 + 3",
			expected: ast.Binary{
				Left: number("1"),
				Op:   ast.Addition,
				Right: ast.Binary{
					Left:  number("2"),
					Op:    ast.Addition,
					Right: number("3"),
				},
			},
		},
		{
			input: "a + 1 > b",
			expected: ast.Binary{
				Left: ast.Variable("a"),
				Op:   ast.Addition,
				Right: ast.Binary{
					Left:  number("1"),
					Op:    ast.Greater,
					Right: ast.Variable("b"),
				},
			},
		},
		{
			input:    "7;",
			expected: number("7"),
		},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := newParser(t, test.input).ParseExpression()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, test.expected) {
				t.Fatalf("expression mismatch\nexpected: %s\ngot: %s", repr.String(test.expected), repr.String(got))
			}
		})
	}
}

func TestExpressionStopsBeforeTerminator(t *testing.T) {
	p := newParser(t, "a + 1 { }")
	if _, err := p.ParseExpression(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok, ok := p.peek()
	if !ok || tok.Kind != types.SYMBOL || tok.Symbol != types.LBRACE {
		t.Fatalf("expected the opening brace to remain unread, got %s", repr.String(tok))
	}
}

func TestParseFunction(t *testing.T) {
	input := `
fn IAmAFunction() -> int {
    let a = 10;
    if a > 5 {
        b = 5;
    }
}`
	module, err := newParser(t, input).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ret := "int"
	expected := &ast.Module{
		Functions: []ast.Function{{
			Name:       "IAmAFunction",
			ReturnType: &ret,
			Body: []ast.Statement{
				ast.Declaration{Name: "a", Expression: number("10")},
				ast.ControlFlowStatement{ControlFlow: ast.If{
					Condition: ast.Binary{
						Left:  ast.Variable("a"),
						Op:    ast.Greater,
						Right: number("5"),
					},
					Body: []ast.Statement{
						ast.ExpressionStatement{Expression: ast.Binary{
							Left:  ast.Variable("b"),
							Op:    ast.Assignment,
							Right: number("5"),
						}},
					},
				}},
			},
		}},
	}

	if !reflect.DeepEqual(module, expected) {
		t.Fatalf("module mismatch\nexpected: %s\ngot: %s", repr.String(expected), repr.String(module))
	}
}

func TestParseFunctionWithoutReturnType(t *testing.T) {
	module, err := newParser(t, "fn main() { x = y; }").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := module.Functions[0]
	if fn.Name != "main" || fn.ReturnType != nil || len(fn.Arguments) != 0 {
		t.Fatalf("unexpected function header %s", repr.String(fn))
	}
	expected := []ast.Statement{
		ast.ExpressionStatement{Expression: ast.Assign("x", ast.Variable("y"))},
	}
	if !reflect.DeepEqual(fn.Body, expected) {
		t.Fatalf("body mismatch\nexpected: %s\ngot: %s", repr.String(expected), repr.String(fn.Body))
	}
}

func TestParseEmptyBodies(t *testing.T) {
	module, err := newParser(t, "fn main() { if 2 > 1 { } }").Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stmt, ok := module.Functions[0].Body[0].(ast.ControlFlowStatement)
	if !ok {
		t.Fatalf("expected control flow, got %s", repr.String(module.Functions[0].Body[0]))
	}
	if body := stmt.ControlFlow.(ast.If).Body; len(body) != 0 {
		t.Fatalf("expected empty body, got %s", repr.String(body))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		got   string
		start int
	}{
		{"empty input", "", "", 0},
		{"does not start with fn", "let a = 1;", "keyword 'let'", 0},
		{"second function", "fn a() {} fn b() {}", "keyword 'fn'", 10},
		{"trailing tokens", "fn a() {} 12", "Number literal '12'", 10},
		{"arguments", "fn a(b) {}", "identifier 'b'", 5},
		{"missing body", "fn a()", "", 6},
		{"unterminated body", "fn a() { let b = 1;", "", 19},
		{"return is not a statement", "fn a() { return 5; }", "keyword 'return'", 9},
		{"compound assignment", "fn a() { b += 1; }", "symbol '+='", 11},
		{"missing semicolon", "fn a() { let b = 1 }", "symbol '}'", 19},
		{"literal statement", "fn a() { 5; }", "Number literal '5'", 9},
		{"return type must be identifier", "fn a() -> 5 {}", "Number literal '5'", 10},
		{"missing right operand", "fn a() { b = 1 + ; }", "symbol ';'", 17},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			module, err := newParser(t, test.input).Parse()
			if err == nil {
				t.Fatalf("expected an error, got %s", repr.String(module))
			}
			if module != nil {
				t.Fatalf("expected no module on failure")
			}

			unexpected, ok := tracerr.Unwrap(err).(errors.UnexpectedToken)
			if !ok {
				t.Fatalf("expected UnexpectedToken, got %T: %v", tracerr.Unwrap(err), err)
			}
			if unexpected.Got != test.got {
				t.Errorf("expected got %q, got %q", test.got, unexpected.Got)
			}
			if unexpected.Range.Start != test.start {
				t.Errorf("expected failure at byte %d, got %d", test.start, unexpected.Range.Start)
			}
		})
	}
}

func TestParseExpressionErrors(t *testing.T) {
	for _, input := range []string{"", "+ 1", "1 1", "1 = 2"} {
		t.Run(input, func(t *testing.T) {
			_, err := newParser(t, input).ParseExpression()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if _, ok := tracerr.Unwrap(err).(errors.UnexpectedToken); !ok {
				t.Fatalf("expected UnexpectedToken, got %T", tracerr.Unwrap(err))
			}
		})
	}
}
