package parser

import (
	"github.com/pontaoski/deltac/ast"
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/types"
	"github.com/ztrue/tracerr"
)

// Parser reads a token slice front to back with one token of lookahead and
// never backtracks.
type Parser struct {
	source string
	tokens []types.Token
	index  int
}

func NewParser(source string, tokens []types.Token) *Parser {
	return &Parser{source: source, tokens: tokens}
}

func catch(err *error) {
	if r := recover(); r != nil {
		rerr, ok := r.(error)
		if ok {
			*err = tracerr.Wrap(rerr)
		} else {
			panic(r)
		}
	}
}

// Parse reads exactly one function declaration spanning the whole input.
func (p *Parser) Parse() (m *ast.Module, err error) {
	defer catch(&err)

	tok, ok := p.read()
	if !ok || tok.Kind != types.KEYWORD || tok.Keyword != types.FUNCTION {
		p.fail(tok, ok, "fn")
	}

	fn := p.parseFunction()

	if tok, ok := p.peek(); ok {
		p.fail(tok, ok, "end of input")
	}

	return &ast.Module{Functions: []ast.Function{fn}}, nil
}

// ParseExpression parses a single expression starting at the cursor.
func (p *Parser) ParseExpression() (e ast.Expression, err error) {
	defer catch(&err)
	return p.parseExpression(), nil
}

func (p *Parser) read() (types.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.index++
	}
	return tok, ok
}

func (p *Parser) peek() (types.Token, bool) {
	if p.index >= len(p.tokens) {
		return types.Token{}, false
	}
	return p.tokens[p.index], true
}

func (p *Parser) text(tok types.Token) string {
	return tok.Text(p.source)
}

func (p *Parser) fail(tok types.Token, ok bool, expected ...string) {
	e := errors.UnexpectedToken{Expected: expected}
	if ok {
		e.Got = tok.Describe(p.source)
		e.Range = tok.Range
		e.Location = tok.Location
	} else if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		e.Range = types.Range{Start: last.Range.End, End: last.Range.End}
		e.Location = last.Location
	}
	panic(e)
}

func isSymbol(tok types.Token, kinds ...types.SymbolKind) bool {
	if tok.Kind != types.SYMBOL {
		return false
	}
	for _, kind := range kinds {
		if tok.Symbol == kind {
			return true
		}
	}
	return false
}

func (p *Parser) peekIs(kinds ...types.SymbolKind) bool {
	tok, ok := p.peek()
	return ok && isSymbol(tok, kinds...)
}

func symbolNames(kinds []types.SymbolKind) (ret []string) {
	for _, kind := range kinds {
		ret = append(ret, kind.String())
	}
	return
}

func (p *Parser) expectSymbol(kinds ...types.SymbolKind) types.Token {
	tok, ok := p.read()
	if !ok || !isSymbol(tok, kinds...) {
		p.fail(tok, ok, symbolNames(kinds)...)
	}
	return tok
}

func (p *Parser) expectIdent() string {
	tok, ok := p.read()
	if !ok || tok.Kind != types.IDENTIFIER {
		p.fail(tok, ok, "identifier")
	}
	return p.text(tok)
}

// parseFunction should be called after the fn keyword has been read.
func (p *Parser) parseFunction() ast.Function {
	fn := ast.Function{Name: p.expectIdent()}

	p.expectSymbol(types.LPAREN)
	p.expectSymbol(types.RPAREN)

	if p.peekIs(types.THINARROW) {
		p.expectSymbol(types.THINARROW)
		ret := p.expectIdent()
		fn.ReturnType = &ret
	}

	p.expectSymbol(types.LBRACE)
	fn.Body = p.parseBody()

	return fn
}

// parseBody should be called when the parser is past the opening brace. It
// consumes the closing brace.
func (p *Parser) parseBody() []ast.Statement {
	var body []ast.Statement

	for {
		tok, ok := p.read()
		if !ok {
			p.fail(tok, ok, "let", "if", "identifier", "}")
		}

		switch {
		case isSymbol(tok, types.RBRACE):
			return body
		case tok.Kind == types.KEYWORD && tok.Keyword == types.LET:
			name := p.expectIdent()
			p.expectSymbol(types.ASSIGN)
			expr := p.parseExpression()
			p.expectSymbol(types.EOS)
			body = append(body, ast.Declaration{Name: name, Expression: expr})
		case tok.Kind == types.KEYWORD && tok.Keyword == types.IF:
			cond := p.parseExpression()
			p.expectSymbol(types.LBRACE)
			body = append(body, ast.ControlFlowStatement{ControlFlow: ast.If{
				Condition: cond,
				Body:      p.parseBody(),
			}})
		case tok.Kind == types.IDENTIFIER:
			p.expectSymbol(types.ASSIGN)
			expr := p.parseExpression()
			p.expectSymbol(types.EOS)
			body = append(body, ast.ExpressionStatement{Expression: ast.Assign(p.text(tok), expr)})
		default:
			p.fail(tok, ok, "let", "if", "identifier", "}")
		}
	}
}

func (p *Parser) parseExpressionLeaf() ast.Expression {
	tok, ok := p.read()
	if !ok {
		p.fail(tok, ok, "literal", "identifier")
	}

	switch tok.Kind {
	case types.LITERAL:
		return ast.Literal{Value: p.text(tok), Type: tok.Literal}
	case types.IDENTIFIER:
		return ast.Variable(p.text(tok))
	}

	p.fail(tok, ok, "literal", "identifier")
	return nil
}

// parseExpression recurses into the right hand side straight after the
// operator, so chains associate to the right: 1 + 2 + 3 is 1 + (2 + 3).
func (p *Parser) parseExpression() ast.Expression {
	expr := p.parseExpressionLeaf()

	tok, ok := p.peek()
	if !ok || isSymbol(tok, types.EOS, types.LBRACE) {
		return expr
	}

	var op ast.BinaryOperator
	switch {
	case isSymbol(tok, types.ADD):
		op = ast.Addition
	case isSymbol(tok, types.GREATER):
		op = ast.Greater
	default:
		p.fail(tok, ok, "+", ">", ";", "{")
	}
	p.read()

	return ast.Binary{
		Left:  expr,
		Op:    op,
		Right: p.parseExpression(),
	}
}
