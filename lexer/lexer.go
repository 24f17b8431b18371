package lexer

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/types"
)

type outcome int

const (
	produced outcome = iota
	skipped
	invalid
	finished
)

// Lexer walks an immutable source buffer. A copy of a Lexer is an independent
// cursor over the same text.
type Lexer struct {
	source string
	index  int
	pos    types.Position
}

func NewLexer(source string) *Lexer {
	return &Lexer{source: source}
}

func (l *Lexer) remaining() string {
	return l.source[l.index:]
}

func (l *Lexer) advance(bytes, columns int) {
	l.index += bytes
	l.pos.Column += columns
}

func (l *Lexer) newline() {
	l.index++
	l.pos.Line++
	l.pos.Column = 0
}

func isDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

func otherChar(r byte) bool {
	return r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// scanWhile only ever accepts ASCII, so bytes and columns advance together.
func (l *Lexer) scanWhile(accept func(byte) bool) int {
	rest := l.remaining()
	n := 0
	for n < len(rest) && accept(rest[n]) {
		n++
	}
	return n
}

func (l *Lexer) kinded(from int, at types.Position, kind types.TokenKind) types.Token {
	return types.Token{
		Kind:     kind,
		Range:    types.Range{Start: from, End: l.index},
		Location: at,
	}
}

func (l *Lexer) matchSymbol() (types.Symbol, bool) {
	rest := l.remaining()
	for _, sym := range types.Symbols {
		if strings.HasPrefix(rest, sym.Text) {
			return sym, true
		}
	}
	return types.Symbol{}, false
}

func (l *Lexer) matchKeyword() (types.Keyword, bool) {
	rest := l.remaining()
	for _, kw := range types.Keywords {
		if !strings.HasPrefix(rest, kw.Text) {
			continue
		}
		if len(rest) > len(kw.Text) && otherChar(rest[len(kw.Text)]) {
			continue
		}
		return kw, true
	}
	return types.Keyword{}, false
}

func (l *Lexer) step() (types.Token, outcome) {
	if l.index >= len(l.source) {
		return types.Token{}, finished
	}

	from, at := l.index, l.pos
	c := l.source[l.index]

	switch {
	case c == ' ' || c == '\r':
		l.advance(1, 1)
		return types.Token{}, skipped
	case c == '\n':
		l.newline()
		return types.Token{}, skipped
	case isDigit(c):
		n := l.scanWhile(isDigit)
		l.advance(n, n)
		tok := l.kinded(from, at, types.LITERAL)
		tok.Literal = types.Number
		return tok, produced
	}

	if sym, ok := l.matchSymbol(); ok {
		l.advance(len(sym.Text), len(sym.Text))
		tok := l.kinded(from, at, types.SYMBOL)
		tok.Symbol = sym.Kind
		return tok, produced
	}

	if kw, ok := l.matchKeyword(); ok {
		l.advance(len(kw.Text), len(kw.Text))
		tok := l.kinded(from, at, types.KEYWORD)
		tok.Keyword = kw.Kind
		return tok, produced
	}

	if n := l.scanWhile(otherChar); n > 0 {
		l.advance(n, n)
		return l.kinded(from, at, types.IDENTIFIER), produced
	}

	_, size := utf8.DecodeRuneInString(l.remaining())
	l.advance(size, 1)
	return types.Token{}, invalid
}

// Next returns the next token, an errors.LexicalError covering a maximal run
// of invalid characters, or io.EOF once the source is exhausted.
func (l *Lexer) Next() (types.Token, error) {
	for {
		from, at := l.index, l.pos

		tok, res := l.step()
		switch res {
		case produced:
			return tok, nil
		case skipped:
			continue
		case finished:
			return types.Token{}, io.EOF
		}

		for {
			save := *l
			if _, res := l.step(); res != invalid {
				*l = save
				break
			}
		}

		return types.Token{}, errors.LexicalError{Section: types.TextSection{
			Index:  types.Range{Start: from, End: l.index},
			Line:   types.Range{Start: at.Line, End: l.pos.Line},
			Column: types.Range{Start: at.Column, End: l.pos.Column},
		}}
	}
}

// Tokenize lexes the whole source, keeping every valid token and collecting
// the invalid runs separately.
func Tokenize(source string) (tokens []types.Token, bad []errors.LexicalError) {
	l := NewLexer(source)
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return
		}
		if lexErr, ok := err.(errors.LexicalError); ok {
			bad = append(bad, lexErr)
			continue
		}
		tokens = append(tokens, tok)
	}
}
