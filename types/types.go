package types

import (
	"fmt"
)

// Range is a half-open byte range into the source text.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

type Position struct {
	Line   int
	Column int
}

// TextSection describes a run of invalid source text. Index is a byte range,
// Line and Column are 0-based and half-open.
type TextSection struct {
	Index  Range
	Line   Range
	Column Range
}

type TokenKind int

const (
	LITERAL TokenKind = iota
	SYMBOL
	KEYWORD
	IDENTIFIER
)

type SymbolKind int

const (
	THINARROW SymbolKind = iota
	ADDASSIGN
	ASSIGN
	ADD
	GREATER
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	EOS
)

type KeywordKind int

const (
	FUNCTION KeywordKind = iota
	LET
	IF
	RETURN
)

// PrimitiveType is the closed set of types a value can have. Void is only the
// type of an assignment and never a value.
type PrimitiveType int

const (
	Number PrimitiveType = iota
	Boolean
	Void
)

type Symbol struct {
	Text string
	Kind SymbolKind
}

// Symbols is matched in order, so longer spellings come before their prefixes.
var Symbols = []Symbol{
	{"->", THINARROW},
	{"+=", ADDASSIGN},
	{"=", ASSIGN},
	{"+", ADD},
	{">", GREATER},
	{"(", LPAREN},
	{")", RPAREN},
	{"{", LBRACE},
	{"}", RBRACE},
	{";", EOS},
}

type Keyword struct {
	Text string
	Kind KeywordKind
}

var Keywords = []Keyword{
	{"fn", FUNCTION},
	{"let", LET},
	{"if", IF},
	{"return", RETURN},
}

// Token never owns its text; Range is resolved against the source buffer.
type Token struct {
	Kind    TokenKind
	Literal PrimitiveType
	Symbol  SymbolKind
	Keyword KeywordKind

	Range    Range
	Location Position
}

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		LITERAL:    "LITERAL",
		SYMBOL:     "SYMBOL",
		KEYWORD:    "KEYWORD",
		IDENTIFIER: "IDENTIFIER",
	}
	return data[t]
}

func (s SymbolKind) String() string {
	for _, sym := range Symbols {
		if sym.Kind == s {
			return sym.Text
		}
	}
	return fmt.Sprintf("SymbolKind(%d)", int(s))
}

func (k KeywordKind) String() string {
	for _, kw := range Keywords {
		if kw.Kind == k {
			return kw.Text
		}
	}
	return fmt.Sprintf("KeywordKind(%d)", int(k))
}

func (p PrimitiveType) String() string {
	data := map[PrimitiveType]string{
		Number:  "Number",
		Boolean: "Boolean",
		Void:    "Void",
	}
	if s, ok := data[p]; ok {
		return s
	}
	return fmt.Sprintf("PrimitiveType(%d)", int(p))
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

func (s TextSection) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Line.Start+1, s.Column.Start+1, s.Line.End+1, s.Column.End+1)
}

// Describe names the token the way diagnostics show it.
func (t Token) Describe(source string) string {
	switch t.Kind {
	case SYMBOL:
		return fmt.Sprintf("symbol '%s'", t.Symbol)
	case KEYWORD:
		return fmt.Sprintf("keyword '%s'", t.Keyword)
	case LITERAL:
		return fmt.Sprintf("%s literal '%s'", t.Literal, t.Text(source))
	default:
		return fmt.Sprintf("identifier '%s'", t.Text(source))
	}
}

func (t Token) Text(source string) string {
	if t.Range.Start < 0 || t.Range.End > len(source) || t.Range.Start > t.Range.End {
		return ""
	}
	return source[t.Range.Start:t.Range.End]
}
