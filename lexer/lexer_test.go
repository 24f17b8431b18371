package lexer

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/types"
)

type item struct {
	tok types.Token
	err error
}

func lexToEOF(t *testing.T, src string) (ret []item) {
	t.Helper()
	l := NewLexer(src)
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return
		}
		ret = append(ret, item{tok, err})
	}
}

func span(start, end int) types.Range {
	return types.Range{Start: start, End: end}
}

func number(start, end int) types.Token {
	return types.Token{Kind: types.LITERAL, Literal: types.Number, Range: span(start, end)}
}

func symbol(kind types.SymbolKind, start, end int) types.Token {
	return types.Token{Kind: types.SYMBOL, Symbol: kind, Range: span(start, end)}
}

func keyword(kind types.KeywordKind, start, end int) types.Token {
	return types.Token{Kind: types.KEYWORD, Keyword: kind, Range: span(start, end)}
}

func ident(start, end int) types.Token {
	return types.Token{Kind: types.IDENTIFIER, Range: span(start, end)}
}

// withoutLocation drops line and column so cases can be written with ranges only.
func withoutLocation(toks []types.Token) []types.Token {
	var out []types.Token
	for _, tok := range toks {
		tok.Location = types.Position{}
		out = append(out, tok)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens []types.Token
		bad    []errors.LexicalError
	}{
		{
			name:  "addition",
			input: "12 + 2",
			tokens: []types.Token{
				number(0, 2),
				symbol(types.ADD, 3, 4),
				number(5, 6),
			},
		},
		{
			name:  "newline",
			input: "12 + 2\n+1",
			tokens: []types.Token{
				number(0, 2),
				symbol(types.ADD, 3, 4),
				number(5, 6),
				symbol(types.ADD, 7, 8),
				number(8, 9),
			},
		},
		{
			name:  "function with body",
			input: "fn FooBar() {\n let a = 10; \nif a > 5 {} \n}",
			tokens: []types.Token{
				keyword(types.FUNCTION, 0, 2),
				ident(3, 9),
				symbol(types.LPAREN, 9, 10),
				symbol(types.RPAREN, 10, 11),
				symbol(types.LBRACE, 12, 13),
				keyword(types.LET, 15, 18),
				ident(19, 20),
				symbol(types.ASSIGN, 21, 22),
				number(23, 25),
				symbol(types.EOS, 25, 26),
				keyword(types.IF, 28, 30),
				ident(31, 32),
				symbol(types.GREATER, 33, 34),
				number(35, 36),
				symbol(types.LBRACE, 37, 38),
				symbol(types.RBRACE, 38, 39),
				symbol(types.RBRACE, 41, 42),
			},
		},
		{
			name:  "return type and return keyword",
			input: "fn IAmAFunction() -> int { return 5; }",
			tokens: []types.Token{
				keyword(types.FUNCTION, 0, 2),
				ident(3, 15),
				symbol(types.LPAREN, 15, 16),
				symbol(types.RPAREN, 16, 17),
				symbol(types.THINARROW, 18, 20),
				ident(21, 24),
				symbol(types.LBRACE, 25, 26),
				keyword(types.RETURN, 27, 33),
				number(34, 35),
				symbol(types.EOS, 35, 36),
				symbol(types.RBRACE, 37, 38),
			},
		},
		{
			name:  "compound symbol wins over its prefix",
			input: "a += 1",
			tokens: []types.Token{
				ident(0, 1),
				symbol(types.ADDASSIGN, 2, 4),
				number(5, 6),
			},
		},
		{
			name:  "keyword prefix of identifier",
			input: "ifx lets fn_ if",
			tokens: []types.Token{
				ident(0, 3),
				ident(4, 8),
				ident(9, 12),
				keyword(types.IF, 13, 15),
			},
		},
		{
			name:  "keyword directly followed by symbol",
			input: "if(",
			tokens: []types.Token{
				keyword(types.IF, 0, 2),
				symbol(types.LPAREN, 2, 3),
			},
		},
		{
			name:  "digits then letters",
			input: "12ab",
			tokens: []types.Token{
				number(0, 2),
				ident(2, 4),
			},
		},
		{
			name:  "tab is not whitespace",
			input: "1\t2",
			tokens: []types.Token{
				number(0, 1),
				number(2, 3),
			},
			bad: []errors.LexicalError{{Section: types.TextSection{
				Index:  span(1, 2),
				Line:   span(0, 0),
				Column: span(1, 2),
			}}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tokens, bad := Tokenize(test.input)
			if !reflect.DeepEqual(bad, test.bad) {
				t.Fatalf("lexical errors mismatch\nexpected: %s\ngot: %s", repr.String(test.bad), repr.String(bad))
			}
			got := withoutLocation(tokens)
			if !reflect.DeepEqual(got, test.tokens) {
				t.Fatalf("tokens mismatch\nexpected: %s\ngot: %s", repr.String(test.tokens), repr.String(got))
			}
		})
	}
}

func TestLocations(t *testing.T) {
	tokens, _ := Tokenize("fn F() {\n  let a = 1;\n}")
	expected := []types.Position{
		{Line: 0, Column: 0},
		{Line: 0, Column: 3},
		{Line: 0, Column: 4},
		{Line: 0, Column: 5},
		{Line: 0, Column: 7},
		{Line: 1, Column: 2},
		{Line: 1, Column: 6},
		{Line: 1, Column: 8},
		{Line: 1, Column: 10},
		{Line: 1, Column: 11},
		{Line: 2, Column: 0},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Location != expected[i] {
			t.Errorf("token %d: expected location %s, got %s", i, expected[i], tok.Location)
		}
	}
}

func TestInvalidRunsAreCoalesced(t *testing.T) {
	src := "造造 12 + 2 造造"
	items := lexToEOF(t, src)

	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %s", repr.String(items))
	}

	first, ok := items[0].err.(errors.LexicalError)
	if !ok {
		t.Fatalf("expected a lexical error first, got %v", items[0])
	}
	expectedFirst := types.TextSection{
		Index:  span(0, 6),
		Line:   span(0, 0),
		Column: span(0, 2),
	}
	if first.Section != expectedFirst {
		t.Errorf("expected %s, got %s", repr.String(expectedFirst), repr.String(first.Section))
	}
	if first.Section.Column.Len() != 2 {
		t.Errorf("expected the run to span 2 characters, got %d", first.Section.Column.Len())
	}

	middle := []types.Token{items[1].tok, items[2].tok, items[3].tok}
	for i, it := range items[1:4] {
		if it.err != nil {
			t.Fatalf("item %d: unexpected error %v", i+1, it.err)
		}
	}
	expectedMiddle := []types.Token{number(7, 9), symbol(types.ADD, 10, 11), number(12, 13)}
	if got := withoutLocation(middle); !reflect.DeepEqual(got, expectedMiddle) {
		t.Errorf("expected %s, got %s", repr.String(expectedMiddle), repr.String(got))
	}
	if middle[0].Location.Column != 3 {
		t.Errorf("expected column 3 after two wide characters, got %d", middle[0].Location.Column)
	}

	last, ok := items[4].err.(errors.LexicalError)
	if !ok {
		t.Fatalf("expected a lexical error last, got %v", items[4])
	}
	expectedLast := types.TextSection{
		Index:  span(14, 20),
		Line:   span(0, 0),
		Column: span(10, 12),
	}
	if last.Section != expectedLast {
		t.Errorf("expected %s, got %s", repr.String(expectedLast), repr.String(last.Section))
	}
}

func TestInvalidRunsSplitByWhitespace(t *testing.T) {
	tokens, bad := Tokenize("a $$ @ b")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if len(bad) != 2 {
		t.Fatalf("expected 2 invalid runs, got %d", len(bad))
	}
	if bad[0].Section.Index != span(2, 4) || bad[1].Section.Index != span(5, 6) {
		t.Errorf("unexpected runs %s", repr.String(bad))
	}
}

func TestInvalidRunStopsAtValidToken(t *testing.T) {
	items := lexToEOF(t, "$$x")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	lexErr, ok := items[0].err.(errors.LexicalError)
	if !ok || lexErr.Section.Index != span(0, 2) {
		t.Fatalf("expected run [0,2), got %v", items[0])
	}
	if items[1].err != nil || items[1].tok.Range != span(2, 3) {
		t.Fatalf("expected identifier at [2,3), got %v", items[1])
	}
}

func TestSpansCoverSource(t *testing.T) {
	inputs := []string{
		"12 + 2",
		"1+2>3",
		"  40 \r\n + 7 > 100  ",
		"fn main() -> int { let a = 10; if a > 5 { a = 1; } }",
	}

	for _, src := range inputs {
		tokens, bad := Tokenize(src)
		if len(bad) != 0 {
			t.Fatalf("%q: unexpected lexical errors %v", src, bad)
		}

		var rebuilt strings.Builder
		prev := 0
		for _, tok := range tokens {
			if tok.Range.Start < prev {
				t.Fatalf("%q: overlapping token at %s", src, tok.Range)
			}
			gap := src[prev:tok.Range.Start]
			if strings.TrimLeft(gap, " \r\n") != "" {
				t.Fatalf("%q: uncovered text %q", src, gap)
			}
			rebuilt.WriteString(gap)
			rebuilt.WriteString(tok.Text(src))
			prev = tok.Range.End
		}
		rebuilt.WriteString(src[prev:])

		if rebuilt.String() != src {
			t.Errorf("expected %q, got %q", src, rebuilt.String())
		}
	}
}

func TestLexingIsRestartable(t *testing.T) {
	src := "fn main() { let a = 1; }"
	first, _ := Tokenize(src)
	second, _ := Tokenize(src)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical tokens from two runs")
	}
}
