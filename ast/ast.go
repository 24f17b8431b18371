package ast

import "github.com/pontaoski/deltac/types"

//go:generate sh -c "cd ../tool && go run . ../ast/ast.adt ../ast/nodes.go ast"

type BinaryOperator int

const (
	Addition BinaryOperator = iota
	Greater
	Assignment
)

// LiteralValue keeps the literal's source text; it is parsed into a number or
// boolean only when code is generated.
type LiteralValue struct {
	Value string
	Type  types.PrimitiveType
}

type Operation struct {
	Left  Expression
	Op    BinaryOperator
	Right Expression
}

type Binding struct {
	Name       string
	Expression Expression
}

type Conditional struct {
	Condition Expression
	Body      []Statement
}

type Function struct {
	Name string
	// Arguments is always empty, the grammar only accepts ().
	Arguments  []string
	ReturnType *string
	Body       []Statement
}

type Module struct {
	Functions []Function
}

// Assign builds the expression a bare `name = value;` statement parses to.
func Assign(name string, value Expression) Binary {
	return Binary{
		Left:  Variable(name),
		Op:    Assignment,
		Right: value,
	}
}

// Target returns the variable an assignment writes to.
func (v Binary) Target() (string, bool) {
	if v.Op != Assignment {
		return "", false
	}
	name, ok := v.Left.(Variable)
	return string(name), ok
}
