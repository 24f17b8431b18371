package ast

import (
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/types"
)

// Environment resolves a variable name to the type it was declared with.
type Environment func(name string) (types.PrimitiveType, bool)

// Scope is an Environment backed by a map.
type Scope map[string]types.PrimitiveType

func (s Scope) Lookup(name string) (types.PrimitiveType, bool) {
	t, ok := s[name]
	return t, ok
}

// TypeOf computes the type of an expression. It never inspects the operands of
// a comparison: Greater is Boolean and Assignment is Void regardless.
func TypeOf(e Expression, env Environment) (types.PrimitiveType, error) {
	switch expr := e.(type) {
	case Variable:
		t, ok := env(string(expr))
		if !ok {
			return types.Void, errors.UnknownVariable{Name: string(expr)}
		}
		return t, nil
	case Literal:
		return expr.Type, nil
	case Binary:
		switch expr.Op {
		case Greater:
			return types.Boolean, nil
		case Assignment:
			return types.Void, nil
		case Addition:
			left, err := TypeOf(expr.Left, env)
			if err != nil {
				return types.Void, err
			}
			right, err := TypeOf(expr.Right, env)
			if err != nil {
				return types.Void, err
			}
			if left != right {
				return types.Void, errors.TypeMismatch{Expected: left, Found: right, Context: expr.String()}
			}
			if left == types.Void {
				return types.Void, errors.TypeMismatch{Expected: types.Number, Found: types.Void, Context: expr.String()}
			}
			return left, nil
		}
	}

	return types.Void, errors.Unsupported{Construct: "expression " + ExpressionString(e)}
}
