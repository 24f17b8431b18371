package ast

import (
	"fmt"
	"strings"
)

func (o BinaryOperator) String() string {
	switch o {
	case Addition:
		return "+"
	case Greater:
		return ">"
	case Assignment:
		return "="
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(o))
}

func (v Variable) String() string {
	return string(v)
}

func (v Literal) String() string {
	return v.Value
}

func (v Binary) String() string {
	return fmt.Sprintf("%s %s %s", ExpressionString(v.Left), v.Op, ExpressionString(v.Right))
}

func ExpressionString(e Expression) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", e)
}

func (v Declaration) String() string {
	return fmt.Sprintf("let %s = %s;", v.Name, ExpressionString(v.Expression))
}

func (v ExpressionStatement) String() string {
	return ExpressionString(v.Expression) + ";"
}

func (v ControlFlowStatement) String() string {
	switch cf := v.ControlFlow.(type) {
	case If:
		return cf.String()
	}
	return fmt.Sprintf("%v", v.ControlFlow)
}

func (v If) String() string {
	return fmt.Sprintf("if %s { %s }", ExpressionString(v.Condition), bodyString(v.Body))
}

func bodyString(body []Statement) string {
	var parts []string
	for _, stmt := range body {
		if s, ok := stmt.(fmt.Stringer); ok {
			parts = append(parts, s.String())
		}
	}
	return strings.Join(parts, " ")
}

func (f Function) String() string {
	ret := ""
	if f.ReturnType != nil {
		ret = " -> " + *f.ReturnType
	}
	return fmt.Sprintf("fn %s()%s { %s }", f.Name, ret, bodyString(f.Body))
}
