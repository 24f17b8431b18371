package codegen

import (
	"fmt"

	"github.com/pontaoski/deltac/ast"
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/types"
)

const (
	// returnSlot bytes sit right below the frame pointer, locals start after.
	returnSlot     = 8
	stackAlignment = 16
)

type slot struct {
	Name   string
	Type   types.PrimitiveType
	Offset int
}

func (s slot) Width() int {
	w, _ := width(s.Type)
	return w
}

// Operand addresses the slot relative to the frame pointer.
func (s slot) Operand() string {
	return fmt.Sprintf("%d(%%rbp)", -s.Offset)
}

type frame struct {
	slots []slot
	size  int
}

func width(t types.PrimitiveType) (int, bool) {
	switch t {
	case types.Number:
		return 4, true
	case types.Boolean:
		return 1, true
	}
	return 0, false
}

func alignUp(n, to int) int {
	return (n + to - 1) / to * to
}

// layout assigns one slot per top-level declaration, in program order, using
// the declarations seen so far to resolve each initializer's type.
func layout(fn ast.Function) (*frame, error) {
	f := &frame{}
	scope := ast.Scope{}
	offset := returnSlot

	for _, stmt := range fn.Body {
		decl, ok := stmt.(ast.Declaration)
		if !ok {
			continue
		}

		t, err := ast.TypeOf(decl.Expression, scope.Lookup)
		if err != nil {
			return nil, err
		}
		w, ok := width(t)
		if !ok {
			return nil, errors.InvalidDeclarationType{Name: decl.Name, Type: t}
		}

		offset = alignUp(offset, w) + w
		f.slots = append(f.slots, slot{Name: decl.Name, Type: t, Offset: offset})
		scope[decl.Name] = t

		plog.Debugf("%s: %s %s at -%d(%%rbp)", fn.Name, decl.Name, t, offset)
	}

	f.size = alignUp(offset, stackAlignment)
	return f, nil
}
