package irgen

import (
	"github.com/llir/llvm/ir/types"
	dtypes "github.com/pontaoski/deltac/types"
)

var (
	Number  = types.I32
	Boolean = types.I1
	Void    = types.Void
)

// llvmType maps a primitive to the type its locals are allocated with. Void has
// no storage.
func llvmType(t dtypes.PrimitiveType) (types.Type, bool) {
	switch t {
	case dtypes.Number:
		return Number, true
	case dtypes.Boolean:
		return Boolean, true
	}
	return Void, false
}
