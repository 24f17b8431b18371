package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// builtinNames are the C library functions every module declares.
var builtinNames = []string{"exit", "printf"}

type builtins struct {
	exit   *ir.Func
	printf *ir.Func
}

func addBuiltins(m *ir.Module) builtins {
	return builtins{
		exit:   addExit(m),
		printf: addPrintf(m),
	}
}

func addExit(m *ir.Module) *ir.Func {
	return m.NewFunc(builtinNames[0], types.Void, ir.NewParam("status", types.I32))
}

func addPrintf(m *ir.Module) *ir.Func {
	fn := m.NewFunc(builtinNames[1], types.I32, ir.NewParam("format", types.NewPointer(types.I8)))
	fn.Sig.Variadic = true
	return fn
}
