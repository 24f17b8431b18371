package irgen

import (
	"encoding/json"
	"fmt"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/ztrue/tracerr"
)

// TypeInfoSymbol is the global that carries a module's type information.
const TypeInfoSymbol = "__delta_types"

type TypeInfo struct {
	// Functions maps each function to its declared return type, "void" when
	// it has none.
	Functions map[string]string `json:"functions"`
}

func registerTypeInfoWithModule(t TypeInfo, m *ir.Module) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	g := m.NewGlobalDef(TypeInfoSymbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
	return nil
}

// ReadTypeInfo recovers the type information from a file of LLVM IR text.
func ReadTypeInfo(path string) (TypeInfo, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return TypeInfo{}, tracerr.Wrap(err)
	}
	return typeInfoOf(m)
}

// ParseTypeInfo is ReadTypeInfo for IR already held in memory.
func ParseTypeInfo(name, text string) (TypeInfo, error) {
	m, err := asm.ParseString(name, text)
	if err != nil {
		return TypeInfo{}, tracerr.Wrap(err)
	}
	return typeInfoOf(m)
}

func typeInfoOf(m *ir.Module) (t TypeInfo, err error) {
	for _, g := range m.Globals {
		if g.Name() != TypeInfoSymbol {
			continue
		}
		arr, ok := g.Init.(*constant.CharArray)
		if !ok {
			return TypeInfo{}, tracerr.Errorf("%s is not a character array", TypeInfoSymbol)
		}

		data := arr.X
		if n := len(data); n > 0 && data[n-1] == 0 {
			data = data[:n-1]
		}
		err = json.Unmarshal(data, &t)
		return t, tracerr.Wrap(err)
	}

	return TypeInfo{}, tracerr.New(fmt.Sprintf("no %s in module", TypeInfoSymbol))
}
