package irgen

import (
	"fmt"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/deltac/ast"
	"github.com/pontaoski/deltac/errors"
	dtypes "github.com/pontaoski/deltac/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/deltac", "irgen")

// Options mirror the assembly back end's.
type Options struct {
	Entry      string
	ExitCode   int
	DumpLocals bool
}

func (o Options) entry() string {
	if o.Entry == "" {
		return "main"
	}
	return o.Entry
}

type local struct {
	name  string
	kind  dtypes.PrimitiveType
	alloc *ir.InstAlloca
}

type ctx struct {
	module   *ir.Module
	builtins builtins
	opts     Options

	fn     ast.Function
	block  *ir.Block
	locals []local
	bound  map[string]local
	names  map[string]int
	labels int
}

// Generate lowers a module to LLVM IR. It accepts exactly what the assembly
// back end accepts and fails the same way.
func Generate(m *ast.Module, opts Options) (*ir.Module, error) {
	if m == nil || len(m.Functions) == 0 {
		return nil, tracerr.Wrap(errors.Unsupported{Construct: "module without functions"})
	}

	if err := checkNames(m, opts.entry()); err != nil {
		return nil, tracerr.Wrap(err)
	}

	c := &ctx{
		module: ir.NewModule(),
		opts:   opts,
	}
	c.builtins = addBuiltins(c.module)

	info := TypeInfo{Functions: map[string]string{}}
	for _, fn := range m.Functions {
		if err := c.function(fn); err != nil {
			return nil, tracerr.Wrap(err)
		}

		ret := "void"
		if fn.ReturnType != nil {
			ret = *fn.ReturnType
		}
		info.Functions[fn.Name] = ret
	}

	if err := registerTypeInfoWithModule(info, c.module); err != nil {
		return nil, tracerr.Wrap(err)
	}

	return c.module, nil
}

// checkNames rejects functions that would collide with a declared builtin.
func checkNames(m *ast.Module, entry string) error {
	for _, name := range builtinNames {
		if entry == name {
			return errors.Unsupported{Construct: fmt.Sprintf("entry function named '%s', which is a builtin", name)}
		}
		for _, fn := range m.Functions {
			if fn.Name == name {
				return errors.Unsupported{Construct: fmt.Sprintf("function named '%s', which is a builtin", name)}
			}
		}
	}
	return nil
}

func (c *ctx) function(fn ast.Function) error {
	if len(fn.Arguments) > 0 {
		return errors.Unsupported{Construct: fmt.Sprintf("arguments of function '%s'", fn.Name)}
	}

	c.fn = fn
	c.locals = nil
	c.bound = map[string]local{}
	c.names = map[string]int{}
	c.labels = 0

	isEntry := fn.Name == c.opts.entry()

	var ret types.Type = types.Void
	if isEntry {
		ret = types.I32
	}
	f := c.module.NewFunc(fn.Name, ret)
	c.block = f.NewBlock("bb.entry")

	for _, stmt := range fn.Body {
		if err := c.statement(stmt); err != nil {
			return err
		}
	}

	if !isEntry {
		c.block.NewRet(nil)
		return nil
	}

	if c.opts.DumpLocals {
		c.dumpLocals()
	}
	c.block.NewCall(c.builtins.exit, constant.NewInt(types.I32, int64(c.opts.ExitCode)))
	c.block.NewUnreachable()
	return nil
}

func (c *ctx) lookup(name string) (dtypes.PrimitiveType, bool) {
	l, ok := c.bound[name]
	return l.kind, ok
}

func (c *ctx) localOf(name string) (local, error) {
	l, ok := c.bound[name]
	if !ok {
		return local{}, errors.UnknownVariable{Name: name}
	}
	return l, nil
}

// localName keeps IR names unique when a declaration shadows an earlier one.
func (c *ctx) localName(name string) string {
	n := c.names[name]
	c.names[name]++
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, n)
}

func (c *ctx) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case ast.Declaration:
		return c.declaration(s)
	case ast.ExpressionStatement:
		return c.assignment(s.Expression)
	case ast.ControlFlowStatement:
		switch cf := s.ControlFlow.(type) {
		case ast.If:
			return c.conditional(cf)
		}
	}

	return errors.Unsupported{Construct: fmt.Sprintf("statement '%s'", stmt)}
}

func (c *ctx) declaration(d ast.Declaration) error {
	kind, err := ast.TypeOf(d.Expression, c.lookup)
	if err != nil {
		return err
	}
	t, ok := llvmType(kind)
	if !ok {
		return errors.InvalidDeclarationType{Name: d.Name, Type: kind}
	}

	alloc := c.allocaBlock().NewAlloca(t)
	alloc.SetName(c.localName(d.Name))
	l := local{name: d.Name, kind: kind, alloc: alloc}
	plog.Debugf("%s: %s %s as %%%s", c.fn.Name, d.Name, kind, alloc.Name())

	if err := c.store(d.Expression, l); err != nil {
		return err
	}
	c.locals = append(c.locals, l)
	c.bound[d.Name] = l
	return nil
}

// allocaBlock is the entry block, where every alloca lives.
func (c *ctx) allocaBlock() *ir.Block {
	return c.block.Parent.Blocks[0]
}

func (c *ctx) assignment(e ast.Expression) error {
	bin, ok := e.(ast.Binary)
	if !ok {
		return errors.Unsupported{Construct: fmt.Sprintf("expression statement '%s'", ast.ExpressionString(e))}
	}
	name, ok := bin.Target()
	if !ok {
		return errors.Unsupported{Construct: fmt.Sprintf("expression statement '%s'", bin)}
	}

	dst, err := c.localOf(name)
	if err != nil {
		return err
	}
	return c.store(bin.Right, dst)
}

func (c *ctx) store(e ast.Expression, dst local) error {
	switch v := e.(type) {
	case ast.Literal:
		if v.Type != dst.kind {
			return errors.TypeMismatch{Expected: dst.kind, Found: v.Type, Context: v.String()}
		}
		k, err := literal(v)
		if err != nil {
			return err
		}
		c.block.NewStore(k, dst.alloc)
		return nil
	case ast.Variable:
		src, err := c.localOf(string(v))
		if err != nil {
			return err
		}
		if src.kind != dst.kind {
			return errors.TypeMismatch{Expected: dst.kind, Found: src.kind, Context: v.String()}
		}
		c.block.NewStore(c.block.NewLoad(src.alloc.ElemType, src.alloc), dst.alloc)
		return nil
	}

	return errors.Unsupported{Construct: fmt.Sprintf("'%s' as the value of %s", ast.ExpressionString(e), dst.name)}
}

func (c *ctx) conditional(cond ast.If) error {
	t, err := ast.TypeOf(cond.Condition, c.lookup)
	if err != nil {
		return err
	}
	if t != dtypes.Boolean {
		return errors.TypeMismatch{Expected: dtypes.Boolean, Found: t, Context: ast.ExpressionString(cond.Condition)}
	}

	cmp, ok := cond.Condition.(ast.Binary)
	if !ok || cmp.Op != ast.Greater {
		return errors.Unsupported{Construct: fmt.Sprintf("condition '%s'", ast.ExpressionString(cond.Condition))}
	}

	left, err := c.operand(cmp.Left, cmp)
	if err != nil {
		return err
	}
	right, err := c.operand(cmp.Right, cmp)
	if err != nil {
		return err
	}

	f := c.block.Parent
	// Block names contain dots so they never collide with a local, whose
	// names are identifiers or identifiers with a numeric suffix.
	then := f.NewBlock(fmt.Sprintf("bb.then.%d", c.labels))
	endif := f.NewBlock(fmt.Sprintf("bb.endif.%d", c.labels))
	c.labels++

	c.block.NewCondBr(c.block.NewICmp(enum.IPredUGT, left, right), then, endif)

	c.block = then
	for _, stmt := range cond.Body {
		switch s := stmt.(type) {
		case ast.ExpressionStatement:
			if err := c.assignment(s.Expression); err != nil {
				return err
			}
		case ast.Declaration:
			return errors.Unsupported{Construct: fmt.Sprintf("declaration of '%s' inside an if body", s.Name)}
		default:
			return errors.Unsupported{Construct: "nested control flow"}
		}
	}
	c.block.NewBr(endif)

	c.block = endif
	return nil
}

func (c *ctx) operand(e ast.Expression, in ast.Binary) (value.Value, error) {
	t, err := ast.TypeOf(e, c.lookup)
	if err != nil {
		return nil, err
	}
	if t != dtypes.Number {
		return nil, errors.TypeMismatch{Expected: dtypes.Number, Found: t, Context: in.String()}
	}

	switch v := e.(type) {
	case ast.Literal:
		return literal(v)
	case ast.Variable:
		l, err := c.localOf(string(v))
		if err != nil {
			return nil, err
		}
		return c.block.NewLoad(l.alloc.ElemType, l.alloc), nil
	}

	return nil, errors.Unsupported{Construct: fmt.Sprintf("operand '%s' in condition '%s'", ast.ExpressionString(e), in)}
}

func (c *ctx) dumpLocals() {
	for i, l := range c.locals {
		format := c.module.NewGlobalDef(
			fmt.Sprintf("dump.%s.%d", c.fn.Name, i),
			constant.NewCharArrayFromString(l.name+" = %u\n\x00"),
		)
		format.Immutable = true

		v := value.Value(c.block.NewLoad(l.alloc.ElemType, l.alloc))
		if l.kind == dtypes.Boolean {
			v = c.block.NewZExt(v, types.I32)
		}
		ptr := c.block.NewBitCast(format, types.NewPointer(types.I8))
		c.block.NewCall(c.builtins.printf, ptr, v)
	}
}

func literal(l ast.Literal) (*constant.Int, error) {
	switch l.Type {
	case dtypes.Number:
		n, err := strconv.ParseUint(l.Value, 10, 32)
		if err != nil {
			return nil, errors.InvalidLiteral{Value: l.Value, Type: l.Type}
		}
		return constant.NewInt(types.I32, int64(n)), nil
	case dtypes.Boolean:
		b, err := strconv.ParseBool(l.Value)
		if err != nil {
			return nil, errors.InvalidLiteral{Value: l.Value, Type: l.Type}
		}
		return constant.NewBool(b), nil
	}
	return nil, errors.InvalidLiteral{Value: l.Value, Type: l.Type}
}
