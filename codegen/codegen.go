package codegen

import (
	"fmt"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/deltac/ast"
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/deltac", "codegen")

type Options struct {
	// Entry names the function that terminates the process instead of
	// returning. Defaults to main.
	Entry string
	// ExitCode is the status the entry function exits with.
	ExitCode int
	// DumpLocals prints every local with printf before the entry function
	// exits.
	DumpLocals bool
}

func (o Options) entry() string {
	if o.Entry == "" {
		return "main"
	}
	return o.Entry
}

type ctx struct {
	gen  *Generator
	data *Generator
	opts Options

	fn    ast.Function
	frame *frame
	// next is the slot the next declaration stores into.
	next   int
	bound  map[string]slot
	labels int
}

// Generate lowers a module to x86-64 assembly in AT&T syntax. Nothing is
// returned unless every function lowers completely.
func Generate(m *ast.Module, opts Options) (string, error) {
	if m == nil || len(m.Functions) == 0 {
		return "", tracerr.Wrap(errors.Unsupported{Construct: "module without functions"})
	}

	if err := checkNames(m, opts.entry()); err != nil {
		return "", tracerr.Wrap(err)
	}

	gen := NewGenerator()
	data := NewGenerator()

	gen.Instr(".text")
	for _, fn := range m.Functions {
		c := &ctx{
			gen:   gen,
			data:  data,
			opts:  opts,
			fn:    fn,
			bound: map[string]slot{},
		}
		if err := c.function(); err != nil {
			return "", tracerr.Wrap(err)
		}
	}

	if len(data.Lines()) > 0 {
		gen.Raw("")
		gen.Instr(".section .rodata")
		for _, line := range data.Lines() {
			gen.Raw(line)
		}
	}

	return gen.String(), nil
}

// builtins are the C library symbols generated code calls.
var builtins = []string{"exit", "printf"}

// checkNames rejects functions that would take the place of a builtin, since
// the exit trailer would then call back into the program.
func checkNames(m *ast.Module, entry string) error {
	for _, name := range builtins {
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

func (c *ctx) function() error {
	if len(c.fn.Arguments) > 0 {
		return errors.Unsupported{Construct: fmt.Sprintf("arguments of function '%s'", c.fn.Name)}
	}

	frame, err := layout(c.fn)
	if err != nil {
		return err
	}
	c.frame = frame

	c.gen.Instr(".globl %s", c.fn.Name)
	c.gen.Label(c.fn.Name)
	c.gen.Instr("push %%rbp")
	c.gen.Instr("mov %%rsp, %%rbp")
	c.gen.Instr("sub $%d, %%rsp", frame.size)

	for _, stmt := range c.fn.Body {
		if err := c.statement(stmt); err != nil {
			return err
		}
	}

	if c.fn.Name != c.opts.entry() {
		c.gen.Instr("leave")
		c.gen.Instr("ret")
		return nil
	}

	if c.opts.DumpLocals {
		c.dumpLocals()
	}
	c.gen.Exit(c.opts.ExitCode)
	return nil
}

func (c *ctx) lookup(name string) (types.PrimitiveType, bool) {
	s, ok := c.bound[name]
	return s.Type, ok
}

func (c *ctx) slotOf(name string) (slot, error) {
	s, ok := c.bound[name]
	if !ok {
		return slot{}, errors.UnknownVariable{Name: name}
	}
	return s, nil
}

func (c *ctx) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case ast.Declaration:
		dst := c.frame.slots[c.next]
		c.next++
		if err := c.store(s.Expression, dst); err != nil {
			return err
		}
		c.bound[s.Name] = dst
		return nil
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

func (c *ctx) assignment(e ast.Expression) error {
	bin, ok := e.(ast.Binary)
	if !ok {
		return errors.Unsupported{Construct: fmt.Sprintf("expression statement '%s'", ast.ExpressionString(e))}
	}
	name, ok := bin.Target()
	if !ok {
		return errors.Unsupported{Construct: fmt.Sprintf("expression statement '%s'", bin)}
	}

	dst, err := c.slotOf(name)
	if err != nil {
		return err
	}
	return c.store(bin.Right, dst)
}

// store writes a literal or a variable straight into dst. Anything that would
// need evaluating first is rejected.
func (c *ctx) store(e ast.Expression, dst slot) error {
	suffix, reg := sized(dst.Width())

	switch v := e.(type) {
	case ast.Literal:
		if v.Type != dst.Type {
			return errors.TypeMismatch{Expected: dst.Type, Found: v.Type, Context: v.String()}
		}
		imm, err := immediate(v)
		if err != nil {
			return err
		}
		c.gen.Instr("mov%s $%d, %s", suffix, imm, dst.Operand())
		return nil
	case ast.Variable:
		src, err := c.slotOf(string(v))
		if err != nil {
			return err
		}
		if src.Type != dst.Type {
			return errors.TypeMismatch{Expected: dst.Type, Found: src.Type, Context: v.String()}
		}
		c.gen.Instr("mov%s %s, %s", suffix, src.Operand(), reg)
		c.gen.Instr("mov%s %s, %s", suffix, reg, dst.Operand())
		return nil
	}

	return errors.Unsupported{Construct: fmt.Sprintf("'%s' as the value of %s", ast.ExpressionString(e), dst.Name)}
}

func (c *ctx) conditional(cond ast.If) error {
	t, err := ast.TypeOf(cond.Condition, c.lookup)
	if err != nil {
		return err
	}
	if t != types.Boolean {
		return errors.TypeMismatch{Expected: types.Boolean, Found: t, Context: ast.ExpressionString(cond.Condition)}
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

	label := c.newLabel()

	c.gen.Instr("movl %s, %%eax", left)
	c.gen.Instr("cmpl %s, %%eax", right)
	c.gen.Instr("jbe %s", label)

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

	c.gen.Label(label)
	return nil
}

// operand renders one side of a comparison, which must be a Number literal or
// variable.
func (c *ctx) operand(e ast.Expression, in ast.Binary) (string, error) {
	t, err := ast.TypeOf(e, c.lookup)
	if err != nil {
		return "", err
	}
	if t != types.Number {
		return "", errors.TypeMismatch{Expected: types.Number, Found: t, Context: in.String()}
	}

	switch v := e.(type) {
	case ast.Literal:
		imm, err := immediate(v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%d", imm), nil
	case ast.Variable:
		s, err := c.slotOf(string(v))
		if err != nil {
			return "", err
		}
		return s.Operand(), nil
	}

	return "", errors.Unsupported{Construct: fmt.Sprintf("operand '%s' in condition '%s'", ast.ExpressionString(e), in)}
}

func (c *ctx) newLabel() string {
	label := fmt.Sprintf(".L%s_endif%d", c.fn.Name, c.labels)
	c.labels++
	plog.Tracef("allocated label %s", label)
	return label
}

func (c *ctx) dumpLocals() {
	for i, s := range c.frame.slots {
		label := fmt.Sprintf(".Ldump_%s_%d", c.fn.Name, i)
		c.data.LabelWithValue(label, ".asciz "+strconv.Quote(s.Name+" = %u\n"))

		c.gen.Instr("lea %s(%%rip), %%rdi", label)
		if s.Width() == 1 {
			c.gen.Instr("movzbl %s, %%esi", s.Operand())
		} else {
			c.gen.Instr("movl %s, %%esi", s.Operand())
		}
		c.gen.Instr("xor %%eax, %%eax")
		c.gen.Instr("call printf@PLT")
	}
}

// immediate parses a literal's text into the value stored for it.
func immediate(l ast.Literal) (uint64, error) {
	switch l.Type {
	case types.Number:
		n, err := strconv.ParseUint(l.Value, 10, 32)
		if err != nil {
			return 0, errors.InvalidLiteral{Value: l.Value, Type: l.Type}
		}
		return n, nil
	case types.Boolean:
		b, err := strconv.ParseBool(l.Value)
		if err != nil {
			return 0, errors.InvalidLiteral{Value: l.Value, Type: l.Type}
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.InvalidLiteral{Value: l.Value, Type: l.Type}
}

func sized(w int) (suffix, reg string) {
	if w == 1 {
		return "b", "%al"
	}
	return "l", "%eax"
}
