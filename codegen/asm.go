package codegen

import (
	"fmt"
	"strings"
)

// Generator accumulates assembly one line at a time.
type Generator struct {
	asm []string
}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Raw(line string) {
	g.asm = append(g.asm, line)
}

// Instr emits an indented instruction.
func (g *Generator) Instr(format string, args ...interface{}) {
	g.Raw("    " + fmt.Sprintf(format, args...))
}

func (g *Generator) Label(name string) {
	g.Raw(name + ":")
}

func (g *Generator) LabelWithValue(name, value string) {
	g.Raw(fmt.Sprintf("%s: %s", name, value))
}

func (g *Generator) Exit(code int) {
	g.Instr("mov $%d, %%rdi", code)
	g.Instr("call exit@PLT")
}

func (g *Generator) Lines() []string {
	return g.asm
}

func (g *Generator) String() string {
	return strings.Join(g.asm, "\n") + "\n"
}
