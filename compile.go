package main

import (
	"strings"

	"github.com/pontaoski/deltac/ast"
	"github.com/pontaoski/deltac/codegen"
	"github.com/pontaoski/deltac/errors"
	"github.com/pontaoski/deltac/irgen"
	"github.com/pontaoski/deltac/lexer"
	"github.com/pontaoski/deltac/manifest"
	"github.com/pontaoski/deltac/parser"
	"github.com/ztrue/tracerr"
)

// lexicalErrors stops the pipeline before parsing when the lexer found
// anything it could not classify.
type lexicalErrors []errors.LexicalError

func (l lexicalErrors) Error() string {
	var msgs []string
	for _, err := range l {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

type settings struct {
	backend    string
	entry      string
	exitCode   int
	dumpLocals bool
}

func parseSource(source string) (*ast.Module, error) {
	tokens, bad := lexer.Tokenize(source)
	if len(bad) > 0 {
		return nil, tracerr.Wrap(lexicalErrors(bad))
	}

	return parser.NewParser(source, tokens).Parse()
}

// compile runs the whole pipeline and returns the text handed to the
// toolchain, assembly or LLVM IR depending on the backend.
func compile(source string, s settings) (string, error) {
	m, err := parseSource(source)
	if err != nil {
		return "", err
	}

	switch s.backend {
	case manifest.BackendLLVM:
		mod, err := irgen.Generate(m, irgen.Options{
			Entry:      s.entry,
			ExitCode:   s.exitCode,
			DumpLocals: s.dumpLocals,
		})
		if err != nil {
			return "", err
		}
		return mod.String(), nil
	case manifest.BackendAssembly, "":
		return codegen.Generate(m, codegen.Options{
			Entry:      s.entry,
			ExitCode:   s.exitCode,
			DumpLocals: s.dumpLocals,
		})
	}

	return "", tracerr.Errorf("unknown backend %q", s.backend)
}
