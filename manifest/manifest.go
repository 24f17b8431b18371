package manifest

import (
	"fmt"
	"io/ioutil"

	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

// FileName is what `deltac init` writes and the other commands look for in the
// working directory.
const FileName = "Delta Module Information"

const (
	BackendAssembly = "asm"
	BackendLLVM     = "llvm"
)

type Toolchain struct {
	Compiler string   `yaml:"Compiler"`
	Flags    []string `yaml:"Flags,omitempty"`
}

type Module struct {
	Package   string    `yaml:"Package"`
	Source    string    `yaml:"Source"`
	Entry     string    `yaml:"Entry"`
	Backend   string    `yaml:"Backend"`
	Toolchain Toolchain `yaml:"Toolchain"`
}

func Default(pkg string) Module {
	return Module{
		Package: pkg,
		Source:  "main.delta",
		Entry:   "main",
		Backend: BackendAssembly,
		Toolchain: Toolchain{
			Compiler: "cc",
		},
	}
}

// Parse reads a manifest, filling anything left out with the defaults.
func Parse(data []byte) (Module, error) {
	var doc Module
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Module{}, tracerr.Wrap(err)
	}
	if doc.Package == "" {
		return Module{}, tracerr.Errorf("%s: missing Package", FileName)
	}

	def := Default(doc.Package)
	if doc.Source == "" {
		doc.Source = def.Source
	}
	if doc.Entry == "" {
		doc.Entry = def.Entry
	}
	if doc.Backend == "" {
		doc.Backend = def.Backend
	}
	if doc.Toolchain.Compiler == "" {
		doc.Toolchain.Compiler = def.Toolchain.Compiler
	}

	switch doc.Backend {
	case BackendAssembly, BackendLLVM:
	default:
		return Module{}, tracerr.Errorf("%s: unknown Backend %q", FileName, doc.Backend)
	}

	return doc, nil
}

func Load(path string) (Module, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Module{}, tracerr.Wrap(err)
	}
	return Parse(data)
}

func (m Module) Save(path string) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return tracerr.Wrap(err)
	}
	if err := ioutil.WriteFile(path, out, 0644); err != nil {
		return tracerr.Wrap(fmt.Errorf("error creating %s: %w", FileName, err))
	}
	return nil
}
