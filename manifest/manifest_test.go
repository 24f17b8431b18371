package manifest

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alecthomas/repr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Module
	}{
		{
			name:     "defaults",
			input:    "Package: hello\n",
			expected: Default("hello"),
		},
		{
			name: "everything set",
			input: `Package: hello
Source: src/hello.delta
Entry: start
Backend: llvm
Toolchain:
  Compiler: clang
  Flags:
  - -O2
  - -static
`,
			expected: Module{
				Package: "hello",
				Source:  "src/hello.delta",
				Entry:   "start",
				Backend: BackendLLVM,
				Toolchain: Toolchain{
					Compiler: "clang",
					Flags:    []string{"-O2", "-static"},
				},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse([]byte(test.input))
			if err != nil {
				t.Fatalf("parse: %s", err)
			}
			if !reflect.DeepEqual(got, test.expected) {
				t.Errorf("got %s, expected %s", repr.String(got), repr.String(test.expected))
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"Source: main.delta\n",
		"Package: hello\nBackend: wasm\n",
		"Package: [\n",
	} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("expected an error for %q", input)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "manifest")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, FileName)
	m := Default("hello")
	m.Toolchain.Flags = []string{"-no-pie"}

	if err := m.Save(path); err != nil {
		t.Fatalf("save: %s", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("got %s, expected %s", repr.String(got), repr.String(m))
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "does-not-exist", FileName)); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}
