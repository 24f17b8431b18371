package toolchain

import (
	"bytes"
	"io/ioutil"
	"os"
	"os/exec"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/deltac/errors"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/deltac", "toolchain")

// Toolchain turns generated text into a program and runs it.
type Toolchain interface {
	AssembleAndLink(text string) (string, error)
	Run(path string) (int, error)
}

// CC drives a C compiler driver, which can assemble and link both assembly and
// LLVM IR input.
type CC struct {
	Compiler string
	Flags    []string
	// Ext is the suffix of the temporary input file, and decides how the
	// driver treats it: ".s" or ".ll".
	Ext string
	// Output is where the program is written. A temporary file is used when
	// it is empty.
	Output string
}

var _ Toolchain = CC{}

func (c CC) compiler() string {
	if c.Compiler == "" {
		return "cc"
	}
	return c.Compiler
}

func (c CC) AssembleAndLink(text string) (string, error) {
	ext := c.Ext
	if ext == "" {
		ext = ".s"
	}

	in, err := ioutil.TempFile("", "deltac-*"+ext)
	if err != nil {
		return "", tracerr.Wrap(err)
	}
	defer os.Remove(in.Name())

	_, err = in.WriteString(text)
	if cerr := in.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", tracerr.Wrap(err)
	}

	out := c.Output
	if out == "" {
		f, err := ioutil.TempFile("", "deltac-*.out")
		if err != nil {
			return "", tracerr.Wrap(err)
		}
		f.Close()
		out = f.Name()
	}

	args := append([]string{"-o", out}, c.Flags...)
	args = append(args, in.Name())

	plog.Debugf("%s %s", c.compiler(), strings.Join(args, " "))

	cmd := exec.Command(c.compiler(), args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if c.Output == "" {
			os.Remove(out)
		}
		return "", tracerr.Wrap(errors.ToolError{
			Tool:   c.compiler(),
			Args:   args,
			Output: output.String(),
			Err:    err,
		})
	}

	return out, nil
}

// Run executes the program with the current process's standard streams and
// reports its exit status. A non-zero status is not an error.
func (c CC) Run(path string) (int, error) {
	plog.Debugf("running %s", path)

	cmd := exec.Command(path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if exit, ok := err.(*exec.ExitError); ok {
		return exit.ExitCode(), nil
	}
	if err != nil {
		return -1, tracerr.Wrap(errors.ToolError{Tool: path, Err: err})
	}
	return 0, nil
}
