package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/deltac/irgen"
	"github.com/pontaoski/deltac/lexer"
	"github.com/pontaoski/deltac/manifest"
	"github.com/pontaoski/deltac/toolchain"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/deltac", "deltac")

// project is the manifest, if one was found, plus the source it points at.
type project struct {
	manifest.Module
	source string
}

// loadProject reads the source named on the command line, or the one the
// manifest in the working directory names.
func loadProject(c *cli.Context) (project, error) {
	p := project{Module: manifest.Default("a.out")}

	if _, err := os.Stat(manifest.FileName); err == nil {
		m, err := manifest.Load(manifest.FileName)
		if err != nil {
			return project{}, err
		}
		p.Module = m
	}

	path := c.Args().First()
	if path == "" {
		path = p.Source
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return project{}, tracerr.Wrap(err)
	}
	p.Source = path
	p.source = string(data)

	if backend := c.String("emit"); backend != "" {
		p.Backend = backend
	}
	if entry := c.String("entry"); entry != "" {
		p.Entry = entry
	}

	return p, nil
}

func (p project) settings(c *cli.Context) settings {
	return settings{
		backend:    p.Backend,
		entry:      p.Entry,
		exitCode:   c.Int("exit-code"),
		dumpLocals: c.Bool("dump-locals"),
	}
}

func (p project) toolchain(output string) toolchain.CC {
	cc := toolchain.CC{
		Compiler: p.Toolchain.Compiler,
		Flags:    p.Toolchain.Flags,
		Ext:      ".s",
		Output:   output,
	}
	if p.Backend == manifest.BackendLLVM {
		cc.Ext = ".ll"
		// cc is usually gcc, which cannot read LLVM IR.
		if cc.Compiler == "cc" {
			cc.Compiler = "clang"
		}
	}
	return cc
}

var codegenFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "emit",
		Usage: "backend to generate code with: asm or llvm",
	},
	&cli.StringFlag{
		Name:  "entry",
		Usage: "function that terminates the program",
	},
	&cli.IntFlag{
		Name:  "exit-code",
		Usage: "status the entry function exits with",
	},
	&cli.BoolFlag{
		Name:  "dump-locals",
		Usage: "print every local of the entry function before exiting",
	},
}

func main() {
	app := &cli.App{
		Name:  "deltac",
		Usage: "delta compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "NOTICE",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print errors with the source of their stack trace",
			},
		},
		Before: func(c *cli.Context) error {
			capnslog.SetFormatter(capnslog.NewPrettyFormatter(os.Stderr, false))
			level, err := capnslog.ParseLevel(strings.ToUpper(c.String("log-level")))
			if err != nil {
				return err
			}
			capnslog.SetGlobalLogLevel(level)
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			if coder, ok := err.(cli.ExitCoder); ok {
				os.Exit(coder.ExitCode())
			}
			if c.Bool("trace") {
				tracerr.PrintSourceColor(err)
			} else {
				fmt.Fprintf(os.Stderr, "error with deltac: %s\n", err)
			}
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "init a directory",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return tracerr.New("no module name provided")
					}
					if _, err := os.Stat(manifest.FileName); err == nil {
						return tracerr.Errorf("%s already exists", manifest.FileName)
					}
					return manifest.Default(name).Save(manifest.FileName)
				},
			},
			{
				Name:      "tokens",
				Usage:     "print the tokens of a file",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					p, err := loadProject(c)
					if err != nil {
						return err
					}

					tokens, bad := lexer.Tokenize(p.source)
					for _, tok := range tokens {
						fmt.Printf("%s\t%s\t%s\n", tok.Location, tok.Range, tok.Describe(p.source))
					}
					if len(bad) > 0 {
						return lexicalErrors(bad)
					}
					return nil
				},
			},
			{
				Name:      "ast",
				Usage:     "print the syntax tree of a file",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					p, err := loadProject(c)
					if err != nil {
						return err
					}

					m, err := parseSource(p.source)
					if err != nil {
						return err
					}
					repr.Println(m)
					return nil
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "dump typeinfo from a module of LLVM IR",
				ArgsUsage: "<file.ll>",
				Action: func(c *cli.Context) error {
					data, err := irgen.ReadTypeInfo(c.Args().Get(0))
					if err != nil {
						return err
					}
					repr.Println(data)
					return nil
				},
			},
			{
				Name:      "build",
				Usage:     "build a file",
				ArgsUsage: "[file]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name: "output",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the generated code instead of linking it",
					},
				}, codegenFlags...),
				Action: func(c *cli.Context) error {
					p, err := loadProject(c)
					if err != nil {
						return err
					}

					text, err := compile(p.source, p.settings(c))
					if err != nil {
						return err
					}

					if c.Bool("dump") {
						fmt.Print(text)
						return nil
					}

					out := c.String("output")
					if out == "" {
						out = p.Package
					}

					path, err := p.toolchain(out).AssembleAndLink(text)
					if err != nil {
						return err
					}
					plog.Infof("wrote %s", path)
					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "build a file and run it, exiting with its status",
				ArgsUsage: "[file]",
				Flags:     codegenFlags,
				Action: func(c *cli.Context) error {
					p, err := loadProject(c)
					if err != nil {
						return err
					}

					text, err := compile(p.source, p.settings(c))
					if err != nil {
						return err
					}

					cc := p.toolchain("")
					path, err := cc.AssembleAndLink(text)
					if err != nil {
						return err
					}
					defer os.Remove(path)

					status, err := cc.Run(path)
					if err != nil {
						return err
					}
					plog.Infof("%s exited with status %d", p.Source, status)
					if status != 0 {
						return cli.Exit("", status)
					}
					return nil
				},
			},
		},
	}
	app.Run(os.Args)
}
