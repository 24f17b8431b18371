// Command adtgen expands sum type declarations into Go interfaces with one
// marker method per variant.
//
//	adtgen <input.adt> <output.go> <package>
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type TypeDecls struct {
	Declarations []*Declaration `@@*`
}

type TCase struct {
	Name string `"|" @Ident "of"`
	Kind string `(@Ident | @String | @RawString)`
}

type Declaration struct {
	Name  string  `"type" @Ident "="`
	Plain *string `(  (@Ident | @String | @RawString)`
	Many  []TCase ` | (@@)+)`
	I     struct{} `";"`
}

func (t *TypeDecls) IsSumType(name string) bool {
	for _, decls := range t.Declarations {
		if decls.Name == name && len(decls.Many) > 0 {
			return true
		}
	}
	return false
}

// unquote accepts both bare identifiers and quoted Go type expressions.
func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}

func GenerateDecls(pkgname, source string, t *TypeDecls) string {
	f := NewFile(pkgname)
	f.HeaderComment(fmt.Sprintf("Code generated by adtgen from %s. DO NOT EDIT.", source))

	for _, decl := range t.Declarations {
		if decl.Plain != nil {
			f.Type().Id(decl.Name).Id(unquote(*decl.Plain))
			continue
		}

		marker := "is_" + decl.Name
		f.Type().Id(decl.Name).Interface(
			Id(marker).Params(),
		)

		for _, it := range decl.Many {
			kind := unquote(it.Kind)
			if t.IsSumType(kind) {
				f.Type().Id(it.Name).Struct(Id(kind))
			} else {
				f.Type().Id(it.Name).Id(kind)
			}

			f.Func().Params(Id("v").Id(it.Name)).Id(marker).Params().Block()
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: adtgen <input.adt> <output.go> <package>")
		os.Exit(2)
	}

	parser := participle.MustBuild(&TypeDecls{})

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	decls := TypeDecls{}
	err = parser.ParseBytes(inData, &decls)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateDecls(pkgname, filepath.Base(in), &decls)), 0644)
	if err != nil {
		panic(err)
	}
}
