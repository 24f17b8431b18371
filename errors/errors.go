package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/deltac/types"
)

// LexicalError reports one coalesced run of invalid characters.
type LexicalError struct {
	Section types.TextSection
}

func (e LexicalError) Error() string {
	return fmt.Sprintf("invalid characters at %s", e.Section)
}

// UnexpectedToken is the parse failure. Got is empty when the input ended early.
type UnexpectedToken struct {
	Got      string
	Expected []string
	Range    types.Range
	Location types.Position
}

func (e UnexpectedToken) Error() string {
	got := e.Got
	if got == "" {
		got = "end of input"
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("unexpected %s. %s", got, e.Location)
	}
	return fmt.Sprintf("got %s, expected one of %s. %s", got, strings.Join(e.Expected, ", "), e.Location)
}

type TypeMismatch struct {
	Expected types.PrimitiveType
	Found    types.PrimitiveType
	Context  string
}

func (e TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch in '%s': expected %s, found %s", e.Context, e.Expected, e.Found)
}

type UnknownVariable struct {
	Name string
}

func (e UnknownVariable) Error() string {
	return fmt.Sprintf("unknown variable '%s'", e.Name)
}

type InvalidDeclarationType struct {
	Name string
	Type types.PrimitiveType
}

func (e InvalidDeclarationType) Error() string {
	return fmt.Sprintf("variable '%s' cannot be declared with type %s", e.Name, e.Type)
}

type InvalidLiteral struct {
	Value string
	Type  types.PrimitiveType
}

func (e InvalidLiteral) Error() string {
	return fmt.Sprintf("'%s' is not a valid %s literal", e.Value, e.Type)
}

// Unsupported marks a construct the grammar accepts but no back end lowers.
type Unsupported struct {
	Construct string
}

func (e Unsupported) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Construct)
}

type ToolError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e ToolError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Tool, strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e ToolError) Unwrap() error {
	return e.Err
}
