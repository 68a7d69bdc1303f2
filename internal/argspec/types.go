// Package argspec normalizes raw argument declarations into canonical
// descriptors shared by every code generation backend.
package argspec

import (
	"strconv"
	"strings"
)

// Type is the value type of an argument.
type Type string

const (
	Flag   Type = "flag"
	String Type = "string"
	Int    Type = "int"
	Float  Type = "float"
)

// Types lists the supported argument types in documentation order.
var Types = []Type{Flag, String, Int, Float}

// LongPrefix marks a named option; names without it are positionals.
const LongPrefix = "--"

// Program holds the program metadata section of a specification document.
type Program struct {
	Name        string
	Description string
	Epilog      string
}

// Declaration is one raw argument declaration as found in a specification
// document. Boolean-like fields hold "true" or "false"; pointer fields are
// nil when the key is absent.
type Declaration struct {
	Name     string
	Type     string
	Help     string
	Short    string
	Dest     string
	Multiple string
	Metavar  *string
	Choices  *string
	Default  *string
	Required string
}

// UnknownKey records a key the loader did not recognize.
type UnknownKey struct {
	Arg int // 1-based declaration index, 0 for the program section
	Key string
}

// Document is the in-memory form of a specification document.
type Document struct {
	Program   Program
	Arguments []Declaration
	Unknown   []UnknownKey
}

// Value is a typed scalar value: a default or one element of a repeated default.
type Value struct {
	Type  Type
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// String renders the value the way it is written in a specification document.
func (v Value) String() string {
	switch v.Type {
	case Flag:
		return strconv.FormatBool(v.Bool)
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return FormatFloat(v.Float)
	default:
		return v.Str
	}
}

// FormatFloat renders f so that it always reads as a floating point literal.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
