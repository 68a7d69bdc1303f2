// Package argspectest provides specification fixtures shared by the
// backend, simulator and driver tests.
package argspectest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lhaig/climeta/internal/argspec"
)

// Str returns a pointer to s, for optional declaration keys.
func Str(s string) *string { return &s }

// Sample0 declares a required positional, a required option without short
// alias, a false-defaulting flag, a true-defaulting flag with its own dest,
// a required int and a float with a default.
func Sample0() *argspec.Document {
	return &argspec.Document{
		Program: argspec.Program{
			Name:        "sample0",
			Description: "Example CLI Parser using TOML",
			Epilog:      "Example: sample0 input.txt --output output.txt --verbose -i 1 -f 2.0",
		},
		Arguments: []argspec.Declaration{
			{Name: "input", Type: "string", Help: "input file path"},
			{Name: "--output", Type: "string", Help: "output file path"},
			{Name: "--verbose", Short: "-v", Type: "flag", Help: "enable verbose mode"},
			{Name: "--disable", Type: "flag", Dest: "enable", Default: Str("true"), Help: "disable something"},
			{Name: "--int", Short: "-i", Type: "int", Dest: "int_", Help: "just an integer number"},
			{Name: "--float", Short: "-f", Type: "float", Dest: "float_", Default: Str("7.0"), Help: "just a float number"},
		},
	}
}

// Scenario is the minimal document of the cross-backend scenario: one
// required positional, one required option, a plain flag and an inverted
// flag stored under another dest.
func Scenario() *argspec.Document {
	return &argspec.Document{
		Program: argspec.Program{Name: "scenario", Description: "cross-backend scenario"},
		Arguments: []argspec.Declaration{
			{Name: "input", Type: "string", Help: "input file"},
			{Name: "--output", Type: "string", Help: "output file"},
			{Name: "--verbose", Short: "-v", Type: "flag", Help: "enable verbose mode"},
			{Name: "--disable", Type: "flag", Dest: "enable", Default: Str("true"), Help: "disable something"},
		},
	}
}

// Langs declares a required option restricted to a set of choices.
func Langs() *argspec.Document {
	return &argspec.Document{
		Program: argspec.Program{Name: "langs", Description: "choices scenario", Epilog: "Goes at the end"},
		Arguments: []argspec.Declaration{
			{Name: "input", Type: "string", Help: "input TOML file"},
			{Name: "--output", Short: "-o", Type: "string", Default: Str("cli_args"), Help: "output file"},
			{Name: "--lang", Short: "-l", Type: "string", Choices: Str("python, bash"), Help: "language for the generated code"},
		},
	}
}

// Repeated declares options accumulating one value per occurrence.
func Repeated() *argspec.Document {
	return &argspec.Document{
		Program: argspec.Program{Name: "repeated", Description: "repeated options"},
		Arguments: []argspec.Declaration{
			{Name: "--include", Short: "-I", Type: "string", Multiple: "true", Default: Str("a b"), Help: "include dir"},
			{Name: "--level", Type: "int", Multiple: "true", Default: Str("1 0x10"), Help: "levels"},
			{Name: "--mode", Type: "string", Multiple: "true", Choices: Str("fast,slow"), Default: Str("fast"), Help: "modes"},
		},
	}
}

// Shadowing declares dests that share their names with the generated
// scripts' working variables, and an int positional that takes negative
// numbers.
func Shadowing() *argspec.Document {
	return &argspec.Document{
		Program: argspec.Program{Name: "shadowing", Description: "internal names as dests"},
		Arguments: []argspec.Declaration{
			{Name: "count", Type: "int", Help: "a number"},
			{Name: "--rest", Short: "-r", Type: "string", Default: Str("none"), Help: "rest"},
			{Name: "--out", Type: "int", Default: Str("0"), Help: "out"},
			{Name: "--value", Type: "flag", Help: "value"},
			{Name: "--item", Type: "string", Multiple: "true", Default: Str("a"), Help: "items"},
		},
	}
}

// Documents returns every fixture keyed by program name.
func Documents() map[string]*argspec.Document {
	return map[string]*argspec.Document{
		"sample0":  Sample0(),
		"scenario": Scenario(),
		"langs":    Langs(),
		"repeated": Repeated(),
	}
}

// MustSpec normalizes doc or fails the test.
func MustSpec(t testing.TB, doc *argspec.Document) *argspec.Spec {
	t.Helper()
	spec, err := argspec.New(doc)
	require.NoError(t, err)
	return spec
}
