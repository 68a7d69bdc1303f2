// Package formatter rewrites a specification document as canonical TOML:
// the program table first, then one [[arguments]] table per declaration in
// declaration order, keys in a fixed order and implied values left out.
package formatter

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/lhaig/climeta/internal/argspec"
)

type program struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Epilog      string `toml:"epilog,omitempty"`
}

type argument struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Help     string `toml:"help,omitempty"`
	Short    string `toml:"short,omitempty"`
	Dest     string `toml:"dest,omitempty"`
	Multiple bool   `toml:"multiple,omitempty"`
	Metavar  string `toml:"metavar,omitempty"`
	Choices  string `toml:"choices,omitempty"`
	Default  any    `toml:"default,omitempty"`
	Required bool   `toml:"required,omitempty"`
}

type document struct {
	Program   program    `toml:"program"`
	Arguments []argument `toml:"arguments,omitempty"`
}

// Format renders doc canonically. Unknown keys are dropped.
func Format(doc *argspec.Document) ([]byte, error) {
	out := document{Program: program(doc.Program)}
	for _, decl := range doc.Arguments {
		out.Arguments = append(out.Arguments, canonical(decl))
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(out); err != nil {
		return nil, errors.Wrap(err, "failed to marshal specification")
	}
	return buf.Bytes(), nil
}

func canonical(decl argspec.Declaration) argument {
	a := argument{
		Name:     strings.TrimSpace(decl.Name),
		Type:     decl.Type,
		Help:     decl.Help,
		Multiple: decl.Multiple == "true",
		Required: decl.Required == "true",
	}
	if decl.Short != "" {
		a.Short = "-" + strings.TrimLeft(decl.Short, "-")
	}
	clean := strings.TrimLeft(a.Name, "-")
	if decl.Dest != clean {
		a.Dest = decl.Dest
	}
	if decl.Metavar != nil && !strings.EqualFold(*decl.Metavar, clean) {
		a.Metavar = *decl.Metavar
	}
	if decl.Choices != nil {
		a.Choices = strings.Join(argspec.SplitChoices(*decl.Choices), ", ")
	}
	if decl.Default != nil {
		a.Default = canonicalDefault(decl)
	}
	return a
}

// canonicalDefault writes flag defaults as booleans, leaves an implied false
// out and keeps every other default as written.
func canonicalDefault(decl argspec.Declaration) any {
	text := *decl.Default
	if argspec.Type(decl.Type) != argspec.Flag {
		if decl.Multiple == "true" {
			return strings.Join(strings.Fields(text), " ")
		}
		return text
	}
	switch text {
	case "true":
		return true
	case "false":
		return nil
	}
	return text
}
