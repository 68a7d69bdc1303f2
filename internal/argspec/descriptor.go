package argspec

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMalformedName is returned for names with a single leading dash.
	ErrMalformedName = errors.New("name cannot start with a single -")
	// ErrMultipleFlag is returned when a flag is declared multiple.
	ErrMultipleFlag = errors.New("multiple not supported for flags")
	// ErrUnknownType is returned for a type outside flag|string|int|float.
	ErrUnknownType = errors.New("unknown argument type")
	// ErrBadDefault is returned when a default cannot be parsed as its type.
	ErrBadDefault = errors.New("invalid default value")
)

// Descriptor is the canonical, normalized form of one argument declaration.
// Descriptors are built once by Normalize and are read-only afterwards;
// backends share them without copying.
type Descriptor struct {
	Name       string // external name, "--output" or "input"
	CleanName  string // Name without the long-option prefix
	Short      string // "-o" or empty
	CleanShort string // "o" or empty
	Dest       string // internal field name
	Type       Type
	Help       string
	Metavar    string
	HasMetavar bool
	Multiple   bool
	Choices    []string // nil when unrestricted; empty when declared but blank

	Positional bool
	Required   bool
	HasDefault bool
	// Default holds the typed external default when HasDefault is set:
	// one element, or one element per item when Multiple.
	Default []Value
}

// Normalize derives the canonical descriptor of one raw declaration.
func Normalize(decl Declaration) (*Descriptor, error) {
	name := strings.TrimSpace(decl.Name)
	if name == "" {
		return nil, errors.WithHint(errors.New("name is empty"),
			`use "--name" for an option or a bare word for a positional`)
	}
	if strings.HasPrefix(name, "-") && !strings.HasPrefix(name, LongPrefix) {
		return nil, errors.WithHintf(errors.Wrapf(ErrMalformedName, "found %q", name),
			"use %q for an option", LongPrefix+strings.TrimLeft(name, "-"))
	}

	typ := Type(decl.Type)
	switch typ {
	case Flag, String, Int, Float:
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", decl.Type)
	}

	d := &Descriptor{
		Name:       name,
		CleanName:  strings.TrimLeft(name, "-"),
		Short:      decl.Short,
		CleanShort: strings.TrimLeft(decl.Short, "-"),
		Type:       typ,
		Help:       decl.Help,
		Multiple:   decl.Multiple == "true",
		Positional: !strings.HasPrefix(name, LongPrefix),
	}

	d.Dest = decl.Dest
	if d.Dest == "" {
		d.Dest = d.CleanName
	}

	d.Metavar = strings.ToUpper(d.CleanName)
	if decl.Metavar != nil {
		d.HasMetavar = true
		d.Metavar = strings.ToUpper(*decl.Metavar)
	}

	if decl.Choices != nil {
		d.Choices = SplitChoices(*decl.Choices)
		if d.Choices == nil {
			d.Choices = []string{}
		}
	}

	if d.Type == Flag && d.Multiple {
		return nil, errors.Wrapf(ErrMultipleFlag, "%s", name)
	}

	defaultKnown := decl.Default != nil || d.Type == Flag
	explicitRequired := decl.Required == "true"

	d.Required = d.Positional || explicitRequired || !defaultKnown
	d.HasDefault = !d.Required
	if !d.HasDefault {
		return d, nil
	}

	if decl.Default == nil {
		d.Default = []Value{{Type: Flag}}
		return d, nil
	}

	items := []string{*decl.Default}
	if d.Multiple {
		items = strings.Fields(*decl.Default)
	}
	for _, item := range items {
		v, err := ParseValue(d.Type, item)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", name)
		}
		d.Default = append(d.Default, v)
	}
	return d, nil
}

// NormalizeAll normalizes an ordered list of declarations, preserving order.
// It stops at the first invalid declaration.
func NormalizeAll(decls []Declaration) ([]*Descriptor, error) {
	descs := make([]*Descriptor, 0, len(decls))
	for i, decl := range decls {
		d, err := Normalize(decl)
		if err != nil {
			return nil, errors.Wrapf(err, "arguments[%d]", i+1)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// ParseValue parses text as a value of type t. Integers use automatic base
// detection (0x, 0o, 0b prefixes).
func ParseValue(t Type, text string) (Value, error) {
	v := Value{Type: t}
	switch t {
	case Flag:
		switch text {
		case "true":
			v.Bool = true
		case "false":
		default:
			return v, errors.Wrapf(ErrBadDefault, "%q is not true or false", text)
		}
	case Int:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 0, 64)
		if err != nil {
			return v, errors.Wrapf(ErrBadDefault, "%q is not an int", text)
		}
		v.Int = n
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return v, errors.Wrapf(ErrBadDefault, "%q is not a float", text)
		}
		v.Float = f
	default:
		v.Str = text
	}
	return v, nil
}

// SplitChoices splits a comma separated enumeration, trimming whitespace
// around each item and dropping empty items.
func SplitChoices(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsOption reports whether d is a named option.
func (d *Descriptor) IsOption() bool { return !d.Positional }

// Scalar returns the single default value of a non-repeated descriptor.
func (d *Descriptor) Scalar() Value {
	if len(d.Default) == 0 {
		return Value{Type: d.Type}
	}
	return d.Default[0]
}

// Allows reports whether value is acceptable for the choices of d.
func (d *Descriptor) Allows(value string) bool {
	if d.Choices == nil {
		return true
	}
	for _, c := range d.Choices {
		if c == value {
			return true
		}
	}
	return false
}
