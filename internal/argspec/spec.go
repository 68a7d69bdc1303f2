package argspec

import (
	"fmt"
	"strings"
)

// Spec is a normalized specification: program metadata plus the ordered
// descriptor list. Order determines positional assignment and help order.
type Spec struct {
	Program Program
	Args    []*Descriptor
}

// New normalizes a loaded document.
func New(doc *Document) (*Spec, error) {
	args, err := NormalizeAll(doc.Arguments)
	if err != nil {
		return nil, err
	}
	return &Spec{Program: doc.Program, Args: args}, nil
}

// Positionals returns the positional descriptors in declaration order.
func (s *Spec) Positionals() []*Descriptor {
	var out []*Descriptor
	for _, d := range s.Args {
		if d.Positional {
			out = append(out, d)
		}
	}
	return out
}

// Options returns the named option descriptors in declaration order.
func (s *Spec) Options() []*Descriptor {
	var out []*Descriptor
	for _, d := range s.Args {
		if !d.Positional {
			out = append(out, d)
		}
	}
	return out
}

// HasChoices reports whether any descriptor restricts its values.
func (s *Spec) HasChoices() bool {
	for _, d := range s.Args {
		if d.Choices != nil {
			return true
		}
	}
	return false
}

// HasType reports whether any descriptor has type t.
func (s *Spec) HasType(t Type) bool {
	for _, d := range s.Args {
		if d.Type == t {
			return true
		}
	}
	return false
}

// HasInverted reports whether any flag is stored with inverted polarity.
func (s *Spec) HasInverted() bool {
	for _, d := range s.Args {
		if d.Inverted() {
			return true
		}
	}
	return false
}

// Lookup finds the descriptor answering to an external long or short name
// ("--output", "-o").
func (s *Spec) Lookup(opt string) *Descriptor {
	for _, d := range s.Args {
		if d.Positional {
			continue
		}
		if d.Name == opt || (d.Short != "" && d.Short == opt) {
			return d
		}
	}
	return nil
}

// Messages shared by every backend, so the generated programs report the
// same failures with the same wording.

// RequiredMessage is reported when a required option was not supplied.
func RequiredMessage(d *Descriptor) string {
	return fmt.Sprintf("%s is required", d.Name)
}

// ChoicesMessage is reported when a value is outside the declared choices.
// The offending value is appended by the generated code.
func ChoicesMessage(d *Descriptor) string {
	return fmt.Sprintf("%s must be one of: %s", d.Name, strings.Join(d.Choices, ", "))
}

// ArityMessage is reported when the number of positionals is wrong.
func ArityMessage(expected int) string {
	return fmt.Sprintf("expecting %d positional argument(s)", expected)
}
