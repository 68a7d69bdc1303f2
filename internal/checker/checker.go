// Package checker normalizes a specification document and verifies that a
// target can express it. Problems are reported as diagnostics located by
// argument index, so one run reports every problem rather than the first.
package checker

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/backend"
	"github.com/lhaig/climeta/internal/diagnostic"
)

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	optionName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
)

// Neutral describes no particular target: repeated options are allowed and
// no extra names are reserved.
var Neutral = backend.Capabilities{Multiple: true}

// CheckResult holds the results of checking for use by later pipeline stages
type CheckResult struct {
	Diagnostics *diagnostic.Diagnostics
	// Spec is nil when a declaration could not be normalized.
	Spec *argspec.Spec
}

// Checker holds the state of one check run.
type Checker struct {
	doc    *argspec.Document
	caps   backend.Capabilities
	target string
	diag   *diagnostic.Diagnostics
	scope  *Scope
}

// Check verifies doc for the target described by caps. target names the
// target in messages and may be empty.
func Check(doc *argspec.Document, target string, caps backend.Capabilities) *CheckResult {
	c := &Checker{
		doc:    doc,
		caps:   caps,
		target: target,
		diag:   diagnostic.New(),
		scope:  NewScope(reservedScope()),
	}
	res := &CheckResult{Diagnostics: c.diag}

	if strings.TrimSpace(doc.Program.Name) == "" {
		c.diag.ErrorWithHint(0, "name", "program name is empty", `set name = "<program>" in the program section`)
	}

	args := c.normalize()
	if args == nil {
		return res
	}
	for i, d := range args {
		c.checkDescriptor(i+1, d)
	}
	if c.diag.HasErrors() {
		return res
	}
	res.Spec = &argspec.Spec{Program: doc.Program, Args: args}
	return res
}

// CheckFor verifies doc against a registered backend.
func CheckFor(doc *argspec.Document, be backend.Backend) *CheckResult {
	return Check(doc, be.Name(), be.Capabilities())
}

// normalize builds the descriptor of every declaration, reporting each
// declaration that fails. It returns nil if any failed.
func (c *Checker) normalize() []*argspec.Descriptor {
	args := make([]*argspec.Descriptor, 0, len(c.doc.Arguments))
	failed := false
	for i, decl := range c.doc.Arguments {
		d, err := argspec.Normalize(decl)
		if err != nil {
			failed = true
			c.diag.ErrorWithHint(i+1, errorKey(err), err.Error(), strings.Join(errors.GetAllHints(err), "; "))
			continue
		}
		args = append(args, d)
	}
	if failed {
		return nil
	}
	return args
}

func errorKey(err error) string {
	switch {
	case errors.Is(err, argspec.ErrUnknownType):
		return "type"
	case errors.Is(err, argspec.ErrMultipleFlag):
		return "multiple"
	case errors.Is(err, argspec.ErrBadDefault):
		return "default"
	}
	return "name"
}

func (c *Checker) checkDescriptor(arg int, d *argspec.Descriptor) {
	c.checkKind(arg, d)
	c.checkShort(arg, d)
	c.checkDest(arg, d)
	c.checkTarget(arg, d)
	c.define(arg, "name", &Symbol{Name: d.Name, Kind: SymName, Arg: arg})
	if d.Short != "" {
		c.define(arg, "short", &Symbol{Name: "-" + d.CleanShort, Kind: SymShort, Arg: arg})
	}
	c.define(arg, "dest", &Symbol{Name: d.Dest, Kind: SymDest, Arg: arg})
}

func (c *Checker) define(arg int, key string, sym *Symbol) {
	if err := c.scope.Define(sym); err != nil {
		c.diag.Errorf(arg, key, "%s", err)
	}
}

// checkKind rejects combinations no target can express.
func (c *Checker) checkKind(arg int, d *argspec.Descriptor) {
	if !optionName.MatchString(d.CleanName) {
		c.diag.Errorf(arg, "name", "name %q may only contain letters, digits, '-' and '_'", d.Name)
	}
	if d.Positional {
		if d.Type == argspec.Flag {
			c.diag.ErrorWithHint(arg, "type", "positional arguments cannot be flags",
				"use "+argspec.LongPrefix+d.Name+" for an option")
		}
		if d.Multiple {
			c.diag.Errorf(arg, "multiple", "positional %s cannot be multiple", d.Name)
		}
		if d.Short != "" {
			c.diag.Errorf(arg, "short", "positional %s cannot have a short alias", d.Name)
		}
	}
	if !d.Positional && d.Type == argspec.Flag && d.Required {
		c.diag.ErrorWithHint(arg, "required", "flag "+d.Name+" cannot be required",
			"a flag is always optional; use a string option with choices instead")
	}
	if d.Choices != nil && d.Type != argspec.String {
		c.diag.Errorf(arg, "choices", "choices are only supported for string arguments, %s is %s", d.Name, d.Type)
	}
	if d.Choices != nil && len(d.Choices) == 0 {
		c.diag.Errorf(arg, "choices", "choices of %s are empty", d.Name)
	}
}

func (c *Checker) checkShort(arg int, d *argspec.Descriptor) {
	if d.Short == "" || d.Positional {
		return
	}
	if len(d.CleanShort) != 1 || firstAlnum(d.CleanShort) != d.CleanShort {
		c.diag.ErrorWithHint(arg, "short", "short alias "+d.Short+" must be a single letter or digit",
			`use short = "-`+suggestShort(d.CleanName)+`"`)
	}
}

func (c *Checker) checkDest(arg int, d *argspec.Descriptor) {
	if !identifier.MatchString(d.Dest) {
		c.diag.ErrorWithHint(arg, "dest", "dest \""+d.Dest+"\" is not a valid identifier",
			`set dest = "`+suggestDest(d.Dest)+`"`)
		return
	}
	for _, kw := range c.caps.Keywords {
		if d.Dest == kw {
			c.diag.ErrorWithHint(arg, "dest", "dest \""+d.Dest+"\" is reserved by "+c.targetName(),
				`set dest = "`+d.Dest+`_"`)
			return
		}
	}
}

func (c *Checker) checkTarget(arg int, d *argspec.Descriptor) {
	if d.Multiple && !d.Positional && !c.caps.Multiple {
		c.diag.Errorf(arg, "multiple", "%s cannot collect repeated option %s", c.targetName(), d.Name)
	}
	if !d.Positional && len(d.CleanName) < c.caps.LongNameMin {
		c.diag.ErrorWithHint(arg, "name", c.targetName()+" reads the single-letter long name "+d.Name+" as a short alias",
			"use a longer name and keep the letter as short")
	}
}

func (c *Checker) targetName() string {
	if c.target == "" {
		return "the target"
	}
	return c.target
}

// suggestDest turns an arbitrary name into an identifier.
func suggestDest(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "value"
	}
	return b.String()
}

func firstAlnum(name string) string {
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return string(r)
		}
	}
	return ""
}

func suggestShort(name string) string {
	if s := firstAlnum(name); s != "" {
		return s
	}
	return "x"
}
