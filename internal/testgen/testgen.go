// Package testgen derives conformance scenarios from a specification: command
// lines paired with the outcome every generated parser must produce. The
// expected outcomes come from the reference simulator.
package testgen

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/simulate"
)

// Expect is the observable outcome of one scenario.
type Expect struct {
	Exit      int               `yaml:"exit"`
	Kind      simulate.Kind     `yaml:"kind,omitempty"`
	Message   string            `yaml:"message,omitempty"`
	Help      bool              `yaml:"help,omitempty"`
	Values    map[string]string `yaml:"values,omitempty"`
	Remaining []string          `yaml:"remaining,omitempty"`
}

// Scenario is one command line and its expected outcome.
type Scenario struct {
	Name   string   `yaml:"name"`
	Argv   []string `yaml:"argv"`
	Expect Expect   `yaml:"expect"`
}

// Suite is the document written by Encode.
type Suite struct {
	Program   string     `yaml:"program"`
	Scenarios []Scenario `yaml:"scenarios"`
}

type builder struct {
	spec  *argspec.Spec
	base  *baseline
	out   []Scenario
	names map[string]int
}

// Scenarios returns the scenarios for spec in a fixed order.
func Scenarios(spec *argspec.Spec) []Scenario {
	b := &builder{spec: spec, base: newBaseline(spec), names: make(map[string]int)}

	b.add("defaults", b.base.argv(""))
	b.add("help", []string{"--help"})
	b.add("remaining arguments", append(b.base.argv(""), "--", "a", "--verbose", "--"))

	for _, d := range spec.Options() {
		b.option(d)
	}
	b.positionals()
	b.add("unknown option", b.base.argv("", "--no-such-option"))
	return b.out
}

func (b *builder) option(d *argspec.Descriptor) {
	if d.Type == argspec.Flag {
		b.add("flag "+d.Name, b.base.argv("", d.Name))
		if d.Short != "" {
			b.add("flag "+d.Short, b.base.argv("", d.Short))
		}
		return
	}

	if d.Required {
		b.add("omit "+d.Name, b.base.argv(d.Dest))
	}
	for _, v := range ValidValues(d) {
		b.add(fmt.Sprintf("%s %q", d.Name, v), b.base.argv(d.Dest, optionTokens(d, v)...))
	}
	if d.Short != "" {
		v := firstValue(d)
		b.add(fmt.Sprintf("%s %q", d.Short, v), b.base.argv(d.Dest, d.Short, v))
	}
	for _, v := range InvalidValues(d) {
		b.add(fmt.Sprintf("%s invalid %q", d.Name, v), b.base.argv(d.Dest, optionTokens(d, v)...))
	}
	b.add("missing value "+d.Name, append(b.base.argv(d.Dest), d.Name))
	if d.Multiple {
		values := ValidValues(d)
		last := values[len(values)-1]
		tokens := append(optionTokens(d, values[0]), optionTokens(d, last)...)
		b.add("repeat "+d.Name, b.base.argv(d.Dest, tokens...))
	}
}

func (b *builder) positionals() {
	pos := b.base.pos
	if len(pos) > 0 {
		b.add("too few positionals", b.base.withPositionals(pos[:len(pos)-1]))
	}
	b.add("too many positionals", b.base.withPositionals(append(append([]string{}, pos...), "extra")))

	for i, d := range b.spec.Positionals() {
		for _, v := range InvalidValues(d) {
			if v == "" || v[0] == '-' {
				continue
			}
			bad := append([]string{}, pos...)
			bad[i] = v
			b.add(fmt.Sprintf("%s invalid %q", d.Name, v), b.base.withPositionals(bad))
		}
	}
}

func (b *builder) add(name string, argv []string) {
	if n := b.names[name]; n > 0 {
		b.names[name] = n + 1
		name += " #" + strconv.Itoa(n+1)
	} else {
		b.names[name] = 1
	}
	if argv == nil {
		argv = []string{}
	}
	b.out = append(b.out, Scenario{Name: name, Argv: argv, Expect: expect(simulate.Run(b.spec, argv))})
}

func expect(out *simulate.Outcome) Expect {
	e := Expect{Exit: out.Exit, Kind: out.Kind, Message: out.Message, Help: out.Help}
	if out.Failed() || out.Help {
		return e
	}
	e.Values = make(map[string]string, len(out.Values))
	for dest := range out.Values {
		e.Values[dest] = out.Get(dest)
	}
	if len(out.Remaining) > 0 {
		e.Remaining = out.Remaining
	}
	return e
}

// Encode writes the scenarios of spec as YAML.
func Encode(w io.Writer, spec *argspec.Spec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Suite{Program: spec.Program.Name, Scenarios: Scenarios(spec)}); err != nil {
		return errors.Wrap(err, "encoding scenarios")
	}
	return enc.Close()
}

// Decode reads a suite written by Encode.
func Decode(r io.Reader) (*Suite, error) {
	var s Suite
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding scenarios")
	}
	return &s, nil
}
