package testgen

import (
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
)

// baseline builds the smallest accepted command line: one value per
// positional and every required option. Options come first so positional
// values never follow an option that could swallow them.
type baseline struct {
	spec    *argspec.Spec
	options map[string][]string // dest -> tokens
	order   []string
	pos     []string
}

func newBaseline(spec *argspec.Spec) *baseline {
	b := &baseline{spec: spec, options: make(map[string][]string)}
	for _, d := range spec.Options() {
		if d.Required && d.Type != argspec.Flag {
			b.options[d.Dest] = optionTokens(d, firstValue(d))
			b.order = append(b.order, d.Dest)
		}
	}
	for _, d := range spec.Positionals() {
		b.pos = append(b.pos, firstValue(d))
	}
	return b
}

// argv renders the baseline with dest left out (when non-empty) and extra
// tokens placed after the options.
func (b *baseline) argv(without string, extra ...string) []string {
	var out []string
	for _, dest := range b.order {
		if dest != without {
			out = append(out, b.options[dest]...)
		}
	}
	out = append(out, extra...)
	return append(out, b.pos...)
}

// withPositionals renders the options followed by pos.
func (b *baseline) withPositionals(pos []string) []string {
	var out []string
	for _, dest := range b.order {
		out = append(out, b.options[dest]...)
	}
	return append(out, pos...)
}

// optionTokens spells "--name value", switching to "--name=value" when the
// value could be taken for an option.
func optionTokens(d *argspec.Descriptor, value string) []string {
	if strings.HasPrefix(value, "-") {
		return []string{d.Name + "=" + value}
	}
	return []string{d.Name, value}
}
