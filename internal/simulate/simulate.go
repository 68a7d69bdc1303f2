// Package simulate executes the command line contract of the generated
// parsers in Go. It is the reference the backends are tested against: for a
// specification and an argv it reports the values a generated program would
// produce, or the failure it would report.
package simulate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
)

// Kind classifies a failure.
type Kind string

const (
	None            Kind = ""
	UnknownOption   Kind = "unknown-option"
	MissingValue    Kind = "missing-value"
	InvalidValue    Kind = "invalid-value"
	PositionalArity Kind = "positional-arity"
	Required        Kind = "required"
	Choice          Kind = "choice"
)

// ExitFailure is the single status every validation failure exits with.
const ExitFailure = 1

var negativeNumber = regexp.MustCompile(`^-\d+$|^-\d*\.\d+$`)

// Outcome is what a generated program does for one command line.
type Outcome struct {
	// Values holds the external values keyed by dest; one element unless
	// the argument is repeated.
	Values map[string][]argspec.Value
	// Stored holds the internal values right after parsing, before inverted
	// flags are turned back.
	Stored    map[string][]argspec.Value
	Remaining []string
	Help      bool
	Exit      int
	Kind      Kind
	Message   string
	Stdout    string
	Stderr    string
}

// Get renders the value of dest, repeated values separated by spaces.
func (o *Outcome) Get(dest string) string {
	values, ok := o.Values[dest]
	if !ok {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

// Failed reports whether the command line was rejected.
func (o *Outcome) Failed() bool { return o.Exit != 0 }

type failure struct {
	kind Kind
	msg  string
}

func (f *failure) Error() string { return f.msg }

func fail(kind Kind, format string, args ...any) *failure {
	return &failure{kind: kind, msg: fmt.Sprintf(format, args...)}
}

type run struct {
	spec        *argspec.Spec
	values      map[string][]argspec.Value
	given       map[string]bool
	positionals []string
	help        bool
}

// Run simulates a generated program invoked with argv (without the program
// name).
func Run(spec *argspec.Spec, argv []string) *Outcome {
	head, remaining := split(argv)
	r := &run{
		spec:   spec,
		values: make(map[string][]argspec.Value),
		given:  make(map[string]bool),
	}
	for _, d := range spec.Options() {
		if d.HasDefault {
			r.values[d.Dest] = d.StoredDefault()
		}
	}

	out := &Outcome{Remaining: remaining}
	usage := strings.Join(argspec.Usage(spec), "\n") + "\n"
	if err := r.scan(head); err != nil {
		return failed(out, err, usage)
	}
	if r.help {
		out.Help = true
		out.Stdout = usage
		return out
	}
	if err := r.finish(out); err != nil {
		return failed(out, err, usage)
	}
	return out
}

func failed(out *Outcome, f *failure, usage string) *Outcome {
	out.Exit = ExitFailure
	out.Kind = f.kind
	out.Message = f.msg
	out.Stderr = "error: " + f.msg + "\n" + usage
	out.Values = nil
	out.Stored = nil
	return out
}

// split cuts argv at the first "--".
func split(argv []string) (head, remaining []string) {
	remaining = []string{}
	for i, arg := range argv {
		if arg == "--" {
			return argv[:i], append(remaining, argv[i+1:]...)
		}
	}
	return argv, remaining
}

// isOptionLike reports whether a token would be taken for an option rather
// than a value. Negative numbers are values unless a short alias spells them.
func (r *run) isOptionLike(tok string) bool {
	if !strings.HasPrefix(tok, "-") || tok == "-" {
		return false
	}
	return !negativeNumber.MatchString(tok) || r.spec.Lookup(tok) != nil
}

func (r *run) scan(args []string) *failure {
	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch {
		case tok == "-h" || tok == "--help":
			r.help = true
		case strings.HasPrefix(tok, argspec.LongPrefix):
			name, value, inline := strings.Cut(tok, "=")
			d := r.spec.Lookup(name)
			if d == nil {
				return fail(UnknownOption, "unknown option: %s", name)
			}
			if d.Type == argspec.Flag {
				if inline {
					return fail(InvalidValue, "argument %s: ignored explicit argument '%s'", d.Name, value)
				}
				r.setFlag(d)
				continue
			}
			if !inline {
				if i+1 >= len(args) || r.isOptionLike(args[i+1]) {
					return fail(MissingValue, "argument %s: expected one argument", d.Name)
				}
				i++
				value = args[i]
			}
			if err := r.set(d, value); err != nil {
				return err
			}
		case r.isOptionLike(tok):
			consumed, err := r.cluster(tok, args[i+1:])
			if err != nil {
				return err
			}
			i += consumed
		default:
			r.positionals = append(r.positionals, tok)
		}
	}
	return nil
}

// cluster handles "-v", "-abc" and "-ovalue". It returns how many of the
// following tokens were consumed as a value.
func (r *run) cluster(tok string, rest []string) (int, *failure) {
	letters := tok[1:]
	for j := 0; j < len(letters); j++ {
		short := "-" + letters[j:j+1]
		if short == "-h" {
			r.help = true
			continue
		}
		d := r.spec.Lookup(short)
		if d == nil {
			return 0, fail(UnknownOption, "unknown option: %s", short)
		}
		if d.Type == argspec.Flag {
			r.setFlag(d)
			continue
		}
		if attached := letters[j+1:]; attached != "" {
			return 0, r.set(d, strings.TrimPrefix(attached, "="))
		}
		if len(rest) == 0 || r.isOptionLike(rest[0]) {
			return 0, fail(MissingValue, "argument %s: expected one argument", d.Name)
		}
		return 1, r.set(d, rest[0])
	}
	return 0, nil
}

func (r *run) setFlag(d *argspec.Descriptor) {
	r.values[d.Dest] = []argspec.Value{{Type: argspec.Flag, Bool: true}}
	r.given[d.Dest] = true
}

func (r *run) set(d *argspec.Descriptor, text string) *failure {
	v, err := convert(d, text)
	if err != nil {
		return err
	}
	if d.Multiple {
		if !r.given[d.Dest] {
			r.values[d.Dest] = nil
		}
		r.values[d.Dest] = append(r.values[d.Dest], v)
	} else {
		r.values[d.Dest] = []argspec.Value{v}
	}
	r.given[d.Dest] = true
	return nil
}

func convert(d *argspec.Descriptor, text string) (argspec.Value, *failure) {
	v, err := argspec.ParseValue(d.Type, text)
	if err != nil {
		return v, fail(InvalidValue, "argument %s: invalid %s value: '%s'", d.Name, d.Type, text)
	}
	return v, nil
}

func (r *run) finish(out *Outcome) *failure {
	positionals := r.spec.Positionals()
	if len(r.positionals) != len(positionals) {
		return fail(PositionalArity, "%s", argspec.ArityMessage(len(positionals)))
	}
	for i, d := range positionals {
		v, err := convert(d, r.positionals[i])
		if err != nil {
			return err
		}
		r.values[d.Dest] = []argspec.Value{v}
	}
	for _, d := range r.spec.Options() {
		if d.Type == argspec.Flag && !r.given[d.Dest] {
			r.values[d.Dest] = d.StoredDefault()
		}
	}

	out.Stored = make(map[string][]argspec.Value, len(r.values))
	for dest, values := range r.values {
		out.Stored[dest] = values
	}

	external := make(map[string][]argspec.Value, len(r.values))
	for dest, values := range r.values {
		external[dest] = values
	}
	for _, d := range r.spec.Args {
		if d.Inverted() {
			stored := r.values[d.Dest][0].Bool
			external[d.Dest] = []argspec.Value{{Type: argspec.Flag, Bool: d.External(stored)}}
		}
	}

	for _, d := range r.spec.Options() {
		if d.Required && d.Type != argspec.Flag && !r.given[d.Dest] {
			return fail(Required, "%s", argspec.RequiredMessage(d))
		}
	}

	for _, d := range r.spec.Args {
		if d.Choices == nil {
			continue
		}
		for _, v := range external[d.Dest] {
			if !d.Allows(v.Str) {
				return fail(Choice, "%s (got '%s')", argspec.ChoicesMessage(d), v.Str)
			}
		}
	}

	out.Values = external
	return nil
}
