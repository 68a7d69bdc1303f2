// Package pybe generates a Python module that parses the command line with
// argparse.
package pybe

import (
	"math"
	"strconv"
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
)

// Keywords cannot be used as attribute names on the parsed namespace.
var Keywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
	"help",
}

type generator struct {
	w    *emit.Writer
	spec *argspec.Spec
}

// Generate produces the .py artifact for spec.
func Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	g := &generator{w: emit.New(emit.FourSpaces), spec: spec}

	g.w.Linef(`"""Command line parsing for %s"""`, spec.Program.Name)
	g.w.Blank()
	g.w.Line("import argparse")
	g.w.Line("import re")
	g.w.Line("import sys")
	g.w.Blank()
	g.w.Line(`NEGATIVE_NUMBER = re.compile(r"-[0-9]+|-[0-9]*\.[0-9]+")`)
	g.w.Blank()
	g.generateUsage()
	g.w.Blank()
	g.generateHelpers()
	g.w.Blank()
	g.generateParse()
	g.w.Blank()
	g.w.Blank()
	g.generateDump()
	g.w.Blank()
	g.w.Blank()
	g.w.Line(`if __name__ == "__main__":`)
	g.w.Block("", "", func() {
		g.w.Line("args, remaining = parse_args()")
		g.w.Line("dump_args(args, remaining)")
	})

	return []emit.Artifact{g.w.Artifact(".py")}, nil
}

func (g *generator) generateUsage() {
	g.w.Line(`USAGE = "\n".join([`)
	g.w.Block("", "])", func() {
		for _, line := range argspec.Usage(g.spec) {
			g.w.Line(quote(line) + ",")
		}
	})
}

func (g *generator) generateHelpers() {
	g.w.Blank()
	g.w.Line("def fail(message):")
	g.w.Block("", "", func() {
		g.w.Line(`"""Report a command line error and exit with status 1."""`)
		g.w.Line(`print(f"error: {message}", file=sys.stderr)`)
		g.w.Line("print(USAGE, file=sys.stderr)")
		g.w.Line("sys.exit(1)")
	})
	g.w.Blank()
	g.w.Blank()
	g.w.Line("class Parser(argparse.ArgumentParser):")
	g.w.Block("", "", func() {
		g.w.Line("def error(self, message):")
		g.w.Block("", "", func() {
			g.w.Line("fail(message)")
		})
	})
	if g.spec.HasType(argspec.Int) {
		g.w.Blank()
		g.w.Blank()
		g.w.Line("def auto_int(text):")
		g.w.Block("", "", func() {
			g.w.Line(`"""int with base detection, accepting 0x, 0o and 0b prefixes."""`)
			g.w.Line("return int(text, 0)")
		})
		g.w.Blank()
		g.w.Blank()
		g.w.Line(`auto_int.__name__ = "int"`)
	}
	if g.hasTypedPositional() {
		g.w.Blank()
		g.w.Blank()
		g.w.Line("def convert(kind, name, text):")
		g.w.Block("", "", func() {
			g.w.Line("try:")
			g.w.Block("", "", func() { g.w.Line("return kind(text)") })
			g.w.Line("except ValueError:")
			g.w.Block("", "", func() { g.w.Line(`fail(f"argument {name}: invalid {kind.__name__} value: {text!r}")`) })
		})
	}
	g.w.Blank()
}

func (g *generator) hasTypedPositional() bool {
	for _, d := range g.spec.Positionals() {
		if d.Type == argspec.Int || d.Type == argspec.Float {
			return true
		}
	}
	return false
}

func (g *generator) generateParse() {
	g.w.Line("def parse_args(argv=None):")
	g.w.Block("", "", func() {
		g.w.Line(`"""Parse argv (default sys.argv[1:]); return (args, remaining)."""`)
		g.w.Line("if argv is None:")
		g.w.Block("", "", func() { g.w.Line("argv = sys.argv[1:]") })
		g.w.Line("remaining = []")
		g.w.Line(`if "--" in argv:`)
		g.w.Block("", "", func() {
			g.w.Line(`cut = argv.index("--")`)
			g.w.Line("argv, remaining = argv[:cut], argv[cut + 1:]")
		})
		g.w.Blank()
		g.w.Linef("parser = Parser(prog=%s, add_help=False, allow_abbrev=False)", quote(g.spec.Program.Name))
		g.w.Line(`parser.add_argument("-h", "--help", action="store_true")`)
		for _, d := range g.spec.Options() {
			g.addArgument(d)
		}
		g.w.Blank()
		g.w.Line("args, extra = parser.parse_known_args(argv)")
		g.w.Line("if args.help:")
		g.w.Block("", "", func() {
			g.w.Line("print(USAGE)")
			g.w.Line("sys.exit(0)")
		})
		g.w.Line("for item in extra:")
		g.w.Block("", "", func() {
			g.w.Line(`if item.startswith("-") and item != "-" and not NEGATIVE_NUMBER.fullmatch(item):`)
			g.w.Block("", "", func() { g.w.Line(`fail(f"unknown option: {item}")`) })
		})

		positionals := g.spec.Positionals()
		g.w.Blank()
		g.w.Line("# positionals")
		g.w.Linef("if len(extra) != %d:", len(positionals))
		g.w.Block("", "", func() { g.w.Linef("fail(%s)", quote(argspec.ArityMessage(len(positionals)))) })
		for i, d := range positionals {
			g.w.Linef("args.%s = %s", d.Dest, g.convert(d, "extra["+strconv.Itoa(i)+"]"))
		}

		g.generateFinish()
		g.w.Blank()
		g.w.Line("return args, remaining")
	})
}

func (g *generator) addArgument(d *argspec.Descriptor) {
	var params []string
	if d.Short != "" {
		params = append(params, quote(d.Short))
	}
	params = append(params, quote(d.Name))
	params = append(params, "dest="+quote(d.Dest))
	switch {
	case d.Type == argspec.Flag:
		params = append(params, `action="store_true"`)
	case d.Multiple:
		params = append(params, `action="append"`, "type="+pyType(d.Type))
	default:
		params = append(params, "type="+pyType(d.Type))
	}
	if d.Type != argspec.Flag {
		if d.HasDefault && !d.Multiple {
			params = append(params, "default="+literal(d.Scalar()))
		} else {
			params = append(params, "default=None")
		}
	}
	if d.HasMetavar {
		params = append(params, "metavar="+quote(d.Metavar))
	}
	suffix := ""
	if d.Inverted() {
		suffix = "  # stored inverted"
	}
	g.w.Line("parser.add_argument(" + strings.Join(params, ", ") + ")" + suffix)
}

// convert wraps a positional token in the conversion of d's type.
func (g *generator) convert(d *argspec.Descriptor, ref string) string {
	switch d.Type {
	case argspec.Int:
		return "convert(auto_int, " + quote(d.CleanName) + ", " + ref + ")"
	case argspec.Float:
		return "convert(float, " + quote(d.CleanName) + ", " + ref + ")"
	}
	return ref
}

func (g *generator) generateFinish() {
	if g.spec.HasInverted() {
		g.w.Blank()
		g.w.Line("# flags defaulting to true were stored inverted")
		for _, d := range g.spec.Args {
			if d.Inverted() {
				g.w.Linef("args.%s = not args.%s", d.Dest, d.Dest)
			}
		}
	}

	var required, repeated []*argspec.Descriptor
	for _, d := range g.spec.Options() {
		if d.Required && d.Type != argspec.Flag {
			required = append(required, d)
		}
		if d.Multiple && d.HasDefault {
			repeated = append(repeated, d)
		}
	}
	if len(required) > 0 {
		g.w.Blank()
		g.w.Line("# required")
		for _, d := range required {
			g.w.Linef("if args.%s is None:", d.Dest)
			g.w.Block("", "", func() { g.w.Linef("fail(%s)", quote(argspec.RequiredMessage(d))) })
		}
	}
	if len(repeated) > 0 {
		g.w.Blank()
		g.w.Line("# repeated options not given keep their defaults")
		for _, d := range repeated {
			g.w.Linef("if args.%s is None:", d.Dest)
			g.w.Block("", "", func() { g.w.Linef("args.%s = %s", d.Dest, listLiteral(d.Default)) })
		}
	}

	if !g.spec.HasChoices() {
		return
	}
	g.w.Blank()
	g.w.Line("# choices")
	for _, d := range g.spec.Args {
		if d.Choices == nil {
			continue
		}
		valid := make([]string, len(d.Choices))
		for i, c := range d.Choices {
			valid[i] = quote(c)
		}
		set := "(" + strings.Join(valid, ", ") + ",)"
		msg := quote(argspec.ChoicesMessage(d))
		if d.Multiple {
			g.w.Linef("for value in args.%s:", d.Dest)
			g.w.Block("", "", func() {
				g.w.Linef("if value not in %s:", set)
				g.w.Block("", "", func() { g.w.Linef(`fail(%s + f" (got '{value}')")`, msg) })
			})
			continue
		}
		g.w.Linef("if args.%s not in %s:", d.Dest, set)
		g.w.Block("", "", func() { g.w.Linef(`fail(%s + f" (got '{args.%s}')")`, msg, d.Dest) })
	}
}

func (g *generator) generateDump() {
	g.w.Line("def dump_args(args, remaining):")
	g.w.Block("", "", func() {
		g.w.Line(`"""Print every parsed value, then the trailing arguments."""`)
		for _, d := range g.spec.Args {
			if d.Multiple {
				g.w.Linef(`print("%s:")`, d.Dest)
				g.w.Linef("for item in args.%s:", d.Dest)
				g.w.Block("", "", func() { g.w.Line(`print(f"  {item}")`) })
				continue
			}
			g.w.Linef(`print(f"%s: {args.%s}")`, d.Dest, d.Dest)
		}
		g.w.Line(`print("remaining_args:")`)
		g.w.Line("for item in remaining:")
		g.w.Block("", "", func() { g.w.Line(`print(f"  {item}")`) })
	})
}

func pyType(t argspec.Type) string {
	switch t {
	case argspec.Int:
		return "auto_int"
	case argspec.Float:
		return "float"
	}
	return "str"
}

func quote(s string) string {
	return strconv.Quote(s)
}

func literal(v argspec.Value) string {
	switch v.Type {
	case argspec.Flag:
		if v.Bool {
			return "True"
		}
		return "False"
	case argspec.Int:
		return strconv.FormatInt(v.Int, 10)
	case argspec.Float:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return `float("` + strconv.FormatFloat(v.Float, 'g', -1, 64) + `")`
		}
		return argspec.FormatFloat(v.Float)
	}
	return quote(v.Str)
}

func listLiteral(vs []argspec.Value) string {
	items := make([]string, len(vs))
	for i, v := range vs {
		items[i] = literal(v)
	}
	return "[" + strings.Join(items, ", ") + "]"
}
