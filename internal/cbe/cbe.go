// Package cbe generates a C source/header pair that parses the command line
// with the cofyc/argparse library.
package cbe

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
)

// ErrMultiple is returned for repeated options, which argparse cannot collect.
var ErrMultiple = errors.New("c-argparse does not support multiple")

// Keywords are C keywords and the names the generated code reserves.
var Keywords = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if",
	"inline", "int", "long", "register", "restrict", "return", "short",
	"signed", "sizeof", "static", "struct", "switch", "typedef", "union",
	"unsigned", "void", "volatile", "while", "bool", "true", "false",
	"remaining_args", "remaining_count",
}

// Sentinels mark required fields that were not supplied. A user value of
// INT_MIN for an int, or NaN for a float, reads as "not supplied".
var Sentinels = argspec.Sentinels{
	argspec.String: {Literal: "NULL", Test: "%s == NULL"},
	argspec.Int:    {Literal: "INT_MIN", Test: "%s == INT_MIN"},
	argspec.Float:  {Literal: "NAN", Test: "isnan(%s)"},
}

type generator struct {
	w    *emit.Writer
	spec *argspec.Spec
	name string // header base name
}

// Generate produces the .c and .h artifacts for spec.
func Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	for _, d := range spec.Args {
		if d.Multiple {
			return nil, errors.Wrapf(ErrMultiple, "%s", d.Name)
		}
	}
	name := filepath.Base(base)
	if base == "" {
		name = spec.Program.Name
	}
	source := &generator{w: emit.New(emit.FourSpaces), spec: spec, name: name}
	header := &generator{w: emit.New(emit.FourSpaces), spec: spec, name: name}
	source.generateSource()
	header.generateHeader()
	return []emit.Artifact{source.w.Artifact(".c"), header.w.Artifact(".h")}, nil
}

func (g *generator) generateHeader() {
	guard := guardName(g.name)
	g.w.Raw("#ifndef " + guard)
	g.w.Raw("#define " + guard)
	g.w.Blank()
	g.w.Block("typedef struct {", "} Options;", func() {
		for _, d := range g.spec.Options() {
			g.w.Linef("%s %s;", cType(d.Type), d.Dest)
		}
		g.w.Line("// positionals")
		for _, d := range g.spec.Positionals() {
			g.w.Linef("%s %s;", cType(d.Type), d.Dest)
		}
		g.w.Line("// arguments after --")
		g.w.Line("int remaining_count;")
		g.w.Line("const char **remaining_args;")
	})
	g.w.Blank()
	g.w.Raw("#ifdef __cplusplus")
	g.w.Raw(`extern "C" {`)
	g.w.Raw("#endif")
	g.w.Blank()
	g.w.Line("void reset_options(Options *opts);")
	g.w.Line("void parse_options(int argc, const char **argv, Options *opts);")
	g.w.Line("void dump_options(const Options *opts);")
	g.w.Blank()
	g.w.Raw("#ifdef __cplusplus")
	g.w.Raw("}")
	g.w.Raw("#endif")
	g.w.Blank()
	g.w.Raw("#endif")
}

func (g *generator) generateSource() {
	g.w.Raw(`#include "` + g.name + `.h"`)
	g.w.Raw(`#include "argparse.h"`)
	for _, h := range []string{"limits.h", "math.h", "stdio.h", "stdlib.h", "string.h"} {
		g.w.Raw("#include <" + h + ">")
	}
	g.w.Blank()

	g.w.Block("void reset_options(Options *opts) {", "}", func() {
		for _, d := range g.spec.Args {
			suffix := ""
			if d.Inverted() {
				suffix = " // stored inverted"
			}
			g.w.Linef("opts->%s = %s;%s", d.Dest, Sentinels.Initial(d, literal), suffix)
		}
		g.w.Line("opts->remaining_count = 0;")
		g.w.Line("opts->remaining_args = NULL;")
	})
	g.w.Blank()

	g.w.Block("static void fail(struct argparse *argparse, const char *message) {", "}", func() {
		g.w.Line(`fprintf(stderr, "error: %s\n", message);`)
		g.w.Line("argparse_usage(argparse);")
		g.w.Line("exit(1);")
	})
	g.w.Blank()

	if g.spec.HasChoices() {
		g.w.Block("static int set_includes(const char *words[], const char *word) {", "}", func() {
			g.w.Block("while (*words != NULL) {", "}", func() {
				g.w.Block("if (strcmp(*words++, word) == 0) {", "}", func() {
					g.w.Line("return 1;")
				})
			})
			g.w.Line("return 0;")
		})
		g.w.Blank()
		g.w.Block("static void fail_choice(struct argparse *argparse, const char *message, const char *got) {", "}", func() {
			g.w.Line(`fprintf(stderr, "error: %s (got '%s')\n", message, got);`)
			g.w.Line("argparse_usage(argparse);")
			g.w.Line("exit(1);")
		})
		g.w.Blank()
	}
	g.generateConverters()
	g.generateParse()
	g.w.Blank()
	g.generateDump()
}

func (g *generator) generateConverters() {
	var hasInt, hasFloat bool
	for _, d := range g.spec.Positionals() {
		hasInt = hasInt || d.Type == argspec.Int
		hasFloat = hasFloat || d.Type == argspec.Float
	}
	if hasInt {
		g.w.Block("static int to_int(const char *text, int *out) {", "}", func() {
			g.w.Line("char *end;")
			g.w.Line("long value = strtol(text, &end, 0);")
			g.w.Block("if (end == text || *end != '\\0' || value < INT_MIN || value > INT_MAX) {", "}", func() {
				g.w.Line("return 0;")
			})
			g.w.Line("*out = (int)value;")
			g.w.Line("return 1;")
		})
		g.w.Blank()
	}
	if hasFloat {
		g.w.Block("static int to_float(const char *text, float *out) {", "}", func() {
			g.w.Line("char *end;")
			g.w.Line("float value = strtof(text, &end);")
			g.w.Block("if (end == text || *end != '\\0') {", "}", func() {
				g.w.Line("return 0;")
			})
			g.w.Line("*out = value;")
			g.w.Line("return 1;")
		})
		g.w.Blank()
	}
}

func (g *generator) generateParse() {
	g.w.Block("void parse_options(int argc, const char **argv, Options *opts) {", "}", func() {
		g.w.Block("static const char *const usages[] = {", "};", func() {
			g.w.Line(emit.CString(strings.TrimPrefix(argspec.UsageLine(g.spec), "Usage: ")) + ",")
			g.w.Line("NULL,")
		})
		g.w.Line("reset_options(opts);")
		g.w.Blank()

		g.w.Line("// arguments after -- are not parsed")
		g.w.Line("int dashdash = argc;")
		g.w.Block("for (int i = 1; i < argc; i++) {", "}", func() {
			g.w.Block(`if (strcmp(argv[i], "--") == 0) {`, "}", func() {
				g.w.Line("dashdash = i;")
				g.w.Line("opts->remaining_args = argv + i + 1;")
				g.w.Line("opts->remaining_count = argc - i - 1;")
				g.w.Line("break;")
			})
		})
		g.w.Blank()

		g.w.Block("struct argparse_option options[] = {", "};", func() {
			g.w.Line("OPT_HELP(),")
			for _, d := range g.spec.Options() {
				short := "'\\0'"
				if d.CleanShort != "" {
					short = "'" + d.CleanShort + "'"
				}
				flags := "0"
				if d.Type == argspec.Flag {
					flags = "OPT_NONEG"
				}
				g.w.Linef("%s(%s, %s, &opts->%s, %s, NULL, 0, %s),",
					optMacro(d.Type), short, emit.CString(d.CleanName), d.Dest,
					emit.CString(argspec.HelpText(d)), flags)
			}
			g.w.Line("OPT_END(),")
		})
		g.w.Line("struct argparse argparse;")
		g.w.Line("argparse_init(&argparse, options, usages, 0);")
		g.w.Linef("argparse_describe(&argparse, %s, %s);",
			emit.CString("\n"+g.spec.Program.Description), emit.CString(g.epilog()))
		g.w.Line("int count = argparse_parse(&argparse, dashdash, argv);")
		g.w.Blank()

		positionals := g.spec.Positionals()
		g.w.Line("// positionals")
		g.w.Linef("if (count != %d) {", len(positionals))
		g.w.Block("", "}", func() {
			g.w.Linef("fail(&argparse, %s);", emit.CString(argspec.ArityMessage(len(positionals))))
		})
		for i, d := range positionals {
			ref := "argv[" + strconv.Itoa(i) + "]"
			switch d.Type {
			case argspec.Int, argspec.Float:
				fn := "to_int"
				if d.Type == argspec.Float {
					fn = "to_float"
				}
				msg := fmt.Sprintf("argument %s: invalid %s value", d.CleanName, d.Type)
				g.w.Block(fmt.Sprintf("if (!%s(%s, &opts->%s)) {", fn, ref, d.Dest), "}", func() {
					g.w.Linef("fail(&argparse, %s);", emit.CString(msg))
				})
			default:
				g.w.Linef("opts->%s = %s;", d.Dest, ref)
			}
		}
		g.w.Blank()

		if g.spec.HasType(argspec.Flag) {
			g.w.Line("// argparse counts flag occurrences")
		}
		for _, d := range g.spec.Options() {
			if d.Type != argspec.Flag {
				continue
			}
			if d.Inverted() {
				g.w.Linef("opts->%s = opts->%s == 0; // stored inverted", d.Dest, d.Dest)
			} else {
				g.w.Linef("opts->%s = opts->%s != 0;", d.Dest, d.Dest)
			}
		}

		for _, d := range g.spec.Options() {
			if !d.Required || d.Type == argspec.Flag {
				continue
			}
			g.w.Block(fmt.Sprintf("if (%s) {", Sentinels.Unset(d, "opts->"+d.Dest)), "}", func() {
				g.w.Linef("fail(&argparse, %s);", emit.CString(argspec.RequiredMessage(d)))
			})
		}

		for _, d := range g.spec.Args {
			if d.Choices == nil {
				continue
			}
			valid := make([]string, len(d.Choices))
			for i, c := range d.Choices {
				valid[i] = emit.CString(c)
			}
			g.w.Block("{", "}", func() {
				g.w.Linef("const char *valid[] = {%s, NULL};", strings.Join(valid, ", "))
				g.w.Block(fmt.Sprintf("if (!set_includes(valid, opts->%s)) {", d.Dest), "}", func() {
					g.w.Linef("fail_choice(&argparse, %s, opts->%s);", emit.CString(argspec.ChoicesMessage(d)), d.Dest)
				})
			})
		}
	})
}

// epilog lists the positionals, which argparse does not know about, before
// the program epilog.
func (g *generator) epilog() string {
	positionals, _, width := argspec.HelpLayout(g.spec)
	var b strings.Builder
	if len(positionals) > 0 {
		b.WriteString("\npositional arguments:\n")
		for _, l := range positionals {
			b.WriteString("    " + argspec.Pad(l.Left, width) + l.Right + "\n")
		}
	}
	if g.spec.Program.Epilog != "" {
		b.WriteString("\n" + g.spec.Program.Epilog)
	}
	return b.String()
}

func (g *generator) generateDump() {
	g.w.Block("void dump_options(const Options *opts) {", "}", func() {
		for _, d := range g.spec.Args {
			g.w.Linef(`printf("%s: %s\n", opts->%s);`, d.Dest, printfVerb(d.Type), d.Dest)
		}
		g.w.Line(`printf("remaining_args:\n");`)
		g.w.Block("for (int i = 0; i < opts->remaining_count; i++) {", "}", func() {
			g.w.Line(`printf("  %s\n", opts->remaining_args[i]);`)
		})
	})
}

func cType(t argspec.Type) string {
	switch t {
	case argspec.Flag, argspec.Int:
		return "int"
	case argspec.Float:
		return "float"
	}
	return "const char *"
}

func optMacro(t argspec.Type) string {
	switch t {
	case argspec.Flag:
		return "OPT_BOOLEAN"
	case argspec.Int:
		return "OPT_INTEGER"
	case argspec.Float:
		return "OPT_FLOAT"
	}
	return "OPT_STRING"
}

func printfVerb(t argspec.Type) string {
	switch t {
	case argspec.Flag, argspec.Int:
		return "%d"
	case argspec.Float:
		return "%g"
	}
	return "%s"
}

func literal(v argspec.Value) string {
	switch v.Type {
	case argspec.Flag:
		if v.Bool {
			return "1"
		}
		return "0"
	case argspec.Int:
		return strconv.FormatInt(v.Int, 10)
	case argspec.Float:
		switch {
		case math.IsNaN(v.Float):
			return "NAN"
		case math.IsInf(v.Float, 1):
			return "INFINITY"
		case math.IsInf(v.Float, -1):
			return "-INFINITY"
		}
		return argspec.FormatFloat(v.Float)
	}
	return emit.CString(v.Str)
}

func guardName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_H"
}
