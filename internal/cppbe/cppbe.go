// Package cppbe generates a C++ source/header pair that parses the command
// line with jarro2783/cxxopts (v3).
package cppbe

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
)

// Keywords are C++ keywords and the names the generated code reserves.
var Keywords = []string{
	"alignas", "alignof", "and", "asm", "auto", "bool", "break", "case",
	"catch", "char", "class", "const", "constexpr", "continue", "default",
	"delete", "do", "double", "else", "enum", "explicit", "export", "extern",
	"false", "float", "for", "friend", "goto", "if", "inline", "int", "long",
	"mutable", "namespace", "new", "noexcept", "not", "nullptr", "operator",
	"or", "private", "protected", "public", "register", "return", "short",
	"signed", "sizeof", "static", "struct", "switch", "template", "this",
	"throw", "true", "try", "typedef", "typename", "union", "unsigned",
	"using", "virtual", "void", "volatile", "while", "xor",
	"remaining_args",
}

// positionalsName is the hidden option collecting positional tokens.
const positionalsName = "__positionals"

type generator struct {
	w    *emit.Writer
	spec *argspec.Spec
	name string
}

// Generate produces the .cpp and .hpp artifacts for spec.
func Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	name := filepath.Base(base)
	if base == "" {
		name = spec.Program.Name
	}
	source := &generator{w: emit.New(emit.FourSpaces), spec: spec, name: name}
	header := &generator{w: emit.New(emit.FourSpaces), spec: spec, name: name}
	source.generateSource()
	header.generateHeader()
	return []emit.Artifact{source.w.Artifact(".cpp"), header.w.Artifact(".hpp")}, nil
}

func (g *generator) generateHeader() {
	g.w.Raw("#pragma once")
	g.w.Blank()
	g.w.Raw("#include <string>")
	g.w.Raw("#include <vector>")
	g.w.Blank()
	g.w.Block("struct Options {", "};", func() {
		for _, d := range g.spec.Options() {
			g.w.Linef("%s %s;", cppType(d), d.Dest)
		}
		g.w.Line("// positionals")
		for _, d := range g.spec.Positionals() {
			g.w.Linef("%s %s;", cppType(d), d.Dest)
		}
		g.w.Line("// arguments after --")
		g.w.Line("std::vector<std::string> remaining_args;")
	})
	g.w.Blank()
	g.w.Line("void reset_options(Options *opts);")
	g.w.Line("void parse_options(int argc, const char **argv, Options *opts);")
	g.w.Line("void dump_options(const Options &opts);")
}

func (g *generator) generateSource() {
	g.w.Raw(`#include "` + g.name + `.hpp"`)
	g.w.Blank()
	g.w.Raw("// one value per occurrence: never split repeated values on commas")
	g.w.Raw("#define CXXOPTS_VECTOR_DELIMITER '\\0'")
	g.w.Raw(`#include "cxxopts.hpp"`)
	g.w.Blank()
	includes := []string{"cstdlib", "iostream", "string", "vector"}
	if g.spec.HasType(argspec.Float) {
		includes = append([]string{"cmath"}, includes...)
	}
	if g.spec.HasChoices() {
		includes = append(includes, "set")
	}
	for _, h := range includes {
		g.w.Raw("#include <" + h + ">")
	}
	g.w.Blank()

	g.w.Raw("namespace {")
	g.w.Blank()
	g.w.Line("const char *const USAGE =")
	g.w.Block("", "", func() {
		lines := argspec.Usage(g.spec)
		for i, line := range lines {
			end := ""
			if i == len(lines)-1 {
				end = ";"
			}
			g.w.Line(emit.CString(line+"\n") + end)
		}
	})
	g.w.Blank()
	g.w.Block("[[noreturn]] void fail(const std::string &message) {", "}", func() {
		g.w.Line(`std::cerr << "error: " << message << "\n" << USAGE;`)
		g.w.Line("std::exit(1);")
	})
	g.generateConverters()
	g.w.Blank()
	g.w.Raw("}  // namespace")
	g.w.Blank()

	g.w.Block("void reset_options(Options *opts) {", "}", func() {
		for _, d := range g.spec.Args {
			suffix := ""
			if d.Inverted() {
				suffix = " // stored inverted"
			}
			g.w.Linef("opts->%s = %s;%s", d.Dest, initial(d), suffix)
		}
		g.w.Line("opts->remaining_args.clear();")
	})
	g.w.Blank()
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
		g.w.Blank()
		g.w.Block("int to_int(const std::string &name, const std::string &text) {", "}", func() {
			g.w.Line("std::size_t end = 0;")
			g.w.Line("int value = 0;")
			g.w.Block("try {", "}", func() {
				g.w.Line("value = std::stoi(text, &end, 0);")
			})
			g.w.Block("catch (const std::exception &) {", "}", func() {
				g.w.Line("end = 0;")
			})
			g.w.Block("if (end == 0 || end != text.size()) {", "}", func() {
				g.w.Line(`fail("argument " + name + ": invalid int value: '" + text + "'");`)
			})
			g.w.Line("return value;")
		})
	}
	if hasFloat {
		g.w.Blank()
		g.w.Block("double to_float(const std::string &name, const std::string &text) {", "}", func() {
			g.w.Line("std::size_t end = 0;")
			g.w.Line("double value = 0;")
			g.w.Block("try {", "}", func() {
				g.w.Line("value = std::stod(text, &end);")
			})
			g.w.Block("catch (const std::exception &) {", "}", func() {
				g.w.Line("end = 0;")
			})
			g.w.Block("if (end == 0 || end != text.size()) {", "}", func() {
				g.w.Line(`fail("argument " + name + ": invalid float value: '" + text + "'");`)
			})
			g.w.Line("return value;")
		})
	}
}

func (g *generator) generateParse() {
	g.w.Block("void parse_options(int argc, const char **argv, Options *opts) {", "}", func() {
		g.w.Line("reset_options(opts);")
		g.w.Blank()
		g.w.Line("// arguments after -- are not parsed")
		g.w.Line("int dashdash = argc;")
		g.w.Block("for (int i = 1; i < argc; i++) {", "}", func() {
			g.w.Block(`if (std::string(argv[i]) == "--") {`, "}", func() {
				g.w.Line("dashdash = i;")
				g.w.Line("opts->remaining_args.assign(argv + i + 1, argv + argc);")
				g.w.Line("break;")
			})
		})
		g.w.Blank()

		g.w.Linef("cxxopts::Options options(%s, %s);",
			emit.CString(g.spec.Program.Name), emit.CString(g.spec.Program.Description))
		g.w.Line("options.add_options()")
		g.w.Block("", "", func() {
			g.w.Line(`("h,help", "show this help message and exit")`)
			for _, d := range g.spec.Options() {
				g.w.Linef("(%s, %s, %s)", emit.CString(optSpec(d)), emit.CString(argspec.HelpText(d)), valueDecl(d))
			}
			g.w.Linef(`("%s", "positional arguments", cxxopts::value<std::vector<std::string>>());`, positionalsName)
		})
		g.w.Linef(`options.parse_positional({"%s"});`, positionalsName)
		g.w.Blank()

		g.w.Line("cxxopts::ParseResult result;")
		g.w.Block("try {", "}", func() {
			g.w.Line("result = options.parse(dashdash, argv);")
		})
		g.w.Block("catch (const cxxopts::exceptions::exception &e) {", "}", func() {
			g.w.Line("fail(e.what());")
		})
		g.w.Block(`if (result.count("help")) {`, "}", func() {
			g.w.Line("std::cout << USAGE;")
			g.w.Line("std::exit(0);")
		})
		g.w.Blank()

		g.w.Line("// options")
		for _, d := range g.spec.Options() {
			name := emit.CString(d.CleanName)
			if d.Type == argspec.Flag {
				suffix := ""
				if d.Inverted() {
					suffix = " // stored inverted"
				}
				g.w.Linef("opts->%s = result[%s].as<bool>();%s", d.Dest, name, suffix)
				continue
			}
			g.w.Block(fmt.Sprintf("if (result.count(%s)) {", name), "}", func() {
				g.w.Linef("opts->%s = result[%s].as<%s>();", d.Dest, name, cppType(d))
			})
		}
		g.w.Blank()

		positionals := g.spec.Positionals()
		g.w.Line("// positionals")
		g.w.Line("std::vector<std::string> positionals;")
		g.w.Block(fmt.Sprintf(`if (result.count("%s")) {`, positionalsName), "}", func() {
			g.w.Linef(`positionals = result["%s"].as<std::vector<std::string>>();`, positionalsName)
		})
		g.w.Block(fmt.Sprintf("if (positionals.size() != %d) {", len(positionals)), "}", func() {
			g.w.Linef("fail(%s);", emit.CString(argspec.ArityMessage(len(positionals))))
		})
		for i, d := range positionals {
			ref := "positionals[" + strconv.Itoa(i) + "]"
			switch d.Type {
			case argspec.Int:
				g.w.Linef("opts->%s = to_int(%s, %s);", d.Dest, emit.CString(d.CleanName), ref)
			case argspec.Float:
				g.w.Linef("opts->%s = to_float(%s, %s);", d.Dest, emit.CString(d.CleanName), ref)
			default:
				g.w.Linef("opts->%s = %s;", d.Dest, ref)
			}
		}

		if g.spec.HasInverted() {
			g.w.Blank()
			g.w.Line("// flags defaulting to true were stored inverted")
			for _, d := range g.spec.Args {
				if d.Inverted() {
					g.w.Linef("opts->%s = !opts->%s;", d.Dest, d.Dest)
				}
			}
		}

		first := true
		for _, d := range g.spec.Options() {
			if !d.Required || d.Type == argspec.Flag {
				continue
			}
			if first {
				g.w.Blank()
				g.w.Line("// required")
				first = false
			}
			g.w.Block(fmt.Sprintf("if (!result.count(%s)) {", emit.CString(d.CleanName)), "}", func() {
				g.w.Linef("fail(%s);", emit.CString(argspec.RequiredMessage(d)))
			})
		}

		if !g.spec.HasChoices() {
			return
		}
		g.w.Blank()
		g.w.Line("// choices")
		for _, d := range g.spec.Args {
			if d.Choices == nil {
				continue
			}
			valid := make([]string, len(d.Choices))
			for i, c := range d.Choices {
				valid[i] = emit.CString(c)
			}
			msg := emit.CString(argspec.ChoicesMessage(d))
			g.w.Block("{", "}", func() {
				g.w.Linef("static const std::set<std::string> valid{%s};", strings.Join(valid, ", "))
				check := func(ref string) {
					g.w.Block(fmt.Sprintf("if (!valid.count(%s)) {", ref), "}", func() {
						g.w.Linef(`fail(std::string(%s) + " (got '" + %s + "')");`, msg, ref)
					})
				}
				if d.Multiple {
					g.w.Block(fmt.Sprintf("for (const auto &value : opts->%s) {", d.Dest), "}", func() {
						check("value")
					})
					return
				}
				check("opts->" + d.Dest)
			})
		}
	})
}

func (g *generator) generateDump() {
	g.w.Block("void dump_options(const Options &opts) {", "}", func() {
		g.w.Line("std::cout << std::boolalpha;")
		for _, d := range g.spec.Args {
			if d.Multiple {
				g.w.Linef(`std::cout << "%s:\n";`, d.Dest)
				g.w.Block(fmt.Sprintf("for (const auto &item : opts.%s) {", d.Dest), "}", func() {
					g.w.Line(`std::cout << "  " << item << "\n";`)
				})
				continue
			}
			g.w.Linef(`std::cout << "%s: " << opts.%s << "\n";`, d.Dest, d.Dest)
		}
		g.w.Line(`std::cout << "remaining_args:\n";`)
		g.w.Block("for (const auto &item : opts.remaining_args) {", "}", func() {
			g.w.Line(`std::cout << "  " << item << "\n";`)
		})
	})
}

func optSpec(d *argspec.Descriptor) string {
	if d.CleanShort == "" {
		return d.CleanName
	}
	return d.CleanShort + "," + d.CleanName
}

func valueDecl(d *argspec.Descriptor) string {
	if d.Type == argspec.Flag {
		return `cxxopts::value<bool>()->default_value("false")`
	}
	decl := "cxxopts::value<" + cppType(d) + ">()"
	if d.HasMetavar {
		decl += "->arg_help(" + emit.CString(d.Metavar) + ")"
	}
	return decl
}

func scalarType(t argspec.Type) string {
	switch t {
	case argspec.Flag:
		return "bool"
	case argspec.Int:
		return "int"
	case argspec.Float:
		return "double"
	}
	return "std::string"
}

func cppType(d *argspec.Descriptor) string {
	if d.Multiple {
		return "std::vector<" + scalarType(d.Type) + ">"
	}
	return scalarType(d.Type)
}

// initial is the value a field holds before parsing.
func initial(d *argspec.Descriptor) string {
	if !d.HasDefault {
		if d.Multiple {
			return "{}"
		}
		switch d.Type {
		case argspec.Int:
			return "0"
		case argspec.Float:
			return "0.0"
		}
		return `""`
	}
	values := d.StoredDefault()
	if !d.Multiple {
		return literal(values[0])
	}
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = literal(v)
	}
	return "{" + strings.Join(items, ", ") + "}"
}

func literal(v argspec.Value) string {
	switch v.Type {
	case argspec.Flag:
		return strconv.FormatBool(v.Bool)
	case argspec.Int:
		return strconv.FormatInt(v.Int, 10)
	case argspec.Float:
		switch {
		case math.IsNaN(v.Float):
			return "std::nan(\"\")"
		case math.IsInf(v.Float, 1):
			return "HUGE_VAL"
		case math.IsInf(v.Float, -1):
			return "-HUGE_VAL"
		}
		return argspec.FormatFloat(v.Float)
	}
	return emit.CString(v.Str)
}
