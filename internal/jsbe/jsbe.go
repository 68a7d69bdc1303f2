// Package jsbe generates an ES module that parses the command line with
// command-line-args.
package jsbe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
)

// Keywords are property names the generated module reserves on the result.
var Keywords = []string{"remaining_args", "__proto__"}

// positionalsName is the default option collecting positional tokens.
const positionalsName = "_positionals"

type generator struct {
	w    *emit.Writer
	spec *argspec.Spec
}

// Generate produces the .mjs artifact for spec.
func Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	g := &generator{w: emit.New(emit.TwoSpaces), spec: spec}

	g.w.Line("// https://github.com/75lb/command-line-args")
	g.w.Line("// https://github.com/75lb/command-line-usage")
	g.w.Line(`import commandLineArgs from "command-line-args";`)
	g.w.Line(`import commandLineUsage from "command-line-usage";`)
	g.w.Line(`import { pathToFileURL } from "node:url";`)
	g.w.Blank()
	g.generateUsage()
	g.w.Blank()
	g.w.Block("function fail(message) {", "}", func() {
		g.w.Line("console.error(`error: ${message}`);")
		g.w.Line("console.error(USAGE);")
		g.w.Line("process.exit(1);")
	})
	g.w.Blank()
	g.generateTypes()
	g.generateParse()
	g.w.Blank()
	g.generateDump()
	g.w.Blank()
	g.w.Block("if (process.argv[1] && import.meta.url === pathToFileURL(process.argv[1]).href) {", "}", func() {
		g.w.Line("dumpArgs(parseArgs());")
	})

	return []emit.Artifact{g.w.Artifact(".mjs")}, nil
}

// templateEscaper protects user text from command-line-usage's
// {style text} template syntax.
var templateEscaper = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)

// usageText quotes s as a command-line-usage template string.
func usageText(s string) string {
	return emit.JSString(templateEscaper.Replace(s))
}

// generateUsage lays out the help screen as command-line-usage sections:
// synopsis, description, positionals, options and epilog.
func (g *generator) generateUsage() {
	g.w.Line("const USAGE = commandLineUsage([")
	g.w.Block("", "]);", func() {
		g.w.Linef("{ content: %s, raw: true },", emit.JSString(argspec.UsageLine(g.spec)))
		if desc := g.spec.Program.Description; desc != "" {
			g.w.Linef("{ content: %s, raw: true },", emit.JSString(desc))
		}
		if positionals := g.spec.Positionals(); len(positionals) > 0 {
			g.w.Line(`{ header: "Positional arguments", content: [`)
			g.w.Block("", "] },", func() {
				for _, d := range positionals {
					g.w.Linef("{ name: %s, summary: %s },", usageText(argspec.OptString(d)), usageText(argspec.HelpText(d)))
				}
			})
		}
		g.w.Line(`{ header: "Options", optionList: [`)
		g.w.Block("", "] },", func() {
			g.w.Linef(`{ name: "help", alias: "h", type: Boolean, description: %s },`, emit.JSString(argspec.HelpDescription))
			for _, d := range g.spec.Options() {
				fields := []string{"name: " + emit.JSString(d.CleanName)}
				if d.CleanShort != "" {
					fields = append(fields, "alias: "+emit.JSString(d.CleanShort))
				}
				if d.Type == argspec.Flag {
					fields = append(fields, "type: Boolean")
				} else {
					fields = append(fields, "typeLabel: "+usageText(d.Metavar))
				}
				fields = append(fields, "description: "+usageText(argspec.HelpText(d)))
				g.w.Line("{ " + strings.Join(fields, ", ") + " },")
			}
		})
		if epilog := g.spec.Program.Epilog; epilog != "" {
			g.w.Linef("{ content: %s, raw: true },", emit.JSString(epilog))
		}
	})
}

func (g *generator) generateTypes() {
	if g.spec.HasType(argspec.Int) {
		g.w.Block("function intType(name) {", "}", func() {
			g.w.Block("return (text) => {", "};", func() {
				g.w.Block("if (!/^[+-]?(0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|[0-9]+)$/.test(text)) {", "}", func() {
					g.w.Line("fail(`argument ${name}: invalid int value: '${text}'`);")
				})
				g.w.Line(`const sign = text.startsWith("-") ? -1 : 1;`)
				g.w.Line("return sign * Number(text.replace(/^[+-]/, \"\"));")
			})
		})
		g.w.Blank()
	}
	if g.spec.HasType(argspec.Float) {
		g.w.Block("function floatType(name) {", "}", func() {
			g.w.Block("return (text) => {", "};", func() {
				g.w.Line("const value = Number(text);")
				g.w.Block(`if (text.trim() === "" || Number.isNaN(value)) {`, "}", func() {
					g.w.Line("fail(`argument ${name}: invalid float value: '${text}'`);")
				})
				g.w.Line("return value;")
			})
		})
		g.w.Blank()
	}
}

func typeRef(d *argspec.Descriptor, name string) string {
	switch d.Type {
	case argspec.Flag:
		return "Boolean"
	case argspec.Int:
		return "intType(" + emit.JSString(name) + ")"
	case argspec.Float:
		return "floatType(" + emit.JSString(name) + ")"
	}
	return "String"
}

// prop renders a property access that works for names with dashes.
func prop(obj, name string) string {
	return obj + "[" + emit.JSString(name) + "]"
}

func (g *generator) generateParse() {
	g.w.Line("// parseArgs returns the parsed values keyed by dest, plus remaining_args.")
	g.w.Block("export function parseArgs(argv = process.argv.slice(2)) {", "}", func() {
		g.w.Line(`const cut = argv.indexOf("--");`)
		g.w.Line("const head = cut < 0 ? argv : argv.slice(0, cut);")
		g.w.Blank()

		g.w.Line("const optionDefinitions = [")
		g.w.Block("", "];", func() {
			g.w.Line(`{ name: "help", alias: "h", type: Boolean },`)
			for _, d := range g.spec.Options() {
				fields := []string{"name: " + emit.JSString(d.CleanName)}
				if d.CleanShort != "" {
					fields = append(fields, "alias: "+emit.JSString(d.CleanShort))
				}
				fields = append(fields, "type: "+typeRef(d, d.Name))
				if d.Multiple {
					fields = append(fields, "lazyMultiple: true")
				}
				g.w.Line("{ " + strings.Join(fields, ", ") + " },")
			}
			g.w.Linef(`{ name: "%s", type: String, multiple: true, defaultOption: true },`, positionalsName)
		})
		g.w.Blank()

		g.w.Line("let raw;")
		g.w.Block("try {", "}", func() {
			g.w.Line("raw = commandLineArgs(optionDefinitions, { argv: head });")
		})
		g.w.Block("catch (err) {", "}", func() {
			g.w.Line(`fail(err.name === "UNKNOWN_OPTION" ? ` + "`unknown option: ${err.optionName}`" + ` : err.message);`)
		})
		g.w.Block("if (raw.help) {", "}", func() {
			g.w.Line("console.log(USAGE);")
			g.w.Line("process.exit(0);")
		})
		g.w.Blank()

		g.w.Line("// options taking a value report null when the value is missing")
		for _, d := range g.spec.Options() {
			if d.Type == argspec.Flag {
				continue
			}
			ref := prop("raw", d.CleanName)
			cond := ref + " === null"
			if d.Multiple {
				cond = "(" + ref + " ?? []).includes(null)"
			}
			g.w.Block(fmt.Sprintf("if (%s) {", cond), "}", func() {
				g.w.Linef("fail(%s);", emit.JSString("argument "+d.Name+": expected one argument"))
			})
		}
		g.w.Blank()

		g.w.Line("const opts = {};")
		for _, d := range g.spec.Options() {
			ref := prop("raw", d.CleanName)
			if d.Type == argspec.Flag {
				suffix := ""
				if d.Inverted() {
					suffix = " // stored inverted"
				}
				g.w.Linef("opts.%s = %s === true;%s", d.Dest, ref, suffix)
				continue
			}
			g.w.Linef("opts.%s = %s ?? %s;", d.Dest, ref, initial(d))
		}
		g.w.Blank()

		positionals := g.spec.Positionals()
		g.w.Line("// positionals")
		g.w.Linef("const positionals = raw.%s ?? [];", positionalsName)
		g.w.Block(fmt.Sprintf("if (positionals.length !== %d) {", len(positionals)), "}", func() {
			g.w.Linef("fail(%s);", emit.JSString(argspec.ArityMessage(len(positionals))))
		})
		for i, d := range positionals {
			ref := "positionals[" + strconv.Itoa(i) + "]"
			if d.Type == argspec.String {
				g.w.Linef("opts.%s = %s;", d.Dest, ref)
				continue
			}
			g.w.Linef("opts.%s = %s(%s);", d.Dest, typeRef(d, d.CleanName), ref)
		}

		if g.spec.HasInverted() {
			g.w.Blank()
			g.w.Line("// flags defaulting to true were stored inverted")
			for _, d := range g.spec.Args {
				if d.Inverted() {
					g.w.Linef("opts.%s = !opts.%s;", d.Dest, d.Dest)
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
			g.w.Block(fmt.Sprintf("if (opts.%s === null) {", d.Dest), "}", func() {
				g.w.Linef("fail(%s);", emit.JSString(argspec.RequiredMessage(d)))
			})
		}

		if g.spec.HasChoices() {
			g.w.Blank()
			g.w.Line("// choices")
			for _, d := range g.spec.Args {
				if d.Choices != nil {
					g.generateChoices(d)
				}
			}
		}

		g.w.Blank()
		g.w.Line("opts.remaining_args = cut < 0 ? [] : argv.slice(cut + 1);")
		g.w.Line("return opts;")
	})
}

func (g *generator) generateChoices(d *argspec.Descriptor) {
	valid := make([]string, len(d.Choices))
	for i, c := range d.Choices {
		valid[i] = emit.JSString(c)
	}
	set := "[" + strings.Join(valid, ", ") + "]"
	msg := emit.JSString(argspec.ChoicesMessage(d))
	check := func(ref string) {
		g.w.Block(fmt.Sprintf("if (!%s.includes(%s)) {", set, ref), "}", func() {
			g.w.Linef("fail(%s + ` (got '${%s}')`);", msg, ref)
		})
	}
	if d.Multiple {
		g.w.Block(fmt.Sprintf("for (const value of opts.%s) {", d.Dest), "}", func() {
			check("value")
		})
		return
	}
	check("opts." + d.Dest)
}

func (g *generator) generateDump() {
	g.w.Line("// dumpArgs prints every parsed value, then the trailing arguments.")
	g.w.Block("export function dumpArgs(opts) {", "}", func() {
		for _, d := range g.spec.Args {
			if d.Multiple {
				g.w.Linef(`console.log("%s:");`, d.Dest)
				g.w.Block(fmt.Sprintf("for (const item of opts.%s) {", d.Dest), "}", func() {
					g.w.Line("console.log(`  ${item}`);")
				})
				continue
			}
			g.w.Linef("console.log(`%s: ${opts.%s}`);", d.Dest, d.Dest)
		}
		g.w.Line(`console.log("remaining_args:");`)
		g.w.Block("for (const item of opts.remaining_args) {", "}", func() {
			g.w.Line("console.log(`  ${item}`);")
		})
	})
}

// initial is the value a field holds when its option is absent; null marks
// a required field.
func initial(d *argspec.Descriptor) string {
	if !d.HasDefault {
		return "null"
	}
	values := d.StoredDefault()
	if !d.Multiple {
		return literal(values[0])
	}
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = literal(v)
	}
	return "[" + strings.Join(items, ", ") + "]"
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
			return "NaN"
		case math.IsInf(v.Float, 1):
			return "Infinity"
		case math.IsInf(v.Float, -1):
			return "-Infinity"
		}
		return argspec.FormatFloat(v.Float)
	}
	return emit.JSString(v.Str)
}
