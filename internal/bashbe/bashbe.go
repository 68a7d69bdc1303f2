// Package bashbe generates a bash script that parses the command line with
// a hand-written getopt emulation.
package bashbe

import (
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/emit"
)

// Keywords are names the generated script already uses for itself or that
// the shell gives a special meaning. The script's own working variables all
// carry the "_cli_" prefix so they cannot shadow a dest.
var Keywords = []string{
	"_cli_out", "_cli_re", "_cli_arg", "_cli_i", "_cli_ch", "_cli_rest",
	"_cli_number_re", "_cli_new_args", "_cli_positional_count", "_cli_value",
	"_cli_item", "remaining_args", "IFS", "PATH", "HOME", "OPTIND", "OPTARG",
	"BASH", "BASH_SOURCE",
}

// given names the variable tracking whether a multiple option appeared, so
// the first occurrence replaces the default.
func given(dest string) string { return "_cli_given_" + dest }

type generator struct {
	w    *emit.Writer
	spec *argspec.Spec
}

// Generate produces the .sh artifact for spec.
func Generate(spec *argspec.Spec, base string) ([]emit.Artifact, error) {
	g := &generator{w: emit.New(emit.FourSpaces), spec: spec}

	g.w.Line("#!/usr/bin/env bash")
	g.w.Linef("# Command line parsing for %s", spec.Program.Name)
	g.w.Blank()
	g.generateUsage()
	g.generateHelpers()
	g.generateParse()
	g.generateValidate()
	g.generateDump()
	g.generateEntry()

	g.w.Line(`if [ "${BASH_SOURCE[0]}" = "$0" ]; then`)
	g.w.Block("", "fi", func() {
		g.w.Line(`get_cli_args "$@"`)
		g.w.Line("dump_args")
	})

	return []emit.Artifact{g.w.Artifact(".sh")}, nil
}

// function emits a shell function definition.
func (g *generator) function(name string, body func()) {
	g.w.Block(name+"() {", "}", body)
	g.w.Blank()
}

func (g *generator) generateUsage() {
	g.w.Line("# usage STATUS prints help on stdout for 0, on stderr otherwise, then exits")
	g.function("usage", func() {
		g.w.Line("local _cli_out=1")
		g.w.Line(`[ "$1" -ne 0 ] && _cli_out=2`)
		g.w.Block("{", `} >&"$_cli_out"`, func() {
			for _, line := range argspec.Usage(g.spec) {
				g.w.Linef(`printf '%%s\n' %s`, dq(line))
			}
		})
		g.w.Line(`exit "$1"`)
	})
}

func (g *generator) generateHelpers() {
	g.function("fail", func() {
		g.w.Line(`printf 'error: %s\n' "$1" >&2`)
		g.w.Line("usage 1")
	})

	g.w.Line("# need_value OPTION WORDS_LEFT NEXT")
	g.function("need_value", func() {
		g.w.Line(`local _cli_re='^-[0-9]*\.?[0-9]+$'`)
		g.w.Line(`if [ "$2" -lt 2 ] || { [[ "$3" == -?* ]] && ! [[ "$3" =~ $_cli_re ]]; }; then`)
		g.w.Block("", "fi", func() {
			g.w.Line(`fail "argument $1: expected one argument"`)
		})
	})

	if g.spec.HasType(argspec.Int) {
		g.function("check_int", func() {
			g.w.Line(`local _cli_re='^[+-]?(0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|[0-9]+)$'`)
			g.w.Line(`[[ "$2" =~ $_cli_re ]] || fail "argument $1: invalid int value: '$2'"`)
		})
	}
	if g.spec.HasType(argspec.Float) {
		g.function("check_float", func() {
			g.w.Line(`local _cli_re='^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$'`)
			g.w.Line(`[[ "$2" =~ $_cli_re ]] || fail "argument $1: invalid float value: '$2'"`)
		})
	}
}

// check returns the type check call for a value of d, or "".
func check(d *argspec.Descriptor, opt, value string) string {
	switch d.Type {
	case argspec.Int:
		return "check_int " + opt + " " + value
	case argspec.Float:
		return "check_float " + opt + " " + value
	}
	return ""
}

func (g *generator) generateParse() {
	g.w.Line("# parse_args ARGS... fills the option variables and remaining_args")
	g.function("parse_args", func() {
		g.w.Line("local _cli_arg _cli_i _cli_ch _cli_rest")
		g.w.Line(`local _cli_number_re='^-[0-9]*\.?[0-9]+$'`)
		g.w.Line("local -a _cli_new_args=()")
		g.w.Line("# split -abc into -a -b -c; a short option taking a value takes the rest")
		g.w.Line(`while [ "$#" -gt 0 ]; do`)
		g.w.Block("", "done", func() {
			g.w.Line(`_cli_arg="$1"`)
			g.w.Line(`case "$_cli_arg" in`)
			g.w.Block("", "esac", func() {
				g.w.Line(`--) _cli_new_args+=("$@"); break ;;`)
				g.w.Line(`--*) _cli_new_args+=("$_cli_arg") ;;`)
				g.w.Line("-?*)")
				g.w.Block("", "", func() {
					g.w.Line(`if [[ "$_cli_arg" =~ $_cli_number_re ]]; then _cli_new_args+=("$_cli_arg"); shift; continue; fi`)
					g.w.Line("_cli_i=1")
					g.w.Line(`while [ "$_cli_i" -lt "${#_cli_arg}" ]; do`)
					g.w.Block("", "done", func() {
						g.w.Line(`_cli_ch="${_cli_arg:$_cli_i:1}"`)
						g.w.Line(`_cli_new_args+=("-$_cli_ch")`)
						g.w.Line("_cli_i=$((_cli_i + 1))")
						if shorts := g.valueShorts(); shorts != "" {
							g.w.Line(`case "$_cli_ch" in`)
							g.w.Block("", "esac", func() {
								g.w.Linef("%s)", shorts)
								g.w.Block("", "", func() {
									g.w.Line(`_cli_rest="${_cli_arg:$_cli_i}"`)
									g.w.Line(`[ "$_cli_i" -lt "${#_cli_arg}" ] && _cli_new_args+=("${_cli_rest#=}")`)
									g.w.Line("break")
									g.w.Line(";;")
								})
							})
						}
					})
					g.w.Line(";;")
				})
				g.w.Line(`*) _cli_new_args+=("$_cli_arg") ;;`)
			})
			g.w.Line("shift")
		})
		g.w.Line(`set -- "${_cli_new_args[@]}"`)
		g.w.Blank()

		positionals := g.spec.Positionals()
		arity := dq(argspec.ArityMessage(len(positionals)))
		g.w.Line("remaining_args=()")
		g.w.Line("local _cli_positional_count=0")
		g.w.Line(`while [ "$#" -gt 0 ]; do`)
		g.w.Block("", "done", func() {
			g.w.Line(`case "$1" in`)
			g.w.Block("", "esac", func() {
				g.w.Line("-h|--help) usage 0 ;;")
				for _, d := range g.spec.Options() {
					g.generateOption(d)
				}
				g.w.Line(`--) shift; remaining_args=("$@"); break ;;`)
				g.w.Line("*)")
				g.w.Block("", "", func() {
					g.w.Line(`if [[ "$1" == -?* ]] && ! [[ "$1" =~ $_cli_number_re ]]; then fail "unknown option: $1"; fi`)
					g.w.Line(`case "$_cli_positional_count" in`)
					g.w.Block("", "esac", func() {
						for i, d := range positionals {
							stmt := d.Dest + `="$1"`
							if c := check(d, dq(d.CleanName), `"$1"`); c != "" {
								stmt = c + "; " + stmt
							}
							g.w.Linef("%d) %s ;;", i, stmt)
						}
						g.w.Linef("*) fail %s ;;", arity)
					})
					g.w.Line("_cli_positional_count=$((_cli_positional_count + 1))")
					g.w.Line(";;")
				})
			})
			g.w.Line("shift")
		})
		g.w.Linef(`if [ "$_cli_positional_count" -ne %d ]; then`, len(positionals))
		g.w.Block("", "fi", func() {
			g.w.Linef("fail %s", arity)
		})
	})
}

// valueShorts returns the short letters of value-taking options as a case
// pattern.
func (g *generator) valueShorts() string {
	var out []string
	for _, d := range g.spec.Options() {
		if d.CleanShort != "" && d.Type != argspec.Flag {
			out = append(out, d.CleanShort)
		}
	}
	return strings.Join(out, "|")
}

func (g *generator) generateOption(d *argspec.Descriptor) {
	pattern := d.Name
	if d.Short != "" {
		pattern = d.Short + "|" + d.Name
	}
	if d.Type == argspec.Flag {
		suffix := ""
		if d.Inverted() {
			suffix = "  # stored inverted"
		}
		g.w.Linef("%s) %s=1 ;;%s", pattern, d.Dest, suffix)
		return
	}

	store := func(value string) {
		if c := check(d, `"`+d.Name+`"`, value); c != "" {
			g.w.Line(c)
		}
		if !d.Multiple {
			g.w.Linef("%s=%s", d.Dest, value)
			return
		}
		g.w.Linef(`if [ "$%s" -eq 0 ]; then`, given(d.Dest))
		g.w.Block("", "fi", func() {
			g.w.Linef("%s=()", d.Dest)
			g.w.Linef("%s=1", given(d.Dest))
		})
		g.w.Linef("%s+=(%s)", d.Dest, value)
	}

	g.w.Linef("%s=*)", d.Name)
	g.w.Block("", "", func() {
		store(`"${1#*=}"`)
		g.w.Line(";;")
	})
	g.w.Linef("%s)", pattern)
	g.w.Block("", "", func() {
		g.w.Line(`need_value "$1" "$#" "${2-}"`)
		store(`"$2"`)
		g.w.Line("shift")
		g.w.Line(";;")
	})
}

func (g *generator) generateValidate() {
	g.w.Line("# validate_args checks required options, then choices")
	g.function("validate_args", func() {
		g.w.Line(":")
		for _, d := range g.spec.Options() {
			if !d.Required || d.Type == argspec.Flag {
				continue
			}
			cond := `[ -z "${` + d.Dest + `+set}" ]`
			if d.Multiple {
				cond = `[ "$` + given(d.Dest) + `" -eq 0 ]`
			}
			g.w.Linef("if %s; then", cond)
			g.w.Block("", "fi", func() {
				g.w.Linef("fail %s", dq(argspec.RequiredMessage(d)))
			})
		}
		for _, d := range g.spec.Args {
			if d.Choices == nil {
				continue
			}
			patterns := make([]string, len(d.Choices))
			for i, c := range d.Choices {
				patterns[i] = dq(c)
			}
			msg := strings.TrimSuffix(dq(argspec.ChoicesMessage(d)), `"`)
			body := func(ref string) {
				g.w.Linef(`case "%s" in`, ref)
				g.w.Block("", "esac", func() {
					g.w.Linef("%s) ;;", strings.Join(patterns, "|"))
					g.w.Linef(`*) fail %s (got '%s')" ;;`, msg, ref)
				})
			}
			if d.Multiple {
				g.w.Linef(`for _cli_value in "${%s[@]}"; do`, d.Dest)
				g.w.Block("", "done", func() { body("$_cli_value") })
				continue
			}
			body("$" + d.Dest)
		}
	})
}

func (g *generator) generateDump() {
	g.w.Line("# dump_args prints every parsed value, then the trailing arguments")
	g.function("dump_args", func() {
		g.w.Line(`echo "Parsed arguments:"`)
		for _, d := range g.spec.Args {
			if d.Multiple {
				g.w.Linef(`echo "%s:"`, d.Dest)
				g.w.Linef(`for _cli_item in "${%s[@]}"; do printf '  %%s\n' "$_cli_item"; done`, d.Dest)
				continue
			}
			g.w.Linef(`printf '%%s\n' "%s: $%s"`, d.Dest, d.Dest)
		}
		g.w.Line(`echo "remaining_args:"`)
		g.w.Line(`for _cli_item in "${remaining_args[@]}"; do printf '  %s\n' "$_cli_item"; done`)
	})
}

func (g *generator) generateEntry() {
	g.w.Line("# get_cli_args ARGS... is the entry point")
	g.function("get_cli_args", func() {
		g.w.Line("# defaults")
		for _, d := range g.spec.Args {
			switch {
			case d.Multiple:
				values := ""
				if d.HasDefault {
					values = strings.Join(words(d.Default), " ")
				}
				g.w.Linef("%s=(%s)", d.Dest, values)
				g.w.Linef("%s=0", given(d.Dest))
			case d.HasDefault:
				suffix := ""
				if d.Inverted() {
					suffix = "  # stored inverted"
				}
				g.w.Linef("%s=%s%s", d.Dest, word(d.StoredDefault()[0]), suffix)
			default:
				g.w.Linef("unset %s", d.Dest)
			}
		}
		g.w.Line(`parse_args "$@"`)
		if g.spec.HasInverted() {
			g.w.Line("# flags defaulting to true were stored inverted")
			for _, d := range g.spec.Args {
				if d.Inverted() {
					g.w.Linef("%s=$((1 - %s))", d.Dest, d.Dest)
				}
			}
		}
		g.w.Line("validate_args")
	})
}

// word renders a value as one shell word.
func word(v argspec.Value) string {
	if v.Type == argspec.Flag {
		if v.Bool {
			return "1"
		}
		return "0"
	}
	return dq(v.String())
}

func words(vs []argspec.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = word(v)
	}
	return out
}

var dqReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

// dq double quotes s for bash.
func dq(s string) string {
	return `"` + dqReplacer.Replace(s) + `"`
}
