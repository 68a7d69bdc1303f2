package linter

import (
	"strings"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/diagnostic"
)

// Linter performs style and best-practice checks on a specification document.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	doc  *argspec.Document
	diag *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given document and returns diagnostics.
// Declarations that do not normalize are skipped; the checker reports them.
func Lint(doc *argspec.Document) *diagnostic.Diagnostics {
	l := &Linter{
		doc:  doc,
		diag: diagnostic.New(),
	}

	l.lintProgram()
	l.lintArguments()
	l.lintUnknownKeys()

	return l.diag
}

// lintProgram checks the program section.
func (l *Linter) lintProgram() {
	if strings.TrimSpace(l.doc.Program.Description) == "" {
		l.diag.WarningWithHint(0, "description", "program description is empty",
			"the description is printed under the usage line")
	}
}

// lintArguments checks every declaration that normalizes.
func (l *Linter) lintArguments() {
	for i, decl := range l.doc.Arguments {
		d, err := argspec.Normalize(decl)
		if err != nil {
			continue
		}
		arg := i + 1
		l.checkEmptyHelp(arg, d)
		l.checkShortSpelling(arg, decl)
		l.checkFlagMetavar(arg, decl, d)
		l.checkPositionalDefault(arg, decl, d)
		l.checkDefaultInChoices(arg, d)
		l.checkHelpDest(arg, d)
	}
}

// lintUnknownKeys reports keys the loader did not recognize.
func (l *Linter) lintUnknownKeys() {
	for _, u := range l.doc.Unknown {
		section := "program section"
		if u.Arg > 0 {
			section = "argument declaration"
		}
		l.diag.Warningf(u.Arg, u.Key, "unknown key %q in %s is ignored", u.Key, section)
	}
}

// --- Lint rules ---

// checkEmptyHelp warns if an argument has no help text.
func (l *Linter) checkEmptyHelp(arg int, d *argspec.Descriptor) {
	if strings.TrimSpace(d.Help) == "" {
		l.diag.Warningf(arg, "help", "%s has no help text", d.Name)
	}
}

// checkShortSpelling warns if a short alias is not written as "-x".
func (l *Linter) checkShortSpelling(arg int, decl argspec.Declaration) {
	if decl.Short == "" {
		return
	}
	if !strings.HasPrefix(decl.Short, "-") || strings.HasPrefix(decl.Short, "--") {
		clean := strings.TrimLeft(decl.Short, "-")
		l.diag.WarningWithHint(arg, "short", "short alias \""+decl.Short+"\" should be written as \"-"+clean+"\"",
			`use short = "-`+clean+`"`)
	}
}

// checkFlagMetavar warns if a flag declares a metavar it never shows.
func (l *Linter) checkFlagMetavar(arg int, decl argspec.Declaration, d *argspec.Descriptor) {
	if d.Type == argspec.Flag && decl.Metavar != nil {
		l.diag.Warningf(arg, "metavar", "metavar of flag %s is never shown", d.Name)
	}
}

// checkPositionalDefault warns if a positional declares a default, which is
// ignored because positionals are always required.
func (l *Linter) checkPositionalDefault(arg int, decl argspec.Declaration, d *argspec.Descriptor) {
	if d.Positional && decl.Default != nil {
		l.diag.Warningf(arg, "default", "default of positional %s is ignored; positionals are always required", d.Name)
	}
}

// checkDefaultInChoices warns if a default could never pass the choices check.
func (l *Linter) checkDefaultInChoices(arg int, d *argspec.Descriptor) {
	if d.Choices == nil || !d.HasDefault {
		return
	}
	for _, v := range d.Default {
		if !d.Allows(v.String()) {
			l.diag.WarningWithHint(arg, "default", "default '"+v.String()+"' of "+d.Name+" is not one of its choices",
				"an invocation without "+d.Name+" will always fail")
			return
		}
	}
}

// checkHelpDest warns if the dest shadows the help option.
func (l *Linter) checkHelpDest(arg int, d *argspec.Descriptor) {
	if d.Dest == "help" {
		l.diag.WarningWithHint(arg, "dest", "dest \"help\" shadows the help option in some targets",
			`set dest = "help_"`)
	}
}
