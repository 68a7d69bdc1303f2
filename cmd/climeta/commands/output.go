package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/lhaig/climeta/internal/diagnostic"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	okColor    = color.New(color.FgGreen)
)

// printDiagnostics writes diag with each severity label colored.
func printDiagnostics(w io.Writer, file string, diag *diagnostic.Diagnostics) {
	text := diag.Format(file)
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "error["):
			errorColor.Fprint(w, "error")
			line = strings.TrimPrefix(line, "error")
		case strings.HasPrefix(line, "warning["):
			warnColor.Fprint(w, "warning")
			line = strings.TrimPrefix(line, "warning")
		}
		fmt.Fprintln(w, line)
	}
}
