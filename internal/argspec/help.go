package argspec

import (
	"strings"
)

// Help option rendering shared by backends that lay out help by hand.
const (
	HelpOption      = "-h, --help"
	HelpDescription = "show this help message and exit"
)

// OptString renders the left column of a help line, e.g. "-o OUTPUT, --output OUTPUT".
func OptString(d *Descriptor) string {
	if d.Positional {
		if d.HasMetavar {
			return d.Metavar
		}
		return d.CleanName
	}
	value := ""
	if d.Type != Flag {
		value = " " + d.Metavar
	}
	if d.Short == "" {
		return d.Name + value
	}
	return d.Short + value + ", " + d.Name + value
}

// DisplayValue renders one value for help text; strings are single quoted.
func DisplayValue(v Value) string {
	if v.Type == String {
		return "'" + v.Str + "'"
	}
	return v.String()
}

// DefaultText renders the external default of d, or "" when d is required.
func DefaultText(d *Descriptor) string {
	if !d.HasDefault {
		return ""
	}
	parts := make([]string, 0, len(d.Default))
	for _, v := range d.Default {
		parts = append(parts, DisplayValue(v))
	}
	return strings.Join(parts, " ")
}

// HelpSuffix is "(required)" or "(default X)" in the external sense.
func HelpSuffix(d *Descriptor) string {
	if d.Required {
		return "(required)"
	}
	return "(default " + DefaultText(d) + ")"
}

// HelpText is the help of d followed by its suffix.
func HelpText(d *Descriptor) string {
	text := d.Help
	if d.Multiple {
		text += " [repeatable]"
	}
	if text == "" {
		return HelpSuffix(d)
	}
	return text + " " + HelpSuffix(d)
}

// HelpLine is one row of a hand-rendered help screen.
type HelpLine struct {
	Left  string
	Right string
}

// HelpLayout returns the positional and option rows of the help screen and
// the width of the left column. The help option is the first option row.
func HelpLayout(s *Spec) (positionals, options []HelpLine, width int) {
	options = append(options, HelpLine{Left: HelpOption, Right: HelpDescription})
	for _, d := range s.Args {
		line := HelpLine{Left: OptString(d), Right: HelpText(d)}
		if d.Positional {
			positionals = append(positionals, line)
		} else {
			options = append(options, line)
		}
	}
	for _, l := range append(append([]HelpLine{}, positionals...), options...) {
		if len(l.Left) > width {
			width = len(l.Left)
		}
	}
	return positionals, options, width + 1
}

// Pad left-justifies s in a column of width.
func Pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// UsageLine renders the synopsis, e.g. "Usage: prog [options] input [-- args...]".
func UsageLine(s *Spec) string {
	var b strings.Builder
	b.WriteString("Usage: ")
	b.WriteString(s.Program.Name)
	b.WriteString(" [options]")
	for _, d := range s.Positionals() {
		b.WriteString(" ")
		b.WriteString(OptString(d))
	}
	b.WriteString(" [-- args...]")
	return b.String()
}

// Usage renders the complete help screen as a list of lines.
func Usage(s *Spec) []string {
	positionals, options, width := HelpLayout(s)
	lines := []string{UsageLine(s), ""}
	if s.Program.Description != "" {
		lines = append(lines, s.Program.Description, "")
	}
	if len(positionals) > 0 {
		lines = append(lines, "positional arguments:")
		for _, l := range positionals {
			lines = append(lines, "  "+Pad(l.Left, width)+": "+l.Right)
		}
		lines = append(lines, "")
	}
	lines = append(lines, "options:")
	for _, l := range options {
		lines = append(lines, "  "+Pad(l.Left, width)+": "+l.Right)
	}
	if s.Program.Epilog != "" {
		lines = append(lines, "", s.Program.Epilog)
	}
	return lines
}
