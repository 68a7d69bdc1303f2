package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single problem found in a specification document.
// Arg is the 1-based position of the argument declaration it refers to;
// zero means the program section or the document as a whole.
type Diagnostic struct {
	Severity Severity
	Message  string
	Arg      int
	Key      string // optional declaration key, e.g. "default"
	Hint     string // optional suggestion
}

// Location renders the position part of a diagnostic, e.g. "arguments[3].dest".
func (d Diagnostic) Location() string {
	var loc string
	if d.Arg > 0 {
		loc = fmt.Sprintf("arguments[%d]", d.Arg)
	} else {
		loc = "program"
	}
	if d.Key != "" {
		loc += "." + d.Key
	}
	return loc
}

// Diagnostics manages a collection of diagnostic messages
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(arg int, key, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Arg:      arg,
		Key:      key,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(arg int, key, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Arg:      arg,
		Key:      key,
	})
}

// ErrorWithHint adds an error diagnostic with an optional hint
func (d *Diagnostics) ErrorWithHint(arg int, key, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  msg,
		Arg:      arg,
		Key:      key,
		Hint:     hint,
	})
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(arg int, key, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  msg,
		Arg:      arg,
		Key:      key,
		Hint:     hint,
	})
}

// Add appends a prepared diagnostic.
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// Format returns human-readable messages
// Output format:
//
//	error[args.toml:arguments[3].dest]: dest "dry-run" is not a valid identifier
//	  hint: set dest = "dry_run"
//	warning[args.toml:program]: program description is empty
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		builder.WriteString(fmt.Sprintf("%s[%s:%s]: %s",
			item.Severity.String(),
			filename,
			item.Location(),
			item.Message,
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
