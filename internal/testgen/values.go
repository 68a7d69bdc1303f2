package testgen

import (
	"github.com/lhaig/climeta/internal/argspec"
)

// Boundary values tried for each value type. Every backend accepts these
// spellings, so they make portable scenarios.
var (
	intValues   = []string{"0", "1", "-1", "0x10", "2147483647"}
	floatValues = []string{"0.0", "-2.5", "1e3", "7"}
	strValues   = []string{"x", "with space", "-", ""}
)

// Rejected spellings per type.
var (
	badInt   = []string{"ten", "1.5", ""}
	badFloat = []string{"x", "1,5"}
)

// ValidValues returns the values worth trying for d, deduplicated, in a
// fixed order. Restricted strings use their choices.
func ValidValues(d *argspec.Descriptor) []string {
	switch {
	case d.Choices != nil:
		return dedupe(d.Choices)
	case d.Type == argspec.Int:
		return intValues
	case d.Type == argspec.Float:
		return floatValues
	case d.Type == argspec.String:
		return strValues
	}
	return nil
}

// InvalidValues returns values d must reject.
func InvalidValues(d *argspec.Descriptor) []string {
	switch {
	case d.Choices != nil:
		return []string{notAChoice(d.Choices)}
	case d.Type == argspec.Int:
		return badInt
	case d.Type == argspec.Float:
		return badFloat
	}
	return nil
}

// firstValue is the value used when a scenario needs any valid value.
func firstValue(d *argspec.Descriptor) string {
	if d.Choices != nil {
		return d.Choices[0]
	}
	switch d.Type {
	case argspec.Int:
		return "1"
	case argspec.Float:
		return "2.5"
	}
	return d.Dest + "-value"
}

func notAChoice(choices []string) string {
	candidate := "not-a-choice"
	for {
		taken := false
		for _, c := range choices {
			if c == candidate {
				taken = true
				break
			}
		}
		if !taken {
			return candidate
		}
		candidate += "-"
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
