package argspec

import "fmt"

// Boolean polarity.
//
// Target libraries only express flags that default to false. A flag whose
// external default is true is stored inverted: its internal default is
// false, seeing the flag sets it, and the generated code inverts it back
// after parsing. Help text always shows the external default.

// Inverted reports whether d is a flag stored with inverted polarity.
func (d *Descriptor) Inverted() bool {
	return d.Type == Flag && d.HasDefault && d.Scalar().Bool
}

// StoredDefault returns the defaults as stored internally before parsing.
func (d *Descriptor) StoredDefault() []Value {
	if d.Inverted() {
		return []Value{{Type: Flag, Bool: false}}
	}
	return d.Default
}

// External converts an internally stored flag value to its external sense.
func (d *Descriptor) External(stored bool) bool {
	if d.Inverted() {
		return !stored
	}
	return stored
}

// Required-value sentinels.
//
// Targets without a natural "unset" state store a reserved placeholder in
// required fields before parsing and test for it afterwards. A user value
// equal to the placeholder is indistinguishable from "not supplied"; that
// collision is a documented limitation of the affected target.

// Sentinel is the placeholder one target uses for one value type.
type Sentinel struct {
	Literal string // stored before parsing
	Test    string // boolean expression, %s is replaced by the field reference
}

// Sentinels maps value types to the placeholders of one target.
type Sentinels map[Type]Sentinel

// Initial returns the literal a field starts with: its stored default, or
// the sentinel when the field is required.
func (s Sentinels) Initial(d *Descriptor, literal func(Value) string) string {
	if d.HasDefault {
		return literal(d.StoredDefault()[0])
	}
	return s[d.Type].Literal
}

// Unset returns the expression testing that ref still holds the sentinel.
func (s Sentinels) Unset(d *Descriptor, ref string) string {
	return fmt.Sprintf(s[d.Type].Test, ref)
}

// Covers reports whether s defines a sentinel for every non-flag type.
func (s Sentinels) Covers() bool {
	for _, t := range []Type{String, Int, Float} {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}
