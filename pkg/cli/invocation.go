package cli

// bareMarker is the type of Bare.
type bareMarker struct{}

func (bareMarker) String() string { return "<bare>" }

// Bare is the value of a zero-or-one option given without an argument. It is
// distinct from "not supplied" and from every real value.
var Bare any = bareMarker{}

// Invocation is the result of applying the schema to an argument vector.
type Invocation struct {
	values   map[string]any
	explicit map[string]bool
}

func newInvocation() *Invocation {
	return &Invocation{
		values:   make(map[string]any),
		explicit: make(map[string]bool),
	}
}

// Lookup returns the resolved value of name and whether it has one.
func (inv *Invocation) Lookup(name string) (any, bool) {
	v, ok := inv.values[name]
	return v, ok
}

// Supplied reports whether name was given on the command line, as opposed to
// resolved from its declared default.
func (inv *Invocation) Supplied(name string) bool {
	return inv.explicit[name]
}

// Bool returns the boolean value of name, false when absent.
func (inv *Invocation) Bool(name string) bool {
	b, _ := inv.values[name].(bool)
	return b
}

// String returns the string value of name and whether it is set to a string.
func (inv *Invocation) String(name string) (string, bool) {
	s, ok := inv.values[name].(string)
	return s, ok
}

// Set overrides the value of name as if it were supplied explicitly.
func (inv *Invocation) Set(name string, value any) {
	inv.values[name] = value
	inv.explicit[name] = true
}

func (inv *Invocation) setDefault(name string, value any) {
	inv.values[name] = value
}
