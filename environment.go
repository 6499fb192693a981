package rowcalc

import "sort"

// Environment holds the variable bindings visible to a row during one sweep.
// A new Environment is built for every sweep and discarded afterwards.
type Environment struct {
	vars map[string]any
}

// NewEnvironment creates an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]any)}
}

// Bind sets name to value, shadowing any earlier binding of the same name.
func (e *Environment) Bind(name string, value float64) {
	e.vars[name] = value
}

// Lookup returns the value bound to name.
func (e *Environment) Lookup(name string) (float64, bool) {
	v, ok := e.vars[name]
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

// Contains reports whether name is bound.
func (e *Environment) Contains(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Len returns the number of bound names.
func (e *Environment) Len() int {
	return len(e.vars)
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for k := range e.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// toMap returns the bindings in the shape expr-lang expects for its env.
// The map is shared; callers must not modify it.
func (e *Environment) toMap() map[string]any {
	if e == nil {
		return map[string]any{}
	}
	return e.vars
}
