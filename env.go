package questicle

import "fmt"

// Env is a lexical scope frame. Frames link to their parent; closures
// hold a pointer to their defining frame, so later writes through
// Assign are visible to every closure sharing the chain.
type Env struct {
	parent *Env
	vars   map[string]Value
}

// NewEnv creates a new scope whose lookups fall through to parent.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]Value)}
}

// Define creates or replaces a binding in this frame only.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Assign writes to the nearest enclosing frame that defines name.
func (e *Env) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return nil
		}
	}
	return &RuntimeError{Msg: fmt.Sprintf("Undefined variable '%s'", name)}
}

// Get resolves name through the frame chain.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return Null, false
}
