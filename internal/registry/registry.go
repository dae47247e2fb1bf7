package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface all node modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Runner holds the compiled Go parts of one node type's handler.
type Runner struct {
	// NewInput returns a pointer to a fresh input struct that the step's
	// evaluated arguments are decoded into. Nil means the handler takes no
	// arguments.
	NewInput func() any

	// Fn is the handler, shaped func(ctx context.Context, input *T) (cty.Value, error).
	Fn any
}

// Registry maps node type names to runner handlers for a single
// application instance. It is populated during startup and read-only
// afterwards.
type Registry struct {
	runners map[string]*Runner
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		runners: make(map[string]*Runner),
	}
}

// Register adds a runner handler under a node type name. Two modules
// claiming the same name is a programmer error.
func (r *Registry) Register(name string, runner *Runner) {
	if _, exists := r.runners[name]; exists {
		panic(fmt.Sprintf("runner %q already registered", name))
	}
	slog.Debug("Registering runner handler.", "name", name)
	r.runners[name] = runner
}

// Lookup returns the handler registered under name, if any.
func (r *Registry) Lookup(name string) (*Runner, bool) {
	runner, ok := r.runners[name]
	return runner, ok
}

// Names returns the registered node type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
