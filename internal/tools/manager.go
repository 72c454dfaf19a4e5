// In file: internal/tools/manager.go
package tools

import "fmt"

// Registry is the single process-wide mapping from tool name to descriptor.
// It is populated during startup wiring and only read afterwards, so lookups need
// no locking.
type Registry struct {
	tools map[string]*Descriptor
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Descriptor),
	}
}

// Register adds a tool. Names are unique.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("cannot register a nil tool")
	}
	name := d.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = d
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the registered descriptor. The same pointer is returned on every call.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.tools[name]
	return d, ok
}

// Subset builds a read-only view over the named tools, in the order given.
// The view holds the registry's own descriptors, not copies.
func (r *Registry) Subset(names ...string) (*Toolset, error) {
	set := &Toolset{byName: make(map[string]*Descriptor, len(names))}
	for _, name := range names {
		d, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		if _, dup := set.byName[name]; dup {
			continue
		}
		set.byName[name] = d
		set.ordered = append(set.ordered, d)
	}
	return set, nil
}

// Definitions returns every registered tool definition in registration order.
func (r *Registry) Definitions() []Tool {
	defs := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	return len(r.tools)
}

// Toolset is the subset of the registry exposed to one agent.
type Toolset struct {
	byName  map[string]*Descriptor
	ordered []*Descriptor
}

// Lookup only resolves names inside this subset.
func (s *Toolset) Lookup(name string) (*Descriptor, bool) {
	d, ok := s.byName[name]
	return d, ok
}

func (s *Toolset) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(s.ordered))
	copy(out, s.ordered)
	return out
}

func (s *Toolset) Names() []string {
	names := make([]string, len(s.ordered))
	for i, d := range s.ordered {
		names[i] = d.Name()
	}
	return names
}

func (s *Toolset) Len() int { return len(s.ordered) }
