package tools

import (
	"fmt"
)

// UnknownToolError reports a tool call naming a tool absent from the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Registry resolves tool calls to definitions by name.
type Registry struct {
	byName map[string]ToolDefinition
	order  []string
}

// NewRegistry builds a registry from defs. Names must be non-empty and unique.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{byName: make(map[string]ToolDefinition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("tool name is empty")
		}
		if d.Function == nil {
			return nil, fmt.Errorf("tool %s has no function", d.Name)
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("tool %s already registered", d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (ToolDefinition, error) {
	d, ok := r.byName[name]
	if !ok {
		return ToolDefinition{}, &UnknownToolError{Name: name}
	}
	return d, nil
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
