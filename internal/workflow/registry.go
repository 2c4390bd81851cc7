package workflow

import (
	"fmt"
	"slices"
)

// Registry holds the transition table of every known entity type. It is built once
// at startup and never modified afterwards, so it is safe for concurrent reads.
type Registry struct {
	workflows map[EntityType]*Workflow
}

func NewRegistry(workflows ...*Workflow) (*Registry, error) {
	r := &Registry{workflows: make(map[EntityType]*Workflow, len(workflows))}

	for _, w := range workflows {
		if w == nil {
			return nil, fmt.Errorf("registry: nil workflow")
		}

		if _, dup := r.workflows[w.entity]; dup {
			return nil, fmt.Errorf("registry: entity type %q registered twice", w.entity)
		}

		r.workflows[w.entity] = w
	}

	return r, nil
}

func (r *Registry) Get(entity EntityType) (*Workflow, error) {
	w, ok := r.workflows[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}

	return w, nil
}

// Entities returns the registered entity types sorted by name.
func (r *Registry) Entities() []EntityType {
	out := make([]EntityType, 0, len(r.workflows))
	for e := range r.workflows {
		out = append(out, e)
	}

	slices.Sort(out)

	return out
}

// DefaultRegistry returns the production tables for all supported entity types.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultWorkflows()...)
	if err != nil {
		panic(err)
	}

	return r
}
