package workflow

import (
	"errors"
	"fmt"
	"slices"
)

// State is a lifecycle status of a business entity.
type State string

// EntityType identifies which transition table applies to an entity.
type EntityType string

var ErrUnknownEntity = errors.New("unknown entity type")

// Node declares one state of a workflow. Use Active or Terminal to build it.
type Node struct {
	state      State
	successors []State
	terminal   bool
}

// Active declares a state with at least one outgoing transition.
func Active(state State, successors ...State) Node {
	return Node{state: state, successors: successors}
}

// Terminal declares a state with no outgoing transitions.
func Terminal(state State) Node {
	return Node{state: state, terminal: true}
}

// Workflow is an immutable transition table for one entity type.
type Workflow struct {
	entity EntityType
	order  []State
	nodes  map[State]Node
}

// New builds a workflow from its state declarations. Every successor must itself be
// declared, and an Active state must list at least one successor.
func New(entity EntityType, nodes ...Node) (*Workflow, error) {
	if entity == "" {
		return nil, errors.New("workflow: empty entity type")
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("workflow %s: no states declared", entity)
	}

	w := &Workflow{
		entity: entity,
		order:  make([]State, 0, len(nodes)),
		nodes:  make(map[State]Node, len(nodes)),
	}

	for _, n := range nodes {
		if n.state == "" {
			return nil, fmt.Errorf("workflow %s: empty state name", entity)
		}

		if _, dup := w.nodes[n.state]; dup {
			return nil, fmt.Errorf("workflow %s: state %q declared twice", entity, n.state)
		}

		if !n.terminal && len(n.successors) == 0 {
			return nil, fmt.Errorf("workflow %s: active state %q has no successors", entity, n.state)
		}

		n.successors = slices.Clone(n.successors)
		w.order = append(w.order, n.state)
		w.nodes[n.state] = n
	}

	for _, s := range w.order {
		n := w.nodes[s]

		seen := make(map[State]struct{}, len(n.successors))

		for _, next := range n.successors {
			if next == s {
				return nil, fmt.Errorf("workflow %s: state %q lists itself as a successor", entity, s)
			}

			if _, ok := w.nodes[next]; !ok {
				return nil, fmt.Errorf("workflow %s: state %q targets undeclared state %q", entity, s, next)
			}

			if _, ok := seen[next]; ok {
				return nil, fmt.Errorf("workflow %s: state %q lists %q twice", entity, s, next)
			}

			seen[next] = struct{}{}
		}
	}

	return w, nil
}

// MustNew is like New but panics on an invalid declaration. Meant for static tables.
func MustNew(entity EntityType, nodes ...Node) *Workflow {
	w, err := New(entity, nodes...)
	if err != nil {
		panic(err)
	}

	return w
}

func (w *Workflow) Entity() EntityType { return w.entity }

// States returns every declared state in declaration order.
func (w *Workflow) States() []State {
	return slices.Clone(w.order)
}

func (w *Workflow) Has(s State) bool {
	_, ok := w.nodes[s]
	return ok
}

// IsTerminal reports whether s is declared terminal. Unknown states are not terminal.
func (w *Workflow) IsTerminal(s State) bool {
	n, ok := w.nodes[s]
	return ok && n.terminal
}

// Successors returns the states directly reachable from s, in declaration order.
// It returns nil for terminal and unknown states.
func (w *Workflow) Successors(s State) []State {
	n, ok := w.nodes[s]
	if !ok || n.terminal {
		return nil
	}

	return slices.Clone(n.successors)
}

func (w *Workflow) allows(from, to State) bool {
	n, ok := w.nodes[from]
	if !ok {
		return false
	}

	return slices.Contains(n.successors, to)
}
