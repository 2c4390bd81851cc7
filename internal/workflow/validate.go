package workflow

import "fmt"

// Reason classifies why a transition was rejected.
type Reason string

const (
	ReasonUnknownState  Reason = "unknown_state"
	ReasonTerminalState Reason = "terminal_state"
	ReasonNotAllowed    Reason = "not_allowed"
)

// TransitionError reports a rejected status change. Its message is stable: callers
// and clients match on "Cannot transition from '<from>' to '<to>'".
type TransitionError struct {
	Entity EntityType
	From   State
	To     State
	Reason Reason
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot transition from '%s' to '%s'", e.From, e.To)
}

// Result is the outcome of Validate.
type Result struct {
	Valid bool
	Err   *TransitionError
}

// Validate decides whether current may move to requested in w. Re-submitting the
// current state is always valid, including for terminal and unknown states.
func Validate(w *Workflow, current, requested State) Result {
	if current == requested {
		return Result{Valid: true}
	}

	if w.allows(current, requested) {
		return Result{Valid: true}
	}

	reason := ReasonNotAllowed

	switch {
	case !w.Has(current):
		reason = ReasonUnknownState
	case w.IsTerminal(current):
		reason = ReasonTerminalState
	}

	return Result{
		Err: &TransitionError{
			Entity: w.entity,
			From:   current,
			To:     requested,
			Reason: reason,
		},
	}
}

// Check is Validate in error form: nil when the transition is allowed.
func (w *Workflow) Check(current, requested State) error {
	if r := Validate(w, current, requested); !r.Valid {
		return r.Err
	}

	return nil
}
