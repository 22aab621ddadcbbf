package hsm

// Transition describes a completed or in-progress state transition. It is
// passed to observers; the OnTransitioned hook receives the source,
// destination and trigger directly.
type Transition[S, T comparable] struct {
	// Source is the state the transition left
	Source S

	// Destination is the state the transition entered
	Destination S

	// Trigger is the trigger that caused the transition
	Trigger T

	// Args are the parameters the trigger was fired with, if any
	Args []any

	initial bool
}

// NewTransition creates a new transition record
func NewTransition[S, T comparable](source, destination S, trigger T, args ...any) Transition[S, T] {
	return Transition[S, T]{
		Source:      source,
		Destination: destination,
		Trigger:     trigger,
		Args:        args,
	}
}

// newInitialTransition creates a transition record for an initial-substate
// cascade step.
func newInitialTransition[S, T comparable](source, destination S, trigger T, args []any) Transition[S, T] {
	return Transition[S, T]{
		Source:      source,
		Destination: destination,
		Trigger:     trigger,
		Args:        args,
		initial:     true,
	}
}

// IsReentry reports whether the transition leaves and re-enters the same state
func (t Transition[S, T]) IsReentry() bool {
	return t.Source == t.Destination
}

// IsInitial reports whether the transition is an initial-substate cascade
// step rather than a direct result of the fired trigger
func (t Transition[S, T]) IsInitial() bool {
	return t.initial
}
