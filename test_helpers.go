package hsm

import (
	"strings"
	"testing"
)

// SequenceRecorder builds the conventional transition trace string: each
// entry callback appends ">" plus the state name, each exit callback appends
// "<" plus the state name, in call order. Wire its Enter/Exit closures into
// OnEntry/OnExit when asserting callback ordering.
type SequenceRecorder struct {
	sb strings.Builder
}

// NewSequenceRecorder creates an empty recorder
func NewSequenceRecorder() *SequenceRecorder {
	return &SequenceRecorder{}
}

// Enter returns an entry callback recording ">name"
func (r *SequenceRecorder) Enter(name string) func() {
	return func() {
		r.sb.WriteString(">")
		r.sb.WriteString(name)
	}
}

// Exit returns an exit callback recording "<name"
func (r *SequenceRecorder) Exit(name string) func() {
	return func() {
		r.sb.WriteString("<")
		r.sb.WriteString(name)
	}
}

// String returns the recorded sequence so far
func (r *SequenceRecorder) String() string {
	return r.sb.String()
}

// Reset clears the recorded sequence
func (r *SequenceRecorder) Reset() {
	r.sb.Reset()
}

// TestObserver captures every observer notification for inspection in tests
type TestObserver[S, T comparable] struct {
	Transitions []Transition[S, T]
	Enters      []S
	Exits       []S
	Internals   []TriggerAt[S, T]
	Unhandled   []TriggerAt[S, T]
	Errors      []error
}

// TriggerAt records a (state, trigger) notification pair
type TriggerAt[S, T comparable] struct {
	State   S
	Trigger T
}

// NewTestObserver creates an empty capturing observer
func NewTestObserver[S, T comparable]() *TestObserver[S, T] {
	return &TestObserver[S, T]{}
}

// OnTransition implements Observer
func (o *TestObserver[S, T]) OnTransition(t Transition[S, T]) {
	o.Transitions = append(o.Transitions, t)
}

// OnStateEnter implements Observer
func (o *TestObserver[S, T]) OnStateEnter(state S) {
	o.Enters = append(o.Enters, state)
}

// OnStateExit implements ExtendedObserver
func (o *TestObserver[S, T]) OnStateExit(state S) {
	o.Exits = append(o.Exits, state)
}

// OnInternalTransition implements ExtendedObserver
func (o *TestObserver[S, T]) OnInternalTransition(state S, trigger T) {
	o.Internals = append(o.Internals, TriggerAt[S, T]{State: state, Trigger: trigger})
}

// OnUnhandledTrigger implements ExtendedObserver
func (o *TestObserver[S, T]) OnUnhandledTrigger(state S, trigger T) {
	o.Unhandled = append(o.Unhandled, TriggerAt[S, T]{State: state, Trigger: trigger})
}

// OnError implements ExtendedObserver
func (o *TestObserver[S, T]) OnError(err error) {
	o.Errors = append(o.Errors, err)
}

// AssertState fails the test when the machine is not in the expected state
func AssertState[S, T comparable](t *testing.T, m *Machine[S, T], want S) {
	t.Helper()
	if got := m.State(); got != want {
		t.Errorf("expected state %v, got %v", want, got)
	}
}

// AssertSequence fails the test when the recorded callback sequence differs
// from the expected trace
func AssertSequence(t *testing.T, r *SequenceRecorder, want string) {
	t.Helper()
	if got := r.String(); got != want {
		t.Errorf("expected sequence %q, got %q", want, got)
	}
}

// AssertFireError fails the test when err does not satisfy the given
// predicate (IsUnhandledTriggerError and friends)
func AssertFireError(t *testing.T, err error, predicate func(error) bool, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	if !predicate(err) {
		t.Errorf("expected %s, got %T: %v", kind, err, err)
	}
}
