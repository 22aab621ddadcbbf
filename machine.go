package hsm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Machine is a hierarchical state machine generic over the host's state and
// trigger identity types. It owns every configured StateNode, holds the
// single current-state value, and implements Fire: resolve the trigger
// against the active state and its ancestors, check guards, walk exits up to
// the common ancestor, update state, then walk entries down into the
// destination including any initial-substate cascade.
//
// Fire runs to completion synchronously; callbacks execute inline inside the
// walks and must not fire the same machine again. The internal mutex
// serializes Fire calls but does not make callback-triggered reentrancy safe.
type Machine[S, T comparable] struct {
	id      string
	current S
	states  map[S]*StateNode[S, T]

	onUnhandled    func(state S, trigger T)
	onTransitioned func(source, destination S, trigger T)
	observers      *observerManager[S, T]

	mutex sync.Mutex
}

// NewMachine creates a machine starting in the given state. The initial state
// need not be configured yet, but must be by the time a trigger is fired.
func NewMachine[S, T comparable](initial S) *Machine[S, T] {
	return &Machine[S, T]{
		id:        uuid.New().String(),
		current:   initial,
		states:    make(map[S]*StateNode[S, T]),
		observers: newObserverManager[S, T](),
	}
}

// ID returns the machine's unique instance identifier
func (m *Machine[S, T]) ID() string {
	return m.id
}

// State returns the current state
func (m *Machine[S, T]) State() S {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.current
}

// Configure returns the StateNode for the given state, creating it on first
// reference. Repeated calls with the same identity return the same node.
func (m *Machine[S, T]) Configure(state S) *StateNode[S, T] {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.node(state)
}

// node gets or lazily creates the StateNode for a state. It is called under
// the mutex or from the single-threaded configuration phase, where nodes
// reach it as their lookup function.
func (m *Machine[S, T]) node(state S) *StateNode[S, T] {
	if n, ok := m.states[state]; ok {
		return n
	}
	n := newStateNode(state, m.node)
	m.states[state] = n
	return n
}

// Fire fires a trigger, optionally carrying typed arguments. The argument
// types form the signature used to match dynamic transitions, internal
// transitions and typed entry/exit callbacks; plain transitions match any
// signature.
//
// Fire either completes the transition in full or leaves the current state
// untouched: guard failures, ignores, internal transitions and unhandled
// triggers never mutate state.
func (m *Machine[S, T]) Fire(trigger T, args ...any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.fire(trigger, args)
}

func (m *Machine[S, T]) fire(trigger T, args []any) error {
	source, ok := m.states[m.current]
	if !ok {
		return NewUnknownStateError(fmt.Sprintf("%v", m.current))
	}

	sig := signatureOfArgs(args)
	behaviour := source.resolve(trigger, sig)
	if behaviour == nil {
		m.observers.notifyUnhandledTrigger(m.current, trigger)
		if m.onUnhandled != nil {
			m.onUnhandled(m.current, trigger)
			return nil
		}
		return NewUnhandledTriggerError(fmt.Sprintf("%v", m.current), fmt.Sprintf("%v", trigger))
	}

	var destination S
	switch b := behaviour.(type) {
	case *ignoreBehaviour[S, T]:
		return nil
	case *internalBehaviour[S, T]:
		b.action(args)
		m.observers.notifyInternalTransition(m.current, trigger)
		return nil
	case *transitionBehaviour[S, T]:
		destination = b.destination
	case *dynamicBehaviour[S, T]:
		destination = b.selector(args)
	default:
		return NewConfigurationError(fmt.Sprintf("%v", m.current),
			fmt.Sprintf("unknown trigger behaviour type %T", behaviour))
	}

	target, ok := m.states[destination]
	if !ok {
		return NewUnknownStateError(fmt.Sprintf("%v", destination))
	}

	from := m.current
	top := m.exitWalk(source, target, from == destination, trigger, sig, args)

	m.current = destination
	if m.onTransitioned != nil {
		m.onTransitioned(from, destination, trigger)
	}
	m.observers.notifyTransition(NewTransition(from, destination, trigger, args...))

	return m.enterWalk(top, target, false, trigger, sig, args)
}

// exitWalk fires exit callbacks from src up to (but not including) the lowest
// common ancestor of src and dst, in child-to-parent order, and returns the
// node at which the enter walk should resume descending.
func (m *Machine[S, T]) exitWalk(src, dst *StateNode[S, T], reentry bool, trigger T, sig signature, args []any) *StateNode[S, T] {
	// Destination inside the current state: nothing is being left.
	if !reentry && dst.isDescendantOf(src.state) {
		return src
	}

	src.runExit(trigger, sig, args)
	m.observers.notifyStateExit(src.state)

	if src.parent == nil {
		return src
	}
	if dst.isDescendantOf(src.parent.state) {
		// The parent is the common ancestor; stop without exiting it.
		return src.parent
	}
	return m.exitWalk(src.parent, dst, false, trigger, sig, args)
}

// enterWalk fires entry callbacks from just below src down to dst in
// parent-to-child order, then cascades through dst's initial-substate chain,
// mutating the current state at each cascade step.
func (m *Machine[S, T]) enterWalk(src, dst *StateNode[S, T], initial bool, trigger T, sig signature, args []any) error {
	if !initial && dst.parent != nil && !src.isDescendantOf(dst.parent.state) {
		if err := m.enterWalk(src, dst.parent, false, trigger, sig, args); err != nil {
			return err
		}
	}

	dst.runEntry(trigger, sig, args)
	m.observers.notifyStateEnter(dst.state)

	if !dst.hasInitial {
		return nil
	}
	next, ok := m.states[dst.initial]
	if !ok {
		return NewUnknownStateError(fmt.Sprintf("%v", dst.initial))
	}
	if next.parent != dst {
		return NewInitialSubstateError(fmt.Sprintf("%v", dst.state), fmt.Sprintf("%v", dst.initial))
	}

	from := m.current
	m.current = dst.initial
	m.observers.notifyTransition(newInitialTransition(from, dst.initial, trigger, args))
	return m.enterWalk(dst, next, true, trigger, sig, args)
}

// CanFire reports whether firing the trigger without arguments from the
// current state would resolve to an action. Nothing is executed.
func (m *Machine[S, T]) CanFire(trigger T) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	source, ok := m.states[m.current]
	if !ok {
		return false
	}
	return source.resolve(trigger, nil) != nil
}

// IsInState reports whether the machine is in the given state or any of its
// substates: being in a substate implies being in all of its ancestors.
func (m *Machine[S, T]) IsInState(state S) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.current == state {
		return true
	}
	n, ok := m.states[m.current]
	if !ok {
		return false
	}
	return n.isDescendantOf(state)
}

// OnUnhandledTrigger installs the callback invoked when a fired trigger
// resolves to nothing. With the hook installed Fire reports no error and the
// state is unchanged; without it an unhandled trigger is an
// *UnhandledTriggerError.
func (m *Machine[S, T]) OnUnhandledTrigger(callback func(state S, trigger T)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.onUnhandled = callback
}

// OnTransitioned installs the callback invoked after the state update of
// every completed transition, before the destination's entry callbacks run.
func (m *Machine[S, T]) OnTransitioned(callback func(source, destination S, trigger T)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.onTransitioned = callback
}

// AddObserver registers an observer for machine diagnostics
func (m *Machine[S, T]) AddObserver(observer Observer[S, T]) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.observers.add(observer)
}

// RemoveObserver unregisters a previously added observer
func (m *Machine[S, T]) RemoveObserver(observer Observer[S, T]) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.observers.remove(observer)
}

// MarshalJSON serializes the machine's identity and current state. The
// configuration itself is never persisted.
func (m *Machine[S, T]) MarshalJSON() ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return json.Marshal(machineSnapshot[S]{
		ID:    m.id,
		State: m.current,
	})
}

// UnmarshalJSON restores a snapshot produced by MarshalJSON into a machine
// whose configuration already contains the snapshot state.
func (m *Machine[S, T]) UnmarshalJSON(data []byte) error {
	var snapshot machineSnapshot[S]
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.states[snapshot.State]; !ok {
		return NewUnknownStateError(fmt.Sprintf("%v", snapshot.State))
	}
	if snapshot.ID != "" {
		m.id = snapshot.ID
	}
	m.current = snapshot.State
	return nil
}

type machineSnapshot[S comparable] struct {
	ID    string `json:"id"`
	State S      `json:"state"`
}

// String returns a short description of the machine
func (m *Machine[S, T]) String() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return fmt.Sprintf("Machine[%s]{state=%v}", m.id, m.current)
}
