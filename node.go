package hsm

import "fmt"

// StateNode holds the configuration and per-state triggers for exactly one
// state: its parent, its initial substate, its trigger table and its
// entry/exit callbacks. Nodes are created lazily by Machine.Configure and
// owned by the Machine for its whole lifetime.
//
// All configuration methods return the node for chaining. Configuration
// mistakes (duplicate SubstateOf or InitialTransition, hierarchy cycles,
// Permit to self) panic with a *ConfigurationError at the offending call.
type StateNode[S, T comparable] struct {
	state  S
	lookup func(S) *StateNode[S, T]

	parent    *StateNode[S, T]
	substates []*StateNode[S, T]

	hasInitial bool
	initial    S

	behaviours map[T][]triggerBehaviour[S, T]

	entryAction func()
	exitAction  func()

	typedEntry map[typedKey[T]]func(args []any)
	typedExit  map[typedKey[T]]func(args []any)
}

// typedKey indexes a typed entry/exit callback by trigger identity and
// argument-type signature.
type typedKey[T comparable] struct {
	trigger T
	sig     string
}

func newStateNode[S, T comparable](state S, lookup func(S) *StateNode[S, T]) *StateNode[S, T] {
	return &StateNode[S, T]{
		state:      state,
		lookup:     lookup,
		behaviours: make(map[T][]triggerBehaviour[S, T]),
	}
}

// State returns the state being configured
func (n *StateNode[S, T]) State() S {
	return n.state
}

// Permit configures a transition to the given destination state when the
// trigger is fired. The destination must differ from the configured state;
// use PermitReentry or Ignore for same-state behaviour.
func (n *StateNode[S, T]) Permit(trigger T, destination S) *StateNode[S, T] {
	return n.PermitIf(trigger, destination, nil)
}

// PermitIf configures a transition to the given destination state, taken only
// when the guard predicate passes at fire time.
func (n *StateNode[S, T]) PermitIf(trigger T, destination S, guard Guard) *StateNode[S, T] {
	if destination == n.state {
		panic(NewConfigurationError(fmt.Sprintf("%v", n.state),
			"permit destination equals the configured state; use PermitReentry or Ignore"))
	}
	n.addBehaviour(&transitionBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		destination:   destination,
	})
	return n
}

// PermitReentry configures the state to exit and re-enter itself when the
// trigger is fired. Both the exit and entry callbacks run, distinguishing a
// reentry from an ignore.
func (n *StateNode[S, T]) PermitReentry(trigger T) *StateNode[S, T] {
	return n.PermitReentryIf(trigger, nil)
}

// PermitReentryIf is PermitReentry gated by a guard predicate.
func (n *StateNode[S, T]) PermitReentryIf(trigger T, guard Guard) *StateNode[S, T] {
	n.addBehaviour(&transitionBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		destination:   n.state,
		reentry:       true,
	})
	return n
}

// PermitDynamic configures a transition whose destination is computed by
// selector at fire time. The zero-argument selector only matches triggers
// fired without arguments; see PermitDynamic1 and PermitDynamic2 for
// parameterized selectors.
func (n *StateNode[S, T]) PermitDynamic(trigger T, selector func() S) *StateNode[S, T] {
	return n.PermitDynamicIf(trigger, selector, nil)
}

// PermitDynamicIf is PermitDynamic gated by a guard predicate.
func (n *StateNode[S, T]) PermitDynamicIf(trigger T, selector func() S, guard Guard) *StateNode[S, T] {
	n.addBehaviour(&dynamicBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		selector: func([]any) S {
			return selector()
		},
	})
	return n
}

// Ignore configures the state to accept the trigger without transitioning:
// no state change, no callbacks, and no unhandled-trigger failure.
func (n *StateNode[S, T]) Ignore(trigger T) *StateNode[S, T] {
	return n.IgnoreIf(trigger, nil)
}

// IgnoreIf is Ignore gated by a guard predicate.
func (n *StateNode[S, T]) IgnoreIf(trigger T, guard Guard) *StateNode[S, T] {
	n.addBehaviour(&ignoreBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
	})
	return n
}

// InternalTransition configures the state to run action when the trigger is
// fired, without changing state and without running entry/exit callbacks.
// The zero-argument action only matches triggers fired without arguments;
// see InternalTransition1 and InternalTransition2 for parameterized actions.
func (n *StateNode[S, T]) InternalTransition(trigger T, action func()) *StateNode[S, T] {
	return n.InternalTransitionIf(trigger, nil, action)
}

// InternalTransitionIf is InternalTransition gated by a guard predicate.
func (n *StateNode[S, T]) InternalTransitionIf(trigger T, guard Guard, action func()) *StateNode[S, T] {
	n.addBehaviour(&internalBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		action: func([]any) {
			action()
		},
	})
	return n
}

// SubstateOf makes this state a substate of parent. A state's parent can be
// set at most once, and the relationship must not introduce a hierarchy
// cycle; violations panic with a *ConfigurationError.
func (n *StateNode[S, T]) SubstateOf(parent S) *StateNode[S, T] {
	if n.parent != nil {
		panic(NewConfigurationError(fmt.Sprintf("%v", n.state),
			fmt.Sprintf("parent already set to '%v'", n.parent.state)))
	}
	parentNode := n.lookup(parent)
	if parentNode.isDescendantOf(n.state) {
		panic(NewConfigurationError(fmt.Sprintf("%v", n.state),
			fmt.Sprintf("substate relationship with '%v' would create a cycle", parent)))
	}
	n.parent = parentNode
	parentNode.substates = append(parentNode.substates, n)
	return n
}

// InitialTransition declares the substate this state automatically cascades
// into upon being entered. It can be set at most once and must not target the
// state itself; the target must be configured as a direct child before any
// transition reaches this state.
func (n *StateNode[S, T]) InitialTransition(substate S) *StateNode[S, T] {
	if substate == n.state {
		panic(NewConfigurationError(fmt.Sprintf("%v", n.state),
			"initial transition target equals the state itself"))
	}
	if n.hasInitial {
		panic(NewConfigurationError(fmt.Sprintf("%v", n.state),
			fmt.Sprintf("initial transition already set to '%v'", n.initial)))
	}
	n.hasInitial = true
	n.initial = substate
	return n
}

// OnEntry sets the plain entry callback for this state. Last write wins. The
// callback is skipped for a given transition when a typed entry callback
// registered via OnEntryFrom1/OnEntryFrom2 matches the firing trigger.
func (n *StateNode[S, T]) OnEntry(callback func()) *StateNode[S, T] {
	n.entryAction = callback
	return n
}

// OnExit sets the plain exit callback for this state. Last write wins, and
// typed exit callbacks take precedence the same way as for OnEntry.
func (n *StateNode[S, T]) OnExit(callback func()) *StateNode[S, T] {
	n.exitAction = callback
	return n
}

func (n *StateNode[S, T]) addBehaviour(b triggerBehaviour[S, T]) {
	trigger := b.trigger()
	if !b.guarded() {
		for _, existing := range n.behaviours[trigger] {
			if !existing.guarded() && signatureClass(existing) == signatureClass(b) {
				panic(NewConfigurationError(fmt.Sprintf("%v", n.state),
					fmt.Sprintf("trigger '%v' already has an unconditional action for this signature", trigger)))
			}
		}
	}
	n.behaviours[trigger] = append(n.behaviours[trigger], b)
}

// signatureClass keys the competition domain of an entry: signature-bound
// entries compete per exact signature, signature-agnostic entries with each
// other.
func signatureClass[S, T comparable](b triggerBehaviour[S, T]) string {
	if sig, ok := b.argSignature(); ok {
		return sig.key()
	}
	return "any"
}

func (n *StateNode[S, T]) addTypedEntry(trigger T, sig signature, fn func(args []any)) {
	if n.typedEntry == nil {
		n.typedEntry = make(map[typedKey[T]]func(args []any))
	}
	n.typedEntry[typedKey[T]{trigger: trigger, sig: sig.key()}] = fn
}

func (n *StateNode[S, T]) addTypedExit(trigger T, sig signature, fn func(args []any)) {
	if n.typedExit == nil {
		n.typedExit = make(map[typedKey[T]]func(args []any))
	}
	n.typedExit[typedKey[T]{trigger: trigger, sig: sig.key()}] = fn
}

// isDescendantOf reports whether this state is the given state or lies below
// it in the hierarchy.
func (n *StateNode[S, T]) isDescendantOf(state S) bool {
	if n.state == state {
		return true
	}
	if n.parent != nil {
		return n.parent.isDescendantOf(state)
	}
	return false
}

// resolve finds the applicable trigger entry on this state, deferring to
// ancestors when the state declares nothing applicable. Guarded entries are
// checked in registration order; an unconditional entry is the fallback,
// checked after every guarded one.
func (n *StateNode[S, T]) resolve(trigger T, sig signature) triggerBehaviour[S, T] {
	if b := n.resolveLocal(trigger, sig); b != nil {
		return b
	}
	if n.parent != nil {
		return n.parent.resolve(trigger, sig)
	}
	return nil
}

func (n *StateNode[S, T]) resolveLocal(trigger T, sig signature) triggerBehaviour[S, T] {
	var fallback triggerBehaviour[S, T]
	for _, b := range n.behaviours[trigger] {
		if !b.matches(sig) {
			continue
		}
		if !b.guarded() {
			if fallback == nil {
				fallback = b
			}
			continue
		}
		if b.guardMet() {
			return b
		}
	}
	return fallback
}

// runEntry fires the entry callback for this state, preferring a typed
// callback registered for the firing trigger's argument signature. At most
// one callback runs.
func (n *StateNode[S, T]) runEntry(trigger T, sig signature, args []any) {
	if fn, ok := n.typedEntry[typedKey[T]{trigger: trigger, sig: sig.key()}]; ok {
		fn(args)
		return
	}
	if n.entryAction != nil {
		n.entryAction()
	}
}

// runExit fires the exit callback for this state with the same typed-vs-plain
// selection as runEntry.
func (n *StateNode[S, T]) runExit(trigger T, sig signature, args []any) {
	if fn, ok := n.typedExit[typedKey[T]{trigger: trigger, sig: sig.key()}]; ok {
		fn(args)
		return
	}
	if n.exitAction != nil {
		n.exitAction()
	}
}
