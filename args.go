package hsm

import (
	"fmt"
	"reflect"
	"strings"
)

// signature is the ordered list of argument types a trigger was registered
// for or fired with. Matching is exact type identity: a trigger fired with
// (int, string) arguments only matches entries registered for exactly
// (int, string), and a zero-argument fire only matches zero-argument entries.
type signature []reflect.Type

// signatureOfArgs derives the signature from the dynamic types of fired
// arguments. A nil argument yields a nil type and therefore matches no typed
// registration.
func signatureOfArgs(args []any) signature {
	if len(args) == 0 {
		return nil
	}
	sig := make(signature, len(args))
	for i, arg := range args {
		sig[i] = reflect.TypeOf(arg)
	}
	return sig
}

func typeFor[A any]() reflect.Type {
	return reflect.TypeOf((*A)(nil)).Elem()
}

func sig1[A any]() signature {
	return signature{typeFor[A]()}
}

func sig2[A, B any]() signature {
	return signature{typeFor[A](), typeFor[B]()}
}

// matches reports exact signature equality. reflect.Type values are
// canonical, so identity comparison is sufficient.
func (s signature) matches(other signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i, t := range s {
		if t != other[i] {
			return false
		}
	}
	return true
}

// key returns a map key for the signature, used to index typed callbacks.
func (s signature) key() string {
	if len(s) == 0 {
		return "()"
	}
	parts := make([]string, len(s))
	for i, t := range s {
		if t == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = fmt.Sprintf("%v", t)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s signature) String() string {
	return s.key()
}

// PermitDynamic1 configures the state to transition to a destination computed
// by selector from the trigger's single argument of type A. The entry only
// matches triggers fired with exactly one argument of type A.
func PermitDynamic1[S, T comparable, A any](n *StateNode[S, T], trigger T, selector func(A) S) *StateNode[S, T] {
	return PermitDynamicIf1(n, trigger, selector, nil)
}

// PermitDynamicIf1 is PermitDynamic1 gated by a guard predicate.
func PermitDynamicIf1[S, T comparable, A any](n *StateNode[S, T], trigger T, selector func(A) S, guard Guard) *StateNode[S, T] {
	n.addBehaviour(&dynamicBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		sig:           sig1[A](),
		selector: func(args []any) S {
			return selector(args[0].(A))
		},
	})
	return n
}

// PermitDynamic2 configures the state to transition to a destination computed
// by selector from the trigger's two arguments of types A and B.
func PermitDynamic2[S, T comparable, A, B any](n *StateNode[S, T], trigger T, selector func(A, B) S) *StateNode[S, T] {
	return PermitDynamicIf2(n, trigger, selector, nil)
}

// PermitDynamicIf2 is PermitDynamic2 gated by a guard predicate.
func PermitDynamicIf2[S, T comparable, A, B any](n *StateNode[S, T], trigger T, selector func(A, B) S, guard Guard) *StateNode[S, T] {
	n.addBehaviour(&dynamicBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		sig:           sig2[A, B](),
		selector: func(args []any) S {
			return selector(args[0].(A), args[1].(B))
		},
	})
	return n
}

// InternalTransition1 configures an internal transition whose action receives
// the trigger's single argument of type A. The state is not exited or
// re-entered and entry/exit callbacks do not run.
func InternalTransition1[S, T comparable, A any](n *StateNode[S, T], trigger T, action func(A)) *StateNode[S, T] {
	return InternalTransitionIf1(n, trigger, nil, action)
}

// InternalTransitionIf1 is InternalTransition1 gated by a guard predicate.
func InternalTransitionIf1[S, T comparable, A any](n *StateNode[S, T], trigger T, guard Guard, action func(A)) *StateNode[S, T] {
	n.addBehaviour(&internalBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		sig:           sig1[A](),
		action: func(args []any) {
			action(args[0].(A))
		},
	})
	return n
}

// InternalTransition2 configures an internal transition whose action receives
// the trigger's two arguments of types A and B.
func InternalTransition2[S, T comparable, A, B any](n *StateNode[S, T], trigger T, action func(A, B)) *StateNode[S, T] {
	return InternalTransitionIf2(n, trigger, nil, action)
}

// InternalTransitionIf2 is InternalTransition2 gated by a guard predicate.
func InternalTransitionIf2[S, T comparable, A, B any](n *StateNode[S, T], trigger T, guard Guard, action func(A, B)) *StateNode[S, T] {
	n.addBehaviour(&internalBehaviour[S, T]{
		behaviourBase: behaviourBase[T]{tr: trigger, gd: guard},
		sig:           sig2[A, B](),
		action: func(args []any) {
			action(args[0].(A), args[1].(B))
		},
	})
	return n
}

// OnEntryFrom1 registers an entry callback invoked instead of the plain
// OnEntry callback when the state is entered via trigger fired with exactly
// one argument of type A. Only one entry callback runs per state per
// transition.
func OnEntryFrom1[S, T comparable, A any](n *StateNode[S, T], trigger T, callback func(A)) *StateNode[S, T] {
	n.addTypedEntry(trigger, sig1[A](), func(args []any) {
		callback(args[0].(A))
	})
	return n
}

// OnEntryFrom2 registers an entry callback for trigger fired with exactly two
// arguments of types A and B.
func OnEntryFrom2[S, T comparable, A, B any](n *StateNode[S, T], trigger T, callback func(A, B)) *StateNode[S, T] {
	n.addTypedEntry(trigger, sig2[A, B](), func(args []any) {
		callback(args[0].(A), args[1].(B))
	})
	return n
}

// OnExitFrom1 registers an exit callback invoked instead of the plain OnExit
// callback when the state is exited via trigger fired with exactly one
// argument of type A.
func OnExitFrom1[S, T comparable, A any](n *StateNode[S, T], trigger T, callback func(A)) *StateNode[S, T] {
	n.addTypedExit(trigger, sig1[A](), func(args []any) {
		callback(args[0].(A))
	})
	return n
}

// OnExitFrom2 registers an exit callback for trigger fired with exactly two
// arguments of types A and B.
func OnExitFrom2[S, T comparable, A, B any](n *StateNode[S, T], trigger T, callback func(A, B)) *StateNode[S, T] {
	n.addTypedExit(trigger, sig2[A, B](), func(args []any) {
		callback(args[0].(A), args[1].(B))
	})
	return n
}
