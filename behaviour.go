package hsm

// Guard is a zero-argument predicate gating whether a trigger action applies.
// A nil Guard is unconditional.
type Guard func() bool

// triggerBehaviour is one entry in a state's trigger table. Entries for the
// same trigger are kept in registration order; resolution takes the first
// guarded entry whose signature matches the fired arguments and whose guard
// passes, falling back to the matching unconditional entry last.
type triggerBehaviour[S, T comparable] interface {
	trigger() T
	guardMet() bool
	guarded() bool

	// matches reports whether the entry applies to the given fired
	// argument-type signature. Fixed transitions, reentries and ignores are
	// signature-agnostic; dynamic and internal entries require an exact match.
	matches(sig signature) bool

	// argSignature returns the registered signature for signature-bound
	// entries, with ok=false for signature-agnostic ones.
	argSignature() (signature, bool)
}

type behaviourBase[T comparable] struct {
	tr T
	gd Guard
}

func (b *behaviourBase[T]) trigger() T {
	return b.tr
}

func (b *behaviourBase[T]) guardMet() bool {
	return b.gd == nil || b.gd()
}

func (b *behaviourBase[T]) guarded() bool {
	return b.gd != nil
}

func (b *behaviourBase[T]) matches(signature) bool {
	return true
}

func (b *behaviourBase[T]) argSignature() (signature, bool) {
	return nil, false
}

// transitionBehaviour moves the machine to a fixed destination state. When
// reentry is set the destination equals the owning state and the transition
// forces a full exit and re-entry of it.
type transitionBehaviour[S, T comparable] struct {
	behaviourBase[T]

	destination S
	reentry     bool
}

// ignoreBehaviour marks the trigger as handled with no transition, no
// callbacks and no state change.
type ignoreBehaviour[S, T comparable] struct {
	behaviourBase[T]
}

// internalBehaviour runs an action without leaving the state; entry and exit
// callbacks never fire. The action's argument-type signature is part of the
// lookup key.
type internalBehaviour[S, T comparable] struct {
	behaviourBase[T]

	sig    signature
	action func(args []any)
}

func (b *internalBehaviour[S, T]) matches(sig signature) bool {
	return b.sig.matches(sig)
}

func (b *internalBehaviour[S, T]) argSignature() (signature, bool) {
	return b.sig, true
}

// dynamicBehaviour computes the destination state from the fired arguments.
// The selector's argument-type signature is part of the lookup key.
type dynamicBehaviour[S, T comparable] struct {
	behaviourBase[T]

	sig      signature
	selector func(args []any) S
}

func (b *dynamicBehaviour[S, T]) matches(sig signature) bool {
	return b.sig.matches(sig)
}

func (b *dynamicBehaviour[S, T]) argSignature() (signature, bool) {
	return b.sig, true
}
