package hsm

import "fmt"

// Observer represents an entity that observes machine lifecycle. Observers
// are diagnostics only: they run after the machine's own callbacks and never
// affect the outcome of a transition.
type Observer[S, T comparable] interface {
	// OnTransition is called after every completed transition, including
	// initial-substate cascade steps (Transition.IsInitial reports which).
	OnTransition(t Transition[S, T])

	// OnStateEnter is called for every state entered during the enter walk
	OnStateEnter(state S)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver[S, T comparable] interface {
	Observer[S, T]

	// OnStateExit is called for every state exited during the exit walk
	OnStateExit(state S)

	// OnInternalTransition is called when an internal transition runs its
	// action without changing state
	OnInternalTransition(state S, trigger T)

	// OnUnhandledTrigger is called when a fired trigger resolves to nothing,
	// whether or not the machine's OnUnhandledTrigger hook is installed
	OnUnhandledTrigger(state S, trigger T)

	// OnError is called when an observer notification panics
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver[S, T comparable] struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver[S, T]) OnTransition(t Transition[S, T]) {}

// OnStateEnter implements the required Observer method
func (o *BaseObserver[S, T]) OnStateEnter(state S) {}

// OnStateExit implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnStateExit(state S) {}

// OnInternalTransition implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnInternalTransition(state S, trigger T) {}

// OnUnhandledTrigger implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnUnhandledTrigger(state S, trigger T) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver[S, T]) OnError(err error) {}

// observerManager fans notifications out to registered observers. Each
// notification is panic-isolated so a misbehaving observer cannot abort a
// transition in progress.
type observerManager[S, T comparable] struct {
	observers []Observer[S, T]
}

func newObserverManager[S, T comparable]() *observerManager[S, T] {
	return &observerManager[S, T]{}
}

func (om *observerManager[S, T]) add(observer Observer[S, T]) {
	om.observers = append(om.observers, observer)
}

func (om *observerManager[S, T]) remove(observer Observer[S, T]) {
	for i, o := range om.observers {
		if o == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// dispatch runs one notification against one observer, reporting a panic to
// the observer's own OnError when it has one.
func dispatch[S, T comparable](observer Observer[S, T], site string, notify func()) {
	defer func() {
		if r := recover(); r != nil {
			extended, ok := observer.(ExtendedObserver[S, T])
			if !ok {
				return
			}
			func() {
				defer func() { _ = recover() }()
				extended.OnError(fmt.Errorf("observer panic in %s: %v", site, r))
			}()
		}
	}()
	notify()
}

func (om *observerManager[S, T]) snapshot() []Observer[S, T] {
	observers := make([]Observer[S, T], len(om.observers))
	copy(observers, om.observers)
	return observers
}

func (om *observerManager[S, T]) notifyTransition(t Transition[S, T]) {
	for _, observer := range om.snapshot() {
		observer := observer
		dispatch(observer, "OnTransition", func() { observer.OnTransition(t) })
	}
}

func (om *observerManager[S, T]) notifyStateEnter(state S) {
	for _, observer := range om.snapshot() {
		observer := observer
		dispatch(observer, "OnStateEnter", func() { observer.OnStateEnter(state) })
	}
}

func (om *observerManager[S, T]) notifyStateExit(state S) {
	for _, observer := range om.snapshot() {
		if extended, ok := observer.(ExtendedObserver[S, T]); ok {
			extended := extended
			dispatch[S, T](extended, "OnStateExit", func() { extended.OnStateExit(state) })
		}
	}
}

func (om *observerManager[S, T]) notifyInternalTransition(state S, trigger T) {
	for _, observer := range om.snapshot() {
		if extended, ok := observer.(ExtendedObserver[S, T]); ok {
			extended := extended
			dispatch[S, T](extended, "OnInternalTransition", func() { extended.OnInternalTransition(state, trigger) })
		}
	}
}

func (om *observerManager[S, T]) notifyUnhandledTrigger(state S, trigger T) {
	for _, observer := range om.snapshot() {
		if extended, ok := observer.(ExtendedObserver[S, T]); ok {
			extended := extended
			dispatch[S, T](extended, "OnUnhandledTrigger", func() { extended.OnUnhandledTrigger(state, trigger) })
		}
	}
}
