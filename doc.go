// Package hsm provides a generic, embeddable hierarchical state machine
// engine for Go. States are organized in a parent/child hierarchy, triggers
// resolve against the active state and its ancestors, and transitions run
// exit and entry callbacks along the minimal path between source and
// destination.
//
// A machine is configured programmatically through a fluent per-state API:
//
//	m := hsm.NewMachine[State, Trigger](Idle)
//	m.Configure(Idle).
//	    Permit(Start, Running).
//	    OnEntry(func() { fmt.Println("idle") })
//	m.Configure(Running).
//	    SubstateOf(Powered).
//	    PermitIf(Stop, Idle, func() bool { return allowStop })
//
// Firing a trigger either completes a transition in full (exit walk, state
// update, entry walk including any initial-substate cascade) or leaves the
// machine untouched:
//
//	err := m.Fire(Start)
//
// Triggers may carry typed parameter payloads. Helpers such as
// PermitDynamic1, InternalTransition2 and OnEntryFrom1 register callbacks
// keyed by the exact argument-type signature of the fired trigger; a trigger
// fired with (int, string) arguments only matches registrations declared for
// exactly (int, string).
//
// The engine is single-threaded and synchronous: callbacks run inline inside
// Fire, and a callback must not fire the same machine again. Hosts that share
// a machine across goroutines must serialize access externally.
package hsm
