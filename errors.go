package hsm

import "fmt"

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Machine configuration is invalid
	ErrCodeInvalidConfiguration
	// A state identity was never configured
	ErrCodeUnknownState
	// A fired trigger had no matching action anywhere up the ancestor chain
	ErrCodeUnhandledTrigger
	// A declared initial substate is not a child of the declaring state
	ErrCodeInitialSubstate
)

// ConfigurationError represents a mistake in machine setup: a duplicate
// SubstateOf or InitialTransition call, a hierarchy cycle, or a Permit-family
// call whose destination equals the configured state. Configuration errors
// are raised as panics at the offending call, not deferred to Fire time.
type ConfigurationError struct {
	State string
	Issue string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in state '%s': %s", e.State, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(state, issue string) *ConfigurationError {
	return &ConfigurationError{
		State: state,
		Issue: issue,
	}
}

// UnknownStateError represents a transition or hierarchy lookup that
// references a state identity never passed to Configure
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("state '%s' is not configured", e.State)
}

// NewUnknownStateError creates a new unknown state error
func NewUnknownStateError(state string) *UnknownStateError {
	return &UnknownStateError{State: state}
}

// UnhandledTriggerError represents a trigger fired with no matching action on
// the current state or any of its ancestors, and no OnUnhandledTrigger hook
// installed on the machine
type UnhandledTriggerError struct {
	State   string
	Trigger string
}

func (e *UnhandledTriggerError) Error() string {
	return fmt.Sprintf("trigger '%s' is not handled in state '%s'", e.Trigger, e.State)
}

// NewUnhandledTriggerError creates a new unhandled trigger error
func NewUnhandledTriggerError(state, trigger string) *UnhandledTriggerError {
	return &UnhandledTriggerError{
		State:   state,
		Trigger: trigger,
	}
}

// InitialSubstateError represents an initial-substate invariant violation:
// the enter walk reached a state whose declared initial substate is not
// configured as a direct child of that state
type InitialSubstateError struct {
	State    string
	Substate string
}

func (e *InitialSubstateError) Error() string {
	return fmt.Sprintf("initial substate '%s' is not a child of state '%s'", e.Substate, e.State)
}

// NewInitialSubstateError creates a new initial substate error
func NewInitialSubstateError(state, substate string) *InitialSubstateError {
	return &InitialSubstateError{
		State:    state,
		Substate: substate,
	}
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// IsUnknownStateError checks if an error is an UnknownStateError
func IsUnknownStateError(err error) bool {
	_, ok := err.(*UnknownStateError)
	return ok
}

// IsUnhandledTriggerError checks if an error is an UnhandledTriggerError
func IsUnhandledTriggerError(err error) bool {
	_, ok := err.(*UnhandledTriggerError)
	return ok
}

// IsInitialSubstateError checks if an error is an InitialSubstateError
func IsInitialSubstateError(err error) bool {
	_, ok := err.(*InitialSubstateError)
	return ok
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	switch err.(type) {
	case *ConfigurationError:
		return ErrCodeInvalidConfiguration
	case *UnknownStateError:
		return ErrCodeUnknownState
	case *UnhandledTriggerError:
		return ErrCodeUnhandledTrigger
	case *InitialSubstateError:
		return ErrCodeInitialSubstate
	default:
		return ErrCodeNone
	}
}
