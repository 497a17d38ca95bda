package build

import (
	"errors"
	"fmt"
)

// ErrStatePrecondition is matched by every StateError.
var ErrStatePrecondition = errors.New("state precondition not met")

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// StateError is returned when an operation is invoked before the compiler has
// reached the state it requires, or after the compiler has moved past the
// states in which it is allowed.  It never changes the state of the compiler.
type StateError struct {
	Op string

	// Required is the state the operation needs.
	Required State

	// Actual is the state the compiler was in.
	Actual State
}

func (se *StateError) Error() string {
	if se.Actual > se.Required {
		return fmt.Sprintf("%s is only allowed up to state %s but the compiler is in state %s", se.Op, se.Required, se.Actual)
	}

	return fmt.Sprintf("%s requires state %s but the compiler is in state %s", se.Op, se.Required, se.Actual)
}

// Is makes StateErrors match ErrStatePrecondition.
func (se *StateError) Is(target error) bool {
	return target == ErrStatePrecondition
}

// NotFoundError is returned by queries for unknown source units or contracts.
type NotFoundError struct {
	// Kind is `source` or `contract`.
	Kind string
	Name string

	// Ambiguous is set when a bare contract name matches several contracts.
	Ambiguous bool
}

func (nfe *NotFoundError) Error() string {
	if nfe.Ambiguous {
		return fmt.Sprintf("%s name `%s` is ambiguous", nfe.Kind, nfe.Name)
	}

	return fmt.Sprintf("%s `%s` not found", nfe.Kind, nfe.Name)
}

// Is makes NotFoundErrors match ErrNotFound.
func (nfe *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SettingsError is returned when settings fail validation.
type SettingsError struct {
	Err error
}

func (se *SettingsError) Error() string {
	return "invalid settings: " + se.Err.Error()
}

func (se *SettingsError) Unwrap() error {
	return se.Err
}
