package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by callers that only care about the class
// of failure, not the offending state kind.
var (
	ErrTypeMismatch  = errors.New("state type mismatch")
	ErrReservedState = errors.New("reserved state id")
	ErrLegacyState   = errors.New("state id not issued by this registry")
)

// --- State Errors ---

// TypeMismatchError is returned when a read requests a type that differs from
// the type of the value previously stored for that state kind.
type TypeMismatchError struct {
	StateID   string // Name of the offending state kind.
	Index     int    // Slot index of the offending state kind.
	Stored    string // Dynamic type of the stored (or default) value.
	Requested string // Type requested by the caller.
}

func NewTypeMismatchError(stateID string, index int, stored, requested string) *TypeMismatchError {
	return &TypeMismatchError{StateID: stateID, Index: index, Stored: stored, Requested: requested}
}
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("state '%s' (slot %d) is of type %s, cannot read it as %s", e.StateID, e.Index, e.Stored, e.Requested)
}
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// ReservedStateError is returned when a built-in state kind is used as the
// target of a public write or default registration. Built-in slots are only
// writable by the internal updaters.
type ReservedStateError struct {
	StateID   string
	Index     int
	Operation string // e.g. "PutActivityState", "AddDefaultRouteState"
}

func NewReservedStateError(stateID string, index int, operation string) *ReservedStateError {
	return &ReservedStateError{StateID: stateID, Index: index, Operation: operation}
}
func (e *ReservedStateError) Error() string {
	return fmt.Sprintf("%s: state '%s' uses reserved slot %d; reserved states are written internally, create your own with CreateStateID", e.Operation, e.StateID, e.Index)
}
func (e *ReservedStateError) Is(target error) bool { return target == ErrReservedState }

// LegacyStateError is returned when a state id was not obtained from the
// registry of the manager it is used with, for example ids built with
// state.NewLegacyID which carry no slot index.
type LegacyStateError struct {
	StateID   string
	Index     int
	Operation string
}

func NewLegacyStateError(stateID string, index int, operation string) *LegacyStateError {
	return &LegacyStateError{StateID: stateID, Index: index, Operation: operation}
}
func (e *LegacyStateError) Error() string {
	return fmt.Sprintf("%s: state '%s' (slot %d) was not created by this manager; obtain ids via CreateStateID", e.Operation, e.StateID, e.Index)
}
func (e *LegacyStateError) Is(target error) bool { return target == ErrLegacyState }

// --- Setup Errors ---

// ConfigError represents an error encountered while loading or parsing the
// manager configuration or applying manager options.
type ConfigError struct {
	Message string
	Cause   error
}

func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{Message: message, Cause: cause}
}
func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}
func (e *ConfigError) Unwrap() error { return e.Cause }

// ValidationError indicates that some input (configuration values, schema
// version, call arguments) failed validation checks.
type ValidationError struct {
	Message string
	Cause   error
}

func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
func (e *ValidationError) Unwrap() error { return e.Cause }

// DispatchError wraps the first error returned by an updater during a
// lifecycle dispatch. Dispatch stops at that updater.
type DispatchError struct {
	Trigger string // Lifecycle event that started the dispatch.
	Role    string // Capability being dispatched, e.g. "ActivityVisitor".
	Cause   error
}

func NewDispatchError(trigger, role string, cause error) *DispatchError {
	return &DispatchError{Trigger: trigger, Role: role, Cause: cause}
}
func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s dispatch failed in %s: %v", e.Trigger, e.Role, e.Cause)
}
func (e *DispatchError) Unwrap() error { return e.Cause }

// IsTypeMismatch checks if an error is a TypeMismatchError using errors.As.
func IsTypeMismatch(err error) bool {
	var mm *TypeMismatchError
	return errors.As(err, &mm)
}
