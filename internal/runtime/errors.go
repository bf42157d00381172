package runtime

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error raised at call time by a generated
// function.
//
// Runtime errors include:
//   - Unhashable: hash called without unsafe_hash resolved true
//   - Unorderable: ordering operator called with order resolved false
//   - Cross-class compare: ordering across different runtime classes
//   - Argument errors: bad positional/keyword arguments to the initializer
//
// Definition-time conflicts never reach this type; they surface as
// resolver.ConfigError before any generated function exists.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Class is the qualified name of the class involved.
	Class string

	// Attribute names the offending attribute or parameter, if any.
	Attribute string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnhashable indicates hash was called on an unhashable class.
	ErrCodeUnhashable RuntimeErrorCode = "UNHASHABLE"

	// ErrCodeUnorderable indicates an ordering operator on an unordered class.
	ErrCodeUnorderable RuntimeErrorCode = "UNORDERABLE"

	// ErrCodeCrossClass indicates an ordering comparison across classes.
	ErrCodeCrossClass RuntimeErrorCode = "CROSS_CLASS_COMPARE"

	// ErrCodeMissingArgument indicates a required initializer argument
	// was not supplied.
	ErrCodeMissingArgument RuntimeErrorCode = "MISSING_ARGUMENT"

	// ErrCodeUnexpectedArgument indicates an unknown or duplicated
	// keyword argument.
	ErrCodeUnexpectedArgument RuntimeErrorCode = "UNEXPECTED_ARGUMENT"

	// ErrCodeTooManyArguments indicates surplus positional arguments.
	ErrCodeTooManyArguments RuntimeErrorCode = "TOO_MANY_ARGUMENTS"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("%s: %s (class=%s)", e.Code, e.Message, e.Class)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnhashable returns true if the error is an unhashable-type error.
// Uses errors.As to handle wrapped errors.
func IsUnhashable(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnhashable
	}
	return false
}

// IsUnorderable returns true for unorderable or cross-class compare errors.
// Uses errors.As to handle wrapped errors.
func IsUnorderable(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnorderable || re.Code == ErrCodeCrossClass
	}
	return false
}

// NewUnhashableError creates a RuntimeError for hash on an unhashable class.
func NewUnhashableError(class string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnhashable,
		Message: fmt.Sprintf("unhashable type: %q", class),
		Class:   class,
	}
}

// NewUnorderableError creates a RuntimeError for ordering on an unordered class.
func NewUnorderableError(class string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnorderable,
		Message: "ordering is not enabled for this class",
		Class:   class,
	}
}

// NewCrossClassError creates a RuntimeError for cross-class comparison.
func NewCrossClassError(left, right string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCrossClass,
		Message: fmt.Sprintf("cannot compare instances of %s and %s", left, right),
		Class:   left,
	}
}
