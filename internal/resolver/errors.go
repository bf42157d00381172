package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Configuration error codes (E100-E199)
const (
	ErrUnknownClass          = "E101" // class not registered
	ErrDuplicateClass        = "E102" // class name already registered
	ErrUnknownBase           = "E103" // base class not registered
	ErrDuplicateAttribute    = "E104" // attribute name already declared on class
	ErrDefaultConflict       = "E105" // both default and default_factory set
	ErrOrderWithoutEq        = "E106" // order=true with eq explicitly false
	ErrRequiredAfterOptional = "E107" // required init parameter after optional
	ErrUnconsumedArguments   = "E108" // dataclass args without generation opt-in
	ErrUnknownOption         = "E109" // unrecognized option key (checked path)
	ErrAlreadyResolved       = "E110" // late attribute on a resolved class
	ErrInvalidKind           = "E111" // unrecognized attribute kind
)

// ConfigError represents conflicting or invalid metadata discovered at
// class-definition time. It always aborts class resolution entirely; no
// partially-usable contract is left behind.
type ConfigError struct {
	Class   string `json:"class,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Class != "" && e.Field != "":
		return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Class, e.Field, e.Message)
	case e.Class != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Class, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// IsConfigError reports whether err is a ConfigError with the given code.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error, code string) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// UnsupportedArgumentError is the basic argument-shape violation raised when
// an unrecognized option key is passed directly to SetOptions. It is a
// distinct path from ConfigError, which covers semantic conflicts.
type UnsupportedArgumentError struct {
	Keys []string
}

// Error implements the error interface.
func (e *UnsupportedArgumentError) Error() string {
	return fmt.Sprintf("unexpected dataclass argument(s): %s", quoteKeys(e.Keys))
}

// quoteKeys renders keys sorted, quoted, and comma-joined: 'a', 'b'.
func quoteKeys(keys []string) string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	for i, k := range sorted {
		sorted[i] = "'" + k + "'"
	}
	return strings.Join(sorted, ", ")
}
