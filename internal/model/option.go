package model

// OptionState is the tri-state of a single generation flag: unset (inherit),
// explicitly false, or explicitly true. The zero value is unset.
type OptionState int

const (
	OptionUnset OptionState = iota
	OptionFalse
	OptionTrue
)

// Of converts a plain boolean into an explicitly-set OptionState.
func Of(b bool) OptionState {
	if b {
		return OptionTrue
	}
	return OptionFalse
}

// IsSet reports whether the flag was explicitly set.
func (s OptionState) IsSet() bool {
	return s != OptionUnset
}

// Bool returns the flag value; unset counts as false.
func (s OptionState) Bool() bool {
	return s == OptionTrue
}

// String implements fmt.Stringer for diagnostics.
func (s OptionState) String() string {
	switch s {
	case OptionFalse:
		return "false"
	case OptionTrue:
		return "true"
	default:
		return "unset"
	}
}

// ClassOptions holds the per-class generation flags as declared. Flags left
// unset fall through to the nearest ancestor that sets them, then to
// DefaultOptions.
type ClassOptions struct {
	Init       OptionState
	Repr       OptionState
	Eq         OptionState
	Order      OptionState
	UnsafeHash OptionState
}

// OptionNames lists the recognized generation option keys, in canonical order.
var OptionNames = []string{"init", "repr", "eq", "order", "unsafe_hash"}

// SetByName sets a flag by its option key.
// Returns false if the key is not a recognized option.
func (o *ClassOptions) SetByName(name string, v bool) bool {
	switch name {
	case "init":
		o.Init = Of(v)
	case "repr":
		o.Repr = Of(v)
	case "eq":
		o.Eq = Of(v)
	case "order":
		o.Order = Of(v)
	case "unsafe_hash":
		o.UnsafeHash = Of(v)
	default:
		return false
	}
	return true
}

// ByName returns the state of a flag by its option key.
// Returns false if the key is not a recognized option.
func (o ClassOptions) ByName(name string) (OptionState, bool) {
	switch name {
	case "init":
		return o.Init, true
	case "repr":
		return o.Repr, true
	case "eq":
		return o.Eq, true
	case "order":
		return o.Order, true
	case "unsafe_hash":
		return o.UnsafeHash, true
	default:
		return OptionUnset, false
	}
}

// ResolvedOptions is the fully-merged, boolean view of the generation flags.
type ResolvedOptions struct {
	Init       bool `json:"init"`
	Repr       bool `json:"repr"`
	Eq         bool `json:"eq"`
	Order      bool `json:"order"`
	UnsafeHash bool `json:"unsafe_hash"`
}

// DefaultOptions is the global defaults table applied when no class in the
// ancestor chain sets a flag.
var DefaultOptions = ResolvedOptions{
	Init:       true,
	Repr:       true,
	Eq:         true,
	Order:      false,
	UnsafeHash: false,
}
