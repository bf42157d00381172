package harness

import (
	"fmt"
	"strings"

	"declmap/internal/model"
	"declmap/internal/runtime"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func fail(typ, expected, actual string) error {
	return &AssertionError{Type: typ, Expected: expected, Actual: actual}
}

// evaluateAssertions checks every assertion and returns the failure messages.
func (h *Harness) evaluateAssertions(assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.evaluateAssertion(a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func (h *Harness) evaluateAssertion(a Assertion) error {
	target, class, err := h.lookup(a.Target)
	if err != nil {
		return err
	}

	var other *model.Instance
	if a.Other != "" {
		other, _, err = h.lookup(a.Other)
		if err != nil {
			return err
		}
	}

	switch a.Type {
	case AssertRepr:
		got := class.Repr(target)
		if got != a.Expect {
			return fail(a.Type, a.Expect, got)
		}

	case AssertEqual:
		if !class.Equal(target, other) {
			return fail(a.Type,
				fmt.Sprintf("%s == %s", a.Target, a.Other),
				"instances not equal")
		}
	case AssertNotEqual:
		if class.Equal(target, other) {
			return fail(a.Type,
				fmt.Sprintf("%s != %s", a.Target, a.Other),
				"instances equal")
		}

	case AssertLess:
		less, err := class.Less(target, other)
		if err != nil {
			return fail(a.Type,
				fmt.Sprintf("%s < %s", a.Target, a.Other),
				fmt.Sprintf("ordering failed: %v", err))
		}
		if !less {
			return fail(a.Type,
				fmt.Sprintf("%s < %s", a.Target, a.Other),
				"not less")
		}
	case AssertGreater:
		greater, err := class.Greater(target, other)
		if err != nil {
			return fail(a.Type,
				fmt.Sprintf("%s > %s", a.Target, a.Other),
				fmt.Sprintf("ordering failed: %v", err))
		}
		if !greater {
			return fail(a.Type,
				fmt.Sprintf("%s > %s", a.Target, a.Other),
				"not greater")
		}
	case AssertUnorderable:
		if _, err := class.Less(target, other); !runtime.IsUnorderable(err) {
			return fail(a.Type,
				fmt.Sprintf("ordering %s against %s fails", a.Target, a.Other),
				fmt.Sprintf("got error %v", err))
		}

	case AssertHashEqual, AssertHashNotEqual:
		th, err := class.Hash(target)
		if err != nil {
			return fail(a.Type, "target hashable", fmt.Sprintf("hash failed: %v", err))
		}
		oh, err := h.classOf(other).Hash(other)
		if err != nil {
			return fail(a.Type, "other hashable", fmt.Sprintf("hash failed: %v", err))
		}
		if a.Type == AssertHashEqual && th != oh {
			return fail(a.Type,
				fmt.Sprintf("hash(%s) == hash(%s)", a.Target, a.Other),
				fmt.Sprintf("%d != %d", th, oh))
		}
		if a.Type == AssertHashNotEqual && th == oh {
			return fail(a.Type,
				fmt.Sprintf("hash(%s) != hash(%s)", a.Target, a.Other),
				fmt.Sprintf("both %d", th))
		}
	case AssertUnhashable:
		if _, err := class.Hash(target); !runtime.IsUnhashable(err) {
			return fail(a.Type,
				fmt.Sprintf("hashing %s fails", a.Target),
				fmt.Sprintf("got error %v", err))
		}

	case AssertAttr:
		want, err := h.convertValue(a.Value)
		if err != nil {
			return fmt.Errorf("attr value: %w", err)
		}
		got := target.Get(a.Attr)
		if !model.Equal(got, want) {
			return fail(a.Type,
				fmt.Sprintf("%s.%s = %s", a.Target, a.Attr, model.Repr(want)),
				model.Repr(got))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}

	return nil
}

// lookup resolves a "$name" reference to its instance and bound class.
func (h *Harness) lookup(ref string) (*model.Instance, *runtime.Class, error) {
	name, ok := refName(ref)
	if !ok {
		return nil, nil, fmt.Errorf("not a $name reference: %q", ref)
	}
	inst, ok := h.instances[name]
	if !ok {
		return nil, nil, fmt.Errorf("unbound name %q", name)
	}
	return inst, h.classOf(inst), nil
}

func (h *Harness) classOf(inst *model.Instance) *runtime.Class {
	return h.classes[inst.Contract().ClassName]
}
