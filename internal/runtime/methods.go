package runtime

import (
	"fmt"

	"declmap/internal/model"
)

// Repr renders an instance with the generated representation function.
func (c *Class) Repr(inst *model.Instance) string {
	return model.Repr(inst)
}

// Equal applies the generated equality function. With eq resolved true, two
// instances are equal iff they share the runtime class and all
// compare-eligible attribute values compare equal; with eq resolved false,
// equality falls back to identity.
func (c *Class) Equal(a, b *model.Instance) bool {
	return model.Equal(a, b)
}

// Hash applies the generated hash function. It succeeds only when
// unsafe_hash resolved true; in every other case the class is unhashable at
// call time regardless of eq.
func (c *Class) Hash(inst *model.Instance) (uint64, error) {
	if !c.contract.Generate || !c.contract.Options.UnsafeHash {
		return 0, NewUnhashableError(c.contract.QualifiedName)
	}
	h, err := model.HashValue(inst)
	if err != nil {
		return 0, fmt.Errorf("hash %s: %w", c.contract.QualifiedName, err)
	}
	return h, nil
}

// Compare orders two instances: -1, 0, or 1. Requires order resolved true
// and both instances of the same runtime class.
func (c *Class) Compare(a, b *model.Instance) (int, error) {
	if !c.contract.Generate || !c.contract.Options.Order {
		return 0, NewUnorderableError(c.contract.QualifiedName)
	}
	if a.Contract() != b.Contract() {
		return 0, NewCrossClassError(a.Contract().QualifiedName, b.Contract().QualifiedName)
	}
	cmp, err := model.Compare(a, b)
	if err != nil {
		return 0, &RuntimeError{
			Code:    ErrCodeUnorderable,
			Message: err.Error(),
			Class:   c.contract.QualifiedName,
		}
	}
	return cmp, nil
}

// Less reports a < b under the generated ordering.
func (c *Class) Less(a, b *model.Instance) (bool, error) {
	cmp, err := c.Compare(a, b)
	return cmp < 0, err
}

// LessEqual reports a <= b under the generated ordering.
func (c *Class) LessEqual(a, b *model.Instance) (bool, error) {
	cmp, err := c.Compare(a, b)
	return cmp <= 0, err
}

// Greater reports a > b under the generated ordering.
func (c *Class) Greater(a, b *model.Instance) (bool, error) {
	cmp, err := c.Compare(a, b)
	return cmp > 0, err
}

// GreaterEqual reports a >= b under the generated ordering.
func (c *Class) GreaterEqual(a, b *model.Instance) (bool, error) {
	cmp, err := c.Compare(a, b)
	return cmp >= 0, err
}

// Replace constructs a new instance through the generated initializer from
// the source's init-eligible values with the given overrides applied. The
// source is left untouched.
func (c *Class) Replace(inst *model.Instance, overrides map[string]model.Value) (*model.Instance, error) {
	kwargs := make(map[string]model.Value, len(c.contract.Params))
	for _, p := range c.contract.Params {
		kwargs[p.Name] = inst.Get(p.Name)
	}
	for name, v := range overrides {
		if !hasParam(c.contract.Params, name) {
			return nil, &RuntimeError{
				Code:      ErrCodeUnexpectedArgument,
				Message:   fmt.Sprintf("unexpected keyword argument %q", name),
				Class:     c.contract.QualifiedName,
				Attribute: name,
			}
		}
		kwargs[name] = v
	}
	return c.New(nil, kwargs)
}

// AsMap decomposes an instance into attribute-name to value pairs over the
// full merged attribute list.
func (c *Class) AsMap(inst *model.Instance) map[string]model.Value {
	out := make(map[string]model.Value, len(c.contract.Attributes))
	for _, attr := range c.contract.Attributes {
		out[attr.Name] = inst.Get(attr.Name)
	}
	return out
}

// AsTuple decomposes an instance into values in merged declaration order.
func (c *Class) AsTuple(inst *model.Instance) []model.Value {
	out := make([]model.Value, 0, len(c.contract.Attributes))
	for _, attr := range c.contract.Attributes {
		out = append(out, inst.Get(attr.Name))
	}
	return out
}
