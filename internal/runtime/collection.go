package runtime

import (
	"fmt"

	"declmap/internal/model"
)

// CollectionError reports a container value whose shape does not match the
// attribute's declared collection kind. The constructor propagates it to the
// caller unmodified.
type CollectionError struct {
	Attribute string
	Declared  model.CollectionKind
	Actual    string
}

// Error implements the error interface.
func (e *CollectionError) Error() string {
	return fmt.Sprintf("incompatible collection type: %s is not %s-like", e.Actual, e.Declared)
}

// checkCollection validates a relationship value against the attribute's
// declared collection kind. Attributes without a declared collection are
// not checked.
func checkCollection(attr model.ResolvedAttribute, v model.Value) error {
	if attr.Kind != model.KindRelationship || attr.Collection == model.CollectionNone {
		return nil
	}
	if _, isNull := v.(model.Null); isNull {
		return nil
	}

	actual := shapeName(v)
	switch attr.Collection {
	case model.CollectionList:
		if _, ok := v.(model.List); !ok {
			return &CollectionError{Attribute: attr.Name, Declared: attr.Collection, Actual: actual}
		}
	case model.CollectionSet:
		if _, ok := v.(model.Set); !ok {
			return &CollectionError{Attribute: attr.Name, Declared: attr.Collection, Actual: actual}
		}
	}
	return nil
}

func shapeName(v model.Value) string {
	switch v.(type) {
	case model.List:
		return "list"
	case model.Set:
		return "set"
	default:
		return "scalar"
	}
}
