package model

import "fmt"

// Value is a sealed interface over the runtime value types.
// Only Null, String, Int, Bool, List, Set, and *Instance implement it.
type Value interface {
	value() // sealed
}

// Null represents an absent value. Using an explicit type keeps the
// interface sealed and distinguishes "explicitly null" from "not set".
type Null struct{}

func (Null) value() {}

// String is a string attribute value.
type String string

func (String) value() {}

// Int is an integer attribute value. Always int64.
type Int int64

func (Int) value() {}

// Bool is a boolean attribute value.
type Bool bool

func (Bool) value() {}

// List is an ordered collection value.
type List []Value

func (List) value() {}

// Set is an unordered collection value. Equality is membership-based;
// element order carries no meaning.
type Set []Value

func (Set) value() {}

// Instance is a constructed object of a resolved class. Field access goes
// through Get/Set so the contract stays the single source of attribute
// metadata.
type Instance struct {
	contract *ResolvedClassContract
	identity string
	fields   map[string]Value
}

func (*Instance) value() {}

// NewInstance creates an empty instance bound to a contract. The identity
// token backs identity-style repr and is unique per instance.
func NewInstance(contract *ResolvedClassContract, identity string) *Instance {
	return &Instance{
		contract: contract,
		identity: identity,
		fields:   make(map[string]Value),
	}
}

// Contract returns the resolved contract the instance was built from.
func (i *Instance) Contract() *ResolvedClassContract {
	return i.contract
}

// Identity returns the instance's identity token.
func (i *Instance) Identity() string {
	return i.identity
}

// Get returns the named attribute value. Unset attributes read as Null.
func (i *Instance) Get(name string) Value {
	if v, ok := i.fields[name]; ok {
		return v
	}
	return Null{}
}

// Set assigns the named attribute value.
func (i *Instance) Set(name string, v Value) {
	i.fields[name] = v
}

// Equal reports value equality between two runtime values.
//
// Instances compare by value only when their contract enables eq: both must
// be of the same resolved class and all compare-eligible attribute values
// must be equal. With eq disabled, instances compare by identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Set:
		bv, ok := b.(Set)
		if !ok || len(av) != len(bv) {
			return false
		}
		used := make([]bool, len(bv))
	outer:
		for _, ae := range av {
			for j, be := range bv {
				if !used[j] && Equal(ae, be) {
					used[j] = true
					continue outer
				}
			}
			return false
		}
		return true
	case *Instance:
		bv, ok := b.(*Instance)
		if !ok {
			return false
		}
		return instanceEqual(av, bv)
	default:
		return false
	}
}

func instanceEqual(a, b *Instance) bool {
	if a == b {
		return true
	}
	if !a.contract.Generate || !a.contract.Options.Eq {
		return false // identity semantics, and a != b here
	}
	// Same runtime class, not merely the same attribute set.
	if a.contract != b.contract {
		return false
	}
	for _, attr := range a.contract.Attributes {
		if !attr.Compare {
			continue
		}
		if !Equal(a.Get(attr.Name), b.Get(attr.Name)) {
			return false
		}
	}
	return true
}

// Compare orders two runtime values: -1 if a < b, 0 if equal, 1 if a > b.
// Values of mismatched types, sets, and instances whose contracts disable
// ordering are unorderable and return an error.
func Compare(a, b Value) (int, error) {
	switch av := a.(type) {
	case Null:
		if _, ok := b.(Null); ok {
			return 0, nil
		}
	case String:
		if bv, ok := b.(String); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			}
			return 0, nil
		}
	case Int:
		if bv, ok := b.(Int); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			}
			return 0, nil
		}
	case Bool:
		if bv, ok := b.(Bool); ok {
			switch {
			case !bool(av) && bool(bv):
				return -1, nil
			case bool(av) && !bool(bv):
				return 1, nil
			}
			return 0, nil
		}
	case List:
		if bv, ok := b.(List); ok {
			return compareLists(av, bv)
		}
	case *Instance:
		if bv, ok := b.(*Instance); ok {
			return compareInstances(av, bv)
		}
	}
	return 0, fmt.Errorf("unorderable values: %s and %s", typeName(a), typeName(b))
}

func compareLists(a, b List) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	}
	return 0, nil
}

func compareInstances(a, b *Instance) (int, error) {
	if !a.contract.Generate || !a.contract.Options.Order {
		return 0, fmt.Errorf("ordering not enabled for %s", a.contract.QualifiedName)
	}
	if a.contract != b.contract {
		return 0, fmt.Errorf("cannot compare %s with %s",
			a.contract.QualifiedName, b.contract.QualifiedName)
	}
	// Lexicographic over compare-eligible attributes in merged order.
	for _, attr := range a.contract.Attributes {
		if !attr.Compare {
			continue
		}
		c, err := Compare(a.Get(attr.Name), b.Get(attr.Name))
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

func typeName(v Value) string {
	switch tv := v.(type) {
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Set:
		return "set"
	case *Instance:
		return tv.contract.QualifiedName
	default:
		return fmt.Sprintf("%T", v)
	}
}
