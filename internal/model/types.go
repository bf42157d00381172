package model

import "sort"

// Kind tags the mapping origin of an attribute. Kinds are explicit tags
// supplied by the mapping layer, never inferred from runtime types.
type Kind string

const (
	KindColumn       Kind = "column"
	KindRelationship Kind = "relationship"
	KindComposite    Kind = "composite"
	KindSynonym      Kind = "synonym"
	KindComputed     Kind = "computed"
)

// ValidKinds defines the allowed attribute kinds.
var ValidKinds = map[Kind]bool{
	KindColumn:       true,
	KindRelationship: true,
	KindComposite:    true,
	KindSynonym:      true,
	KindComputed:     true,
}

// CollectionKind is the declared container shape of a relationship attribute.
type CollectionKind string

const (
	CollectionNone CollectionKind = ""
	CollectionList CollectionKind = "list"
	CollectionSet  CollectionKind = "set"
)

// AttributeSpec describes one mapped attribute as declared on a single class.
// Specs are built with the With* methods so that explicitly-set dataclass
// arguments can be reported when a class never opts in to generation.
type AttributeSpec struct {
	Name       string
	Kind       Kind
	Collection CollectionKind
	PrimaryKey bool
	Nullable   bool

	// Generation participation. Unset flags default to true at resolution.
	Init    OptionState
	Repr    OptionState
	Compare OptionState

	// Default and DefaultFactory are mutually exclusive. An explicit Null
	// default is distinct from no default at all.
	Default        Value
	DefaultFactory func() Value

	declared map[string]bool
}

// NewAttribute starts an attribute spec for the named attribute.
func NewAttribute(name string, kind Kind) AttributeSpec {
	return AttributeSpec{Name: name, Kind: kind}
}

func (a AttributeSpec) declare(arg string) AttributeSpec {
	d := make(map[string]bool, len(a.declared)+1)
	for k := range a.declared {
		d[k] = true
	}
	d[arg] = true
	a.declared = d
	return a
}

// WithInit sets initializer participation.
func (a AttributeSpec) WithInit(v bool) AttributeSpec {
	a.Init = Of(v)
	return a.declare("init")
}

// WithRepr sets representation participation.
func (a AttributeSpec) WithRepr(v bool) AttributeSpec {
	a.Repr = Of(v)
	return a.declare("repr")
}

// WithCompare sets eligibility for equality, ordering, and hashing.
func (a AttributeSpec) WithCompare(v bool) AttributeSpec {
	a.Compare = Of(v)
	return a.declare("compare")
}

// WithDefault sets a static default value. Pass Null{} for an explicit
// null default.
func (a AttributeSpec) WithDefault(v Value) AttributeSpec {
	a.Default = v
	return a.declare("default")
}

// WithDefaultFactory sets a per-instance default producer.
func (a AttributeSpec) WithDefaultFactory(f func() Value) AttributeSpec {
	a.DefaultFactory = f
	return a.declare("default_factory")
}

// WithCollection sets the declared container shape (relationships only).
func (a AttributeSpec) WithCollection(k CollectionKind) AttributeSpec {
	a.Collection = k
	return a
}

// WithPrimaryKey marks the attribute as (part of) the primary key.
func (a AttributeSpec) WithPrimaryKey() AttributeSpec {
	a.PrimaryKey = true
	return a
}

// WithNullable marks the column as nullable.
func (a AttributeSpec) WithNullable() AttributeSpec {
	a.Nullable = true
	return a
}

// HasDefault reports whether a static default was declared.
func (a AttributeSpec) HasDefault() bool {
	return a.Default != nil
}

// HasDataclassArgs reports whether any dataclass argument was explicitly set.
func (a AttributeSpec) HasDataclassArgs() bool {
	return len(a.declared) > 0
}

// DeclaredArgs returns the explicitly-set dataclass argument names, sorted.
func (a AttributeSpec) DeclaredArgs() []string {
	args := make([]string, 0, len(a.declared))
	for k := range a.declared {
		args = append(args, k)
	}
	sort.Strings(args)
	return args
}

// ResolvedAttribute is the merged, boolean view of one attribute within a
// ResolvedClassContract.
type ResolvedAttribute struct {
	Name       string         `json:"name"`
	Kind       Kind           `json:"kind"`
	Collection CollectionKind `json:"collection,omitempty"`
	PrimaryKey bool           `json:"primary_key,omitempty"`
	Nullable   bool           `json:"nullable,omitempty"`
	Init       bool           `json:"init"`
	Repr       bool           `json:"repr"`
	Compare    bool           `json:"compare"`
	HasDefault bool           `json:"has_default"`
	HasFactory bool           `json:"has_factory"`

	Default Value        `json:"-"`
	Factory func() Value `json:"-"`
}

// Optional reports whether the attribute yields an optional init parameter.
func (a ResolvedAttribute) Optional() bool {
	return a.HasDefault || a.HasFactory
}

// Param is one entry of the generated initializer parameter list.
type Param struct {
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
}

// ResolvedClassContract is the immutable output of resolving a class: the
// merged generation options, the merged attribute list in declaration order,
// and the generated initializer parameter list. Contracts are computed once
// per class, cached, and safe for unsynchronized concurrent reads.
type ResolvedClassContract struct {
	ClassName     string              `json:"class_name"`
	QualifiedName string              `json:"qualified_name"`
	Table         string              `json:"table,omitempty"`
	Generate      bool                `json:"generate"`
	Options       ResolvedOptions     `json:"options"`
	Attributes    []ResolvedAttribute `json:"attributes"`
	Params        []Param             `json:"params"`
}

// Attribute returns the merged spec for the named attribute.
func (c *ResolvedClassContract) Attribute(name string) (ResolvedAttribute, bool) {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return ResolvedAttribute{}, false
}
