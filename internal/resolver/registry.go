package resolver

import (
	"fmt"
	"sync"

	"declmap/internal/model"
)

// ClassInfo identifies a class being registered.
type ClassInfo struct {
	// Name is the registry key, unique per registry.
	Name string
	// QualifiedName is the display name used in representations.
	// Defaults to Name when empty.
	QualifiedName string
	// Table is the mapped table name, supplied by the mapping layer.
	Table string
	// Base names the parent class; empty for a root. The base must already
	// be registered, mirroring definition order.
	Base string
}

// Registry holds the side tables of the registration phase. Class
// construction is assumed to happen on one goroutine per class; the mutex
// only guards the table maps themselves.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*classEntry
}

type classEntry struct {
	info      ClassInfo
	dataclass bool
	options   model.ClassOptions
	attrs     []model.AttributeSpec
	attrIndex map[string]int
	contract  *model.ResolvedClassContract
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*classEntry)}
}

// RegisterClass adds a class to the registry.
// The base class, if named, must already be registered.
func (r *Registry) RegisterClass(info ClassInfo) error {
	if info.QualifiedName == "" {
		info.QualifiedName = info.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[info.Name]; exists {
		return &ConfigError{
			Class:   info.Name,
			Message: "class is already registered",
			Code:    ErrDuplicateClass,
		}
	}
	if info.Base != "" {
		if _, ok := r.classes[info.Base]; !ok {
			return &ConfigError{
				Class:   info.Name,
				Message: fmt.Sprintf("base class %q is not registered", info.Base),
				Code:    ErrUnknownBase,
			}
		}
	}

	r.classes[info.Name] = &classEntry{
		info:      info,
		attrIndex: make(map[string]int),
	}
	return nil
}

// MarkDataclass opts a class in to contract generation without setting any
// option explicitly; all flags inherit or fall through to the defaults.
func (r *Registry) MarkDataclass(class string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.entry(class)
	if err != nil {
		return err
	}
	entry.dataclass = true
	return nil
}

// SetOptions stores a class's generation options from an option-key map and
// opts the class in to generation. Keys are restricted to the recognized set;
// any other key fails with UnsupportedArgumentError naming the key(s).
// Does not mutate ancestors.
func (r *Registry) SetOptions(class string, opts map[string]bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.entry(class)
	if err != nil {
		return err
	}

	parsed := entry.options
	var unknown []string
	for k, v := range opts {
		if !parsed.SetByName(k, v) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return &UnsupportedArgumentError{Keys: unknown}
	}

	entry.options = parsed
	entry.dataclass = true
	return nil
}

// SetOptionsChecked is the extended-validation entry point for option maps
// coming from definition files. Unrecognized keys fail with a ConfigError
// listing each rejected key.
func (r *Registry) SetOptionsChecked(class string, opts map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.entry(class)
	if err != nil {
		return err
	}

	parsed := entry.options
	var rejected []string
	for k, v := range opts {
		b, isBool := v.(bool)
		if !isBool {
			rejected = append(rejected, k)
			continue
		}
		if !parsed.SetByName(k, b) {
			rejected = append(rejected, k)
		}
	}
	if len(rejected) > 0 {
		return &ConfigError{
			Class:   class,
			Message: fmt.Sprintf("dataclass argument(s) %s are not accepted", quoteKeys(rejected)),
			Code:    ErrUnknownOption,
		}
	}

	entry.options = parsed
	entry.dataclass = true
	return nil
}

// RegisterAttribute adds an attribute spec to the class's local table.
//
// Fails when the name duplicates one already declared on the same class,
// when both default and default_factory are set, when the kind is not
// recognized, or when the class is already resolved and the spec carries
// dataclass arguments (the post-resolution validation hook).
func (r *Registry) RegisterAttribute(class string, spec model.AttributeSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.entry(class)
	if err != nil {
		return err
	}
	if !model.ValidKinds[spec.Kind] {
		return &ConfigError{
			Class:   class,
			Field:   spec.Name,
			Message: fmt.Sprintf("unrecognized attribute kind %q", spec.Kind),
			Code:    ErrInvalidKind,
		}
	}
	if _, dup := entry.attrIndex[spec.Name]; dup {
		return &ConfigError{
			Class:   class,
			Field:   spec.Name,
			Message: "duplicate attribute name",
			Code:    ErrDuplicateAttribute,
		}
	}
	if spec.HasDefault() && spec.DefaultFactory != nil {
		return &ConfigError{
			Class:   class,
			Field:   spec.Name,
			Message: "cannot specify both default and default_factory",
			Code:    ErrDefaultConflict,
		}
	}
	if spec.HasDataclassArgs() {
		if holder, resolved := r.resolvedHolder(class, entry); resolved {
			msg := "class is already resolved"
			if holder != class {
				msg = fmt.Sprintf("subclass %q is already resolved", holder)
			}
			return &ConfigError{
				Class: class,
				Field: spec.Name,
				Message: fmt.Sprintf(
					"%s; attribute cannot introduce dataclass argument(s): %s",
					msg, quoteKeys(spec.DeclaredArgs())),
				Code: ErrAlreadyResolved,
			}
		}
	}

	entry.attrIndex[spec.Name] = len(entry.attrs)
	entry.attrs = append(entry.attrs, spec)
	return nil
}

// Classes returns the registered class names in no particular order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	return names
}

// resolvedHolder reports whether the class or any resolved class whose
// ancestor chain passes through it already has a cached contract. A late
// attribute on a base would otherwise leave resolved subclass contracts
// stale. Returns the lexically smallest dependent name for stable errors.
// Callers must hold the lock.
func (r *Registry) resolvedHolder(class string, entry *classEntry) (string, bool) {
	if entry.contract != nil {
		return class, true
	}
	holder := ""
	for name, e := range r.classes {
		if e.contract == nil {
			continue
		}
		for cur := e; ; {
			if cur.info.Name == class {
				if holder == "" || name < holder {
					holder = name
				}
				break
			}
			base, ok := r.classes[cur.info.Base]
			if cur.info.Base == "" || !ok {
				break
			}
			cur = base
		}
	}
	return holder, holder != ""
}

// entry returns the class entry; callers must hold the lock.
func (r *Registry) entry(class string) (*classEntry, error) {
	entry, ok := r.classes[class]
	if !ok {
		return nil, &ConfigError{
			Class:   class,
			Message: "class is not registered",
			Code:    ErrUnknownClass,
		}
	}
	return entry, nil
}

// chain returns the ancestor chain root first, leaf last.
// Callers must hold the lock.
func (r *Registry) chain(entry *classEntry) ([]*classEntry, error) {
	var reversed []*classEntry
	seen := make(map[string]bool)
	for e := entry; ; {
		if seen[e.info.Name] {
			return nil, &ConfigError{
				Class:   e.info.Name,
				Message: "ancestor chain contains a cycle",
				Code:    ErrUnknownBase,
			}
		}
		seen[e.info.Name] = true
		reversed = append(reversed, e)
		if e.info.Base == "" {
			break
		}
		base, ok := r.classes[e.info.Base]
		if !ok {
			return nil, &ConfigError{
				Class:   e.info.Name,
				Message: fmt.Sprintf("base class %q is not registered", e.info.Base),
				Code:    ErrUnknownBase,
			}
		}
		e = base
	}

	chain := make([]*classEntry, len(reversed))
	for i, e := range reversed {
		chain[len(reversed)-1-i] = e
	}
	return chain, nil
}
