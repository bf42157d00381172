// Package runtime binds resolved class contracts to their generated method
// sets.
//
// A Class wraps a model.ResolvedClassContract and exposes the generated
// surface: the initializer (positional and keyword arguments, defaults and
// default factories applied in parameter order), the representation,
// equality, ordering and hash functions, plus Replace and AsMap/AsTuple
// decomposition. No code is synthesized at runtime; every generated function
// is a plain method interpreting the contract's attribute list.
//
// Call-time failures are RuntimeError values with stable codes. These are the
// only errors deferred past resolution: hash on a class without unsafe_hash,
// ordering on a class without order, and cross-class comparison all depend on
// flags that were validated earlier and surface only when the generated
// function is invoked.
//
// Relationship default factories are shape-checked against the declared
// collection kind; a mismatch is reported as a CollectionError and propagates
// to the constructor's caller unmodified.
package runtime
