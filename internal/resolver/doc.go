// Package resolver implements the two-phase builder at the heart of declmap.
//
// Phase one is registration: classes, their generation options, and their
// attribute specs are collected into side tables keyed by class name. Classes
// form a linear ancestor chain via an explicit base reference; registration
// order is root before subclass, mirroring definition order.
//
// Phase two is resolution: Resolve walks the ancestor chain and merges
// options (nearest explicitly-set value wins scanning leaf to root, falling
// through to the global defaults) and attributes (root to leaf in declaration
// order, with subclass redeclarations replacing the ancestor's spec in
// place). The output is an immutable model.ResolvedClassContract, computed
// once per class and cached for the lifetime of the registry.
//
// All semantic conflicts surface synchronously at registration or resolution
// time as ConfigError values with stable codes; no partially-usable contract
// is ever cached. Basic argument-shape violations (an unrecognized option key
// passed directly) surface as UnsupportedArgumentError instead.
package resolver
