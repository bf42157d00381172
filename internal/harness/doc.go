// Package harness provides a scenario-driven conformance framework for the
// generated method surface.
//
// Scenarios are YAML files pairing class definitions (inline CUE or file
// references) with a sequence of construction steps and assertions over the
// resulting instances: repr text, equality, ordering, hashing, and attribute
// values. Each scenario runs against a fresh registry with deterministic
// instance identities, so traces are stable and can be compared against
// golden files.
package harness
