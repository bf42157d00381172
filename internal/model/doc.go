// Package model provides the foundational types for declmap.
//
// This package contains type definitions and the runtime value tree only.
// All other internal packages import model; model imports nothing internal.
// This keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Generation flags are tri-state (unset / false / true); resolution
//     collapses them to booleans using the global defaults table
//   - Attribute kinds are explicit tags, never inferred from runtime types
//   - Instance hashing uses SHA-256 with domain separation over a
//     canonical encoding (NFC-normalized strings, sorted set elements)
//   - All JSON tags use snake_case
package model
