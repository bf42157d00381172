// Package store persists mapped instances to SQLite.
//
// Each resolved class contract maps to one table. Column attributes become
// columns, the primary key column is INTEGER PRIMARY KEY AUTOINCREMENT, and
// relationship/composite/synonym attributes are not persisted. A metadata
// table records which contracts have been materialized so CreateTable stays
// idempotent across runs.
package store
