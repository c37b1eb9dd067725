// Package setup provides the client-type setup-time matrix of a simulation model.
//
// # Reading Guide
//
// Start with these files to understand the matrix core:
//   - value.go: Value, the distribution-or-expression sum type stored per cell
//   - store.go: Store, the sparse (from, to) -> Value relation
//   - pending.go: PendingEditController, the single-cell edit state machine
//   - session.go: Session, which ties admission, store and controller together
//
// # Bulk mutations
//
// Two entry points rewrite many cells at once:
//   - fill.go: Fill applies one of four deterministic fill policies
//   - merge.go: MergeImporter reconciles externally sourced values, all or nothing
//
// # Sub-packages
//   - setup/persist/: YAML model files (client types, variables, setup-time records)
//   - setup/sqlite/: SQLite repository for the same records
//   - setup/importer/: merge candidate sources (model files, CSV matrices)
//   - setup/expr/: default expression validator and constant evaluator
//   - setup/sample/: distribution samplers for previewing setup times
//
// Nothing in this package is safe for concurrent use. The editor drives it
// from a single event loop.
package setup
