// Package store provides a SQLite-backed catalog of loaded target declarations.
//
// Each load of a build root is written as one snapshot:
//   - Snapshots: UUIDv7 id, logical sequence number, build root, counts
//   - Targets: one row per declared target, keyed by (snapshot_id, address)
//
// Rows hold the canonical JSON declaration and its fingerprint. Reads
// rebuild targets through target.FromDeclaration and refuse rows whose
// fingerprint no longer matches their declaration.
//
// Ordering uses the logical seq column, never wall-clock time; target
// listings are ORDER BY address COLLATE BINARY.
//
// # Connection settings
//
// Open limits the pool to one connection and sets WAL journaling, a
// five second busy timeout and foreign key enforcement, so deleting a
// snapshot cascades to its targets. Schema upgrades are tracked with
// PRAGMA user_version.
package store
