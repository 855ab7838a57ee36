// Package store provides SQLite-backed run history for suite runs.
//
// A suite report is written once, after every verification in it has
// finished, as one row in runs and one row per case variant in outcomes.
// Reports are never updated afterwards.
//
// # Ordering
//
//   - Runs carry a logical seq assigned at insert time (max + 1). Listings
//     order by seq, never by wall-clock time, so two runs started in the
//     same millisecond still list deterministically.
//   - All queries include: ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// # Schema Version
//
// PRAGMA user_version holds the schema version. Open stamps new databases and
// refuses ones written by a newer build. OpenReadOnly is for queries: it
// requires the file to exist at the current version and never writes to it.
package store
