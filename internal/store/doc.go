// Package store keeps recorded harness runs in SQLite.
//
// Each run is one scenario execution: its pass flag, final path, failure
// messages and the full trace. Runs are append-only.
//
// Ordering uses the seq column, a per-database logical counter, never wall
// time. Run IDs are UUIDv7, so they also sort by creation, but queries order
// by seq ASC, id ASC COLLATE BINARY for a stable total order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
