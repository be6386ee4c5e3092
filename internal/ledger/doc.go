// Package ledger provides SQLite-backed durable storage for frame deliveries.
//
// The ledger is an append-only log with:
//   - Deliveries: one row per Send call, delivered or exhausted
//   - Known nodes: node ids from delivered frames, for edge reference checks
//
// Ordering uses the seq column (assigned by SQLite on insert), never wall
// time. Every query that returns deliveries orders by seq ASC.
//
// Frames are stored as RFC 8785 canonical JSON so a stored body hashes to
// the same frame id that was recorded with it.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// The ledger is an optional collaborator of package delivery: it implements
// delivery.Recorder and delivery.NodeRegistry.
package ledger
