// Package repositories implements SQLite persistence for the local blend archive.
//
// The archive keeps a queryable offline copy of saved blends, independent of
// both the backend store and the JSON cache slot. [HistoryRepository] handles
// CRUD with atomic sequence generation for human-readable ordering, soft
// deletes via deleted_at timestamps, and per-entry track rows.
//
// Sequence numbers provide stable ordering (e.g., blend #42) independent of
// UUIDs and creation timestamps. The [NextSequence] function atomically
// increments per-table sequence counters in dedicated sequence tables.
package repositories
