// Package store is the relational store adapter backing the query engine.
//
// SQLite holds the canonical entities under a fixed two-table schema for
// the duration of a run. The store is reset and repopulated on every run;
// it carries no state the canonical entities do not.
//
// Reconciliation decisions the schema pins down:
//   - amount_minor INTEGER: money is stored in minor units so SUM is
//     exact integer arithmetic, matching the in-memory engine
//   - order_date TEXT 'YYYY-MM-DD': calendar dates compare correctly as
//     strings, so window filters need no SQLite date-function here
//   - foreign_keys=ON as a backstop; referential integrity is already
//     enforced at canonicalization time
//
// Database configuration follows the usual SQLite discipline: WAL mode,
// synchronous=NORMAL, busy_timeout, a single writer connection.
package store
