// Package canon defines the canonical entities (Customer, Order) and the
// Canonicalizer that produces them from raw, untyped source records.
//
// This package is the single boundary where types become trustworthy: a
// Customer or Order that exists at all has already passed every cleaning
// and validation rule. All other internal packages consume canon types;
// canon imports nothing internal except nothing at all - it is the
// foundational layer.
//
// Key design constraints:
//   - Amounts are int64 minor currency units, never floats
//   - Dates are time-zone-free calendar dates serialized YYYY-MM-DD
//   - Every rejection or downgrade is recorded as a ValidationIssue;
//     nothing is silently dropped
//   - Entities are immutable once canonicalized; a rerun starts from raw
package canon
