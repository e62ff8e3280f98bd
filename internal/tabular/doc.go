// Package tabular is the in-memory columnar KPI engine.
//
// Canonical entities are copied into column slices at construction; the
// inputs are never mutated and the engine never touches the relational
// store. KPIs are computed with explicit join/group/sort/limit steps over
// the columns. Output ordering is fully determined by the contract's sort
// keys plus tie-breaks, so it is independent of input order.
package tabular
