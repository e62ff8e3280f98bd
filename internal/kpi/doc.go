// Package kpi is the contract both computation engines implement.
//
// It defines the four KPI result-row shapes, their ordering rules, the
// Engine interface, and the shared money arithmetic. The contract is the
// single source of truth: the tabular engine and the query engine are
// validated against it independently, never against each other's output
// alone.
//
// Cross-engine numeric agreement is pinned here rather than trusted to
// each engine's defaults:
//   - revenue totals are int64 minor-unit sums in both engines
//   - averages are derived from (total, count) by one apd-backed helper,
//     so SQL never computes AVG and floats never enter the pipeline
//   - the top-spenders window is computed once as a pair of YYYY-MM-DD
//     strings and both engines filter on it inclusively
package kpi
