// Package testutil provides the fixed clock and the shared canonical
// fixture both engines' contract tests run against.
package testutil

import "time"

// FixedClock always reports the same instant, making canonicalization and
// the windowed KPI reproducible across test runs.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
