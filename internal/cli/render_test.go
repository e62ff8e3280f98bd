package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/run"
	"github.com/ledgerline/orderpulse/internal/testutil"
)

func sampleSummary() *run.Summary {
	return &run.Summary{
		RunID:             "test-run",
		AsOf:              testutil.FixtureAsOf(),
		CustomersAccepted: 4,
		OrdersAccepted:    7,
		IssueCounts:       map[canon.IssueKind]int{canon.IssueOrphanOrder: 1},
		Tabular:           testutil.ExpectedReport(),
		QueryError:        "no store configured",
	}
}

func TestRenderSummary_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, sampleSummary(), "text"))
	out := buf.String()

	assert.Contains(t, out, "Run test-run (as of 2024-03-31)")
	assert.Contains(t, out, "Accepted: 4 customers, 7 orders")
	assert.Contains(t, out, "OrphanOrder")
	assert.Contains(t, out, "== Tabular engine ==")
	assert.Contains(t, out, "Repeat Customers")
	assert.Contains(t, out, "Amit Sharma")
	assert.Contains(t, out, "160.00")
	assert.Contains(t, out, "== Query engine ==")
	assert.Contains(t, out, "unavailable: no store configured")
}

func TestRenderSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, sampleSummary(), "json"))

	var got run.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "test-run", got.RunID)
	assert.Equal(t, testutil.ExpectedReport(), got.Tabular)
	assert.Nil(t, got.Query)
	assert.Equal(t, "no store configured", got.QueryError)
}
