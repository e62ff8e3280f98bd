package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/orderpulse/internal/canon"
)

func TestValidateCommand_Text(t *testing.T) {
	customers, orders, _ := writeSources(t)

	out, err := execute(t, "validate", "--customers", customers, "--orders", orders)
	require.NoError(t, err)

	assert.Contains(t, out, "Accepted: 4 customers, 7 orders")
	assert.Contains(t, out, "InvalidMobileNumber")
	assert.Contains(t, out, "OrphanOrder")
}

func TestValidateCommand_JSON(t *testing.T) {
	customers, orders, _ := writeSources(t)

	out, err := execute(t, "--format", "json", "validate", "--customers", customers, "--orders", orders)
	require.NoError(t, err)

	var got struct {
		CustomersAccepted int                     `json:"customers_accepted"`
		OrdersAccepted    int                     `json:"orders_accepted"`
		IssueCounts       map[canon.IssueKind]int `json:"issue_counts"`
		Issues            []canon.ValidationIssue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.CustomersAccepted)
	assert.Equal(t, 7, got.OrdersAccepted)
	assert.Equal(t, map[canon.IssueKind]int{
		canon.IssueInvalidMobileNumber: 1,
		canon.IssueOrphanOrder:         1,
	}, got.IssueCounts)
	require.Len(t, got.Issues, 2)
}

func TestValidateCommand_CleanSources(t *testing.T) {
	dir := t.TempDir()
	customers := filepath.Join(dir, "customers.csv")
	orders := filepath.Join(dir, "orders.xml")
	require.NoError(t, os.WriteFile(customers, []byte(
		"customer_id,name,mobile_number,region,created_at\n1,Asha Verma,9876543210,north,2024-01-01\n"), 0o644))
	require.NoError(t, os.WriteFile(orders, []byte(
		"<orders><order><order_id>1</order_id><customer_id>1</customer_id><order_date>2024-02-01</order_date><amount>10</amount></order></orders>"), 0o644))

	out, err := execute(t, "validate", "--customers", customers, "--orders", orders)
	require.NoError(t, err)
	assert.Contains(t, out, "Accepted: 1 customers, 1 orders")
	assert.Contains(t, out, "No validation issues.")
}

func TestValidateCommand_MissingFlags(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
}
