package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/ledgerline/orderpulse/internal/canon"
	"github.com/ledgerline/orderpulse/internal/kpi"
	"github.com/ledgerline/orderpulse/internal/run"
)

// RenderSummary writes the run summary in the requested format.
func RenderSummary(w io.Writer, sum *run.Summary, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	return renderText(w, sum)
}

func renderText(w io.Writer, sum *run.Summary) error {
	fmt.Fprintf(w, "Run %s (as of %s)\n", sum.RunID, sum.AsOf)
	fmt.Fprintf(w, "Accepted: %d customers, %d orders\n", sum.CustomersAccepted, sum.OrdersAccepted)

	if len(sum.IssueCounts) > 0 {
		fmt.Fprintln(w, "Validation issues:")
		kinds := make([]string, 0, len(sum.IssueCounts))
		for k := range sum.IssueCounts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-22s %d\n", k, sum.IssueCounts[canon.IssueKind(k)])
		}
	}

	renderEngine(w, "Tabular engine", sum.Tabular, sum.TabularError)
	renderEngine(w, "Query engine", sum.Query, sum.QueryError)
	return nil
}

func renderEngine(w io.Writer, title string, report *kpi.Report, absence string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
	if report == nil {
		if absence == "" {
			absence = "no result"
		}
		fmt.Fprintf(w, "unavailable: %s\n", absence)
		return
	}
	renderReport(w, report)
}

func renderReport(w io.Writer, r *kpi.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "\nRepeat Customers")
	fmt.Fprintln(tw, "customer_id\tname\tmobile_number\tregion\torder_count")
	for _, row := range r.RepeatCustomers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", row.CustomerID, row.Name, row.Mobile, row.Region, row.OrderCount)
	}

	fmt.Fprintln(tw, "\nMonthly Order Trends")
	fmt.Fprintln(tw, "year\tmonth\torder_count\ttotal_revenue")
	for _, row := range r.MonthlyTrends {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", row.Year, row.Month, row.OrderCount, row.TotalRevenue)
	}

	fmt.Fprintln(tw, "\nRegional Revenue")
	fmt.Fprintln(tw, "region\tcustomer_count\torder_count\ttotal_revenue\tavg_order_value")
	for _, row := range r.RegionalRevenue {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", row.Region, row.CustomerCount, row.OrderCount, row.TotalRevenue, row.AvgOrderValue)
	}

	fmt.Fprintln(tw, "\nTop Spenders (window)")
	fmt.Fprintln(tw, "customer_id\tname\tmobile_number\tregion\torder_count\ttotal_spent\tavg_order_value\tlast_order_date")
	for _, row := range r.TopSpenders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			row.CustomerID, row.Name, row.Mobile, row.Region, row.OrderCount, row.TotalSpent, row.AvgOrderValue, row.LastOrderDate)
	}

	tw.Flush()
}
