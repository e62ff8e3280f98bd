package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ledgerline/orderpulse/internal/kpi"
)

// WriteReportJSON writes each KPI of a report as <prefix>_<kpi>.json
// under dir. Mirrors the relational side of the original output layout.
func WriteReportJSON(dir, prefix string, r *kpi.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]any{
		kpi.NameRepeatCustomers: r.RepeatCustomers,
		kpi.NameMonthlyTrends:   r.MonthlyTrends,
		kpi.NameRegionalRevenue: r.RegionalRevenue,
		kpi.NameTopSpenders:     r.TopSpenders,
	}
	for name, data := range files {
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, name))
		if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// WriteReportCSV writes each KPI of a report as <prefix>_<kpi>.csv under
// dir, with the contract's fixed column sets.
func WriteReportCSV(dir, prefix string, r *kpi.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	write := func(name string, header []string, rows [][]string) error {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, name))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()

		cw := csv.NewWriter(f)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write %s header: %w", path, err)
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("write %s rows: %w", path, err)
		}
		cw.Flush()
		return cw.Error()
	}

	repeat := make([][]string, len(r.RepeatCustomers))
	for i, row := range r.RepeatCustomers {
		repeat[i] = []string{
			strconv.FormatInt(row.CustomerID, 10), row.Name, row.Mobile, row.Region,
			strconv.FormatInt(row.OrderCount, 10),
		}
	}
	if err := write(kpi.NameRepeatCustomers,
		[]string{"customer_id", "name", "mobile_number", "region", "order_count"}, repeat); err != nil {
		return err
	}

	monthly := make([][]string, len(r.MonthlyTrends))
	for i, row := range r.MonthlyTrends {
		monthly[i] = []string{
			strconv.Itoa(row.Year), strconv.Itoa(row.Month),
			strconv.FormatInt(row.OrderCount, 10), row.TotalRevenue.String(),
		}
	}
	if err := write(kpi.NameMonthlyTrends,
		[]string{"year", "month", "order_count", "total_revenue"}, monthly); err != nil {
		return err
	}

	regional := make([][]string, len(r.RegionalRevenue))
	for i, row := range r.RegionalRevenue {
		regional[i] = []string{
			row.Region, strconv.FormatInt(row.CustomerCount, 10),
			strconv.FormatInt(row.OrderCount, 10),
			row.TotalRevenue.String(), row.AvgOrderValue.String(),
		}
	}
	if err := write(kpi.NameRegionalRevenue,
		[]string{"region", "customer_count", "order_count", "total_revenue", "avg_order_value"}, regional); err != nil {
		return err
	}

	top := make([][]string, len(r.TopSpenders))
	for i, row := range r.TopSpenders {
		top[i] = []string{
			strconv.FormatInt(row.CustomerID, 10), row.Name, row.Mobile, row.Region,
			strconv.FormatInt(row.OrderCount, 10),
			row.TotalSpent.String(), row.AvgOrderValue.String(), row.LastOrderDate,
		}
	}
	return write(kpi.NameTopSpenders,
		[]string{"customer_id", "name", "mobile_number", "region", "order_count", "total_spent", "avg_order_value", "last_order_date"}, top)
}
