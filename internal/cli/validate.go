package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ledgerline/orderpulse/internal/canon"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Customers string
	Orders    string
	Rules     string
}

// NewValidateCommand creates the validate command: ingest and
// canonicalize only, report issue counts, never touch the store.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Canonicalize records and report validation issues without computing KPIs",
		Long: `Run the cleaning rules over the raw sources and report per-kind issue
counts. Useful for checking a new data drop before a full KPI run.

Example:
  orderpulse validate --customers data/customers.csv --orders data/orders.xml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Customers, "customers", "", "path to customers CSV (required)")
	cmd.Flags().StringVar(&opts.Orders, "orders", "", "path to orders XML (required)")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "CUE rules file overriding the embedded defaults")
	_ = cmd.MarkFlagRequired("customers")
	_ = cmd.MarkFlagRequired("orders")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	ruleSet, err := loadRules(opts.Rules)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rules", err)
	}
	cfg, err := ruleSet.CanonConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "broken rule set", err)
	}

	rawCustomers, rawOrders, err := readSources(opts.Customers, opts.Orders)
	if err != nil {
		return err
	}

	res := canon.NewCanonicalizer(cfg, nil).Run(rawCustomers, rawOrders)
	counts := canon.CountByKind(res.Issues)

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			CustomersAccepted int                     `json:"customers_accepted"`
			OrdersAccepted    int                     `json:"orders_accepted"`
			IssueCounts       map[canon.IssueKind]int `json:"issue_counts"`
			Issues            []canon.ValidationIssue `json:"issues"`
		}{len(res.Customers), len(res.Orders), counts, res.Issues})
	}

	fmt.Fprintf(w, "Accepted: %d customers, %d orders\n", len(res.Customers), len(res.Orders))
	if len(res.Issues) == 0 {
		fmt.Fprintln(w, "No validation issues.")
		return nil
	}
	fmt.Fprintf(w, "Validation issues (%d):\n", len(res.Issues))
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-22s %d\n", k, counts[canon.IssueKind(k)])
	}
	for _, is := range res.Issues {
		fmt.Fprintf(w, "  - %s\n", is)
	}
	return nil
}
