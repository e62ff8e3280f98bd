package canon

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config carries the immutable cleaning rules for one run. It is built by
// internal/rules from the declarative rule set and passed in explicitly -
// there is no module-level rule state.
type Config struct {
	// MobileLength is the expected national digit count (e.g. 10).
	MobileLength int

	// MobilePrefix, when non-empty, is a country prefix that is stripped
	// from values of length len(MobilePrefix)+MobileLength.
	MobilePrefix string

	// DateFormats are the accepted order-date layouts, tried in order.
	DateFormats []string

	// Regions maps lower-cased source synonyms to canonical regions.
	Regions map[string]Region
}

// Canonicalizer applies the cleaning rules to raw record batches.
type Canonicalizer struct {
	cfg   Config
	now   func() time.Time
	title cases.Caser
}

// Result is the outcome of one canonicalization pass.
type Result struct {
	Customers []Customer
	Orders    []Order
	Issues    []ValidationIssue
}

// NewCanonicalizer builds a Canonicalizer. now supplies the ingestion
// timestamp used when a customer record carries no created_at; pass a
// fixed clock in tests for byte-identical reruns.
func NewCanonicalizer(cfg Config, now func() time.Time) *Canonicalizer {
	if now == nil {
		now = time.Now
	}
	return &Canonicalizer{
		cfg:   cfg,
		now:   now,
		title: cases.Title(language.English),
	}
}

// Run canonicalizes the raw batches. A bad record never aborts the batch:
// fatal rules reject the single record, non-fatal rules downgrade a field,
// and every anomaly lands in Result.Issues.
//
// Customers are processed before orders so the referential-integrity check
// sees the final customer set. Duplicate identifiers are first-wins.
func (c *Canonicalizer) Run(rawCustomers, rawOrders []RawRecord) Result {
	var res Result

	// A record dropped as a duplicate contributes only its DuplicateId
	// issue; field-level issues are recorded only for records that enter
	// the dataset or are rejected on their own merits.
	seenCustomers := make(map[int64]bool, len(rawCustomers))
	for i, raw := range rawCustomers {
		cust, issues, ok := c.canonicalizeCustomer(raw, i)
		if ok && seenCustomers[cust.ID] {
			res.Issues = append(res.Issues, ValidationIssue{
				Kind:     IssueDuplicateID,
				RecordID: recordID("customer", raw[FieldCustomerID], i),
				RawValue: raw[FieldCustomerID],
			})
			continue
		}
		res.Issues = append(res.Issues, issues...)
		if !ok {
			continue
		}
		seenCustomers[cust.ID] = true
		res.Customers = append(res.Customers, cust)
	}

	seenOrders := make(map[int64]bool, len(rawOrders))
	for i, raw := range rawOrders {
		ord, issues, ok := c.canonicalizeOrder(raw, i, seenCustomers)
		if ok && seenOrders[ord.ID] {
			res.Issues = append(res.Issues, ValidationIssue{
				Kind:     IssueDuplicateID,
				RecordID: recordID("order", raw[FieldOrderID], i),
				RawValue: raw[FieldOrderID],
			})
			continue
		}
		res.Issues = append(res.Issues, issues...)
		if !ok {
			continue
		}
		seenOrders[ord.ID] = true
		res.Orders = append(res.Orders, ord)
	}

	return res
}

func (c *Canonicalizer) canonicalizeCustomer(raw RawRecord, idx int) (Customer, []ValidationIssue, bool) {
	var issues []ValidationIssue
	rid := recordID("customer", raw[FieldCustomerID], idx)

	id, err := parseID(raw[FieldCustomerID])
	if err != nil {
		issues = append(issues, ValidationIssue{Kind: IssueInvalidID, RecordID: rid, RawValue: raw[FieldCustomerID]})
		return Customer{}, issues, false
	}

	mobile, ok := c.normalizeMobile(raw[FieldMobile])
	if !ok {
		issues = append(issues, ValidationIssue{Kind: IssueInvalidMobileNumber, RecordID: rid, RawValue: raw[FieldMobile]})
		mobile = ""
	}

	region, ok := c.normalizeRegion(raw[FieldRegion])
	if !ok {
		issues = append(issues, ValidationIssue{Kind: IssueUnrecognizedRegion, RecordID: rid, RawValue: raw[FieldRegion]})
		region = RegionUnknown
	}

	return Customer{
		ID:        id,
		Name:      c.normalizeName(raw[FieldName]),
		Mobile:    mobile,
		Region:    region,
		CreatedAt: c.parseCreatedAt(raw[FieldCreatedAt]),
	}, issues, true
}

func (c *Canonicalizer) canonicalizeOrder(raw RawRecord, idx int, customers map[int64]bool) (Order, []ValidationIssue, bool) {
	var issues []ValidationIssue
	rid := recordID("order", raw[FieldOrderID], idx)

	id, err := parseID(raw[FieldOrderID])
	if err != nil {
		issues = append(issues, ValidationIssue{Kind: IssueInvalidID, RecordID: rid, RawValue: raw[FieldOrderID]})
		return Order{}, issues, false
	}

	date, err := ParseDate(c.cfg.DateFormats, collapseSpace(raw[FieldOrderDate]))
	if err != nil {
		issues = append(issues, ValidationIssue{Kind: IssueUnparseableDate, RecordID: rid, RawValue: raw[FieldOrderDate]})
		return Order{}, issues, false
	}

	amount, err := ParseAmountMinor(raw[FieldAmount])
	if err != nil {
		issues = append(issues, ValidationIssue{Kind: IssueInvalidAmount, RecordID: rid, RawValue: raw[FieldAmount]})
		return Order{}, issues, false
	}

	customerID, err := parseID(raw[FieldCustomerID])
	if err != nil || !customers[customerID] {
		issues = append(issues, ValidationIssue{Kind: IssueOrphanOrder, RecordID: rid, RawValue: raw[FieldCustomerID]})
		return Order{}, issues, false
	}

	return Order{
		ID:          id,
		CustomerID:  customerID,
		Date:        date,
		AmountMinor: amount,
		Status:      collapseSpace(raw[FieldStatus]),
	}, issues, true
}

// normalizeName trims, collapses internal whitespace, and title-cases.
func (c *Canonicalizer) normalizeName(s string) string {
	return c.title.String(strings.ToLower(collapseSpace(s)))
}

// normalizeMobile strips every non-digit rune, then accepts the value only
// if the digit count matches the configured national length, optionally
// after removing the country prefix. Empty input is the explicit null
// case: valid, no issue.
func (c *Canonicalizer) normalizeMobile(s string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if strings.TrimSpace(s) == "" {
		return "", true
	}
	if len(digits) == c.cfg.MobileLength {
		return digits, true
	}
	if c.cfg.MobilePrefix != "" &&
		len(digits) == len(c.cfg.MobilePrefix)+c.cfg.MobileLength &&
		strings.HasPrefix(digits, c.cfg.MobilePrefix) {
		return digits[len(c.cfg.MobilePrefix):], true
	}
	return "", false
}

func (c *Canonicalizer) normalizeRegion(s string) (Region, bool) {
	key := strings.ToLower(collapseSpace(s))
	if key == "" {
		return RegionUnknown, false
	}
	if r, ok := c.cfg.Regions[key]; ok {
		return r, true
	}
	return RegionUnknown, false
}

// parseCreatedAt accepts the configured date formats plus RFC 3339; a value
// that parses as none of them (or is absent) defaults to ingestion time.
// This rule is deliberately non-fatal: created_at never drives a KPI.
func (c *Canonicalizer) parseCreatedAt(s string) time.Time {
	s = collapseSpace(s)
	if s == "" {
		return c.now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if d, err := ParseDate(c.cfg.DateFormats, s); err == nil {
		return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	}
	return c.now().UTC()
}

// ParseAmountMinor parses a decimal currency amount into non-negative minor
// units (2-digit scale, half-even). Decimal parsing keeps values like
// "0.1" exact; float64 would already have lost the round trip.
func ParseAmountMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Negative {
		return 0, fmt.Errorf("negative amount %q", s)
	}

	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfEven
	var minor apd.Decimal
	if _, err := ctx.Mul(&minor, d, apd.New(100, 0)); err != nil {
		return 0, fmt.Errorf("scale amount %q: %w", s, err)
	}
	if _, err := ctx.RoundToIntegralValue(&minor, &minor); err != nil {
		return 0, fmt.Errorf("round amount %q: %w", s, err)
	}
	v, err := minor.Int64()
	if err != nil {
		return 0, fmt.Errorf("amount %q out of range: %w", s, err)
	}
	return v, nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// collapseSpace trims and collapses internal runs of whitespace to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// recordID identifies a record in issue logs: the raw identifier when one
// is present, otherwise the 1-based position in the batch.
func recordID(entity, rawID string, idx int) string {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return fmt.Sprintf("%s row %d", entity, idx+1)
	}
	return fmt.Sprintf("%s %s", entity, rawID)
}
