package canon

import "fmt"

// IssueKind categorizes a validation anomaly.
type IssueKind string

const (
	// IssueInvalidID indicates a record whose identifier field is missing
	// or not an integer. The record is rejected.
	IssueInvalidID IssueKind = "InvalidId"

	// IssueDuplicateID indicates a later record reusing an already-seen
	// identifier. First-wins: the later record is dropped.
	IssueDuplicateID IssueKind = "DuplicateId"

	// IssueInvalidMobileNumber indicates a mobile number that does not
	// normalize to the expected digit count. Non-fatal: the field is
	// nulled and the customer is kept.
	IssueInvalidMobileNumber IssueKind = "InvalidMobileNumber"

	// IssueUnrecognizedRegion indicates a region value with no mapping in
	// the canonical enumeration. Non-fatal: bucketed as Unknown.
	IssueUnrecognizedRegion IssueKind = "UnrecognizedRegion"

	// IssueUnparseableDate indicates an order date that none of the
	// accepted formats parse. The order is rejected.
	IssueUnparseableDate IssueKind = "UnparseableDate"

	// IssueInvalidAmount indicates a non-numeric or negative order amount.
	// The order is rejected.
	IssueInvalidAmount IssueKind = "InvalidAmount"

	// IssueOrphanOrder indicates an order whose customer_id does not
	// resolve to a canonical customer. The order is rejected.
	IssueOrphanOrder IssueKind = "OrphanOrder"
)

// ValidationIssue records one rejection or downgrade observed during
// canonicalization. Issues are collected, never thrown: downstream KPI
// counts depend on knowing exactly which records survived and why the
// rest did not.
type ValidationIssue struct {
	Kind     IssueKind `json:"kind"`
	RecordID string    `json:"record_id"`
	RawValue string    `json:"raw_value"`
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: record %s (raw %q)", v.Kind, v.RecordID, v.RawValue)
}

// CountByKind tallies issues per kind for the run summary.
func CountByKind(issues []ValidationIssue) map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, is := range issues {
		counts[is.Kind]++
	}
	return counts
}
