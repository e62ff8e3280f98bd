package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerline/orderpulse/internal/canon"
)

// headerAliases maps snake-cased source headers onto canonical raw field
// names. Sources disagree on header spelling; canonicalization should not
// have to care.
var headerAliases = map[string]string{
	"customer_id":   canon.FieldCustomerID,
	"cust_id":       canon.FieldCustomerID,
	"id":            canon.FieldCustomerID,
	"name":          canon.FieldName,
	"customer_name": canon.FieldName,
	"mobile_number": canon.FieldMobile,
	"mobile":        canon.FieldMobile,
	"phone":         canon.FieldMobile,
	"region":        canon.FieldRegion,
	"zone":          canon.FieldRegion,
	"created_at":    canon.FieldCreatedAt,
	"signup_date":   canon.FieldCreatedAt,
}

// CSVResult holds the raw records read from one CSV source.
type CSVResult struct {
	Records []canon.RawRecord
	Skipped int // structurally unreadable rows
}

// ReadCustomersCSV reads header-mapped customer rows. The first row is the
// header; unknown columns are carried through under their snake-cased
// name so future rules can reach them. Rows with a column-count mismatch
// are skipped and counted.
func ReadCustomersCSV(r io.Reader) (CSVResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return CSVResult{}, fmt.Errorf("read csv header: %w", err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		key := snakeCase(h)
		if mapped, ok := headerAliases[key]; ok {
			key = mapped
		}
		fields[i] = key
	}

	var res CSVResult
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped++
			continue
		}
		if len(row) != len(fields) {
			res.Skipped++
			continue
		}
		rec := make(canon.RawRecord, len(fields))
		for i, v := range row {
			rec[fields[i]] = v
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// snakeCase lower-cases a header and joins its words with underscores.
func snakeCase(s string) string {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}
