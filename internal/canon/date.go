package canon

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a time-zone-free calendar date.
//
// Order dates are calendar dates, not instants: "2024-03-01" means the same
// order day regardless of where the run executes. Keeping dates free of
// location avoids the classic cross-engine divergence where the store and
// the in-memory engine disagree about which day a timestamp falls on.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// ParseDate parses s using the first layout that succeeds.
// Layouts are tried in order; the ordering is part of the cleaning contract
// because formats like 02/01/2006 and 01/02/2006 are ambiguous.
func ParseDate(layouts []string, s string) (Date, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("no accepted date format matches %q", s)
}

// String formats the date as YYYY-MM-DD. This is the only serialization
// used anywhere: in memory, in the store, and in SQL parameters.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Compare returns -1, 0, or +1 according to calendar order.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// AddDays returns the date n days after d (n may be negative).
// Month and year rollover follow the proleptic Gregorian calendar.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return DateOf(t)
}

// MarshalJSON emits the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate([]string{"2006-01-02"}, s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
