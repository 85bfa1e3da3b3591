package calendar

import (
	"fmt"
	"time"
)

// Date is a civil calendar date with day-precision arithmetic. It carries no
// time-zone semantics: all internal storage is UTC midnight, and two Dates
// constructed from the same (year, month, day) always compare equal.
type Date struct {
	t time.Time
}

// NewDate constructs a Date from a calendar (year, month, day) triple.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate, panicking on a malformed literal. Intended for
// package-level constants and tests, never for caller-supplied input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime truncates a time.Time to its UTC calendar date.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the UTC-midnight time.Time backing d, for interop with
// time-based APIs (e.g. time.Time.Format).
func (d Date) Time() time.Time { return d.t }

// Year, Month, Day return the calendar components of d.
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths returns d shifted by n months, EOM-preserving in the sense of
// Excel's EDATE: shifting Jan 31 by one month gives Feb 28/29, not Mar 3.
func (d Date) AddMonths(n int) Date {
	firstOfMonth := time.Date(d.t.Year(), d.t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	naive := d.t.AddDate(0, n, 0)
	if naive.Month() == firstOfMonth.Month() {
		return Date{t: naive}
	}
	last := naive
	for last.Month() != firstOfMonth.Month() {
		last = last.AddDate(0, 0, -1)
	}
	return Date{t: last}
}

// AddYears returns d shifted by n years with the same EOM-preserving rule as AddMonths.
func (d Date) AddYears(n int) Date { return d.AddMonths(12 * n) }

// Before, After, Equal compare two Dates.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// DaysUntil returns the signed number of calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.t.Year(), d.t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsEndOfMonth reports whether d is the last calendar day of its month.
func (d Date) IsEndOfMonth() bool { return d.Day() == d.DaysInMonth() }

// String renders d as an ISO-8601 calendar date.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON renders d as a JSON string "YYYY-MM-DD", per the
// serialization contract (spec.md Section 6: dates are ISO-8601 strings).
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a JSON string "YYYY-MM-DD" into d.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("calendar: Date must be a JSON string, got %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TenorUnit is the symbolic unit a Tenor is expressed in.
type TenorUnit int

const (
	Days TenorUnit = iota
	Months
	Years
)

// Tenor is a symbolic (days | months | years) offset, resolvable against a
// reference date using a named calendar and business-day convention.
type Tenor struct {
	Count int
	Unit  TenorUnit
}

// ParseTenor parses strings like "1W", "3M", "10Y", "2D" into a Tenor.
// "W" is accepted as a convenience and converted to 7×Days.
func ParseTenor(s string) (Tenor, error) {
	if len(s) < 2 {
		return Tenor{}, fmt.Errorf("calendar: invalid tenor %q", s)
	}
	suffix := s[len(s)-1]
	var n int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &n); err != nil {
		return Tenor{}, fmt.Errorf("calendar: invalid tenor %q: %w", s, err)
	}
	switch suffix {
	case 'D', 'd':
		return Tenor{Count: n, Unit: Days}, nil
	case 'W', 'w':
		return Tenor{Count: n * 7, Unit: Days}, nil
	case 'M', 'm':
		return Tenor{Count: n, Unit: Months}, nil
	case 'Y', 'y':
		return Tenor{Count: n, Unit: Years}, nil
	default:
		return Tenor{}, fmt.Errorf("calendar: invalid tenor suffix in %q", s)
	}
}

// addRaw advances ref by the tenor's calendar amount with no business-day adjustment.
func (t Tenor) addRaw(ref Date) Date {
	switch t.Unit {
	case Days:
		return ref.AddDays(t.Count)
	case Months:
		return ref.AddMonths(t.Count)
	case Years:
		return ref.AddYears(t.Count)
	default:
		return ref
	}
}

// Years approximates the tenor's length in years (ACT/365F), for sorting and
// curve-knot placement.
func (t Tenor) Years() float64 {
	switch t.Unit {
	case Days:
		return float64(t.Count) / 365.0
	case Months:
		return float64(t.Count) / 12.0
	case Years:
		return float64(t.Count)
	default:
		return 0
	}
}

func (t Tenor) String() string {
	switch t.Unit {
	case Days:
		return fmt.Sprintf("%dD", t.Count)
	case Months:
		return fmt.Sprintf("%dM", t.Count)
	case Years:
		return fmt.Sprintf("%dY", t.Count)
	default:
		return fmt.Sprintf("%d?", t.Count)
	}
}
