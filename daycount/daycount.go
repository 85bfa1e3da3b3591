// Package daycount computes accrual year fractions under the standard
// fixed-income day-count conventions.
package daycount

import (
	"errors"
	"fmt"

	"github.com/meenmo/bondmath/calendar"
)

// Convention names a day-count basis.
type Convention int

const (
	Act360 Convention = iota
	Act365F
	ActActISDA
	ActActICMA
	Thirty360US
	Thirty360EU
	Thirty360EUISDA
)

func (c Convention) String() string {
	switch c {
	case Act360:
		return "ACT/360"
	case Act365F:
		return "ACT/365F"
	case ActActISDA:
		return "ACT/ACT-ISDA"
	case ActActICMA:
		return "ACT/ACT-ICMA"
	case Thirty360US:
		return "30/360-US"
	case Thirty360EU:
		return "30E/360"
	case Thirty360EUISDA:
		return "30E/360-ISDA"
	default:
		return "UNKNOWN"
	}
}

// ErrNeedsSchedule is returned when ACT/ACT-ICMA is asked for a year
// fraction without the enclosing coupon period and frequency it requires.
var ErrNeedsSchedule = errors.New("daycount: ACT/ACT-ICMA requires schedule context")

// Period carries the coupon-period context ACT/ACT-ICMA needs: the
// enclosing period's boundaries and payments per year.
type Period struct {
	Start     calendar.Date
	End       calendar.Date
	Frequency int // coupon payments per year, e.g. 2 for semiannual
}

// YearFraction computes the accrual fraction of a year between start and
// end under conv. For ActActICMA, period must be non-nil and describe the
// coupon period containing [start, end]; every other convention ignores it.
// It is equivalent to YearFractionWithMaturity(..., false).
func YearFraction(start, end calendar.Date, conv Convention, period *Period) (float64, error) {
	return YearFractionWithMaturity(start, end, conv, period, false)
}

// YearFractionWithMaturity is YearFraction's full form: isMaturity marks
// whether end is the instrument's final redemption date. It affects only
// 30E/360-ISDA, whose end-of-February-to-30 adjustment is skipped at
// maturity (spec.md 4.1).
func YearFractionWithMaturity(start, end calendar.Date, conv Convention, period *Period, isMaturity bool) (float64, error) {
	if end.Before(start) {
		sign := -1.0
		f, err := YearFractionWithMaturity(end, start, conv, period, isMaturity)
		if err != nil {
			return 0, err
		}
		return sign * f, nil
	}
	switch conv {
	case Act360:
		return float64(start.DaysUntil(end)) / 360.0, nil
	case Act365F:
		return float64(start.DaysUntil(end)) / 365.0, nil
	case ActActISDA:
		return actActISDA(start, end), nil
	case ActActICMA:
		if period == nil || period.Frequency <= 0 {
			return 0, fmt.Errorf("daycount: %w", ErrNeedsSchedule)
		}
		return actActICMA(start, end, *period), nil
	case Thirty360US:
		return thirty360US(start, end), nil
	case Thirty360EU:
		return thirty360E(start, end), nil
	case Thirty360EUISDA:
		return thirty360EISDA(start, end, isMaturity), nil
	default:
		return 0, fmt.Errorf("daycount: unknown convention %v", conv)
	}
}

// actActISDA splits [start, end] at each calendar year boundary and weighs
// the days falling in a leap year by 366, the rest by 365.
func actActISDA(start, end calendar.Date) float64 {
	if start.Year() == end.Year() {
		denom := 365.0
		if isLeapYear(start.Year()) {
			denom = 366.0
		}
		return float64(start.DaysUntil(end)) / denom
	}
	total := 0.0
	cursor := start
	for cursor.Year() < end.Year() {
		yearEnd := calendar.NewDate(cursor.Year()+1, 1, 1)
		denom := 365.0
		if isLeapYear(cursor.Year()) {
			denom = 366.0
		}
		total += float64(cursor.DaysUntil(yearEnd)) / denom
		cursor = yearEnd
	}
	denom := 365.0
	if isLeapYear(end.Year()) {
		denom = 366.0
	}
	total += float64(cursor.DaysUntil(end)) / denom
	return total
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// actActICMA divides actual days elapsed by (frequency × actual days in the
// reference coupon period) — the ICMA/ISMA convention used by most
// government bond markets.
func actActICMA(start, end calendar.Date, period Period) float64 {
	periodDays := float64(period.Start.DaysUntil(period.End))
	if periodDays <= 0 {
		return 0
	}
	elapsed := float64(start.DaysUntil(end))
	return elapsed / (periodDays * float64(period.Frequency))
}

// thirty360US is the US (NASD/bond-basis) 30/360 convention, with the
// standard end-of-month adjustments.
func thirty360US(start, end calendar.Date) float64 {
	d1, d2 := start.Day(), end.Day()
	m1, y1 := int(start.Month()), start.Year()
	m2, y2 := int(end.Month()), end.Year()

	if d1 == 31 || (start.IsEndOfMonth() && start.Month() == 2) {
		d1 = 30
	}
	if d2 == 31 && d1 == 30 {
		d2 = 30
	}
	return thirty360Days(y1, m1, d1, y2, m2, d2) / 360.0
}

// thirty360E is the 30E/360 (Eurobond) convention: day 31 is always capped
// to 30 on both legs, independent of the other date.
func thirty360E(start, end calendar.Date) float64 {
	d1, d2 := start.Day(), end.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 {
		d2 = 30
	}
	return thirty360Days(start.Year(), int(start.Month()), d1, end.Year(), int(end.Month()), d2) / 360.0
}

// thirty360EISDA is 30E/360-ISDA: like 30E/360, but also caps the day to 30
// when the date is the last day of February (both legs) — unless that date
// is the instrument's maturity, which is exempt from the February cap.
func thirty360EISDA(start, end calendar.Date, isMaturity bool) float64 {
	d1, d2 := start.Day(), end.Day()
	if d1 == 31 || (start.Month() == 2 && start.IsEndOfMonth()) {
		d1 = 30
	}
	if d2 == 31 || (!isMaturity && end.Month() == 2 && end.IsEndOfMonth()) {
		d2 = 30
	}
	return thirty360Days(start.Year(), int(start.Month()), d1, end.Year(), int(end.Month()), d2) / 360.0
}

func thirty360Days(y1, m1, d1, y2, m2, d2 int) float64 {
	return float64(360*(y2-y1) + 30*(m2-m1) + (d2 - d1))
}
