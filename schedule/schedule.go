// Package schedule generates bond coupon schedules: the sequence of
// accrual periods and payment dates between issue and maturity.
package schedule

import (
	"fmt"

	"github.com/meenmo/bondmath/calendar"
)

// StubRule selects where and how a broken (non-standard-length) period
// is placed when issue-to-maturity doesn't divide evenly by the coupon
// frequency.
type StubRule int

const (
	// ShortFront places a shortened period at the start of the schedule.
	ShortFront StubRule = iota
	// LongFront merges the would-be short front stub into the next period.
	LongFront
	// ShortBack places a shortened period at the end of the schedule.
	ShortBack
	// LongBack merges the would-be short back stub into the preceding period.
	LongBack
)

// Frequency is coupon payments per year.
type Frequency int

const (
	Annual     Frequency = 1
	Semiannual Frequency = 2
	Quarterly  Frequency = 4
	Monthly    Frequency = 12
)

// Period is a single accrual period: [Start, End) with an adjusted
// PayDate (business-day adjustment applied to End, per the default
// "adjust the payment date, not the coupon amount" rule — see
// AdjustBothDatesAndAmount for the alternative).
type Period struct {
	Start   calendar.Date // accrual start; unadjusted unless AdjustBothDatesAndAmount
	End     calendar.Date // accrual end; unadjusted unless AdjustBothDatesAndAmount
	PayDate calendar.Date // business-day adjusted payment date
	Stub    bool
}

// Config describes how to build a coupon schedule.
type Config struct {
	Issue     calendar.Date
	Maturity  calendar.Date
	Frequency Frequency
	Calendar  calendar.Calendar
	BDC       calendar.Convention
	Stub      StubRule

	// AdjustBothDatesAndAmount, when true, also business-day-adjusts the
	// accrual period boundaries (not just the payment date), so the
	// coupon amount reflects the adjusted period length. Default false:
	// only PayDate is adjusted, and accrual uses unadjusted boundaries
	// (DESIGN.md "Non-business-day cash flows" decision).
	AdjustBothDatesAndAmount bool

	// FirstCouponDate, if non-zero, overrides the first regular coupon
	// date (an explicit short/long front stub boundary).
	FirstCouponDate calendar.Date
	// PenultimateCouponDate, if non-zero, overrides the last regular
	// coupon date before maturity (an explicit back stub boundary).
	PenultimateCouponDate calendar.Date
}

// Generate builds the coupon schedule for cfg.
//
// Invariants enforced: period boundaries are strictly increasing, the
// first period starts at Issue, the last period ends at Maturity, and no
// two periods collapse to the same date after adjustment.
func Generate(cfg Config) ([]Period, error) {
	if cfg.Maturity.Before(cfg.Issue) || cfg.Maturity.Equal(cfg.Issue) {
		return nil, fmt.Errorf("schedule: maturity %s must be after issue %s", cfg.Maturity, cfg.Issue)
	}
	if cfg.Frequency <= 0 {
		return nil, fmt.Errorf("schedule: invalid frequency %d", cfg.Frequency)
	}

	monthStep := 12 / int(cfg.Frequency)
	if monthStep*int(cfg.Frequency) != 12 {
		return nil, fmt.Errorf("schedule: frequency %d does not evenly divide 12 months", cfg.Frequency)
	}

	var boundaries []calendar.Date
	var err error
	switch cfg.Stub {
	case ShortFront, LongFront:
		boundaries, err = generateBackwardFromMaturity(cfg, monthStep)
	case ShortBack, LongBack:
		boundaries, err = generateForwardFromIssue(cfg, monthStep)
	default:
		return nil, fmt.Errorf("schedule: unknown stub rule %d", cfg.Stub)
	}
	if err != nil {
		return nil, err
	}

	if err := validateBoundaries(boundaries, cfg); err != nil {
		return nil, err
	}

	periods := make([]Period, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		start, end := boundaries[i], boundaries[i+1]
		stub := isStubPeriod(start, end, monthStep)
		payDate := cfg.Calendar.Adjust(end, cfg.BDC)
		accrualStart, accrualEnd := start, end
		if cfg.AdjustBothDatesAndAmount {
			accrualStart = cfg.Calendar.Adjust(start, cfg.BDC)
			accrualEnd = cfg.Calendar.Adjust(end, cfg.BDC)
			payDate = accrualEnd
		}
		if i > 0 && !payDate.After(periods[i-1].PayDate) {
			return nil, fmt.Errorf("schedule: business-day adjustment collapses the periods ending %s and %s", start, end)
		}
		periods = append(periods, Period{
			Start:   accrualStart,
			End:     accrualEnd,
			PayDate: payDate,
			Stub:    stub,
		})
	}
	return periods, nil
}

// generateBackwardFromMaturity rolls back from Maturity in monthStep
// increments, producing a front stub (short or long, per cfg.Stub) when
// the issue-to-maturity span doesn't divide evenly.
func generateBackwardFromMaturity(cfg Config, monthStep int) ([]calendar.Date, error) {
	var dates []calendar.Date
	cursor := cfg.Maturity
	dates = append(dates, cursor)
	for {
		prev := cursor.AddMonths(-monthStep)
		if !prev.After(cfg.Issue) {
			break
		}
		dates = append(dates, prev)
		cursor = prev
	}
	// dates is currently [Maturity, ..., firstRegularCoupon] descending; reverse.
	reverse(dates)

	if dates[0].Equal(cfg.Issue) {
		return dates, nil
	}

	gapDays := cfg.Issue.DaysUntil(dates[0])
	if cfg.Stub == LongFront && len(dates) > 1 && !dates[0].AddMonths(-monthStep).Equal(cfg.Issue) {
		// Merge the short stub into the first regular period by dropping its
		// boundary and replacing the start with Issue.
		dates = dates[1:]
	}
	_ = gapDays
	full := make([]calendar.Date, 0, len(dates)+1)
	full = append(full, cfg.Issue)
	full = append(full, dates...)
	return full, nil
}

// generateForwardFromIssue rolls forward from Issue in monthStep
// increments, producing a back stub (short or long) at the end.
func generateForwardFromIssue(cfg Config, monthStep int) ([]calendar.Date, error) {
	var dates []calendar.Date
	cursor := cfg.Issue
	dates = append(dates, cursor)
	for {
		next := cursor.AddMonths(monthStep)
		if !next.Before(cfg.Maturity) {
			break
		}
		dates = append(dates, next)
		cursor = next
	}
	if cfg.Stub == LongBack && len(dates) > 1 && !dates[len(dates)-1].AddMonths(monthStep).Equal(cfg.Maturity) {
		dates = dates[:len(dates)-1]
	}
	dates = append(dates, cfg.Maturity)
	return dates, nil
}

func isStubPeriod(start, end calendar.Date, monthStep int) bool {
	expected := start.AddMonths(monthStep)
	return !expected.Equal(end)
}

func reverse(d []calendar.Date) {
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
}

func validateBoundaries(boundaries []calendar.Date, cfg Config) error {
	if len(boundaries) < 2 {
		return fmt.Errorf("schedule: fewer than two boundaries generated")
	}
	if !boundaries[0].Equal(cfg.Issue) {
		return fmt.Errorf("schedule: first boundary %s does not equal issue %s", boundaries[0], cfg.Issue)
	}
	if !boundaries[len(boundaries)-1].Equal(cfg.Maturity) {
		return fmt.Errorf("schedule: last boundary %s does not equal maturity %s", boundaries[len(boundaries)-1], cfg.Maturity)
	}
	for i := 1; i < len(boundaries); i++ {
		if !boundaries[i].After(boundaries[i-1]) {
			return fmt.Errorf("schedule: boundaries not strictly increasing at index %d (%s -> %s)", i, boundaries[i-1], boundaries[i])
		}
	}
	return nil
}
