// Package cashflow projects an instrument.Bond into its dated coupon and
// principal payments, and computes accrued interest as of a settlement
// date.
package cashflow

import (
	"fmt"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/schedule"
)

// CashFlow is a single dated payment: coupon plus any principal repaid on
// that date. Amounts are per 100 of face value, matching the teacher's
// bond.Cashflow convention.
type CashFlow struct {
	Date      calendar.Date
	Coupon    float64
	Principal float64
}

// Amount is the total payment on this date.
func (c CashFlow) Amount() float64 { return c.Coupon + c.Principal }

// ErrInvalidSchedule is returned when a bond's schedule cannot be built.
var ErrInvalidSchedule = fmt.Errorf("cashflow: invalid schedule")

// ErrNoCashFlowsAfterSettlement is returned by AfterSettlement when no
// payments remain after the settlement date (a matured or post-redemption bond).
var ErrNoCashFlowsAfterSettlement = fmt.Errorf("cashflow: no cash flows remain after settlement")

// Project builds the full set of cash flows for b. fwd is consulted only
// for FloatingRate bonds (nil is an error for that kind); it supplies the
// projected index fixing for each period via ForwardRate.
func Project(b instrument.Bond, fwd *curve.Curve) ([]CashFlow, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	periods, err := schedule.Generate(schedule.Config{
		Issue:                    b.Issue,
		Maturity:                 b.Maturity,
		Frequency:                b.Frequency,
		Calendar:                 b.Calendar,
		BDC:                      b.BDC,
		Stub:                     b.Stub,
		AdjustBothDatesAndAmount: b.AdjustBothDatesAndAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	outstanding := 1.0 // fraction of FaceValue still outstanding
	flows := make([]CashFlow, 0, len(periods))
	for i, p := range periods {
		// preAmortOutstanding is the balance the coupon for this period
		// accrues on; amortizationDueAt below mutates outstanding to the
		// post-paydown balance, which must not leak into this period's
		// coupon.
		preAmortOutstanding := outstanding

		principalPct := 0.0
		if i == len(periods)-1 {
			principalPct = outstanding // redemption
		}
		if b.Kind == instrument.Amortizing {
			principalPct = amortizationDueAt(b.AmortizationSchedule, p.End, &outstanding)
		}

		couponRate, err := couponRateForPeriod(b, p, fwd)
		if err != nil {
			return nil, err
		}

		isMaturity := i == len(periods)-1
		yf, err := daycount.YearFractionWithMaturity(p.Start, p.End, b.DayCount, icmaPeriod(b, p), isMaturity)
		if err != nil {
			return nil, err
		}

		indexRatio := 1.0
		if b.Kind == instrument.InflationLinked {
			indexRatio, err = b.Inflation.IndexRatio(p.End)
			if err != nil {
				return nil, fmt.Errorf("cashflow: %w", err)
			}
		}

		coupon := couponRate * yf * preAmortOutstanding * 100.0 * indexRatio

		flows = append(flows, CashFlow{
			Date:      p.PayDate,
			Coupon:    coupon,
			Principal: principalPct * 100.0 * indexRatio,
		})
	}
	return flows, nil
}

// AfterSettlement filters flows to those strictly after settlement, the
// shape a pricer or yield solver consumes.
func AfterSettlement(flows []CashFlow, settlement calendar.Date) ([]CashFlow, error) {
	out := make([]CashFlow, 0, len(flows))
	for _, f := range flows {
		if f.Date.After(settlement) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoCashFlowsAfterSettlement
	}
	return out, nil
}

func couponRateForPeriod(b instrument.Bond, p schedule.Period, fwd *curve.Curve) (float64, error) {
	switch b.Kind {
	case instrument.FloatingRate:
		if b.Float == nil {
			return 0, fmt.Errorf("cashflow: FloatingRate bond missing Float spec")
		}
		if fwd == nil {
			return 0, fmt.Errorf("cashflow: FloatingRate projection requires a forward curve")
		}
		rate, err := fwd.ForwardRate(p.Start, p.End)
		if err != nil {
			return 0, fmt.Errorf("cashflow: forward rate lookup: %w", err)
		}
		rate += b.Float.SpreadBps / 10000.0
		if b.Float.CapRate != nil && rate > *b.Float.CapRate {
			rate = *b.Float.CapRate
		}
		if b.Float.FloorRate != nil && rate < *b.Float.FloorRate {
			rate = *b.Float.FloorRate
		}
		return rate, nil
	case instrument.ZeroCoupon:
		return 0, nil
	case instrument.InflationLinked:
		// The nominal coupon rate; Project and AccruedInterest apply the
		// CPI index ratio on top of this, scaling both coupon and
		// redemption principal.
		return b.CouponRate, nil
	default:
		return b.CouponRate, nil
	}
}

func icmaPeriod(b instrument.Bond, p schedule.Period) *daycount.Period {
	if b.DayCount != daycount.ActActICMA {
		return nil
	}
	return &daycount.Period{Start: p.Start, End: p.End, Frequency: int(b.Frequency)}
}

func amortizationDueAt(steps []instrument.AmortizationStep, date calendar.Date, outstanding *float64) float64 {
	for _, s := range steps {
		if s.Date.Equal(date) {
			paid := *outstanding - s.OutstandingPct
			*outstanding = s.OutstandingPct
			return paid
		}
	}
	return 0
}

// AccruedInterest computes the accrued coupon as of settlement, with the
// ex-dividend sign flip: inside the ex-dividend window, the coupon has
// already been paid to the prior holder, so accrued becomes negative
// (the buyer is owed a rebate equal to the remaining days' worth).
func AccruedInterest(b instrument.Bond, settlement calendar.Date) (float64, error) {
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	periods, err := schedule.Generate(schedule.Config{
		Issue:                    b.Issue,
		Maturity:                 b.Maturity,
		Frequency:                b.Frequency,
		Calendar:                 b.Calendar,
		BDC:                      b.BDC,
		Stub:                     b.Stub,
		AdjustBothDatesAndAmount: b.AdjustBothDatesAndAmount,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	var current *schedule.Period
	isMaturity := false
	for i := range periods {
		if !settlement.Before(periods[i].Start) && settlement.Before(periods[i].End) {
			current = &periods[i]
			isMaturity = i == len(periods)-1
			break
		}
	}
	if current == nil {
		return 0, nil
	}

	yfElapsed, err := daycount.YearFraction(current.Start, settlement, b.DayCount, icmaPeriod(b, *current))
	if err != nil {
		return 0, err
	}
	yfFull, err := daycount.YearFractionWithMaturity(current.Start, current.End, b.DayCount, icmaPeriod(b, *current), isMaturity)
	if err != nil {
		return 0, err
	}
	if yfFull == 0 {
		return 0, nil
	}

	couponRate, err := couponRateForPeriod(b, *current, nil)
	if err != nil && b.Kind != instrument.FloatingRate {
		return 0, err
	}

	indexRatio := 1.0
	if b.Kind == instrument.InflationLinked {
		indexRatio, err = b.Inflation.IndexRatio(current.End)
		if err != nil {
			return 0, fmt.Errorf("cashflow: %w", err)
		}
	}

	accrued := couponRate * yfElapsed * 100.0 * indexRatio

	if b.ExDividendDays != nil && *b.ExDividendDays > 0 {
		exDivStart := b.Calendar.AddBusinessDays(current.End, -*b.ExDividendDays)
		if !settlement.Before(exDivStart) {
			remaining := couponRate * (yfFull - yfElapsed) * 100.0 * indexRatio
			return -remaining, nil
		}
	}
	return accrued, nil
}
