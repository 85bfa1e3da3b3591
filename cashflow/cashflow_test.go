package cashflow_test

import (
	"math"
	"testing"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/cashflow"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/schedule"
)

func fixedBond() instrument.Bond {
	return instrument.Bond{
		Kind:       instrument.FixedBullet,
		Issue:      calendar.NewDate(2020, 1, 15),
		Maturity:   calendar.NewDate(2025, 1, 15),
		CouponRate: 0.04,
		Frequency:  schedule.Semiannual,
		DayCount:   daycount.Thirty360US,
		Calendar:   calendar.TARGET(),
		BDC:        calendar.ModifiedFollowing,
		Stub:       schedule.ShortFront,
		FaceValue:  100,
	}
}

func TestProject_FixedBullet_LastFlowRedeemsFace(t *testing.T) {
	t.Parallel()

	flows, err := cashflow.Project(fixedBond(), nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	last := flows[len(flows)-1]
	if math.Abs(last.Principal-100) > 1e-9 {
		t.Fatalf("expected final principal of 100, got %v", last.Principal)
	}
	for _, f := range flows[:len(flows)-1] {
		if f.Principal != 0 {
			t.Fatalf("non-final period should have zero principal, got %v on %s", f.Principal, f.Date)
		}
	}
}

func TestProject_FixedBullet_CouponAmountPositive(t *testing.T) {
	t.Parallel()

	flows, err := cashflow.Project(fixedBond(), nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	for _, f := range flows {
		if f.Coupon <= 0 {
			t.Fatalf("expected positive coupon, got %v on %s", f.Coupon, f.Date)
		}
	}
}

func TestProject_ZeroCoupon_NoInterimCoupons(t *testing.T) {
	t.Parallel()

	b := fixedBond()
	b.Kind = instrument.ZeroCoupon
	b.CouponRate = 0
	flows, err := cashflow.Project(b, nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	for _, f := range flows {
		if f.Coupon != 0 {
			t.Fatalf("zero-coupon bond must have zero coupon payments, got %v", f.Coupon)
		}
	}
}

func TestProject_FloatingRate_RequiresForwardCurve(t *testing.T) {
	t.Parallel()

	b := fixedBond()
	b.Kind = instrument.FloatingRate
	tenor, _ := calendar.ParseTenor("3M")
	b.Float = &instrument.FloatSpec{IndexTenor: tenor, SpreadBps: 25}
	if _, err := cashflow.Project(b, nil); err == nil {
		t.Fatalf("expected error projecting floating-rate bond without a forward curve")
	}
}

func TestProject_FloatingRate_UsesForwardRate(t *testing.T) {
	t.Parallel()

	b := fixedBond()
	b.Kind = instrument.FloatingRate
	tenor, _ := calendar.ParseTenor("6M")
	b.Float = &instrument.FloatSpec{IndexTenor: tenor, SpreadBps: 0}

	knots := []curve.Knot{
		{Date: calendar.NewDate(2020, 1, 15), DiscountFactor: 1.0},
		{Date: calendar.NewDate(2025, 1, 15), DiscountFactor: 0.9},
	}
	fwd, err := curve.New(calendar.NewDate(2020, 1, 15), knots, daycount.Act365F, curve.LogLinearDF)
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}

	flows, err := cashflow.Project(b, fwd)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(flows) == 0 {
		t.Fatalf("expected at least one cash flow")
	}
}

// amortizingBond is a 2-year, no-stub semiannual bond so period boundaries
// land exactly on 2020-07-15, 2021-01-15, 2021-07-15, 2022-01-15.
func amortizingBond() instrument.Bond {
	b := fixedBond()
	b.Maturity = calendar.NewDate(2022, 1, 15)
	b.Kind = instrument.Amortizing
	b.AmortizationSchedule = []instrument.AmortizationStep{
		{Date: calendar.NewDate(2020, 7, 15), OutstandingPct: 0.5},
		{Date: calendar.NewDate(2022, 1, 15), OutstandingPct: 0},
	}
	return b
}

// TestProject_Amortizing_CouponAccruesOnPrePaydownBalance guards against
// computing a period's coupon off the balance already reduced by that
// same period's paydown.
func TestProject_Amortizing_CouponAccruesOnPrePaydownBalance(t *testing.T) {
	t.Parallel()

	flows, err := cashflow.Project(amortizingBond(), nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(flows) != 4 {
		t.Fatalf("expected 4 periods, got %d", len(flows))
	}

	// First period's coupon accrues on the full pre-paydown balance (1.0),
	// not the 0.5 it's paid down to at period end.
	if math.Abs(flows[0].Coupon-2.0) > 1e-9 {
		t.Fatalf("first-period coupon = %v, want 2.0 (accrued on pre-paydown balance)", flows[0].Coupon)
	}
	if math.Abs(flows[0].Principal-50.0) > 1e-9 {
		t.Fatalf("first-period principal = %v, want 50.0", flows[0].Principal)
	}

	// Second period's coupon accrues on the reduced 0.5 balance.
	if math.Abs(flows[1].Coupon-1.0) > 1e-9 {
		t.Fatalf("second-period coupon = %v, want 1.0", flows[1].Coupon)
	}

	// Final period fully redeems what remains.
	last := flows[len(flows)-1]
	if math.Abs(last.Principal-50.0) > 1e-9 {
		t.Fatalf("final principal = %v, want 50.0", last.Principal)
	}
}

func inflationLinkedBond() instrument.Bond {
	b := fixedBond()
	b.Maturity = calendar.NewDate(2022, 1, 15)
	b.Kind = instrument.InflationLinked
	b.Inflation = &instrument.InflationSpec{
		BaseIndex: 200.0,
		LagMonths: 0,
		ReferenceIndex: []instrument.InflationFixing{
			{Date: calendar.NewDate(2020, 7, 15), Index: 204.0},
			{Date: calendar.NewDate(2021, 1, 15), Index: 208.0},
			{Date: calendar.NewDate(2021, 7, 15), Index: 212.0},
			{Date: calendar.NewDate(2022, 1, 15), Index: 216.0},
		},
	}
	return b
}

// TestProject_InflationLinked_ScalesCouponAndPrincipalByIndexRatio guards
// against InflationLinked bonds pricing identically to a FixedBullet.
func TestProject_InflationLinked_ScalesCouponAndPrincipalByIndexRatio(t *testing.T) {
	t.Parallel()

	flows, err := cashflow.Project(inflationLinkedBond(), nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	// First period: coupon rate 0.04, yf 0.5, ratio 204/200 = 1.02.
	wantCoupon := 0.04 * 0.5 * 100.0 * 1.02
	if math.Abs(flows[0].Coupon-wantCoupon) > 1e-9 {
		t.Fatalf("first-period coupon = %v, want %v", flows[0].Coupon, wantCoupon)
	}

	// Final period redeems face scaled by the maturity index ratio 216/200 = 1.08.
	last := flows[len(flows)-1]
	wantPrincipal := 100.0 * 1.08
	if math.Abs(last.Principal-wantPrincipal) > 1e-9 {
		t.Fatalf("final principal = %v, want %v", last.Principal, wantPrincipal)
	}
}

func TestProject_InflationLinked_MissingFixingErrors(t *testing.T) {
	t.Parallel()

	b := inflationLinkedBond()
	b.Inflation.ReferenceIndex = nil
	if _, err := cashflow.Project(b, nil); err == nil {
		t.Fatalf("expected error when no reference index fixings are supplied")
	}
}

func TestAccruedInterest_MidPeriod(t *testing.T) {
	t.Parallel()

	b := fixedBond()
	settlement := calendar.NewDate(2022, 4, 15) // 3 months into a semiannual period starting 2022-01-15
	ai, err := cashflow.AccruedInterest(b, settlement)
	if err != nil {
		t.Fatalf("AccruedInterest: %v", err)
	}
	if ai <= 0 {
		t.Fatalf("expected positive accrued interest mid-period, got %v", ai)
	}
	if ai >= 2.0 { // semiannual coupon of 2.0 per 100; mid-period accrual must be less
		t.Fatalf("accrued interest %v should be less than the full coupon 2.0", ai)
	}
}

func TestAccruedInterest_ExDividendFlipsSign(t *testing.T) {
	t.Parallel()

	b := fixedBond()
	exDivDays := 7
	b.ExDividendDays = &exDivDays

	// Settlement inside the ex-dividend window just before a 2022-07-15 coupon.
	settlement := calendar.NewDate(2022, 7, 10)
	ai, err := cashflow.AccruedInterest(b, settlement)
	if err != nil {
		t.Fatalf("AccruedInterest: %v", err)
	}
	if ai >= 0 {
		t.Fatalf("expected negative accrued interest inside ex-dividend window, got %v", ai)
	}
}

func TestAfterSettlement_FiltersPastFlows(t *testing.T) {
	t.Parallel()

	flows, err := cashflow.Project(fixedBond(), nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	settlement := flows[0].Date
	remaining, err := cashflow.AfterSettlement(flows, settlement)
	if err != nil {
		t.Fatalf("AfterSettlement: %v", err)
	}
	if len(remaining) != len(flows)-1 {
		t.Fatalf("expected %d remaining flows, got %d", len(flows)-1, len(remaining))
	}
}

func TestAfterSettlement_ErrorsWhenNoneRemain(t *testing.T) {
	t.Parallel()

	flows, err := cashflow.Project(fixedBond(), nil)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	last := flows[len(flows)-1].Date
	if _, err := cashflow.AfterSettlement(flows, last); err == nil {
		t.Fatalf("expected ErrNoCashFlowsAfterSettlement")
	}
}
