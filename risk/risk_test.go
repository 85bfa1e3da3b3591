package risk_test

import (
	"math"
	"testing"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/pricer"
	"github.com/meenmo/bondmath/risk"
	"github.com/meenmo/bondmath/schedule"
)

func flatCurve(t *testing.T, settle calendar.Date, rate float64) *curve.Curve {
	t.Helper()
	far := settle.AddYears(30)
	knots := []curve.Knot{
		{Date: settle, DiscountFactor: 1.0},
		{Date: far, DiscountFactor: math.Exp(-rate * 30.0)},
	}
	c, err := curve.New(settle, knots, daycount.Act365F, curve.LogLinearDF)
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	return c
}

func parBond(settle, maturity calendar.Date) instrument.Bond {
	return instrument.Bond{
		Kind:       instrument.FixedBullet,
		Issue:      settle,
		Maturity:   maturity,
		CouponRate: 0.05,
		Frequency:  schedule.Semiannual,
		DayCount:   daycount.Thirty360US,
		Calendar:   calendar.Fedwire(),
		BDC:        calendar.ModifiedFollowing,
		Stub:       schedule.ShortFront,
		FaceValue:  100,
	}
}

// TestCompute_ParBond_MatchesScenario is spec.md Section 8 scenario 1: modified duration
// ~4.376, DV01 ~0.04376, convexity ~20.07 for the 5-year 5% par bond.
func TestCompute_ParBond_MatchesScenario(t *testing.T) {
	t.Parallel()

	settle := calendar.NewDate(2024, 6, 15)
	maturity := calendar.NewDate(2029, 6, 15)
	b := parBond(settle, maturity)
	c := flatCurve(t, settle, 0.05)

	a, err := pricer.Price(b, c, settle, pricer.MarketInput{
		Kind:       pricer.CleanPriceInput,
		CleanPrice: 100.0,
	}, pricer.Options{})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	m, err := risk.Compute(b, c, settle, a, risk.Config{ShiftBps: 25})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(m.ModifiedDuration-4.376) > 0.01 {
		t.Fatalf("modified duration = %.4f, want approximately 4.376", m.ModifiedDuration)
	}
	if math.Abs(m.DV01-0.04376) > 0.001 {
		t.Fatalf("DV01 = %.5f, want approximately 0.04376", m.DV01)
	}
	if math.Abs(m.Convexity-20.07) > 0.5 {
		t.Fatalf("convexity = %.4f, want approximately 20.07", m.Convexity)
	}
}

// TestCompute_ConvexitySecondOrderApproximation is spec.md Section 8's "convexity
// second-order check": P(y+h) ~= P(y) - D*P*h + 0.5*C*P*h^2 for small h.
func TestCompute_ConvexitySecondOrderApproximation(t *testing.T) {
	t.Parallel()

	settle := calendar.NewDate(2024, 6, 15)
	maturity := calendar.NewDate(2029, 6, 15)
	b := parBond(settle, maturity)
	c := flatCurve(t, settle, 0.05)

	base, err := pricer.Price(b, c, settle, pricer.MarketInput{Kind: pricer.YTMInput, YTM: 0.05}, pricer.Options{})
	if err != nil {
		t.Fatalf("Price at base yield: %v", err)
	}
	m, err := risk.Compute(b, c, settle, base, risk.Config{ShiftBps: 25})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	const h = 0.0005 // 5bp
	bumped, err := pricer.Price(b, c, settle, pricer.MarketInput{Kind: pricer.YTMInput, YTM: 0.05 + h}, pricer.Options{})
	if err != nil {
		t.Fatalf("Price at bumped yield: %v", err)
	}

	approx := base.DirtyPrice - m.ModifiedDuration*base.DirtyPrice*h + 0.5*m.Convexity*base.DirtyPrice*h*h
	if math.Abs(approx-bumped.DirtyPrice) > 0.01 {
		t.Fatalf("second-order approximation %.6f too far from actual price %.6f", approx, bumped.DirtyPrice)
	}
}

// TestCompute_EffectiveDuration_MatchesClosedFormForBullet checks that the
// finite-difference effective duration agrees with the closed-form Macaulay
// duration for an option-free bond: a parallel shift of continuously
// compounded zero rates moves the price by Macaulay, not modified, duration.
func TestCompute_EffectiveDuration_MatchesClosedFormForBullet(t *testing.T) {
	t.Parallel()

	settle := calendar.NewDate(2024, 6, 15)
	maturity := calendar.NewDate(2029, 6, 15)
	b := parBond(settle, maturity)
	c := flatCurve(t, settle, 0.05)

	a, err := pricer.Price(b, c, settle, pricer.MarketInput{
		Kind:       pricer.CleanPriceInput,
		CleanPrice: 100.0,
	}, pricer.Options{})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	m, err := risk.Compute(b, c, settle, a, risk.Config{ShiftBps: 25})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(m.EffectiveDuration-m.MacaulayDuration) > 0.05 {
		t.Fatalf("effective duration %.4f should be close to Macaulay duration %.4f for a bullet bond",
			m.EffectiveDuration, m.MacaulayDuration)
	}
}

func TestCompute_KeyRateDurations_SumCloseToEffectiveDuration(t *testing.T) {
	t.Parallel()

	settle := calendar.NewDate(2024, 6, 15)
	maturity := calendar.NewDate(2029, 6, 15)
	b := parBond(settle, maturity)
	c := flatCurve(t, settle, 0.05)

	a, err := pricer.Price(b, c, settle, pricer.MarketInput{
		Kind:       pricer.CleanPriceInput,
		CleanPrice: 100.0,
	}, pricer.Options{})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	m, err := risk.Compute(b, c, settle, a, risk.Config{
		ShiftBps:  25,
		KRDTenors: []calendar.Date{settle.AddYears(30)},
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(m.KeyRateDurations) != 1 {
		t.Fatalf("expected one key-rate duration, got %d", len(m.KeyRateDurations))
	}
	// With a single knot bearing the whole curve's sensitivity, the parallel
	// bump and the single-tenor bump should produce approximately the same
	// duration.
	if math.Abs(m.KeyRateDurations[0].Duration-m.EffectiveDuration) > 0.05 {
		t.Fatalf("single-tenor KRD %.4f should approximately equal effective duration %.4f",
			m.KeyRateDurations[0].Duration, m.EffectiveDuration)
	}
}
