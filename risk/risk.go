// Package risk computes the first- and second-order price sensitivities
// spec.md 4.8 names: Macaulay/modified/effective duration, convexity/
// effective convexity, DV01, and key-rate duration. The closed-form
// measures consume a bond's own yield-discounted cash flows; the
// effective (finite-difference) measures consume a caller-supplied
// PriceFunc so callable bonds are repriced through the same workout logic
// as the base computation (spec.md 4.8's "critical for callable bonds"
// note) instead of a plain DCF.
package risk

import (
	"fmt"
	"math"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/cashflow"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
)

// defaultShiftBps is the parallel bump spec.md 4.8 uses for effective
// duration/convexity (25bp).
const defaultShiftBps = 25.0

// Metrics is the risk-engine output, spec.md Section 3's duration/
// convexity fields of Analytics, reported as a separate value per spec.md
// Section 6's risk(bond, curve, settle, price) -> RiskMetrics call.
type Metrics struct {
	MacaulayDuration float64
	ModifiedDuration float64
	EffectiveDuration float64
	Convexity         float64
	EffectiveConvexity float64
	DV01              float64
	KeyRateDurations  []KeyRateDuration
}

// KeyRateDuration is the sensitivity to a single curve tenor, spec.md
// 4.8's "full profile is the vector over canonical tenors".
type KeyRateDuration struct {
	Tenor    calendar.Date
	Duration float64
}

// PriceFunc reprices a bond off a bumped curve and returns its clean
// price; callers close over settlement and market-input kind so the same
// workout/OAS logic used for the base price is reused for bumped prices.
type PriceFunc func(c *curve.Curve) (float64, error)

// ClosedForm computes Macaulay/modified duration, convexity, and DV01 from
// a bond's own discounted cash flows at yield y with compounding frequency
// freq — the spec.md 4.8 closed-form formulas, valid for option-free cash
// flow streams (a fixed bullet's, or a callable bond's flows to its
// workout date).
func ClosedForm(flows []cashflow.CashFlow, settle calendar.Date, y, freq, dirtyPrice float64) (Metrics, error) {
	if dirtyPrice <= 0 {
		return Metrics{}, fmt.Errorf("risk: dirty price must be positive, got %v", dirtyPrice)
	}
	if freq <= 0 {
		freq = 1
	}

	var macaulayNumerator, convexityNumerator float64
	for _, cf := range flows {
		t, err := daycount.YearFraction(settle, cf.Date, daycount.Act365F, nil)
		if err != nil {
			return Metrics{}, err
		}
		base := 1.0 + y/freq
		df := math.Pow(base, -freq*t)
		amt := cf.Amount()
		macaulayNumerator += t * amt * df
		convexityNumerator += t * (t + 1.0/freq) * amt * df
	}

	macaulay := macaulayNumerator / dirtyPrice
	modified := macaulay / (1.0 + y/freq)
	convexity := convexityNumerator / (dirtyPrice * (1.0 + y/freq) * (1.0 + y/freq))
	dv01 := modified * dirtyPrice / 10000.0

	return Metrics{
		MacaulayDuration: macaulay,
		ModifiedDuration: modified,
		Convexity:        convexity,
		DV01:             dv01,
	}, nil
}

// Effective computes effective duration and effective convexity via a
// finite-difference parallel curve shift (spec.md 4.8), h in basis points
// (default 25bp).
func Effective(base *curve.Curve, price PriceFunc, hBps float64) (duration, convexity float64, err error) {
	if hBps <= 0 {
		hBps = defaultShiftBps
	}
	h := hBps / 10000.0

	p0, err := price(base)
	if err != nil {
		return 0, 0, fmt.Errorf("risk: effective duration: base price: %w", err)
	}
	up, err := base.ShiftParallel(hBps)
	if err != nil {
		return 0, 0, fmt.Errorf("risk: effective duration: shift up: %w", err)
	}
	down, err := base.ShiftParallel(-hBps)
	if err != nil {
		return 0, 0, fmt.Errorf("risk: effective duration: shift down: %w", err)
	}
	pUp, err := price(up)
	if err != nil {
		return 0, 0, fmt.Errorf("risk: effective duration: price up: %w", err)
	}
	pDown, err := price(down)
	if err != nil {
		return 0, 0, fmt.Errorf("risk: effective duration: price down: %w", err)
	}

	duration = (pDown - pUp) / (2 * p0 * h)
	convexity = (pDown + pUp - 2*p0) / (p0 * h * h)
	return duration, convexity, nil
}

// KeyRateProfile, for each of tenors in turn, bumps the curve knot that
// BumpTenor selects for that date by hBps (default 25bp) and revalues,
// returning one entry per requested tenor — spec.md 4.8's
// KRD(τ) = −(P₊ − P₋)/(2·P₀·h).
func KeyRateProfile(base *curve.Curve, tenors []calendar.Date, price PriceFunc, hBps float64) ([]KeyRateDuration, error) {
	if hBps <= 0 {
		hBps = defaultShiftBps
	}
	h := hBps / 10000.0

	p0, err := price(base)
	if err != nil {
		return nil, fmt.Errorf("risk: key-rate duration: base price: %w", err)
	}

	out := make([]KeyRateDuration, 0, len(tenors))
	for _, tenor := range tenors {
		up, err := base.BumpTenor(tenor, hBps)
		if err != nil {
			return nil, fmt.Errorf("risk: key-rate duration at %s: %w", tenor, err)
		}
		down, err := base.BumpTenor(tenor, -hBps)
		if err != nil {
			return nil, fmt.Errorf("risk: key-rate duration at %s: %w", tenor, err)
		}
		pUp, err := price(up)
		if err != nil {
			return nil, fmt.Errorf("risk: key-rate duration at %s: %w", tenor, err)
		}
		pDown, err := price(down)
		if err != nil {
			return nil, fmt.Errorf("risk: key-rate duration at %s: %w", tenor, err)
		}
		out = append(out, KeyRateDuration{Tenor: tenor, Duration: -(pUp - pDown) / (2 * p0 * h)})
	}
	return out, nil
}
