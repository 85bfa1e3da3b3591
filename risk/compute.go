package risk

import (
	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/cashflow"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/oas"
	"github.com/meenmo/bondmath/pricer"
)

// Config configures Compute: the basis-point shift for the
// finite-difference measures, the curve tenors to profile for key-rate
// duration, and (for callable bonds) the Hull-White params used to hold
// OAS constant while the curve is bumped.
type Config struct {
	ShiftBps  float64
	KRDTenors []calendar.Date
	HullWhite *oas.Params
}

// Compute implements spec.md Section 6's risk(bond, curve, settle, price)
// -> RiskMetrics: a is the Analytics pricer.Price already produced (its
// YTM, dirty price, and — for callable bonds — OAS drive everything
// here). Bumped-curve reprices for a callable bond that carries an OAS
// (a.HasOAS) hold it constant and rebuild the short-rate tree when
// cfg.HullWhite is set (spec.md 4.8's "critical for callable bonds"
// note); in every other case they reprice by plain curve discounting.
func Compute(b instrument.Bond, c *curve.Curve, settle calendar.Date, a pricer.Analytics, cfg Config) (Metrics, error) {
	flows, err := cashflow.Project(b, c)
	if err != nil {
		return Metrics{}, err
	}
	remaining, err := cashflow.AfterSettlement(flows, settle)
	if err != nil {
		return Metrics{}, err
	}

	freq := 1.0
	if b.Frequency > 0 {
		freq = float64(b.Frequency)
	}

	closed, err := ClosedForm(remaining, settle, a.YTM, freq, a.DirtyPrice)
	if err != nil {
		return Metrics{}, err
	}

	priceFn := func(bumped *curve.Curve) (float64, error) {
		var dirty float64
		var err error
		if b.Kind == instrument.FixedCallable && a.HasOAS && cfg.HullWhite != nil {
			dirty, err = oas.Price(b, bumped, settle, a.OASBps, *cfg.HullWhite)
		} else {
			dirty, err = pricer.DirtyPrice(b, bumped, settle)
		}
		if err != nil {
			return 0, err
		}
		return dirty - a.AccruedInterest, nil
	}

	effDuration, effConvexity, err := Effective(c, priceFn, cfg.ShiftBps)
	if err != nil {
		return Metrics{}, err
	}

	var krd []KeyRateDuration
	if len(cfg.KRDTenors) > 0 {
		krd, err = KeyRateProfile(c, cfg.KRDTenors, priceFn, cfg.ShiftBps)
		if err != nil {
			return Metrics{}, err
		}
	}

	closed.EffectiveDuration = effDuration
	closed.EffectiveConvexity = effConvexity
	closed.KeyRateDurations = krd
	return closed, nil
}
