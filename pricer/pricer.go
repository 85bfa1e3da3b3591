// Package pricer implements the discounted-cash-flow pricer: clean/dirty
// pricing, YTM/YTC/YTW solving, and the spread family (Z/I/G/ASW). It
// consumes curve, cashflow, and solve; the oas package builds on it for
// callable-bond option-adjusted spread.
package pricer

import (
	"fmt"
	"math"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/cashflow"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/diag"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/oas"
	"github.com/meenmo/bondmath/solve"
)

// yieldBracketLo/Hi bound the Newton-Brent fallback, per spec.md 4.7.
const (
	yieldBracketLo = -0.10
	yieldBracketHi = 0.50
	yieldTolerance = 1e-10
	yieldMaxIter   = 100
)

// CallYield is a single call/put date's strike price and the yield it
// implies if the bond is called there.
type CallYield struct {
	Date  calendar.Date
	Price float64 // clean strike, per 100
	Yield float64 // decimal
}

// Analytics is the fully-populated pricing output of Price: everything
// spec.md Section 3 names except the duration/convexity family, which the
// risk package computes separately from the same cash flows (spec.md
// Section 6 splits price() and risk() into two calls).
type Analytics struct {
	CleanPrice      float64
	DirtyPrice      float64
	AccruedInterest float64

	YTM  float64
	YTC  []CallYield // empty unless the bond carries a call schedule
	YTW  float64
	WorkoutDate  calendar.Date
	WorkoutPrice float64

	CurrentYield float64

	ZSpreadBps float64
	ISpreadBps float64
	GSpreadBps float64
	ASWSpreadBps float64

	HasOAS  bool
	OASBps  float64

	DaysToMaturity  int
	YearsToMaturity float64

	Diagnostics diag.Diagnostics
}

// InputKind discriminates which quantity a caller supplies to Price; the
// others are then derived (spec.md Section 6: market_input is one of
// {clean_price, ytm, z_spread, oas}).
type InputKind int

const (
	CleanPriceInput InputKind = iota
	YTMInput
	ZSpreadInput
	OASInput
)

// MarketInput is the tagged-union quote Price consumes.
type MarketInput struct {
	Kind InputKind

	CleanPrice float64 // CleanPriceInput
	YTM        float64 // YTMInput, decimal
	ZSpreadBps float64 // ZSpreadInput

	// OASInput fields: the option-adjusted spread to reprice at, plus the
	// Hull-White tree parameters the oas package needs to build it.
	OASBps  float64
	HWAlpha float64
	HWSigma float64
	HWSteps int
}

// Benchmarks supplies the reference curves I-spread and G-spread are
// measured against; either may be nil, in which case that spread field is
// left zero in the returned Analytics.
type Benchmarks struct {
	SwapCurve *curve.Curve
	GovtCurve *curve.Curve
}

// Options configures a Price call.
type Options struct {
	Benchmarks Benchmarks
	// HullWhite, when set, makes Price also derive OAS for the given
	// dirty price (input kinds other than OASInput) via the oas package's
	// tree; without it, HasOAS stays false for those input kinds.
	// Option-free bonds short-circuit to OAS == ZSpread (spec.md Section
	// 8's "OAS vanishes for option-free bonds" property) without building
	// a tree.
	HullWhite *oas.Params
	Logger    *diag.Logger
}

func defaultOptions(o Options) Options {
	if o.Logger == nil {
		o.Logger = diag.NewNop()
	}
	return o
}

// Price implements spec.md Section 6's price(bond, curve, settle,
// market_input) -> Analytics entry point. It does not panic on bad input:
// an invalid bond, or inputs that cannot be priced at all (projection,
// settlement, Z-spread or OAS repricing errors, an unknown input kind),
// return an error; a failed YTM solve for a clean-price input leaves YTM
// zero with a diagnostic attached; a failed Z-spread, OAS or ASW solve
// leaves that field unset.
func Price(b instrument.Bond, c *curve.Curve, settle calendar.Date, input MarketInput, opts Options) (Analytics, error) {
	opts = defaultOptions(opts)

	if err := b.Validate(); err != nil {
		return Analytics{}, fmt.Errorf("pricer: %w", err)
	}

	flows, err := cashflow.Project(b, c)
	if err != nil {
		return Analytics{}, fmt.Errorf("pricer: %w", err)
	}
	remaining, err := cashflow.AfterSettlement(flows, settle)
	if err != nil {
		return Analytics{}, fmt.Errorf("pricer: %w", err)
	}
	accrued, err := cashflow.AccruedInterest(b, settle)
	if err != nil {
		return Analytics{}, fmt.Errorf("pricer: %w", err)
	}

	a := Analytics{AccruedInterest: accrued}
	a.DaysToMaturity = settle.DaysUntil(b.Maturity)
	a.YearsToMaturity, _ = daycount.YearFraction(settle, b.Maturity, daycount.Act365F, nil)

	freq := frequencyOf(b)

	switch input.Kind {
	case CleanPriceInput:
		a.CleanPrice = input.CleanPrice
		a.DirtyPrice = a.CleanPrice + accrued
		a.YTM, _, err = solveYieldForPrice(remaining, settle, freq, a.DirtyPrice)
		if err != nil {
			a.Diagnostics = a.Diagnostics.Append(opts.Logger.Record(diag.Event{
				Stage: "pricer.ytm", Message: err.Error(),
			}))
		}
	case YTMInput:
		a.YTM = input.YTM
		a.DirtyPrice, _ = yieldDirtyPrice(remaining, settle, freq, a.YTM)
		a.CleanPrice = a.DirtyPrice - accrued
	case ZSpreadInput:
		a.ZSpreadBps = input.ZSpreadBps
		a.DirtyPrice, err = curveDirtyPriceWithSpread(remaining, settle, c, input.ZSpreadBps/10000.0)
		if err != nil {
			return Analytics{}, fmt.Errorf("pricer: %w", err)
		}
		a.CleanPrice = a.DirtyPrice - accrued
		a.YTM, _, _ = solveYieldForPrice(remaining, settle, freq, a.DirtyPrice)
	case OASInput:
		dirty, err := oas.Price(b, c, settle, input.OASBps, oas.Params{Alpha: input.HWAlpha, Sigma: input.HWSigma, Steps: input.HWSteps})
		if err != nil {
			return Analytics{}, fmt.Errorf("pricer: %w", err)
		}
		a.DirtyPrice = dirty
		a.CleanPrice = a.DirtyPrice - accrued
		a.YTM, _, _ = solveYieldForPrice(remaining, settle, freq, a.DirtyPrice)
		a.HasOAS = true
		a.OASBps = input.OASBps
	default:
		return Analytics{}, fmt.Errorf("pricer: unknown market input kind %v", input.Kind)
	}

	if input.Kind != ZSpreadInput && c != nil {
		if z, zerr := SolveZSpread(remaining, settle, c, a.DirtyPrice); zerr == nil {
			a.ZSpreadBps = z * 10000.0
		}
	}
	if input.Kind != OASInput && opts.HullWhite != nil && c != nil {
		if b.Kind == instrument.FixedCallable {
			if o, oerr := oas.Solve(b, c, settle, a.DirtyPrice, *opts.HullWhite); oerr == nil {
				a.HasOAS, a.OASBps = true, o
			}
		} else {
			a.HasOAS, a.OASBps = true, a.ZSpreadBps
		}
	}
	if opts.Benchmarks.SwapCurve != nil {
		a.ISpreadBps = ISpread(a.YTM, opts.Benchmarks.SwapCurve, b.Maturity) * 10000.0
	}
	if opts.Benchmarks.GovtCurve != nil {
		a.GSpreadBps = GSpread(a.YTM, opts.Benchmarks.GovtCurve, b.Maturity) * 10000.0
	}
	if opts.Benchmarks.SwapCurve != nil {
		if asw, aerr := ASWSpread(remaining, settle, opts.Benchmarks.SwapCurve, a.DirtyPrice); aerr == nil {
			a.ASWSpreadBps = asw * 10000.0
		}
	}

	a.CurrentYield = currentYield(b, a.CleanPrice)

	if b.Kind == instrument.FixedCallable {
		ytc, ytw, workoutDate, workoutPrice := callYields(b, settle, freq, a.DirtyPrice)
		a.YTC = ytc
		a.YTW = ytw
		a.WorkoutDate = workoutDate
		a.WorkoutPrice = workoutPrice
	} else {
		a.YTW = a.YTM
		a.WorkoutDate = b.Maturity
		a.WorkoutPrice = 100.0
	}

	// OAS is set (a.HasOAS) when input.Kind is OASInput, or when
	// opts.HullWhite supplies the Hull-White vol/reversion and, for a
	// callable bond, oas.Solve succeeds; otherwise it stays unset.

	return a, nil
}

func frequencyOf(b instrument.Bond) float64 {
	if b.Frequency <= 0 {
		return 1.0
	}
	return float64(b.Frequency)
}

// DirtyPrice prices b off curve c alone (no yield-curve abstraction): the
// discounted sum of its remaining cash flows, spec.md 4.7's
// dirty_price(bond, curve, settle).
func DirtyPrice(b instrument.Bond, c *curve.Curve, settle calendar.Date) (float64, error) {
	flows, err := cashflow.Project(b, c)
	if err != nil {
		return 0, err
	}
	remaining, err := cashflow.AfterSettlement(flows, settle)
	if err != nil {
		return 0, err
	}
	var pv float64
	for _, cf := range remaining {
		df, err := c.DiscountFactor(cf.Date)
		if err != nil {
			return 0, err
		}
		pv += cf.Amount() * df
	}
	return pv, nil
}

// CleanPrice subtracts accrued interest from DirtyPrice.
func CleanPrice(b instrument.Bond, c *curve.Curve, settle calendar.Date) (float64, error) {
	dirty, err := DirtyPrice(b, c, settle)
	if err != nil {
		return 0, err
	}
	accrued, err := cashflow.AccruedInterest(b, settle)
	if err != nil {
		return 0, err
	}
	return dirty - accrued, nil
}

// currentYield is the simple running yield: annualized coupon / clean
// price. FloatingRate and ZeroCoupon bonds report 0 (no fixed coupon to
// annualize).
func currentYield(b instrument.Bond, cleanPrice float64) float64 {
	if cleanPrice == 0 || b.Kind == instrument.FloatingRate || b.Kind == instrument.ZeroCoupon {
		return 0
	}
	return b.CouponRate * 100.0 / cleanPrice
}

// yieldDirtyPrice is spec.md 4.7's YTM pricing function evaluated at a
// fixed yield: Σ CFᵢ/(1+y/f)^(f·(Tᵢ−settle)).
func yieldDirtyPrice(flows []cashflow.CashFlow, settle calendar.Date, freq, y float64) (float64, error) {
	price, _, err := yieldPriceAndDeriv(flows, settle, freq, y)
	return price, err
}

func yieldPriceAndDeriv(flows []cashflow.CashFlow, settle calendar.Date, freq, y float64) (price, deriv float64, err error) {
	for _, cf := range flows {
		t, yerr := daycount.YearFraction(settle, cf.Date, daycount.Act365F, nil)
		if yerr != nil {
			return 0, 0, yerr
		}
		base := 1.0 + y/freq
		if base <= 0 {
			return math.Inf(1), 0, nil
		}
		df := math.Pow(base, -freq*t)
		price += cf.Amount() * df
		deriv += cf.Amount() * (-t) * math.Pow(base, -freq*t-1)
	}
	return price, deriv, nil
}

// solveYieldForPrice finds y such that yieldDirtyPrice(flows, settle, freq,
// y) == targetDirtyPrice, via Newton-Raphson with an analytic derivative
// and a Brent fallback over [yieldBracketLo, yieldBracketHi] (spec.md
// 4.7/4.5).
func solveYieldForPrice(flows []cashflow.CashFlow, settle calendar.Date, freq, targetDirtyPrice float64) (float64, int, error) {
	avgLife, _ := daycount.YearFraction(settle, flows[len(flows)-1].Date, daycount.Act365F, nil)
	guess := 0.03
	if avgLife > 0 && targetDirtyPrice > 0 {
		guess = (100.0 - targetDirtyPrice) / (avgLife * targetDirtyPrice)
		if guess < yieldBracketLo || guess > yieldBracketHi || math.IsNaN(guess) {
			guess = 0.03
		}
	}

	f := func(y float64) float64 {
		p, _, _ := yieldPriceAndDeriv(flows, settle, freq, y)
		return p - targetDirtyPrice
	}
	df := func(y float64) float64 {
		_, d, _ := yieldPriceAndDeriv(flows, settle, freq, y)
		return d
	}

	y, iters, err := solve.NewtonRaphson(f, df, guess, solve.NewtonOptions{
		Tolerance: yieldTolerance, MaxIter: yieldMaxIter,
		FallbackLo: yieldBracketLo, FallbackHi: yieldBracketHi, HasFallback: true,
	})
	return y, iters, err
}

// curveDirtyPriceWithSpread reprices flows off c with a constant additive
// spread s on the zero curve: Σ CFᵢ·exp(−(zᵢ+s)(Tᵢ−settle)), spec.md 4.7's
// Z-spread pricing function.
func curveDirtyPriceWithSpread(flows []cashflow.CashFlow, settle calendar.Date, c *curve.Curve, s float64) (float64, error) {
	var pv float64
	for _, cf := range flows {
		z, err := c.ZeroRate(cf.Date)
		if err != nil {
			return 0, err
		}
		t, err := daycount.YearFraction(settle, cf.Date, daycount.Act365F, nil)
		if err != nil {
			return 0, err
		}
		pv += cf.Amount() * math.Exp(-(z+s)*t)
	}
	return pv, nil
}

// SolveZSpread finds the constant spread s (decimal) such that
// curveDirtyPriceWithSpread(..., s) == targetDirtyPrice.
func SolveZSpread(flows []cashflow.CashFlow, settle calendar.Date, c *curve.Curve, targetDirtyPrice float64) (float64, error) {
	f := func(s float64) float64 {
		p, err := curveDirtyPriceWithSpread(flows, settle, c, s)
		if err != nil {
			return 1e6
		}
		return p - targetDirtyPrice
	}
	s, _, err := solve.Brent(f, -0.05, 0.50, solve.BrentOptions{})
	if err != nil {
		return 0, fmt.Errorf("pricer: z-spread: %w", err)
	}
	return s, nil
}

// ISpread is YTM minus the swap curve's zero rate at maturity — the
// interpolated-swap-curve spread, spec.md 4.7.
func ISpread(ytm float64, swapCurve *curve.Curve, maturity calendar.Date) float64 {
	z, err := swapCurve.ZeroRate(maturity)
	if err != nil {
		return 0
	}
	return ytm - z
}

// GSpread is YTM minus the government curve's zero rate at maturity.
func GSpread(ytm float64, govtCurve *curve.Curve, maturity calendar.Date) float64 {
	z, err := govtCurve.ZeroRate(maturity)
	if err != nil {
		return 0
	}
	return ytm - z
}

// ASWSpread solves the par-par asset-swap spread: the constant add-on s to
// the floating leg such that PV(bond cash flows, discounted on swapCurve)
// minus dirtyPrice equals PV(s on the float leg) = s·Annuity, where
// Annuity uses the bond's own coupon dates (spec.md 4.7).
func ASWSpread(flows []cashflow.CashFlow, settle calendar.Date, swapCurve *curve.Curve, dirtyPrice float64) (float64, error) {
	var pvBondOnSwap, annuity float64
	prev := settle
	for _, cf := range flows {
		df, err := swapCurve.DiscountFactor(cf.Date)
		if err != nil {
			return 0, err
		}
		pvBondOnSwap += cf.Amount() * df
		yf, err := daycount.YearFraction(prev, cf.Date, daycount.Act360, nil)
		if err != nil {
			return 0, err
		}
		annuity += yf * df
		prev = cf.Date
	}
	if annuity == 0 {
		return 0, fmt.Errorf("pricer: asw spread: degenerate annuity")
	}
	return (pvBondOnSwap - dirtyPrice) / annuity, nil
}

// callYields computes YTC for every call date (treating the call price plus
// accrued-at-call as the terminal cash flow, per spec.md 4.7), then YTW as
// the minimum of YTM and every YTC, with the workout date/price the argmin.
func callYields(b instrument.Bond, settle calendar.Date, freq, dirtyPrice float64) (ytc []CallYield, ytw float64, workoutDate calendar.Date, workoutPrice float64) {
	ytm, _, err := solveYieldForPriceSafe(b, settle, freq, dirtyPrice)
	ytw = ytm
	workoutDate = b.Maturity
	workoutPrice = 100.0
	if err != nil {
		return nil, ytw, workoutDate, workoutPrice
	}

	for _, call := range b.Calls {
		if !call.Date.After(settle) {
			continue
		}
		flows, err := callCashFlows(b, call, settle)
		if err != nil {
			continue
		}
		y, _, err := solveYieldForPrice(flows, settle, freq, dirtyPrice)
		if err != nil {
			continue
		}
		strike := call.StrikePrice().Float64()
		ytc = append(ytc, CallYield{Date: call.Date, Price: strike, Yield: y})
		if y < ytw {
			ytw = y
			workoutDate = call.Date
			workoutPrice = strike
		}
	}
	return ytc, ytw, workoutDate, workoutPrice
}

func solveYieldForPriceSafe(b instrument.Bond, settle calendar.Date, freq, dirtyPrice float64) (float64, int, error) {
	flows, err := cashflow.Project(b, nil)
	if err != nil {
		return 0, 0, err
	}
	remaining, err := cashflow.AfterSettlement(flows, settle)
	if err != nil {
		return 0, 0, err
	}
	return solveYieldForPrice(remaining, settle, freq, dirtyPrice)
}

// callCashFlows builds the truncated coupon stream up to call.Date, with a
// synthetic terminal flow of call.Price + accrued-at-call (spec.md 4.7).
func callCashFlows(b instrument.Bond, call instrument.CallPut, settle calendar.Date) ([]cashflow.CashFlow, error) {
	full, err := cashflow.Project(b, nil)
	if err != nil {
		return nil, err
	}
	out := make([]cashflow.CashFlow, 0, len(full)+1)
	for _, cf := range full {
		if cf.Date.After(settle) && cf.Date.Before(call.Date) {
			out = append(out, cashflow.CashFlow{Date: cf.Date, Coupon: cf.Coupon})
		}
	}
	accruedAtCall, err := cashflow.AccruedInterest(b, call.Date)
	if err != nil {
		return nil, err
	}
	out = append(out, cashflow.CashFlow{Date: call.Date, Principal: call.StrikePrice().Float64() + accruedAtCall})
	if len(out) == 0 {
		return nil, fmt.Errorf("pricer: no cash flows before call date %s", call.Date)
	}
	return out, nil
}
