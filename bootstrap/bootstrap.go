// Package bootstrap calibrates a curve.Curve from a set of market
// instruments: deposits, FRAs, swaps, OIS, and bonds. Two modes are
// offered — Piecewise (sequential per-pillar root-finding, in maturity
// order) and GlobalFit (a single Levenberg-Marquardt solve over every
// instrument's residual at once) — mirroring the teacher's sequential OIS
// bootstrap generalized to five instrument kinds (DESIGN.md bootstrap/).
package bootstrap

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/cashflow"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
	"github.com/meenmo/bondmath/diag"
	"github.com/meenmo/bondmath/instrument"
	"github.com/meenmo/bondmath/schedule"
	"github.com/meenmo/bondmath/solve"
)

// Mode selects the calibration algorithm.
type Mode int

const (
	Piecewise Mode = iota
	GlobalFit
)

// Diagnostics summarizes a calibration run: SPEC_FULL.md's "diagnostics
// return value" (residuals, iterations, RMS, max error, converged,
// method, wall time).
type Diagnostics struct {
	Method     Mode
	Residuals  []float64
	Iterations int
	RMS        float64
	MaxError   float64
	Converged  bool
	WallTime   time.Duration
	Events     diag.Diagnostics
}

// Options configures a Bootstrap call.
type Options struct {
	Mode      Mode
	TimeBasis daycount.Convention // curve time axis, passed to curve.New as given; no default is applied (the zero value is daycount.Act360)
	Method    curve.Interpolation
	Logger    *diag.Logger
}

func defaultOptions(o Options) Options {
	if o.Logger == nil {
		o.Logger = diag.NewNop()
	}
	return o
}

// Bootstrap calibrates a curve from instruments, all priced off the same
// settlement date.
func Bootstrap(settlement calendar.Date, instruments []instrument.CalibrationInstrument, opts Options) (*curve.Curve, Diagnostics, error) {
	opts = defaultOptions(opts)
	start := time.Now()

	sorted := append([]instrument.CalibrationInstrument(nil), instruments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EndDate.Before(sorted[j].EndDate) })
	for _, ci := range sorted {
		if err := ci.Validate(); err != nil {
			return nil, Diagnostics{}, fmt.Errorf("bootstrap: %w", err)
		}
	}

	switch opts.Mode {
	case GlobalFit:
		return bootstrapGlobalFit(settlement, sorted, opts, start)
	default:
		return bootstrapPiecewise(settlement, sorted, opts, start)
	}
}

func bootstrapPiecewise(settlement calendar.Date, sorted []instrument.CalibrationInstrument, opts Options, start time.Time) (*curve.Curve, Diagnostics, error) {
	knots := []curve.Knot{{Date: settlement, DiscountFactor: 1.0}}
	residuals := make([]float64, 0, len(sorted))
	totalIter := 0
	var events diag.Diagnostics

	for _, ci := range sorted {
		built, err := curve.New(settlement, knots, opts.TimeBasis, opts.Method)
		if err != nil {
			return nil, Diagnostics{}, fmt.Errorf("bootstrap: %w", err)
		}

		objective := func(df float64) float64 {
			trial := append(append([]curve.Knot(nil), knots...), curve.Knot{Date: ci.EndDate, DiscountFactor: df})
			c, err := curve.New(settlement, trial, opts.TimeBasis, opts.Method)
			if err != nil {
				return 1e6
			}
			r, _ := residual(ci, c)
			return r
		}

		guess := flatForwardGuess(built, settlement, ci.EndDate)
		root, iters, err := solve.Brent(objective, guess*0.5, guess*1.5, solve.BrentOptions{})
		if err != nil {
			return nil, Diagnostics{}, fmt.Errorf("bootstrap: pillar %s: %w", ci.EndDate, err)
		}
		totalIter += iters
		events = events.Append(opts.Logger.Record(diag.Event{
			Stage: "bootstrap.piecewise", Message: fmt.Sprintf("solved pillar %s", ci.EndDate),
			Iterations: iters, Residual: objective(root),
		}))

		knots = append(knots, curve.Knot{Date: ci.EndDate, DiscountFactor: root})
		residuals = append(residuals, objective(root))
	}

	final, err := curve.New(settlement, knots, opts.TimeBasis, opts.Method)
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("bootstrap: %w", err)
	}

	return final, Diagnostics{
		Method:     Piecewise,
		Residuals:  residuals,
		Iterations: totalIter,
		RMS:        rms(residuals),
		MaxError:   maxAbs(residuals),
		Converged:  true,
		WallTime:   time.Since(start),
		Events:     events,
	}, nil
}

func bootstrapGlobalFit(settlement calendar.Date, sorted []instrument.CalibrationInstrument, opts Options, start time.Time) (*curve.Curve, Diagnostics, error) {
	n := len(sorted)
	initial := make([]float64, n)
	for i, ci := range sorted {
		t, _ := daycount.YearFraction(settlement, ci.EndDate, daycount.Act365F, nil)
		initial[i] = flatForwardGuessFromRate(0.03, t)
	}

	dates := make([]calendar.Date, n)
	for i, ci := range sorted {
		dates[i] = ci.EndDate
	}

	residualAndJacobian := func(params []float64) ([]float64, [][]float64) {
		c, err := curveFromParams(settlement, dates, params, opts)
		if err != nil {
			r := make([]float64, n)
			for i := range r {
				r[i] = 1e6
			}
			return r, identityJacobian(n)
		}
		r := make([]float64, n)
		for i, ci := range sorted {
			r[i], _ = residual(ci, c)
		}
		J := jacobianFiniteDifference(settlement, dates, params, sorted, opts)
		return r, J
	}

	result, err := solve.LevenbergMarquardt(residualAndJacobian, initial, solve.LMOptions{})
	converged := err == nil
	if err != nil {
		if _, ok := err.(*solve.ConvergenceError); !ok {
			return nil, Diagnostics{}, fmt.Errorf("bootstrap: global fit: %w", err)
		}
	}

	final, buildErr := curveFromParams(settlement, dates, result.Params, opts)
	if buildErr != nil {
		return nil, Diagnostics{}, fmt.Errorf("bootstrap: global fit: %w", buildErr)
	}

	events := diag.Diagnostics{}
	events = events.Append(opts.Logger.Record(diag.Event{
		Stage: "bootstrap.globalfit", Message: "levenberg-marquardt complete",
		Iterations: result.Iterations, Residual: result.RMS,
	}))

	return final, Diagnostics{
		Method:     GlobalFit,
		Residuals:  result.Residual,
		Iterations: result.Iterations,
		RMS:        result.RMS,
		MaxError:   maxAbs(result.Residual),
		Converged:  converged,
		WallTime:   time.Since(start),
		Events:     events,
	}, nil
}

func curveFromParams(settlement calendar.Date, dates []calendar.Date, dfs []float64, opts Options) (*curve.Curve, error) {
	knots := make([]curve.Knot, 0, len(dates)+1)
	knots = append(knots, curve.Knot{Date: settlement, DiscountFactor: 1.0})
	for i, d := range dates {
		df := dfs[i]
		if df <= 0 {
			df = 1e-6
		}
		knots = append(knots, curve.Knot{Date: d, DiscountFactor: df})
	}
	return curve.New(settlement, knots, opts.TimeBasis, opts.Method)
}

func jacobianFiniteDifference(settlement calendar.Date, dates []calendar.Date, params []float64, sorted []instrument.CalibrationInstrument, opts Options) [][]float64 {
	n := len(params)
	bump := 1e-6
	base := make([]float64, n)
	c0, _ := curveFromParams(settlement, dates, params, opts)
	for i, ci := range sorted {
		base[i], _ = residual(ci, c0)
	}

	J := make([][]float64, n)
	for i := range J {
		J[i] = make([]float64, n)
	}
	for j := 0; j < n; j++ {
		bumped := append([]float64(nil), params...)
		bumped[j] += bump
		cj, err := curveFromParams(settlement, dates, bumped, opts)
		if err != nil {
			continue
		}
		for i, ci := range sorted {
			ri, _ := residual(ci, cj)
			J[i][j] = (ri - base[i]) / bump
		}
	}
	return J
}

func identityJacobian(n int) [][]float64 {
	J := make([][]float64, n)
	for i := range J {
		J[i] = make([]float64, n)
		J[i][i] = 1
	}
	return J
}

func flatForwardGuess(c *curve.Curve, settlement, maturity calendar.Date) float64 {
	z, err := c.ZeroRate(settlement) // will be 0 at settlement; fall back to a flat 3% guess
	if err != nil || z == 0 {
		z = 0.03
	}
	t, _ := daycount.YearFraction(settlement, maturity, daycount.Act365F, nil)
	return flatForwardGuessFromRate(z, t)
}

func flatForwardGuessFromRate(rate, t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return math.Exp(-rate * t)
}

// residual computes a single calibration instrument's pricing error — the
// quantity every solver mode drives to zero: DF(start)·(1+r·τ) − DF(end)
// for deposits, implied forward minus quote for FRAs, fixed-leg PV minus
// (DF(start) − DF(end)) for swaps/OIS, and the curve PV of the remaining
// flows minus the quoted price for bonds.
func residual(ci instrument.CalibrationInstrument, c *curve.Curve) (float64, error) {
	switch ci.Kind {
	case instrument.Deposit:
		return depositResidual(ci, c)
	case instrument.FRA:
		return fraResidual(ci, c)
	case instrument.Swap, instrument.OIS:
		return swapResidual(ci, c)
	case instrument.CalibrationBond:
		return bondResidual(ci, c)
	default:
		return 0, fmt.Errorf("bootstrap: unsupported calibration kind %v", ci.Kind)
	}
}

func depositResidual(ci instrument.CalibrationInstrument, c *curve.Curve) (float64, error) {
	dfStart, err := c.DiscountFactor(ci.StartDate)
	if err != nil {
		return 0, err
	}
	dfEnd, err := c.DiscountFactor(ci.EndDate)
	if err != nil {
		return 0, err
	}
	yf, err := daycount.YearFraction(ci.StartDate, ci.EndDate, ci.DayCount, nil)
	if err != nil {
		return 0, err
	}
	// 1 + r*yf deposits: DF(start)*(1+r*yf) = DF(end)
	return dfStart*(1+ci.QuoteRate().Float64()*yf) - dfEnd, nil
}

func fraResidual(ci instrument.CalibrationInstrument, c *curve.Curve) (float64, error) {
	fwd, err := c.ForwardRate(ci.StartDate, ci.EndDate)
	if err != nil {
		return 0, err
	}
	return fwd - ci.QuoteRate().Float64(), nil
}

func swapResidual(ci instrument.CalibrationInstrument, c *curve.Curve) (float64, error) {
	periods, err := schedule.Generate(schedule.Config{
		Issue:     ci.StartDate,
		Maturity:  ci.EndDate,
		Frequency: ci.FixedLegFrequency,
		Calendar:  ci.Calendar,
		BDC:       ci.BDC,
		Stub:      schedule.ShortFront,
	})
	if err != nil {
		return 0, err
	}
	var annuity float64
	for _, p := range periods {
		yf, err := daycount.YearFraction(p.Start, p.End, ci.DayCount, nil)
		if err != nil {
			return 0, err
		}
		df, err := c.DiscountFactor(p.PayDate)
		if err != nil {
			return 0, err
		}
		annuity += yf * df
	}
	dfStart, err := c.DiscountFactor(ci.StartDate)
	if err != nil {
		return 0, err
	}
	dfEnd, err := c.DiscountFactor(ci.EndDate)
	if err != nil {
		return 0, err
	}
	// Par swap condition: fixed leg PV == floating leg PV == DF(start) - DF(end)
	return ci.QuoteRate().Float64()*annuity - (dfStart - dfEnd), nil
}

func bondResidual(ci instrument.CalibrationInstrument, c *curve.Curve) (float64, error) {
	if ci.Bond == nil {
		return 0, fmt.Errorf("bootstrap: CalibrationBond requires a Bond")
	}
	flows, err := cashflow.Project(*ci.Bond, c)
	if err != nil {
		return 0, err
	}
	remaining, err := cashflow.AfterSettlement(flows, c.Settlement())
	if err != nil {
		return 0, err
	}
	var pv float64
	for _, f := range remaining {
		df, err := c.DiscountFactor(f.Date)
		if err != nil {
			return 0, err
		}
		pv += f.Amount() * df
	}
	return pv - ci.QuotePrice().Float64(), nil
}

func rms(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s / float64(len(v)))
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		a := x
		if a < 0 {
			a = -a
		}
		if a > m {
			m = a
		}
	}
	return m
}
