// Package curve holds the discount/zero/forward curve abstraction and its
// interpolation methods. A Curve is an immutable value built from a set of
// (date, discount factor) knots; queries never mutate it, so a *Curve can
// be shared freely across goroutines (spec.md Section 5).
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/daycount"
)

// Interpolation selects how the curve fills in values between knots.
type Interpolation int

const (
	// LinearZero interpolates the zero rate linearly in time.
	LinearZero Interpolation = iota
	// LogLinearDF interpolates the discount factor log-linearly (constant
	// forward rate between knots) — grounded on the teacher's
	// swap/curve.interpolateDF.
	LogLinearDF
	// NaturalCubicSpline fits a natural cubic spline through the log
	// discount factors (not through the zero rates).
	NaturalCubicSpline
	// MonotoneConvex is the Hagan-West monotone-convex method.
	MonotoneConvex
)

// Knot is a single curve pillar: a date and its discount factor.
type Knot struct {
	Date           calendar.Date
	DiscountFactor float64
}

// Curve stores discount factors at a sorted set of pillar dates and
// interpolates/extrapolates queries against them.
type Curve struct {
	settlement calendar.Date
	dates      []calendar.Date
	dfs        []float64
	timeBasis  daycount.Convention
	method     Interpolation
	spline     *cubicSplineCoeffs // built by New for NaturalCubicSpline
}

// New builds a Curve from knots (need not be pre-sorted). timeBasis is the
// day-count convention used for the curve's own time axis (ACT/365F is the
// market-standard choice the teacher's curve package documents).
func New(settlement calendar.Date, knots []Knot, timeBasis daycount.Convention, method Interpolation) (*Curve, error) {
	if len(knots) == 0 {
		return nil, fmt.Errorf("curve: at least one knot is required")
	}
	sorted := append([]Knot(nil), knots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	c := &Curve{settlement: settlement, timeBasis: timeBasis, method: method}
	for _, k := range sorted {
		if k.DiscountFactor <= 0 {
			return nil, fmt.Errorf("curve: discount factor must be positive, got %v at %s", k.DiscountFactor, k.Date)
		}
		c.dates = append(c.dates, k.Date)
		c.dfs = append(c.dfs, k.DiscountFactor)
	}
	if method == NaturalCubicSpline {
		c.spline = buildSpline(c.times(), c.logDFs())
	}
	return c, nil
}

func (c *Curve) times() []float64 {
	out := make([]float64, len(c.dates))
	for i, d := range c.dates {
		yf, _ := daycount.YearFraction(c.settlement, d, c.timeBasis, nil)
		out[i] = yf
	}
	return out
}

func (c *Curve) logDFs() []float64 {
	out := make([]float64, len(c.dfs))
	for i, df := range c.dfs {
		out[i] = math.Log(df)
	}
	return out
}

// DiscountFactor returns the discount factor to d, interpolating/
// flat-extrapolating per the curve's configured method.
func (c *Curve) DiscountFactor(d calendar.Date) (float64, error) {
	if d.Equal(c.settlement) {
		return 1.0, nil
	}
	t, err := daycount.YearFraction(c.settlement, d, c.timeBasis, nil)
	if err != nil {
		return 0, err
	}
	return c.discountFactorAtTime(t), nil
}

func (c *Curve) discountFactorAtTime(t float64) float64 {
	times := c.times()
	n := len(times)
	if t <= times[0] {
		return flatExtrapolateDF(t, times[0], c.dfs[0], times, c.dfs, c.method, c.spline)
	}
	if t >= times[n-1] {
		return flatExtrapolateDF(t, times[n-1], c.dfs[n-1], times, c.dfs, c.method, c.spline)
	}

	i := sort.SearchFloat64s(times, t)
	if i < n && times[i] == t {
		return c.dfs[i]
	}
	lo, hi := i-1, i

	switch c.method {
	case LogLinearDF:
		return logLinearDF(t, times[lo], c.dfs[lo], times[hi], c.dfs[hi])
	case LinearZero:
		return linearZeroDF(t, times[lo], c.dfs[lo], times[hi], c.dfs[hi])
	case NaturalCubicSpline:
		return math.Exp(evalSpline(c.spline, times, t))
	case MonotoneConvex:
		return monotoneConvexDF(t, times, c.dfs, lo, hi)
	default:
		return logLinearDF(t, times[lo], c.dfs[lo], times[hi], c.dfs[hi])
	}
}

// flatExtrapolateDF holds the zero rate (not the DF) flat beyond the curve's
// domain, the standard market convention spec.md 4.4 asks for.
func flatExtrapolateDF(t, boundaryT, boundaryDF float64, times, dfs []float64, method Interpolation, spline *cubicSplineCoeffs) float64 {
	if boundaryT <= 0 {
		return boundaryDF
	}
	zero := -math.Log(boundaryDF) / boundaryT
	return math.Exp(-zero * t)
}

func logLinearDF(t, t1, df1, t2, df2 float64) float64 {
	if t2 == t1 {
		return df1
	}
	fwd := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-fwd*(t-t1))
}

func linearZeroDF(t, t1, df1, t2, df2 float64) float64 {
	z1 := -math.Log(df1) / t1
	z2 := -math.Log(df2) / t2
	z := z1 + (z2-z1)*(t-t1)/(t2-t1)
	return math.Exp(-z * t)
}

// ZeroRate returns the continuously-compounded zero rate to d.
func (c *Curve) ZeroRate(d calendar.Date) (float64, error) {
	df, err := c.DiscountFactor(d)
	if err != nil {
		return 0, err
	}
	t, err := daycount.YearFraction(c.settlement, d, c.timeBasis, nil)
	if err != nil {
		return 0, err
	}
	if t <= 0 {
		return 0, nil
	}
	return -math.Log(df) / t, nil
}

// ForwardRate returns the simple forward rate between start and end,
// annualized ACT/365F, the rate the cashflow package projects floating
// coupons from.
func (c *Curve) ForwardRate(start, end calendar.Date) (float64, error) {
	df1, err := c.DiscountFactor(start)
	if err != nil {
		return 0, err
	}
	df2, err := c.DiscountFactor(end)
	if err != nil {
		return 0, err
	}
	yf, err := daycount.YearFraction(start, end, daycount.Act365F, nil)
	if err != nil {
		return 0, err
	}
	if yf == 0 {
		return 0, fmt.Errorf("curve: zero-length forward period %s-%s", start, end)
	}
	return (df1/df2 - 1.0) / yf, nil
}

// Settlement returns the curve's valuation (as-of) date.
func (c *Curve) Settlement() calendar.Date { return c.settlement }

// ShiftParallel returns a new Curve with every zero rate shifted by
// deltaBps basis points. The receiver is unmodified (immutability per
// spec.md Section 5).
func (c *Curve) ShiftParallel(deltaBps float64) (*Curve, error) {
	delta := deltaBps / 10000.0
	knots := make([]Knot, len(c.dates))
	for i, d := range c.dates {
		t, err := daycount.YearFraction(c.settlement, d, c.timeBasis, nil)
		if err != nil {
			return nil, err
		}
		z := -math.Log(c.dfs[i])
		if t > 0 {
			z = z/t + delta
		} else {
			z = delta
		}
		knots[i] = Knot{Date: d, DiscountFactor: math.Exp(-z * t)}
	}
	return New(c.settlement, knots, c.timeBasis, c.method)
}

// BumpTenor returns a new Curve with the zero rate at the knot nearest
// targetDate bumped by deltaBps, other knots unchanged — the building
// block for key-rate duration.
func (c *Curve) BumpTenor(targetDate calendar.Date, deltaBps float64) (*Curve, error) {
	delta := deltaBps / 10000.0
	knots := make([]Knot, len(c.dates))
	nearest := nearestIndex(c.dates, targetDate)
	for i, d := range c.dates {
		t, err := daycount.YearFraction(c.settlement, d, c.timeBasis, nil)
		if err != nil {
			return nil, err
		}
		bump := 0.0
		if i == nearest {
			bump = delta
		}
		z := 0.0
		if t > 0 {
			z = -math.Log(c.dfs[i]) / t
		}
		knots[i] = Knot{Date: d, DiscountFactor: math.Exp(-(z + bump) * t)}
	}
	return New(c.settlement, knots, c.timeBasis, c.method)
}

// Twist returns a new Curve with a linear-in-time rotation applied to zero
// rates: shortDeltaBps at the first knot, longDeltaBps at the last, linearly
// interpolated in between.
func (c *Curve) Twist(shortDeltaBps, longDeltaBps float64) (*Curve, error) {
	times := c.times()
	tMin, tMax := times[0], times[len(times)-1]
	knots := make([]Knot, len(c.dates))
	for i, d := range c.dates {
		t := times[i]
		weight := 0.0
		if tMax > tMin {
			weight = (t - tMin) / (tMax - tMin)
		}
		bump := (shortDeltaBps + (longDeltaBps-shortDeltaBps)*weight) / 10000.0
		z := 0.0
		if t > 0 {
			z = -math.Log(c.dfs[i]) / t
		}
		knots[i] = Knot{Date: d, DiscountFactor: math.Exp(-(z + bump) * t)}
	}
	return New(c.settlement, knots, c.timeBasis, c.method)
}

func nearestIndex(dates []calendar.Date, target calendar.Date) int {
	best, bestDiff := 0, math.MaxInt64
	for i, d := range dates {
		diff := d.DaysUntil(target)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}
