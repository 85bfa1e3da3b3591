package curve

import "math"

// monotoneConvexDF applies the Hagan-West quadratic forward adjustment g(x)
// to the discrete forward rates implied by the discount factors at
// times/dfs, bracketed by indices lo/hi around t. Only the clamp in
// enforceMonotoneConvex is applied, not the full Hagan-West region logic:
// the interpolated instantaneous forward can dip below both node values
// inside an interval (g0 = g1 = 1 gives g(0.5) = -0.5) and is not floored
// at zero.
func monotoneConvexDF(t float64, times, dfs []float64, lo, hi int) float64 {
	n := len(times)
	fwd := discreteForwards(times, dfs)

	fLo := nodeForward(fwd, lo, n)
	fHi := nodeForward(fwd, hi, n)
	gBar := fwd[lo]

	h := times[hi] - times[lo]
	if h <= 0 {
		return dfs[lo]
	}
	x := (t - times[lo]) / h

	g0 := fLo - gBar
	g1 := fHi - gBar
	g0, g1 = enforceMonotoneConvex(g0, g1)

	integral := gBar*(t-times[lo]) + h*gIntegral(x, g0, g1)
	zTimesT0 := -math.Log(dfs[lo])
	return math.Exp(-(zTimesT0 + integral))
}

// discreteForwards computes the piecewise-constant discrete forward rate
// over each [times[i], times[i+1]] interval.
func discreteForwards(times, dfs []float64) []float64 {
	n := len(times)
	out := make([]float64, n)
	for i := 0; i < n-1; i++ {
		dt := times[i+1] - times[i]
		if dt <= 0 {
			out[i] = 0
			continue
		}
		out[i] = math.Log(dfs[i]/dfs[i+1]) / dt
	}
	if n > 1 {
		out[n-1] = out[n-2]
	}
	return out
}

// nodeForward approximates the instantaneous forward at a knot as the
// average of its neighboring discrete forwards (the standard Hagan-West
// node-value construction).
func nodeForward(discrete []float64, idx, n int) float64 {
	if n == 1 {
		return discrete[0]
	}
	if idx == 0 {
		return discrete[0]
	}
	if idx >= n-1 {
		return discrete[n-2]
	}
	return 0.5 * (discrete[idx-1] + discrete[idx])
}

// enforceMonotoneConvex zeroes (g0, g1) when they have opposite signs, and
// otherwise resets g1, then g0, when g0+2·g1 or 2·g0+g1 is negative. It
// does not make the forward curve monotone or non-negative within the
// interval.
func enforceMonotoneConvex(g0, g1 float64) (float64, float64) {
	if g0*g1 < 0 {
		return 0, 0
	}
	if g0+2*g1 < 0 {
		g1 = -g0 / 2
	}
	if 2*g0+g1 < 0 {
		g0 = -g1 / 2
	}
	return g0, g1
}

// g evaluates the Hagan-West quadratic forward-adjustment function at x in [0,1].
func g(x, g0, g1 float64) float64 {
	return g0*(1-4*x+3*x*x) + g1*(-2*x+3*x*x)
}

// gIntegral is the analytic integral of g over [0, x], used to accumulate
// the interpolated zero rate.
func gIntegral(x, g0, g1 float64) float64 {
	return g0*(x-2*x*x+x*x*x) + g1*(-x*x+x*x*x)
}
