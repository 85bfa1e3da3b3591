// Package solve provides the numerical root-finders and the
// Levenberg-Marquardt least-squares solver used throughout bondmath:
// yield solving, curve bootstrapping, and OAS search all reduce to one of
// these.
package solve

import (
	"fmt"
	"math"
)

// ConvergenceError reports a solver that exhausted its iteration budget
// without reaching tolerance.
type ConvergenceError struct {
	Method     string
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solve: %s did not converge after %d iterations (residual %.3e)", e.Method, e.Iterations, e.Residual)
}

// BracketingError reports a Brent search that found no bracket straddling
// a root, even after expansion; Lo/Hi are the last bracket tried.
type BracketingError struct {
	Lo, Hi, FLo, FHi float64
}

func (e *BracketingError) Error() string {
	return fmt.Sprintf("solve: bracket [%.6f, %.6f] does not straddle a root (f(lo)=%.6g, f(hi)=%.6g)", e.Lo, e.Hi, e.FLo, e.FHi)
}

// BrentOptions configures Brent's method.
type BrentOptions struct {
	Tolerance float64
	MaxIter   int

	// MaxExpansions bounds how many times Brent widens a non-straddling
	// bracket before giving up. Default 50.
	MaxExpansions int
	// ExpansionFactor is the geometric growth rate applied to the
	// bracket half-width on each expansion. Must exceed 1. Default 1.6.
	ExpansionFactor float64
}

func defaultBrentOptions(o BrentOptions) BrentOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-12
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = 50
	}
	if o.ExpansionFactor <= 1 {
		o.ExpansionFactor = 1.6
	}
	return o
}

// Brent finds a root of f in [lo, hi] using Brent's method (combining
// bisection, secant, and inverse quadratic interpolation). If f(lo) and
// f(hi) don't already straddle a root, the bracket is widened around its
// midpoint by ExpansionFactor, up to MaxExpansions times. If no
// straddling bracket is found even after expansion, Brent returns the
// argument with the smallest |f| observed, alongside a non-nil
// *BracketingError signaling non-convergence (spec.md 4.5).
func Brent(f func(float64) float64, lo, hi float64, opts BrentOptions) (float64, int, error) {
	opts = defaultBrentOptions(opts)

	a, b := lo, hi
	fa, fb := f(a), f(b)

	bestX, bestAbsF := a, math.Abs(fa)
	if math.Abs(fb) < bestAbsF {
		bestX, bestAbsF = b, math.Abs(fb)
	}

	if fa*fb > 0 {
		mid := (lo + hi) / 2
		half := (hi - lo) / 2
		for n := 0; n < opts.MaxExpansions && fa*fb > 0; n++ {
			half *= opts.ExpansionFactor
			a, b = mid-half, mid+half
			fa, fb = f(a), f(b)
			if math.Abs(fa) < bestAbsF {
				bestX, bestAbsF = a, math.Abs(fa)
			}
			if math.Abs(fb) < bestAbsF {
				bestX, bestAbsF = b, math.Abs(fb)
			}
		}
		if fa*fb > 0 {
			return bestX, 0, &BracketingError{Lo: a, Hi: b, FLo: fa, FHi: fb}
		}
	}
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	mflag := true
	var d float64

	for iter := 0; iter < opts.MaxIter; iter++ {
		if math.Abs(fb) < opts.Tolerance || math.Abs(b-a) < opts.Tolerance {
			return b, iter + 1, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// secant
			s = b - fb*(b-a)/(fb-fa)
		}

		useBisection := !withinInterval(s, a, b) ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && d != 0 && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < opts.Tolerance) ||
			(!mflag && d != 0 && math.Abs(c-d) < opts.Tolerance)

		if useBisection {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}
	return b, opts.MaxIter, &ConvergenceError{Method: "Brent", Iterations: opts.MaxIter, Residual: fb}
}

func withinInterval(s, a, b float64) bool {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return s > lo && s < hi
}

// NewtonOptions configures Newton-Raphson with a Brent fallback.
type NewtonOptions struct {
	Tolerance    float64
	MaxIter      int
	FallbackLo   float64
	FallbackHi   float64
	HasFallback  bool
}

func defaultNewtonOptions(o NewtonOptions) NewtonOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-12
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	return o
}

// NewtonRaphson finds a root of f (with analytic derivative df) starting
// from x0. On non-convergence or a degenerate derivative, it falls back
// to Brent over [opts.FallbackLo, opts.FallbackHi] when opts.HasFallback
// is set — the same robustness pattern as the teacher's OIS bootstrap,
// generalized into an explicit, reusable fallback (DESIGN.md solve/).
func NewtonRaphson(f, df func(float64) float64, x0 float64, opts NewtonOptions) (float64, int, error) {
	opts = defaultNewtonOptions(opts)

	x := x0
	for iter := 0; iter < opts.MaxIter; iter++ {
		fx := f(x)
		if math.Abs(fx) < opts.Tolerance {
			return x, iter + 1, nil
		}
		dfx := df(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) || math.IsNaN(dfx) || math.IsInf(dfx, 0) || math.Abs(dfx) < 1e-15 {
			break
		}
		x = x - fx/dfx
	}

	if opts.HasFallback {
		root, iters, err := Brent(f, opts.FallbackLo, opts.FallbackHi, BrentOptions{Tolerance: opts.Tolerance, MaxIter: opts.MaxIter})
		if err != nil {
			return 0, opts.MaxIter + iters, fmt.Errorf("solve: Newton-Raphson failed, Brent fallback also failed: %w", err)
		}
		return root, opts.MaxIter + iters, nil
	}

	return x, opts.MaxIter, &ConvergenceError{Method: "NewtonRaphson", Iterations: opts.MaxIter, Residual: f(x)}
}
