package curve

// cubicSplineCoeffs holds a natural cubic spline's second derivatives at
// each knot (the classical "y2" representation), solved via the Thomas
// algorithm for tridiagonal systems — spec.md 4.4 names this algorithm
// explicitly as the required method, so it is hand-rolled here rather than
// routed through gonum (DESIGN.md curve/).
type cubicSplineCoeffs struct {
	x  []float64
	y  []float64
	y2 []float64
}

// buildSpline fits a natural cubic spline (zero second derivative at both
// endpoints) through the points (x[i], y[i]).
func buildSpline(x, y []float64) *cubicSplineCoeffs {
	n := len(x)
	if n < 2 {
		return &cubicSplineCoeffs{x: x, y: y, y2: make([]float64, n)}
	}
	if n == 2 {
		return &cubicSplineCoeffs{x: x, y: y, y2: []float64{0, 0}}
	}

	// Tridiagonal system for the interior second derivatives: a*y2[i-1] +
	// b*y2[i] + c*y2[i+1] = d, with y2[0] = y2[n-1] = 0 (natural boundary).
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	d := make([]float64, n)

	b[0], b[n-1] = 1, 1
	for i := 1; i < n-1; i++ {
		h1 := x[i] - x[i-1]
		h2 := x[i+1] - x[i]
		a[i] = h1 / 6
		b[i] = (x[i+1] - x[i-1]) / 3
		c[i] = h2 / 6
		d[i] = (y[i+1]-y[i])/h2 - (y[i]-y[i-1])/h1
	}

	y2 := thomasSolve(a, b, c, d)
	return &cubicSplineCoeffs{x: x, y: y, y2: y2}
}

// thomasSolve solves the tridiagonal system Ax=d, where A has sub-diagonal
// a, diagonal b, and super-diagonal c (a[0] and c[n-1] are unused).
func thomasSolve(a, b, c, d []float64) []float64 {
	n := len(d)
	cp := make([]float64, n)
	dp := make([]float64, n)

	cp[0] = c[0] / b[0]
	dp[0] = d[0] / b[0]
	for i := 1; i < n; i++ {
		m := b[i] - a[i]*cp[i-1]
		if i < n-1 {
			cp[i] = c[i] / m
		}
		dp[i] = (d[i] - a[i]*dp[i-1]) / m
	}

	x := make([]float64, n)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x
}

// evalSpline evaluates the spline at t, given the knot times (matching
// s.x) for bracket lookup.
func evalSpline(s *cubicSplineCoeffs, times []float64, t float64) float64 {
	n := len(s.x)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return s.y[0]
	}
	lo := 0
	for lo < n-2 && times[lo+1] < t {
		lo++
	}
	hi := lo + 1

	h := s.x[hi] - s.x[lo]
	if h == 0 {
		return s.y[lo]
	}
	A := (s.x[hi] - t) / h
	B := (t - s.x[lo]) / h
	return A*s.y[lo] + B*s.y[hi] +
		((A*A*A-A)*s.y2[lo]+(B*B*B-B)*s.y2[hi])*(h*h)/6
}
