package oas

import (
	"fmt"
	"math"

	"github.com/meenmo/bondmath/calendar"
	"github.com/meenmo/bondmath/curve"
	"github.com/meenmo/bondmath/daycount"
)

// tree is a calibrated Hull-White one-factor trinomial short-rate tree
// (Hull & White 1994's "Using Hull-White Trinomial Trees" construction):
// a mean-reverting R-process on a uniform time grid, with a per-step drift
// (shift) solved by forward induction so Arrow-Debreu prices reprice the
// input curve exactly (spec.md 4.7).
type tree struct {
	dt      float64
	alpha   float64
	dR      float64
	jmax    int
	shift   []float64   // shift[i], i = 0..steps-1
	times   []float64   // times[i] = i*dt, i = 0..steps
}

// Params configures the tree: mean reversion alpha, short-rate volatility
// sigma, and the number of time steps across the tree's horizon.
type Params struct {
	Alpha float64
	Sigma float64
	Steps int
}

func defaultParams(p Params) Params {
	if p.Alpha <= 0 {
		p.Alpha = 0.03
	}
	if p.Sigma <= 0 {
		p.Sigma = 0.01
	}
	if p.Steps <= 0 {
		p.Steps = 120
	}
	return p
}

// buildTree calibrates a tree over [settlement, horizon] from c's discount
// curve.
func buildTree(c *curve.Curve, settlement, horizon calendar.Date, p Params) (*tree, error) {
	p = defaultParams(p)

	T, err := daycount.YearFraction(settlement, horizon, daycount.Act365F, nil)
	if err != nil {
		return nil, err
	}
	if T <= 0 {
		return nil, fmt.Errorf("oas: horizon %s must be after settlement %s", horizon, settlement)
	}
	dt := T / float64(p.Steps)

	dR := p.Sigma * math.Sqrt(3*dt)
	jmax := int(math.Ceil(0.184 / (p.Alpha * dt)))
	if jmax < 1 {
		jmax = 1
	}
	if jmax > 200 {
		jmax = 200
	}

	tr := &tree{dt: dt, alpha: p.Alpha, dR: dR, jmax: jmax}
	tr.times = make([]float64, p.Steps+1)
	for i := range tr.times {
		tr.times[i] = float64(i) * dt
	}

	discountAt := func(t float64) (float64, error) {
		d := settlement.AddDays(int(math.Round(t * 365.0)))
		return c.DiscountFactor(d)
	}

	// Forward induction: Q[j] holds Arrow-Debreu prices at step i, keyed by
	// j offset from -jmax..jmax (index j+jmax).
	width := 2*jmax + 1
	Q := make([]float64, width)
	Q[jmax] = 1.0 // step 0: single node at j=0, price 1
	shift := make([]float64, p.Steps)

	for i := 0; i < p.Steps; i++ {
		target, err := discountAt(tr.times[i+1])
		if err != nil {
			return nil, err
		}
		var denom float64
		for jj := -jmax; jj <= jmax; jj++ {
			q := Q[jj+jmax]
			if q == 0 {
				continue
			}
			denom += q * math.Exp(-float64(jj)*dR*dt)
		}
		if denom <= 0 {
			return nil, fmt.Errorf("oas: degenerate Arrow-Debreu sum at step %d", i)
		}
		shift[i] = math.Log(denom/target) / dt

		next := make([]float64, width)
		for jj := -jmax; jj <= jmax; jj++ {
			q := Q[jj+jmax]
			if q == 0 {
				continue
			}
			pu, pm, pd, ku, km, kd := branch(jj, jmax, p.Alpha, dt)
			disc := math.Exp(-(float64(jj)*dR + shift[i]) * dt)
			next[ku+jmax] += q * pu * disc
			next[km+jmax] += q * pm * disc
			next[kd+jmax] += q * pd * disc
		}
		Q = next
	}

	tr.shift = shift
	return tr, nil
}

// branch returns the up/middle/down transition probabilities and target
// node offsets for a node at offset j, using Hull-White's standard
// branching (central for |j|<jmax, switching to the non-central forms at
// the tree's edges to keep mean reversion intact there).
func branch(j, jmax int, a, dt float64) (pu, pm, pd float64, ku, km, kd int) {
	x := a * float64(j) * dt
	switch {
	case j == jmax:
		ku, km, kd = j, j-1, j-2
		pu = 7.0/6.0 + (x*x-3*x)/2.0
		pm = -1.0/3.0 - x*x + 2*x
		pd = 1.0/6.0 + (x*x-x)/2.0
	case j == -jmax:
		ku, km, kd = j+2, j+1, j
		pu = 1.0/6.0 + (x*x+x)/2.0
		pm = -1.0/3.0 - x*x - 2*x
		pd = 7.0/6.0 + (x*x+3*x)/2.0
	default:
		ku, km, kd = j+1, j, j-1
		pu = 1.0/6.0 + (x*x-x)/2.0
		pm = 2.0/3.0 - x*x
		pd = 1.0/6.0 + (x*x+x)/2.0
	}
	return
}

// rate returns the short rate at step i, offset j.
func (t *tree) rate(i, j int) float64 {
	return t.shift[i] + float64(j)*t.dR
}

// stepIndex snaps a year-fraction-from-settlement t onto the nearest tree
// grid index.
func (t *tree) stepIndex(yearsFromSettle float64) int {
	i := int(math.Round(yearsFromSettle / t.dt))
	if i < 0 {
		i = 0
	}
	if i > len(t.times)-1 {
		i = len(t.times) - 1
	}
	return i
}
