package solve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LMOptions configures Levenberg-Marquardt.
type LMOptions struct {
	Tolerance     float64
	MaxIter       int
	InitialLambda float64
}

func defaultLMOptions(o LMOptions) LMOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-10
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 200
	}
	if o.InitialLambda <= 0 {
		o.InitialLambda = 1e-3
	}
	return o
}

// LMResult is the outcome of a Levenberg-Marquardt fit.
type LMResult struct {
	Params     []float64
	Residual   []float64
	Iterations int
	RMS        float64
}

// LevenbergMarquardt minimizes ||residual(params)||^2 over params, given a
// function returning the residual vector and its Jacobian (rows = residuals,
// cols = parameters). The damped normal equations (JᵀJ + λI)δ = -Jᵀr are
// solved via Cholesky, falling back to LU when JᵀJ+λI is not
// positive-definite (spec.md 4.5; DESIGN.md solve/).
func LevenbergMarquardt(
	residualAndJacobian func(params []float64) (residual []float64, jacobian [][]float64),
	initial []float64,
	opts LMOptions,
) (LMResult, error) {
	opts = defaultLMOptions(opts)

	params := append([]float64(nil), initial...)
	lambda := opts.InitialLambda

	r, J := residualAndJacobian(params)
	cost := sumSquares(r)

	for iter := 0; iter < opts.MaxIter; iter++ {
		n := len(params)
		m := len(r)

		Jmat := mat.NewDense(m, n, flatten(J))
		rVec := mat.NewVecDense(m, r)

		var JtJ mat.Dense
		JtJ.Mul(Jmat.T(), Jmat)

		var Jtr mat.VecDense
		Jtr.MulVec(Jmat.T(), rVec)

		damped := mat.NewDense(n, n, nil)
		damped.Copy(&JtJ)
		for i := 0; i < n; i++ {
			damped.Set(i, i, damped.At(i, i)+lambda)
		}

		delta, err := solveNormalEquations(damped, &Jtr, n)
		if err != nil {
			lambda *= 10
			if lambda > 1e12 {
				return LMResult{}, fmt.Errorf("solve: Levenberg-Marquardt lambda saturated without a usable step: %w", err)
			}
			continue
		}

		candidate := make([]float64, n)
		for i := range candidate {
			candidate[i] = params[i] - delta[i]
		}

		rNew, JNew := residualAndJacobian(candidate)
		newCost := sumSquares(rNew)

		if newCost < cost {
			improvement := cost - newCost
			params = candidate
			r, J = rNew, JNew
			cost = newCost
			lambda = math.Max(lambda/10, 1e-12)
			if improvement < opts.Tolerance {
				return LMResult{Params: params, Residual: r, Iterations: iter + 1, RMS: rms(r)}, nil
			}
		} else {
			lambda *= 10
			if lambda > 1e12 {
				return LMResult{Params: params, Residual: r, Iterations: iter + 1, RMS: rms(r)},
					&ConvergenceError{Method: "LevenbergMarquardt", Iterations: iter + 1, Residual: cost}
			}
		}
	}

	return LMResult{Params: params, Residual: r, Iterations: opts.MaxIter, RMS: rms(r)},
		&ConvergenceError{Method: "LevenbergMarquardt", Iterations: opts.MaxIter, Residual: cost}
}

// solveNormalEquations solves A x = b via Cholesky, falling back to LU
// when A is not positive-definite (damping can fail to restore
// definiteness near a saddle in pathological curve shapes).
func solveNormalEquations(A *mat.Dense, b *mat.VecDense, n int) ([]float64, error) {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := 0.5 * (A.At(i, j) + A.At(j, i))
			sym.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(sym) {
		var x mat.VecDense
		if err := chol.SolveVecTo(&x, b); err == nil {
			return x.RawVector().Data, nil
		}
	}

	var lu mat.LU
	lu.Factorize(A)
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("solve: normal equations singular: %w", err)
	}
	return x.RawVector().Data, nil
}

func flatten(J [][]float64) []float64 {
	if len(J) == 0 {
		return nil
	}
	cols := len(J[0])
	out := make([]float64, 0, len(J)*cols)
	for _, row := range J {
		out = append(out, row...)
	}
	return out
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

func rms(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return math.Sqrt(sumSquares(v) / float64(len(v)))
}
