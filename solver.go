package geocart

import (
	"fmt"
	"math"
)

// Func is a two-dimensional vector function whose root is sought.
type Func func(p, z float64) (f1, f2 float64)

// Jacobian returns the partial derivatives of a Func at (p, z), row by row:
// j11 = df1/dp, j12 = df1/dz, j21 = df2/dp, j22 = df2/dz.
type Jacobian func(p, z float64) (j11, j12, j21, j22 float64)

// Solver locates a root of a two-dimensional vector function from an initial
// guess. The analytic Jacobian may be nil; implementations that do not need
// one ignore it. Solve reports the root, the number of Func evaluations
// consumed, and a *NonConvergenceError when the search fails.
//
// Any conforming root-finder can be plugged into the Cartesian-to-geodetic
// conversion through InverseOptions; Newton and Broyden are the stock
// implementations.
type Solver interface {
	Solve(f Func, jac Jacobian, p0, z0 float64) (p, z float64, evals int, err error)
}

// NonConvergenceError reports a failed root search. P, Z hold the last
// iterate and Evals the number of function evaluations spent, for diagnosis.
// The caller gets no automatic retry; switching algorithms is its policy.
type NonConvergenceError struct {
	P, Z   float64
	Evals  int
	Reason string
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("geocart: root search failed after %d evaluations (last iterate p=%g, z=%g): %s",
		e.Evals, e.P, e.Z, e.Reason)
}

// SolverByName returns a stock solver with default settings by its algorithm
// identifier: "newton" or "broyden".
func SolverByName(name string) (Solver, error) {
	switch name {
	case "newton":
		return Newton{}, nil
	case "broyden":
		return Broyden{}, nil
	}
	return nil, fmt.Errorf("geocart: unknown solver %q", name)
}

const (
	defaultMaxIter = 100
	defaultFTol    = 1e-6
	defaultXTol    = 1e-12
)

// Newton is a Newton-Raphson solver for two equations in two unknowns. It
// uses the analytic Jacobian when one is supplied and forward differences
// otherwise. The zero value solves with defaults tuned for kilometer-unit
// geodesy.
//
// Convergence is declared when the residual infinity-norm drops below FTol,
// or when a step becomes smaller than XTol relative to the iterate. The step
// criterion is what terminates on ellipsoids measured in meters, where the
// residual scales with a*b and an absolute FTol is unreachable. The residual
// is checked before the first step, so a guess already on the root costs a
// single evaluation.
type Newton struct {
	MaxIter int     // iteration limit, default 100
	FTol    float64 // residual tolerance, default 1e-6
	XTol    float64 // relative step tolerance, default 1e-12
}

// Solve implements Solver.
func (s Newton) Solve(f Func, jac Jacobian, p0, z0 float64) (float64, float64, int, error) {
	maxIter, ftol, xtol := s.limits()
	p, z := p0, z0
	evals := 0
	for i := 0; i < maxIter; i++ {
		f1, f2 := f(p, z)
		evals++
		if math.Abs(f1) <= ftol && math.Abs(f2) <= ftol {
			return p, z, evals, nil
		}
		var j11, j12, j21, j22 float64
		if jac != nil {
			j11, j12, j21, j22 = jac(p, z)
		} else {
			j11, j12, j21, j22 = fdJacobian(f, p, z, f1, f2)
			evals += 2
		}
		dp, dz, ok := solve2(j11, j12, j21, j22, f1, f2)
		if !ok {
			return p, z, evals, &NonConvergenceError{P: p, Z: z, Evals: evals,
				Reason: "singular jacobian"}
		}
		p += dp
		z += dz
		if smallStep(dp, dz, p, z, xtol) {
			return p, z, evals, nil
		}
	}
	return p, z, evals, &NonConvergenceError{P: p, Z: z, Evals: evals,
		Reason: "iteration limit reached"}
}

func (s Newton) limits() (int, float64, float64) {
	maxIter, ftol, xtol := s.MaxIter, s.FTol, s.XTol
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}
	if ftol <= 0 {
		ftol = defaultFTol
	}
	if xtol <= 0 {
		xtol = defaultXTol
	}
	return maxIter, ftol, xtol
}

// Broyden is a derivative-free quasi-Newton solver ("good" Broyden update).
// The Jacobian approximation is seeded by forward differences at the initial
// guess and rank-one updated from then on; an analytic Jacobian passed to
// Solve is ignored by contract. The zero value solves with defaults.
//
// Convergence is declared exactly as for Newton: residual infinity-norm
// below FTol, or a step smaller than XTol relative to the iterate.
type Broyden struct {
	MaxIter int     // iteration limit, default 100
	FTol    float64 // residual tolerance, default 1e-6
	XTol    float64 // relative step tolerance, default 1e-12
}

// Solve implements Solver. The jac argument is ignored.
func (s Broyden) Solve(f Func, _ Jacobian, p0, z0 float64) (float64, float64, int, error) {
	maxIter, ftol, xtol := Newton{MaxIter: s.MaxIter, FTol: s.FTol, XTol: s.XTol}.limits()
	p, z := p0, z0
	f1, f2 := f(p, z)
	evals := 1
	if math.Abs(f1) <= ftol && math.Abs(f2) <= ftol {
		return p, z, evals, nil
	}
	b11, b12, b21, b22 := fdJacobian(f, p, z, f1, f2)
	evals += 2
	for i := 0; i < maxIter; i++ {
		dp, dz, ok := solve2(b11, b12, b21, b22, f1, f2)
		if !ok {
			return p, z, evals, &NonConvergenceError{P: p, Z: z, Evals: evals,
				Reason: "singular jacobian approximation"}
		}
		p += dp
		z += dz
		nf1, nf2 := f(p, z)
		evals++
		if math.Abs(nf1) <= ftol && math.Abs(nf2) <= ftol {
			return p, z, evals, nil
		}
		if smallStep(dp, dz, p, z, xtol) {
			return p, z, evals, nil
		}
		// Rank-one update: B += ((df - B*dx) dx^T) / (dx^T dx).
		sn := dp*dp + dz*dz
		t1 := (nf1 - f1 - (b11*dp + b12*dz)) / sn
		t2 := (nf2 - f2 - (b21*dp + b22*dz)) / sn
		b11 += t1 * dp
		b12 += t1 * dz
		b21 += t2 * dp
		b22 += t2 * dz
		f1, f2 = nf1, nf2
	}
	return p, z, evals, &NonConvergenceError{P: p, Z: z, Evals: evals,
		Reason: "iteration limit reached"}
}

// solve2 solves the 2x2 linear system J*d = -f by Cramer's rule.
func solve2(j11, j12, j21, j22, f1, f2 float64) (dp, dz float64, ok bool) {
	det := j11*j22 - j12*j21
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return 0, 0, false
	}
	dp = (f2*j12 - f1*j22) / det
	dz = (f1*j21 - f2*j11) / det
	return dp, dz, true
}

// fdJacobian approximates the Jacobian at (p, z) by forward differences,
// given the already-computed residual (f1, f2) there. Two extra evaluations.
func fdJacobian(f Func, p, z, f1, f2 float64) (j11, j12, j21, j22 float64) {
	hp := fdStep(p)
	hz := fdStep(z)
	g1, g2 := f(p+hp, z)
	j11 = (g1 - f1) / hp
	j21 = (g2 - f2) / hp
	g1, g2 = f(p, z+hz)
	j12 = (g1 - f1) / hz
	j22 = (g2 - f2) / hz
	return j11, j12, j21, j22
}

func fdStep(x float64) float64 {
	h := 1.4901161193847656e-08 * math.Abs(x) // sqrt(machine epsilon)
	if h == 0 {
		h = 1.4901161193847656e-08
	}
	return h
}

func smallStep(dp, dz, p, z, xtol float64) bool {
	return math.Abs(dp) <= xtol*(1+math.Abs(p)) &&
		math.Abs(dz) <= xtol*(1+math.Abs(z))
}
