package geocart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Intersection of the circle x^2+y^2=4 with the line x=y: the root nearest
// the guess (2, 1) is (sqrt2, sqrt2).
func circleLine(x, y float64) (float64, float64) {
	return x*x + y*y - 4, x - y
}

func circleLineJac(x, y float64) (float64, float64, float64, float64) {
	return 2 * x, 2 * y, 1, -1
}

func TestNewtonAnalyticJacobian(t *testing.T) {
	x, y, evals, err := Newton{}.Solve(circleLine, circleLineJac, 2, 1)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt2, x, 1e-6)
	require.InDelta(t, math.Sqrt2, y, 1e-6)
	require.Greater(t, evals, 1)
}

func TestNewtonFiniteDifferences(t *testing.T) {
	x, y, _, err := Newton{}.Solve(circleLine, nil, 2, 1)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt2, x, 1e-6)
	require.InDelta(t, math.Sqrt2, y, 1e-6)
}

func TestNewtonRootAtGuess(t *testing.T) {
	x, y, evals, err := Newton{}.Solve(circleLine, circleLineJac, math.Sqrt2, math.Sqrt2)
	require.NoError(t, err)
	require.Equal(t, 1, evals)
	require.InDelta(t, math.Sqrt2, x, 1e-12)
	require.InDelta(t, math.Sqrt2, y, 1e-12)
}

func TestBroyden(t *testing.T) {
	x, y, evals, err := Broyden{}.Solve(circleLine, nil, 2, 1)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt2, x, 1e-6)
	require.InDelta(t, math.Sqrt2, y, 1e-6)
	// Seeding the Jacobian approximation costs two extra evaluations.
	require.Greater(t, evals, 3)
}

func TestSolveStepCriterion(t *testing.T) {
	// Residuals scaled so the absolute FTol can never be met even at the
	// root; both solvers must still converge through the relative step
	// criterion rather than report failure.
	scaled := func(x, y float64) (float64, float64) {
		f1, f2 := circleLine(x, y)
		return f1 * 1e12, f2 * 1e12
	}
	for _, s := range []Solver{Newton{}, Broyden{}} {
		x, y, _, err := s.Solve(scaled, nil, 2, 1)
		require.NoError(t, err)
		require.InDelta(t, math.Sqrt2, x, 1e-9)
		require.InDelta(t, math.Sqrt2, y, 1e-9)
	}
}

func TestSolveNoRoot(t *testing.T) {
	// x^2+y^2 = -1 has no real solution; both solvers must give up and
	// report the work done.
	noRoot := func(x, y float64) (float64, float64) {
		return x*x + y*y + 1, x - y
	}
	for _, s := range []Solver{Newton{MaxIter: 25}, Broyden{MaxIter: 25}} {
		_, _, evals, err := s.Solve(noRoot, nil, 2, 1)
		var nc *NonConvergenceError
		require.ErrorAs(t, err, &nc)
		require.Equal(t, evals, nc.Evals)
		require.NotEmpty(t, nc.Reason)
	}
}

func TestSolverByName(t *testing.T) {
	s, err := SolverByName("newton")
	require.NoError(t, err)
	require.IsType(t, Newton{}, s)

	s, err = SolverByName("broyden")
	require.NoError(t, err)
	require.IsType(t, Broyden{}, s)

	_, err = SolverByName("levenberg")
	require.Error(t, err)
}
