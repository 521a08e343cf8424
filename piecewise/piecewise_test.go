package piecewise_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nrealus/iis/lp"
	"github.com/nrealus/iis/mip"
	"github.com/nrealus/iis/piecewise"
)

func TestSample(t *testing.T) {
	fn, err := piecewise.Sample(func(x float64) float64 { return x * x }, 0, 2, 5)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, fn.X)
	require.Equal(t, []float64{0, 0.25, 1, 2.25, 4}, fn.Y)
}

func TestSampleErrors(t *testing.T) {
	square := func(x float64) float64 { return x * x }
	_, err := piecewise.Sample(square, 0, 2, 1)
	require.ErrorIs(t, err, piecewise.ErrTooFewPoints)
	_, err = piecewise.Sample(square, 2, 2, 5)
	require.ErrorIs(t, err, piecewise.ErrUnsorted)
}

func TestFunctionValidation(t *testing.T) {
	m := lp.NewModel("bad")
	x, _ := m.AddVar("x", 0, 1)
	y, _ := m.AddVar("y", 0, 1)
	_, err := piecewise.Apply(m, x, y, piecewise.Function{X: []float64{0, 1}, Y: []float64{0}}, "pw")
	require.ErrorIs(t, err, piecewise.ErrMismatched)
	_, err = piecewise.Apply(m, x, y, piecewise.Function{X: []float64{0, 0}, Y: []float64{0, 1}}, "pw")
	require.ErrorIs(t, err, piecewise.ErrUnsorted)
	_, err = piecewise.Apply(m, 7, y, piecewise.Function{X: []float64{0, 1}, Y: []float64{0, 1}}, "pw")
	require.ErrorIs(t, err, lp.ErrUnknownVar)
}

// applyAt builds a model pinning x to the given value under the
// piecewise encoding of x*x over [0, 2], and returns the model and the
// index of y.
func applyAt(t *testing.T, x float64) (*lp.Model, int) {
	t.Helper()
	fn := piecewise.Function{X: []float64{0, 1, 2}, Y: []float64{0, 1, 4}}
	m := lp.NewModel("square")
	xj, err := m.AddVar("x", x, x)
	require.NoError(t, err)
	yj, err := m.AddVar("y", math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	names, err := piecewise.Apply(m, xj, yj, fn, "pw")
	require.NoError(t, err)
	require.Contains(t, names, "pw_cvx")
	require.Contains(t, names, "pw_seg")
	return m, yj
}

// yRange minimizes then maximizes y under the encoding.
func yRange(t *testing.T, m *lp.Model, yj int) (lo, hi float64) {
	t.Helper()
	require.NoError(t, m.SetObjective(lp.LinExpr{yj: 1}, false))
	sol, err := mip.Solve(m)
	require.NoError(t, err)
	require.Equal(t, lp.Optimal, sol.Status)
	lo = sol.Objective
	require.NoError(t, m.SetObjective(lp.LinExpr{yj: 1}, true))
	sol, err = mip.Solve(m)
	require.NoError(t, err)
	require.Equal(t, lp.Optimal, sol.Status)
	return lo, sol.Objective
}

func TestApplyAtBreakpoint(t *testing.T) {
	// At a breakpoint the encoding is exact and unique.
	m, yj := applyAt(t, 1)
	lo, hi := yRange(t, m, yj)
	require.InDelta(t, 1, lo, 1e-6)
	require.InDelta(t, 1, hi, 1e-6)
}

func TestApplyBetweenBreakpoints(t *testing.T) {
	// Between breakpoints the encoding follows the chord: at x = 1.5,
	// the segment from (1, 1) to (2, 4) gives y = 2.5, not 2.25.
	m, yj := applyAt(t, 1.5)
	lo, hi := yRange(t, m, yj)
	require.InDelta(t, 2.5, lo, 1e-6)
	require.InDelta(t, 2.5, hi, 1e-6)
}

func TestTruncatedNormalCDF(t *testing.T) {
	cdf := piecewise.TruncatedNormalCDF(4, 1, 1, 7)
	require.InDelta(t, 0, cdf(1), 1e-12)
	require.InDelta(t, 1, cdf(7), 1e-12)
	require.InDelta(t, 0.5, cdf(4), 1e-9)
	require.Greater(t, cdf(5), cdf(3.5))
	require.InDelta(t, 0, cdf(-10), 1e-12)
	require.InDelta(t, 1, cdf(100), 1e-12)
}
